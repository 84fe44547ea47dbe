package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portsUnderTest(t *testing.T) map[string]Port {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFile(filepath.Join(dir, "docs"))
	require.NoError(t, err)

	lite, err := NewSQLite(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })

	return map[string]Port{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": lite,
	}
}

func TestPort_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, port := range portsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := port.Load(ctx, "lab_database")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, port.Save(ctx, "lab_database", []byte(`{"users":[]}`)))
			got, err := port.Load(ctx, "lab_database")
			require.NoError(t, err)
			assert.JSONEq(t, `{"users":[]}`, string(got))

			require.NoError(t, port.Save(ctx, "lab_database", []byte(`{"users":[{"id":"1"}]}`)))
			got, err = port.Load(ctx, "lab_database")
			require.NoError(t, err)
			assert.JSONEq(t, `{"users":[{"id":"1"}]}`, string(got))

			require.NoError(t, port.Delete(ctx, "lab_database"))
			_, err = port.Load(ctx, "lab_database")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestPort_RejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	for name, port := range portsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, port.Save(ctx, "../escape", []byte("{}")))
			assert.Error(t, port.Save(ctx, "  ", []byte("{}")))
		})
	}
}

func TestFile_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Save(context.Background(), "vet_database", []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vet_database.json", entries[0].Name())
}

func TestMemory_LoadReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Save(ctx, "k", []byte("abc")))

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "floppy"})
	assert.Error(t, err)
}

func TestOpen_MemoryAndFile(t *testing.T) {
	p, err := Open(context.Background(), Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, p)

	p, err = Open(context.Background(), Options{Driver: DriverFile, DataDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, p)
}
