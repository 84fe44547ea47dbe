package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labctl runs one command against the file driver rooted at dir.
func labctl(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := getRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, "--env=", "--driver=file", "--data-dir="+dir, "-q"))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := getRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"next-number", "seed-admin", "login", "logout", "whoami", "export", "import", "stats", "permissions"} {
		assert.Contains(t, names, want)
	}
}

func TestNextNumber(t *testing.T) {
	dir := t.TempDir()
	year := time.Now().Year()

	out, err := labctl(t, dir, "next-number")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("0001-%d-L\n", year), out)

	out, err = labctl(t, dir, "next-number", "--domain", "vet")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("0001-%d-V\n", year), out)

	_, err = labctl(t, dir, "next-number", "--domain", "farm")
	assert.Error(t, err)
}

func TestSessionExportImport(t *testing.T) {
	dir := t.TempDir()

	out, err := labctl(t, dir, "seed-admin", "-u", "admin", "-p", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "Created admin")

	out, err = labctl(t, dir, "seed-admin", "-u", "other", "-p", "s3cret")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = labctl(t, dir, "export")
	require.Error(t, err, "export needs a signed-in operator")

	_, err = labctl(t, dir, "login", "-u", "admin", "-p", "wrong")
	require.Error(t, err)

	out, err = labctl(t, dir, "login", "-u", "admin", "-p", "s3cret", "-d", "vet")
	require.NoError(t, err)
	assert.Contains(t, out, "program_manager, vet")

	out, err = labctl(t, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated admin")

	file := filepath.Join(dir, "lab-export.json")
	out, err = labctl(t, dir, "export", "-o", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"saved_samples"`)

	_, err = labctl(t, dir, "import", file)
	require.NoError(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = labctl(t, dir, "import", bad)
	assert.Error(t, err)

	out, err = labctl(t, dir, "stats")
	require.NoError(t, err)
	assert.Regexp(t, `users\s+1`, out)

	_, err = labctl(t, dir, "logout")
	require.NoError(t, err)
	out, err = labctl(t, dir, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "unauthenticated\n", out)
}

func TestPermissionsCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := labctl(t, dir, "permissions", "--role", "data_entry")
	require.NoError(t, err)
	assert.Contains(t, out, "data_entry")
	assert.Contains(t, out, "manage_traders")
	assert.NotContains(t, out, "delete_shipments")

	_, err = labctl(t, dir, "permissions", "--role", "janitor")
	assert.Error(t, err)
}
