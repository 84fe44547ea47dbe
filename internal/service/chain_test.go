package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vetlab/internal/hostapi"
	"vetlab/internal/model"
	"vetlab/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProcedures answers the procedure operations it overrides; anything
// else would panic through the nil embedded interface.
type stubProcedures struct {
	repository.SavedSampleRepository
	list  []model.SavedSample
	err   error
	calls int
}

func (s *stubProcedures) Name() string { return "stub" }

func (s *stubProcedures) GetSavedSamples(context.Context) ([]model.SavedSample, error) {
	s.calls++
	return s.list, s.err
}

func (s *stubProcedures) GetNextProcedureNumber(context.Context) (string, error) {
	s.calls++
	return "", s.err
}

// nameOnly implements no storage operation at all.
type nameOnly struct{}

func (nameOnly) Name() string { return "bare" }

func TestChainPrefersDelegateResult(t *testing.T) {
	ctx := context.Background()
	stub := &stubProcedures{list: []model.SavedSample{{ID: "remote", InternalProcedureNumber: "0100-2025-L"}}}
	f := newFixture(t, nameOnly{}, stub)

	_, err := f.labLocal.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "local"})
	require.NoError(t, err)

	got, err := f.lab.GetSavedSamples(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "remote", got[0].ID)
	assert.Equal(t, 1, stub.calls)
}

func TestChainFallsBackOnErrorOrEmpty(t *testing.T) {
	ctx := context.Background()
	for name, stub := range map[string]*stubProcedures{
		"error": {err: errors.New("host offline")},
		"nil":   {},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, stub)
			_, err := f.labLocal.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "local"})
			require.NoError(t, err)

			got, err := f.lab.GetSavedSamples(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "local", got[0].ClientName)

			next, err := f.lab.GetNextProcedureNumber(ctx)
			require.NoError(t, err)
			assert.Equal(t, "0002-2025-L", next)
		})
	}
}

func TestChainLocalErrorIsAuthoritative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &stubProcedures{err: errors.New("host offline")})

	_, err := f.lab.CreateSample(ctx, model.SampleInput{SavedSampleID: "ghost", Department: "d", RequestedTest: "t"})
	assert.ErrorIs(t, err, repository.ErrParentNotFound)
}

// hostServer implements only the named methods; everything else is 404.
func hostServer(t *testing.T, handlers map[string]any) *hostapi.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, ok := handlers[r.URL.Path[1:]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(srv.Close)
	return hostapi.New(srv.URL, hostapi.WithTimeout(2*time.Second))
}

func TestChainWithHostAPI(t *testing.T) {
	ctx := context.Background()
	host := hostServer(t, map[string]any{
		"getNextShipmentNumber": "0042-2025-V",
		"createAnimalShipment":  model.AnimalShipment{ID: "host-1", ProcedureNumber: "0042-2025-V"},
	})
	f := newFixture(t, host)

	next, err := f.vet.GetNextShipmentNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0042-2025-V", next)

	// a delegated write does not touch the local document
	created, err := f.vet.CreateAnimalShipment(ctx, model.AnimalShipmentInput{ImporterName: "x"})
	require.NoError(t, err)
	assert.Equal(t, "host-1", created.ID)
	local, err := f.vetLocal.GetAnimalShipments(ctx)
	require.NoError(t, err)
	assert.Empty(t, local)

	// methods the host lacks fall through to the local repository
	_, err = f.vetLocal.CreateTraderEntry(ctx, model.TraderEntryInput{
		ProcedureNumber: "0001-2025-V", ImporterName: "i", PermitNumber: "p", StatementNumber: "s",
	})
	require.NoError(t, err)
	traders, err := f.vet.GetTraderEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, traders, 1)
}

func TestChainNullHostAnswerFallsThrough(t *testing.T) {
	ctx := context.Background()
	host := hostServer(t, map[string]any{"deleteSavedSample": nil})
	f := newFixture(t, host)

	proc, err := f.labLocal.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "local"})
	require.NoError(t, err)

	ok, err := f.lab.DeleteSavedSample(ctx, proc.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	left, err := f.labLocal.GetSavedSample(ctx, proc.ID)
	require.NoError(t, err)
	assert.Nil(t, left)
}

func TestPresent(t *testing.T) {
	var nilSlice []model.Sample
	var nilPtr *model.Sample
	assert.False(t, present(nilSlice))
	assert.False(t, present(nilPtr))
	assert.False(t, present(""))
	assert.True(t, present([]model.Sample{}))
	assert.True(t, present(false))
	assert.True(t, present(0))
	assert.True(t, present("0001-2025-L"))
}
