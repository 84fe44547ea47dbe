package service

import (
	"context"
	"testing"

	"vetlab/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcedureCompletionScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	views := NewLabService(f.lab)

	proc, err := f.lab.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "مزرعة الوادي", ReceptionDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "0001-2025-L", proc.InternalProcedureNumber)

	first, err := f.lab.CreateSample(ctx, model.SampleInput{SavedSampleID: proc.ID, SampleNumber: "S-1", Department: "serology", RequestedTest: "ELISA"})
	require.NoError(t, err)
	second, err := f.lab.CreateSample(ctx, model.SampleInput{SavedSampleID: proc.ID, SampleNumber: "S-2", Department: "pcr", RequestedTest: "RT-PCR"})
	require.NoError(t, err)

	_, err = f.lab.CreateTestResult(ctx, model.TestResultInput{SampleID: first.ID, TestMethod: "ELISA", TestResult: "negative", ApprovalStatus: model.ApprovalApproved})
	require.NoError(t, err)
	pending, err := f.lab.CreateTestResult(ctx, model.TestResultInput{SampleID: second.ID, TestMethod: "RT-PCR", ApprovalStatus: model.ApprovalPending})
	require.NoError(t, err)

	all, err := views.GetAllSavedSamplesWithSamples(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, all[0].Samples, 2)

	done, err := views.IsSampleComplete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, done)
	done, err = views.IsSampleComplete(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, done)

	complete, err := views.IsSavedSampleComplete(ctx, proc.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	summaries, err := views.GetProcedureSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].TotalSamples)
	assert.Equal(t, 1, summaries[0].CompletedSamples)
	assert.False(t, summaries[0].Completed)

	_, err = f.lab.SetTestResultStatus(ctx, pending.ID, model.ApprovalApproved, "د. سامي", "")
	require.NoError(t, err)
	complete, err = views.IsSavedSampleComplete(ctx, proc.ID)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestProcedureWithoutSamplesIsNotComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	views := NewLabService(f.lab)

	proc, err := f.lab.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "client"})
	require.NoError(t, err)
	complete, err := views.IsSavedSampleComplete(ctx, proc.ID)
	require.NoError(t, err)
	assert.False(t, complete)

	one, err := views.GetSavedSampleWithSamples(ctx, proc.ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.NotNil(t, one.Samples)
	assert.Empty(t, one.Samples)

	missing, err := views.GetSavedSampleWithSamples(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDerivedViewsSortByProcedureNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	views := NewLabService(f.lab)

	numbers := []string{"0002-2025-L", "0010-2024-L", "0002-2024-L", "0001-2025-L"}
	ids := map[string]string{}
	for _, n := range numbers {
		p, err := f.lab.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "c " + n, InternalProcedureNumber: n})
		require.NoError(t, err)
		ids[n] = p.ID
	}
	// a numberless procedure sorts last even though it is the newest
	blank, err := f.lab.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "blank"})
	require.NoError(t, err)
	_, err = f.lab.UpdateSavedSample(ctx, blank.ID, model.SavedSamplePatch{InternalProcedureNumber: ptr("")})
	require.NoError(t, err)

	all, err := views.GetAllSavedSamplesWithSamples(ctx)
	require.NoError(t, err)
	got := make([]string, len(all))
	for i, p := range all {
		got[i] = p.InternalProcedureNumber
	}
	assert.Equal(t, []string{"0010-2024-L", "0002-2025-L", "0002-2024-L", "0001-2025-L", ""}, got)

	sm, err := f.lab.CreateSample(ctx, model.SampleInput{SavedSampleID: ids["0001-2025-L"], Department: "d", RequestedTest: "t", AnimalType: "camel"})
	require.NoError(t, err)
	sm2, err := f.lab.CreateSample(ctx, model.SampleInput{SavedSampleID: ids["0010-2024-L"], Department: "d", RequestedTest: "t"})
	require.NoError(t, err)
	_, err = f.lab.CreateTestResult(ctx, model.TestResultInput{SampleID: sm.ID})
	require.NoError(t, err)
	_, err = f.lab.CreateTestResult(ctx, model.TestResultInput{SampleID: sm2.ID})
	require.NoError(t, err)

	details, err := views.GetTestResultsWithDetails(ctx)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "0010-2024-L", details[0].InternalProcedureNumber)
	assert.Equal(t, "0001-2025-L", details[1].InternalProcedureNumber)
	assert.Equal(t, "c 0001-2025-L", details[1].ClientName)
	assert.Equal(t, "camel", details[1].AnimalType)
	assert.Equal(t, ids["0001-2025-L"], details[1].SavedSampleID)
}
