package service

import (
	"context"
	"sort"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/repository"
)

// LabService builds the joined, read-only views of the laboratory document.
// It reads through the facade, so a delegate answers when one is wired.
type LabService struct {
	store repository.LabStore
}

func NewLabService(store repository.LabStore) *LabService {
	return &LabService{store: store}
}

// procedureKey orders procedures: numeric prefix descending, numberless last,
// then year descending, then newest first.
type procedureKey struct {
	prefix    int
	hasPrefix bool
	year      int
	created   time.Time
}

func keyOf(number string, created time.Time) procedureKey {
	k := procedureKey{created: created}
	k.prefix, k.hasPrefix = model.ProcedurePrefix(number)
	if _, year, _, ok := model.ParseProcedureNumber(number); ok {
		k.year = year
	}
	return k
}

func (a procedureKey) before(b procedureKey) bool {
	if a.hasPrefix != b.hasPrefix {
		return a.hasPrefix
	}
	if a.prefix != b.prefix {
		return a.prefix > b.prefix
	}
	if a.year != b.year {
		return a.year > b.year
	}
	return a.created.After(b.created)
}

// GetAllSavedSamplesWithSamples attaches each procedure's samples.
func (s *LabService) GetAllSavedSamplesWithSamples(ctx context.Context) ([]model.SavedSampleWithSamples, error) {
	procedures, err := s.store.GetSavedSamples(ctx)
	if err != nil {
		return nil, err
	}
	samples, err := s.store.GetSamples(ctx)
	if err != nil {
		return nil, err
	}

	byParent := make(map[string][]model.Sample, len(procedures))
	for _, sm := range samples {
		byParent[sm.SavedSampleID] = append(byParent[sm.SavedSampleID], sm)
	}
	out := make([]model.SavedSampleWithSamples, 0, len(procedures))
	for _, p := range procedures {
		children := byParent[p.ID]
		if children == nil {
			children = []model.Sample{}
		}
		out = append(out, model.SavedSampleWithSamples{SavedSample: p, Samples: children})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return keyOf(out[i].InternalProcedureNumber, out[i].CreatedAt).
			before(keyOf(out[j].InternalProcedureNumber, out[j].CreatedAt))
	})
	return out, nil
}

// GetSavedSampleWithSamples returns nil when the procedure does not exist.
func (s *LabService) GetSavedSampleWithSamples(ctx context.Context, id string) (*model.SavedSampleWithSamples, error) {
	p, err := s.store.GetSavedSample(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	samples, err := s.store.GetSamplesBySavedSample(ctx, id)
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []model.Sample{}
	}
	return &model.SavedSampleWithSamples{SavedSample: *p, Samples: samples}, nil
}

// GetTestResultsWithDetails enriches every result with its sample and
// procedure display fields. Orphans keep empty display fields and sort last.
func (s *LabService) GetTestResultsWithDetails(ctx context.Context) ([]model.TestResultWithDetails, error) {
	results, err := s.store.GetTestResults(ctx)
	if err != nil {
		return nil, err
	}
	samples, err := s.store.GetSamples(ctx)
	if err != nil {
		return nil, err
	}
	procedures, err := s.store.GetSavedSamples(ctx)
	if err != nil {
		return nil, err
	}

	sampleByID := make(map[string]model.Sample, len(samples))
	for _, sm := range samples {
		sampleByID[sm.ID] = sm
	}
	procByID := make(map[string]model.SavedSample, len(procedures))
	for _, p := range procedures {
		procByID[p.ID] = p
	}

	out := make([]model.TestResultWithDetails, 0, len(results))
	for _, r := range results {
		d := model.TestResultWithDetails{TestResult: r}
		if sm, ok := sampleByID[r.SampleID]; ok {
			d.SampleNumber = sm.SampleNumber
			d.Department = sm.Department
			d.RequestedTest = sm.RequestedTest
			d.AnimalType = sm.AnimalType
			d.SavedSampleID = sm.SavedSampleID
			if p, ok := procByID[sm.SavedSampleID]; ok {
				d.ClientName = p.ClientName
				d.ReceptionDate = p.ReceptionDate
				d.InternalProcedureNumber = p.InternalProcedureNumber
				d.ExternalProcedureNumber = p.ExternalProcedureNumber
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return keyOf(out[i].InternalProcedureNumber, out[i].CreatedAt).
			before(keyOf(out[j].InternalProcedureNumber, out[j].CreatedAt))
	})
	return out, nil
}

func hasApproved(results []model.TestResult) bool {
	for _, r := range results {
		if r.ApprovalStatus == model.ApprovalApproved {
			return true
		}
	}
	return false
}

// IsSampleComplete reports whether the sample has at least one approved result.
func (s *LabService) IsSampleComplete(ctx context.Context, sampleID string) (bool, error) {
	results, err := s.store.GetTestResultsBySample(ctx, sampleID)
	if err != nil {
		return false, err
	}
	return hasApproved(results), nil
}

// IsSavedSampleComplete reports whether every sample of the procedure is
// complete. A procedure without samples is not complete.
func (s *LabService) IsSavedSampleComplete(ctx context.Context, savedSampleID string) (bool, error) {
	summary, err := s.summarize(ctx, savedSampleID)
	if err != nil {
		return false, err
	}
	return summary.Completed, nil
}

func (s *LabService) summarize(ctx context.Context, savedSampleID string) (model.ProcedureSummary, error) {
	summary := model.ProcedureSummary{SavedSampleID: savedSampleID}
	samples, err := s.store.GetSamplesBySavedSample(ctx, savedSampleID)
	if err != nil {
		return summary, err
	}
	for _, sm := range samples {
		done, err := s.IsSampleComplete(ctx, sm.ID)
		if err != nil {
			return summary, err
		}
		summary.TotalSamples++
		if done {
			summary.CompletedSamples++
		}
	}
	summary.Completed = summary.TotalSamples > 0 && summary.CompletedSamples == summary.TotalSamples
	return summary, nil
}

// GetProcedureSummaries counts completed samples for every procedure, in
// procedure order.
func (s *LabService) GetProcedureSummaries(ctx context.Context) ([]model.ProcedureSummary, error) {
	procedures, err := s.GetAllSavedSamplesWithSamples(ctx)
	if err != nil {
		return nil, err
	}
	results, err := s.store.GetTestResults(ctx)
	if err != nil {
		return nil, err
	}
	resultsBySample := make(map[string][]model.TestResult)
	for _, r := range results {
		resultsBySample[r.SampleID] = append(resultsBySample[r.SampleID], r)
	}

	out := make([]model.ProcedureSummary, 0, len(procedures))
	for _, p := range procedures {
		sum := model.ProcedureSummary{
			SavedSampleID:           p.ID,
			InternalProcedureNumber: p.InternalProcedureNumber,
			ClientName:              p.ClientName,
			TotalSamples:            len(p.Samples),
		}
		for _, sm := range p.Samples {
			if hasApproved(resultsBySample[sm.ID]) {
				sum.CompletedSamples++
			}
		}
		sum.Completed = sum.TotalSamples > 0 && sum.CompletedSamples == sum.TotalSamples
		out = append(out, sum)
	}
	return out, nil
}
