package repository

import (
	"context"
	"strings"
	"time"

	"vetlab/internal/model"
)

func sampleCreated(s model.Sample) time.Time { return s.CreatedAt }

func (r *LabRepository) GetSamples(ctx context.Context) ([]model.Sample, error) {
	var out []model.Sample
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.Samples, nil, identity[model.Sample], sampleCreated)
		return nil
	})
	return out, err
}

func (r *LabRepository) GetSamplesBySavedSample(ctx context.Context, savedSampleID string) ([]model.Sample, error) {
	var out []model.Sample
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.Samples, func(s model.Sample) bool { return s.SavedSampleID == savedSampleID },
			identity[model.Sample], sampleCreated)
		return nil
	})
	return out, err
}

func (r *LabRepository) CreateSample(ctx context.Context, in model.SampleInput) (*model.Sample, error) {
	switch {
	case strings.TrimSpace(in.SavedSampleID) == "":
		return nil, missing("saved_sample_id")
	case strings.TrimSpace(in.Department) == "":
		return nil, missing("department")
	case strings.TrimSpace(in.RequestedTest) == "":
		return nil, missing("requested_test")
	}
	if in.SampleCount < 0 {
		return nil, ErrNegativeQuantity
	}

	var created model.Sample
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		if indexOf(doc.SavedSamples, func(s model.SavedSample) bool { return s.ID == in.SavedSampleID }) < 0 {
			return false, ErrParentNotFound
		}
		now := r.opts.timestamp()
		created = model.Sample{
			ID:            r.opts.newID(),
			SavedSampleID: in.SavedSampleID,
			SampleNumber:  in.SampleNumber,
			Department:    in.Department,
			RequestedTest: in.RequestedTest,
			AnimalType:    in.AnimalType,
			SampleCount:   in.SampleCount,
			SampleType:    in.SampleType,
			Notes:         in.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		doc.Samples = append(doc.Samples, created)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *LabRepository) UpdateSample(ctx context.Context, id string, patch model.SamplePatch) (*model.Sample, error) {
	if patch.SampleCount != nil && *patch.SampleCount < 0 {
		return nil, ErrNegativeQuantity
	}
	var updated *model.Sample
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		i := indexOf(doc.Samples, func(s model.Sample) bool { return s.ID == id })
		if i < 0 {
			return false, nil
		}
		s := doc.Samples[i]
		setString(&s.SampleNumber, patch.SampleNumber)
		setString(&s.Department, patch.Department)
		setString(&s.RequestedTest, patch.RequestedTest)
		setString(&s.AnimalType, patch.AnimalType)
		setInt(&s.SampleCount, patch.SampleCount)
		setString(&s.SampleType, patch.SampleType)
		setString(&s.Notes, patch.Notes)
		s.UpdatedAt = r.opts.timestamp()
		doc.Samples[i] = s
		updated = &s
		return true, nil
	})
	return updated, err
}

// DeleteSample removes the sample and its test results.
func (r *LabRepository) DeleteSample(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		if removeWhere(&doc.Samples, func(s model.Sample) bool { return s.ID == id }) == 0 {
			return false, nil
		}
		removeWhere(&doc.TestResults, func(t model.TestResult) bool { return t.SampleID == id })
		removed = true
		return true, nil
	})
	return removed && err == nil, err
}
