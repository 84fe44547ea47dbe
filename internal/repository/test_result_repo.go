package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vetlab/internal/model"
)

func testResultCreated(t model.TestResult) time.Time { return t.CreatedAt }

func (r *LabRepository) GetTestResults(ctx context.Context) ([]model.TestResult, error) {
	var out []model.TestResult
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.TestResults, nil, cloneTestResult, testResultCreated)
		return nil
	})
	return out, err
}

func (r *LabRepository) GetTestResultsBySample(ctx context.Context, sampleID string) ([]model.TestResult, error) {
	var out []model.TestResult
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.TestResults, func(t model.TestResult) bool { return t.SampleID == sampleID },
			cloneTestResult, testResultCreated)
		return nil
	})
	return out, err
}

func (r *LabRepository) CreateTestResult(ctx context.Context, in model.TestResultInput) (*model.TestResult, error) {
	if strings.TrimSpace(in.SampleID) == "" {
		return nil, missing("sample_id")
	}
	if in.ApprovalStatus == "" {
		in.ApprovalStatus = model.ApprovalDraft
	}
	if !model.ValidApprovalStatus(in.ApprovalStatus) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidApprovalStatus, in.ApprovalStatus)
	}
	if in.PositiveSamples < 0 {
		return nil, ErrNegativeQuantity
	}

	var created model.TestResult
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		if indexOf(doc.Samples, func(s model.Sample) bool { return s.ID == in.SampleID }) < 0 {
			return false, ErrParentNotFound
		}
		now := r.opts.timestamp()
		created = model.TestResult{
			ID:               r.opts.newID(),
			SampleID:         in.SampleID,
			TestDate:         in.TestDate,
			TestMethod:       in.TestMethod,
			TestResult:       in.TestResult,
			PositiveSamples:  in.PositiveSamples,
			ConfirmatoryTest: in.ConfirmatoryTest,
			ApprovalStatus:   in.ApprovalStatus,
			SpecialistName:   in.SpecialistName,
			Notes:            in.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if created.TestDate == "" {
			created.TestDate = r.opts.today()
		}
		if created.ApprovalStatus == model.ApprovalApproved {
			created.ApprovedAt = &now
		}
		created = cloneTestResult(created)
		doc.TestResults = append(doc.TestResults, created)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	out := cloneTestResult(created)
	return &out, nil
}

func (r *LabRepository) UpdateTestResult(ctx context.Context, id string, patch model.TestResultPatch) (*model.TestResult, error) {
	if patch.ApprovalStatus != nil && !model.ValidApprovalStatus(*patch.ApprovalStatus) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidApprovalStatus, *patch.ApprovalStatus)
	}
	if patch.PositiveSamples != nil && *patch.PositiveSamples < 0 {
		return nil, ErrNegativeQuantity
	}

	var updated *model.TestResult
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		i := indexOf(doc.TestResults, func(t model.TestResult) bool { return t.ID == id })
		if i < 0 {
			return false, nil
		}
		t := cloneTestResult(doc.TestResults[i])
		setString(&t.TestDate, patch.TestDate)
		setString(&t.TestMethod, patch.TestMethod)
		setString(&t.TestResult, patch.TestResult)
		setInt(&t.PositiveSamples, patch.PositiveSamples)
		setString(&t.SpecialistName, patch.SpecialistName)
		setString(&t.Notes, patch.Notes)
		if patch.ConfirmatoryTest != nil {
			c := *patch.ConfirmatoryTest
			t.ConfirmatoryTest = &c
		}
		if patch.ApprovalStatus != nil {
			applyStatus(&t, *patch.ApprovalStatus, "", "", r.opts.timestamp())
		}
		t.UpdatedAt = r.opts.timestamp()
		doc.TestResults[i] = t
		out := cloneTestResult(t)
		updated = &out
		return true, nil
	})
	return updated, err
}

// SetTestResultStatus moves a result through the approval workflow. Approval
// stamps the approver and time; rejection keeps the reason.
func (r *LabRepository) SetTestResultStatus(ctx context.Context, id, status, actor, reason string) (*model.TestResult, error) {
	if !model.ValidApprovalStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidApprovalStatus, status)
	}
	var updated *model.TestResult
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		i := indexOf(doc.TestResults, func(t model.TestResult) bool { return t.ID == id })
		if i < 0 {
			return false, nil
		}
		now := r.opts.timestamp()
		t := cloneTestResult(doc.TestResults[i])
		applyStatus(&t, status, actor, reason, now)
		t.UpdatedAt = now
		doc.TestResults[i] = t
		out := cloneTestResult(t)
		updated = &out
		return true, nil
	})
	return updated, err
}

func applyStatus(t *model.TestResult, status, actor, reason string, now time.Time) {
	if t.ApprovalStatus == status && actor == "" && reason == "" {
		return
	}
	t.ApprovalStatus = status
	switch status {
	case model.ApprovalApproved:
		t.ApprovedBy = actor
		t.ApprovedAt = &now
		t.RejectionReason = ""
	case model.ApprovalRejected:
		t.RejectionReason = reason
		t.ApprovedBy = ""
		t.ApprovedAt = nil
	default:
		t.ApprovedBy = ""
		t.ApprovedAt = nil
		t.RejectionReason = ""
	}
}

func (r *LabRepository) DeleteTestResult(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		removed = removeWhere(&doc.TestResults, func(t model.TestResult) bool { return t.ID == id }) > 0
		return removed, nil
	})
	return removed && err == nil, err
}
