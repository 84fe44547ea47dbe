package repository

import (
	"context"
	"strings"
	"time"

	"vetlab/internal/model"
)

func traderCreated(t model.TraderEntry) time.Time { return t.CreatedAt }

func (r *VetRepository) GetTraderEntries(ctx context.Context) ([]model.TraderEntry, error) {
	var out []model.TraderEntry
	err := r.store.View(ctx, func(doc *model.VetDocument) error {
		out = collect(doc.QuarantineTraders, nil, cloneTrader, traderCreated)
		return nil
	})
	return out, err
}

func (r *VetRepository) GetTraderEntriesByProcedure(ctx context.Context, procedureNumber string) ([]model.TraderEntry, error) {
	procedureNumber = strings.TrimSpace(procedureNumber)
	var out []model.TraderEntry
	err := r.store.View(ctx, func(doc *model.VetDocument) error {
		out = collect(doc.QuarantineTraders,
			func(t model.TraderEntry) bool { return t.ProcedureNumber == procedureNumber },
			cloneTrader, traderCreated)
		return nil
	})
	return out, err
}

// validateTrader requires every identifying field to be non-blank.
func validateTrader(t model.TraderEntry) error {
	switch {
	case strings.TrimSpace(t.ProcedureNumber) == "":
		return missing("procedure_number")
	case strings.TrimSpace(t.ImporterName) == "":
		return missing("importer_name")
	case strings.TrimSpace(t.PermitNumber) == "":
		return missing("permit_number")
	case strings.TrimSpace(t.StatementNumber) == "":
		return missing("statement_number")
	case t.AnimalCount < 0:
		return ErrNegativeQuantity
	}
	return nil
}

func (r *VetRepository) CreateTraderEntry(ctx context.Context, in model.TraderEntryInput) (*model.TraderEntry, error) {
	now := r.opts.timestamp()
	entry := cloneTrader(model.TraderEntry{
		ID:              r.opts.newID(),
		ProcedureNumber: strings.TrimSpace(in.ProcedureNumber),
		ImporterName:    in.ImporterName,
		PermitNumber:    in.PermitNumber,
		StatementNumber: in.StatementNumber,
		Reasons:         in.Reasons,
		AnimalCount:     in.AnimalCount,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err := validateTrader(entry); err != nil {
		return nil, err
	}
	err := r.store.Update(ctx, func(doc *model.VetDocument) (bool, error) {
		doc.QuarantineTraders = append(doc.QuarantineTraders, cloneTrader(entry))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *VetRepository) UpdateTraderEntry(ctx context.Context, id string, patch model.TraderEntryPatch) (*model.TraderEntry, error) {
	var updated *model.TraderEntry
	err := r.store.Update(ctx, func(doc *model.VetDocument) (bool, error) {
		i := indexOf(doc.QuarantineTraders, func(t model.TraderEntry) bool { return t.ID == id })
		if i < 0 {
			return false, nil
		}
		t := cloneTrader(doc.QuarantineTraders[i])
		setString(&t.ProcedureNumber, patch.ProcedureNumber)
		setString(&t.ImporterName, patch.ImporterName)
		setString(&t.PermitNumber, patch.PermitNumber)
		setString(&t.StatementNumber, patch.StatementNumber)
		setInt(&t.AnimalCount, patch.AnimalCount)
		if patch.Reasons != nil {
			t.Reasons = *patch.Reasons
		}
		t = cloneTrader(t)
		if err := validateTrader(t); err != nil {
			return false, err
		}
		t.UpdatedAt = r.opts.timestamp()
		doc.QuarantineTraders[i] = t
		out := cloneTrader(t)
		updated = &out
		return true, nil
	})
	return updated, err
}

func (r *VetRepository) DeleteTraderEntry(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *model.VetDocument) (bool, error) {
		removed = removeWhere(&doc.QuarantineTraders, func(t model.TraderEntry) bool { return t.ID == id }) > 0
		return removed, nil
	})
	return removed && err == nil, err
}
