package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vetlab/internal/model"

	"github.com/shopspring/decimal"
)

func itemCreated(it model.InventoryItem) time.Time { return it.CreatedAt }

func (r *LabRepository) GetInventoryItems(ctx context.Context) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.InventoryItems, nil, cloneInventoryItem, itemCreated)
		return nil
	})
	return out, err
}

func (r *LabRepository) GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	var found *model.InventoryItem
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		if i := indexOf(doc.InventoryItems, func(it model.InventoryItem) bool { return it.ID == id }); i >= 0 {
			it := cloneInventoryItem(doc.InventoryItems[i])
			found = &it
		}
		return nil
	})
	return found, err
}

func validateItemFields(name, typ string, minQty *decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return missing("name")
	}
	if !model.ValidInventoryType(typ) {
		return fmt.Errorf("%w: %q", ErrInvalidInventoryType, typ)
	}
	if minQty != nil && minQty.IsNegative() {
		return ErrNegativeQuantity
	}
	return nil
}

func (r *LabRepository) CreateInventoryItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	if err := validateItemFields(in.Name, in.Type, in.MinQuantity); err != nil {
		return nil, err
	}
	if in.Quantity.IsNegative() {
		return nil, ErrNegativeQuantity
	}

	now := r.opts.timestamp()
	item := model.InventoryItem{
		ID:          r.opts.newID(),
		Name:        strings.TrimSpace(in.Name),
		Quantity:    in.Quantity,
		Type:        in.Type,
		Unit:        in.Unit,
		Section:     in.Section,
		ExpiryDate:  in.ExpiryDate,
		BatchNumber: in.BatchNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	setDecimalPtr(&item.MinQuantity, in.MinQuantity)
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		doc.InventoryItems = append(doc.InventoryItems, cloneInventoryItem(item))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateInventoryItem patches descriptive fields. Quantity only changes
// through AddStock and WithdrawItem.
func (r *LabRepository) UpdateInventoryItem(ctx context.Context, id string, patch model.InventoryItemPatch) (*model.InventoryItem, error) {
	var updated *model.InventoryItem
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		i := indexOf(doc.InventoryItems, func(it model.InventoryItem) bool { return it.ID == id })
		if i < 0 {
			return false, nil
		}
		it := cloneInventoryItem(doc.InventoryItems[i])
		setString(&it.Name, patch.Name)
		setString(&it.Type, patch.Type)
		setString(&it.Unit, patch.Unit)
		setString(&it.Section, patch.Section)
		setString(&it.ExpiryDate, patch.ExpiryDate)
		setString(&it.BatchNumber, patch.BatchNumber)
		setDecimalPtr(&it.MinQuantity, patch.MinQuantity)
		if err := validateItemFields(it.Name, it.Type, it.MinQuantity); err != nil {
			return false, err
		}
		it.UpdatedAt = r.opts.timestamp()
		doc.InventoryItems[i] = it
		out := cloneInventoryItem(it)
		updated = &out
		return true, nil
	})
	return updated, err
}

// DeleteInventoryItem removes the item and its transaction history.
func (r *LabRepository) DeleteInventoryItem(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		if removeWhere(&doc.InventoryItems, func(it model.InventoryItem) bool { return it.ID == id }) == 0 {
			return false, nil
		}
		removeWhere(&doc.InventoryTransactions, func(tx model.InventoryTransaction) bool { return tx.ItemID == id })
		removed = true
		return true, nil
	})
	return removed && err == nil, err
}

// GetInventoryTransactions lists the history of one item, or of all items
// when itemID is empty.
func (r *LabRepository) GetInventoryTransactions(ctx context.Context, itemID string) ([]model.InventoryTransaction, error) {
	var out []model.InventoryTransaction
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.InventoryTransactions,
			func(tx model.InventoryTransaction) bool { return itemID == "" || tx.ItemID == itemID },
			identity[model.InventoryTransaction],
			func(tx model.InventoryTransaction) time.Time { return tx.CreatedAt })
		return nil
	})
	return out, err
}

func (r *LabRepository) AddStock(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	return r.moveStock(ctx, itemID, mv, model.TxTypeAddition)
}

// WithdrawItem records a withdrawal. It is rejected, leaving the quantity
// unchanged, when the amount is not positive or exceeds the stock on hand.
func (r *LabRepository) WithdrawItem(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	return r.moveStock(ctx, itemID, mv, model.TxTypeWithdrawal)
}

func (r *LabRepository) moveStock(ctx context.Context, itemID string, mv model.StockMovement, kind string) (*model.InventoryTransaction, error) {
	if !mv.Quantity.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	var tx model.InventoryTransaction
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		i := indexOf(doc.InventoryItems, func(it model.InventoryItem) bool { return it.ID == itemID })
		if i < 0 {
			return false, ErrItemNotFound
		}
		item := &doc.InventoryItems[i]
		if kind == model.TxTypeWithdrawal {
			if mv.Quantity.GreaterThan(item.Quantity) {
				return false, fmt.Errorf("%w: requested %s, available %s", ErrInsufficientStock, mv.Quantity, item.Quantity)
			}
			item.Quantity = item.Quantity.Sub(mv.Quantity)
		} else {
			item.Quantity = item.Quantity.Add(mv.Quantity)
		}
		now := r.opts.timestamp()
		item.UpdatedAt = now

		tx = model.InventoryTransaction{
			ID:              r.opts.newID(),
			ItemID:          itemID,
			Quantity:        mv.Quantity,
			Type:            kind,
			SpecialistName:  mv.SpecialistName,
			TransactionDate: mv.TransactionDate,
			Notes:           mv.Notes,
			CreatedAt:       now,
		}
		if tx.TransactionDate == "" {
			tx.TransactionDate = r.opts.today()
		}
		doc.InventoryTransactions = append(doc.InventoryTransactions, tx)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
