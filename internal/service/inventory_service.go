package service

import (
	"context"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/repository"
	ws "vetlab/internal/websocket"
)

// Inventory event names broadcast after a write.
const (
	InventoryEventCreated   = "item_created"
	InventoryEventUpdated   = "item_updated"
	InventoryEventDeleted   = "item_deleted"
	InventoryEventAdded     = "stock_added"
	InventoryEventWithdrawn = "stock_withdrawn"
)

// InventoryEvent is the payload of an inventory_changed broadcast.
type InventoryEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// InventoryService caches the item list and tells clients about stock moves.
type InventoryService struct {
	store repository.InventoryRepository
	hub   Broadcaster
	items *listCache[model.InventoryItem]
}

func NewInventoryService(store repository.InventoryRepository, hub Broadcaster, ttl time.Duration, now func() time.Time) *InventoryService {
	return &InventoryService{
		store: store,
		hub:   orNop(hub),
		items: newListCache[model.InventoryItem]("inventory", ttl, now),
	}
}

// GetItems serves the cached list while it is fresh.
func (s *InventoryService) GetItems(ctx context.Context) ([]model.InventoryItem, error) {
	return s.items.get(ctx, false, s.store.GetInventoryItems)
}

// Refetch bypasses the cache and reloads it.
func (s *InventoryService) Refetch(ctx context.Context) ([]model.InventoryItem, error) {
	return s.items.get(ctx, true, s.store.GetInventoryItems)
}

func (s *InventoryService) GetItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	return s.store.GetInventoryItem(ctx, id)
}

func (s *InventoryService) GetTransactions(ctx context.Context, itemID string) ([]model.InventoryTransaction, error) {
	return s.store.GetInventoryTransactions(ctx, itemID)
}

func (s *InventoryService) changed(event string, data any) {
	s.items.invalidate()
	s.hub.Broadcast(model.DomainLab, ws.EventInventory, InventoryEvent{Event: event, Data: data})
}

func (s *InventoryService) CreateItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	item, err := s.store.CreateInventoryItem(ctx, in)
	if err != nil {
		return nil, err
	}
	s.changed(InventoryEventCreated, item)
	return item, nil
}

func (s *InventoryService) UpdateItem(ctx context.Context, id string, patch model.InventoryItemPatch) (*model.InventoryItem, error) {
	item, err := s.store.UpdateInventoryItem(ctx, id, patch)
	if err != nil || item == nil {
		return item, err
	}
	s.changed(InventoryEventUpdated, item)
	return item, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteInventoryItem(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.changed(InventoryEventDeleted, map[string]string{"id": id})
	return true, nil
}

func (s *InventoryService) AddStock(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	tx, err := s.store.AddStock(ctx, itemID, mv)
	if err != nil {
		return nil, err
	}
	s.changed(InventoryEventAdded, tx)
	return tx, nil
}

// Withdraw rejects quantities above the on-hand stock; the item is left unchanged then.
func (s *InventoryService) Withdraw(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	tx, err := s.store.WithdrawItem(ctx, itemID, mv)
	if err != nil {
		return nil, err
	}
	s.changed(InventoryEventWithdrawn, tx)
	return tx, nil
}
