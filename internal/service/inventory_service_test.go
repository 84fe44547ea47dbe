package service

import (
	"context"
	"testing"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/repository"
	ws "vetlab/internal/websocket"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingInventory counts list loads reaching the store.
type countingInventory struct {
	repository.InventoryRepository
	loads int
}

func (c *countingInventory) GetInventoryItems(ctx context.Context) ([]model.InventoryItem, error) {
	c.loads++
	return c.InventoryRepository.GetInventoryItems(ctx)
}

func TestInventoryCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := &countingInventory{InventoryRepository: f.lab}
	clock := &manualClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	hub := &recorder{}
	svc := NewInventoryService(store, hub, 30*time.Second, clock.Now)

	items, err := svc.GetItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = svc.GetItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)

	item, err := svc.CreateItem(ctx, model.InventoryItemInput{Name: "ELISA kit", Type: model.InventoryTypeDiagnostic, Quantity: decimal.NewFromInt(10), Unit: model.UnitKit})
	require.NoError(t, err)
	items, err = svc.GetItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 2, store.loads)

	clock.Advance(31 * time.Second)
	_, err = svc.GetItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, store.loads)

	_, err = svc.Refetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, store.loads)

	events := hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.DomainLab, events[0].domain)
	assert.Equal(t, ws.EventInventory, events[0].name)
	assert.Equal(t, InventoryEventCreated, events[0].data.(InventoryEvent).Event)
	assert.Equal(t, item.ID, events[0].data.(InventoryEvent).Data.(*model.InventoryItem).ID)
}

func TestInventoryWithdrawal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := &recorder{}
	svc := NewInventoryService(f.lab, hub, time.Minute, nil)

	item, err := svc.CreateItem(ctx, model.InventoryItemInput{Name: "Gloves", Type: model.InventoryTypeTools, Quantity: decimal.NewFromInt(4), Unit: model.UnitBox})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, item.ID, model.StockMovement{Quantity: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)
	assert.Len(t, hub.Events(), 1)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(4)))

	tx, err := svc.Withdraw(ctx, item.ID, model.StockMovement{Quantity: decimal.RequireFromString("1.5"), SpecialistName: "هدى"})
	require.NoError(t, err)
	assert.Equal(t, model.TxTypeWithdrawal, tx.Type)
	_, err = svc.AddStock(ctx, item.ID, model.StockMovement{Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)

	items, err := svc.GetItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "4.5", items[0].Quantity.String())

	txs, err := svc.GetTransactions(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	ok, err := svc.DeleteItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.DeleteItem(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, hub.Events(), 4)
}
