// Package repository is the local provider: it owns one in-memory document per
// domain, persists it through a storage.Port and implements every collection
// contract. The interfaces below are shared with the host API delegate.
package repository

import (
	"context"

	"vetlab/internal/model"

	"github.com/shopspring/decimal"
)

// Provider is anything that can serve some of the collection interfaces.
type Provider interface {
	Name() string
}

type SavedSampleRepository interface {
	GetSavedSamples(ctx context.Context) ([]model.SavedSample, error)
	GetSavedSample(ctx context.Context, id string) (*model.SavedSample, error)
	CreateSavedSample(ctx context.Context, in model.SavedSampleInput) (*model.SavedSample, error)
	UpdateSavedSample(ctx context.Context, id string, patch model.SavedSamplePatch) (*model.SavedSample, error)
	DeleteSavedSample(ctx context.Context, id string) (bool, error)
	GetNextProcedureNumber(ctx context.Context) (string, error)
}

type SampleRepository interface {
	GetSamples(ctx context.Context) ([]model.Sample, error)
	GetSamplesBySavedSample(ctx context.Context, savedSampleID string) ([]model.Sample, error)
	CreateSample(ctx context.Context, in model.SampleInput) (*model.Sample, error)
	UpdateSample(ctx context.Context, id string, patch model.SamplePatch) (*model.Sample, error)
	DeleteSample(ctx context.Context, id string) (bool, error)
}

type TestResultRepository interface {
	GetTestResults(ctx context.Context) ([]model.TestResult, error)
	GetTestResultsBySample(ctx context.Context, sampleID string) ([]model.TestResult, error)
	CreateTestResult(ctx context.Context, in model.TestResultInput) (*model.TestResult, error)
	UpdateTestResult(ctx context.Context, id string, patch model.TestResultPatch) (*model.TestResult, error)
	DeleteTestResult(ctx context.Context, id string) (bool, error)
	SetTestResultStatus(ctx context.Context, id, status, actor, reason string) (*model.TestResult, error)
}

type InventoryRepository interface {
	GetInventoryItems(ctx context.Context) ([]model.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id string, patch model.InventoryItemPatch) (*model.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) (bool, error)
	GetInventoryTransactions(ctx context.Context, itemID string) ([]model.InventoryTransaction, error)
	AddStock(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error)
	WithdrawItem(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error)
}

type UserRepository interface {
	GetUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, in model.UserInput) (*model.User, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

type NotificationRepository interface {
	GetNotifications(ctx context.Context) ([]model.Notification, error)
	CreateNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error)
	ToggleNotificationRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) (int, error)
	DeleteNotification(ctx context.Context, id string) (bool, error)
}

type ShipmentRepository interface {
	GetAnimalShipments(ctx context.Context) ([]model.AnimalShipment, error)
	GetAnimalShipment(ctx context.Context, id string) (*model.AnimalShipment, error)
	CreateAnimalShipment(ctx context.Context, in model.AnimalShipmentInput) (*model.AnimalShipment, error)
	UpdateAnimalShipment(ctx context.Context, id string, patch model.AnimalShipmentPatch) (*model.AnimalShipment, error)
	DeleteAnimalShipment(ctx context.Context, id string) (bool, error)
	GetNextShipmentNumber(ctx context.Context) (string, error)
}

type TraderRepository interface {
	GetTraderEntries(ctx context.Context) ([]model.TraderEntry, error)
	GetTraderEntriesByProcedure(ctx context.Context, procedureNumber string) ([]model.TraderEntry, error)
	CreateTraderEntry(ctx context.Context, in model.TraderEntryInput) (*model.TraderEntry, error)
	UpdateTraderEntry(ctx context.Context, id string, patch model.TraderEntryPatch) (*model.TraderEntry, error)
	DeleteTraderEntry(ctx context.Context, id string) (bool, error)
}

// LabStore is the full laboratory contract served by the local repository.
type LabStore interface {
	Provider
	SavedSampleRepository
	SampleRepository
	TestResultRepository
	InventoryRepository
	UserRepository
	NotificationRepository
}

// VetStore is the full veterinary contract served by the local repository.
type VetStore interface {
	Provider
	ShipmentRepository
	TraderRepository
	UserRepository
	NotificationRepository
}

var (
	_ LabStore = (*LabRepository)(nil)
	_ VetStore = (*VetRepository)(nil)
)

// setString applies an optional string patch field.
func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDecimalPtr(dst **decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		c := *v
		*dst = &c
	}
}
