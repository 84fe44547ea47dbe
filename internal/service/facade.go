package service

import (
	"context"
	"log/slog"

	"vetlab/internal/model"
	"vetlab/internal/repository"
)

// peopleFacade routes the user and notification collections shared by both
// domains.
type peopleFacade struct {
	chain *chain
	users repository.UserRepository
	notes repository.NotificationRepository
}

// LabFacade is the laboratory storage facade: every operation goes through
// the delegates first and the local repository last.
type LabFacade struct {
	peopleFacade
	local *repository.LabRepository
}

// NewLabFacade wires the local repository behind the given delegates.
func NewLabFacade(local *repository.LabRepository, logger *slog.Logger, delegates ...repository.Provider) *LabFacade {
	c := newChain(logger, delegates)
	return &LabFacade{
		peopleFacade: peopleFacade{chain: c, users: local, notes: local},
		local:        local,
	}
}

func (f *LabFacade) Name() string { return "facade" }

// Local exposes the local repository for maintenance operations.
func (f *LabFacade) Local() *repository.LabRepository { return f.local }

// VetFacade is the veterinary storage facade.
type VetFacade struct {
	peopleFacade
	local *repository.VetRepository
}

func NewVetFacade(local *repository.VetRepository, logger *slog.Logger, delegates ...repository.Provider) *VetFacade {
	c := newChain(logger, delegates)
	return &VetFacade{
		peopleFacade: peopleFacade{chain: c, users: local, notes: local},
		local:        local,
	}
}

func (f *VetFacade) Name() string { return "facade" }

func (f *VetFacade) Local() *repository.VetRepository { return f.local }

var (
	_ repository.LabStore = (*LabFacade)(nil)
	_ repository.VetStore = (*VetFacade)(nil)
)

// --- procedures ---

func (f *LabFacade) GetSavedSamples(ctx context.Context) ([]model.SavedSample, error) {
	return run[repository.SavedSampleRepository](ctx, f.chain, f.local, "GetSavedSamples", func(r repository.SavedSampleRepository) ([]model.SavedSample, error) {
		return r.GetSavedSamples(ctx)
	})
}

func (f *LabFacade) GetSavedSample(ctx context.Context, id string) (*model.SavedSample, error) {
	return run[repository.SavedSampleRepository](ctx, f.chain, f.local, "GetSavedSample", func(r repository.SavedSampleRepository) (*model.SavedSample, error) {
		return r.GetSavedSample(ctx, id)
	})
}

func (f *LabFacade) CreateSavedSample(ctx context.Context, in model.SavedSampleInput) (*model.SavedSample, error) {
	return run[repository.SavedSampleRepository](ctx, f.chain, f.local, "CreateSavedSample", func(r repository.SavedSampleRepository) (*model.SavedSample, error) {
		return r.CreateSavedSample(ctx, in)
	})
}

func (f *LabFacade) UpdateSavedSample(ctx context.Context, id string, patch model.SavedSamplePatch) (*model.SavedSample, error) {
	return run[repository.SavedSampleRepository](ctx, f.chain, f.local, "UpdateSavedSample", func(r repository.SavedSampleRepository) (*model.SavedSample, error) {
		return r.UpdateSavedSample(ctx, id, patch)
	})
}

func (f *LabFacade) DeleteSavedSample(ctx context.Context, id string) (bool, error) {
	return run[repository.SavedSampleRepository](ctx, f.chain, f.local, "DeleteSavedSample", func(r repository.SavedSampleRepository) (bool, error) {
		return r.DeleteSavedSample(ctx, id)
	})
}

func (f *LabFacade) GetNextProcedureNumber(ctx context.Context) (string, error) {
	return run[repository.SavedSampleRepository](ctx, f.chain, f.local, "GetNextProcedureNumber", func(r repository.SavedSampleRepository) (string, error) {
		return r.GetNextProcedureNumber(ctx)
	})
}

// --- samples ---

func (f *LabFacade) GetSamples(ctx context.Context) ([]model.Sample, error) {
	return run[repository.SampleRepository](ctx, f.chain, f.local, "GetSamples", func(r repository.SampleRepository) ([]model.Sample, error) {
		return r.GetSamples(ctx)
	})
}

func (f *LabFacade) GetSamplesBySavedSample(ctx context.Context, savedSampleID string) ([]model.Sample, error) {
	return run[repository.SampleRepository](ctx, f.chain, f.local, "GetSamplesBySavedSample", func(r repository.SampleRepository) ([]model.Sample, error) {
		return r.GetSamplesBySavedSample(ctx, savedSampleID)
	})
}

func (f *LabFacade) CreateSample(ctx context.Context, in model.SampleInput) (*model.Sample, error) {
	return run[repository.SampleRepository](ctx, f.chain, f.local, "CreateSample", func(r repository.SampleRepository) (*model.Sample, error) {
		return r.CreateSample(ctx, in)
	})
}

func (f *LabFacade) UpdateSample(ctx context.Context, id string, patch model.SamplePatch) (*model.Sample, error) {
	return run[repository.SampleRepository](ctx, f.chain, f.local, "UpdateSample", func(r repository.SampleRepository) (*model.Sample, error) {
		return r.UpdateSample(ctx, id, patch)
	})
}

func (f *LabFacade) DeleteSample(ctx context.Context, id string) (bool, error) {
	return run[repository.SampleRepository](ctx, f.chain, f.local, "DeleteSample", func(r repository.SampleRepository) (bool, error) {
		return r.DeleteSample(ctx, id)
	})
}

// --- test results ---

func (f *LabFacade) GetTestResults(ctx context.Context) ([]model.TestResult, error) {
	return run[repository.TestResultRepository](ctx, f.chain, f.local, "GetTestResults", func(r repository.TestResultRepository) ([]model.TestResult, error) {
		return r.GetTestResults(ctx)
	})
}

func (f *LabFacade) GetTestResultsBySample(ctx context.Context, sampleID string) ([]model.TestResult, error) {
	return run[repository.TestResultRepository](ctx, f.chain, f.local, "GetTestResultsBySample", func(r repository.TestResultRepository) ([]model.TestResult, error) {
		return r.GetTestResultsBySample(ctx, sampleID)
	})
}

func (f *LabFacade) CreateTestResult(ctx context.Context, in model.TestResultInput) (*model.TestResult, error) {
	return run[repository.TestResultRepository](ctx, f.chain, f.local, "CreateTestResult", func(r repository.TestResultRepository) (*model.TestResult, error) {
		return r.CreateTestResult(ctx, in)
	})
}

func (f *LabFacade) UpdateTestResult(ctx context.Context, id string, patch model.TestResultPatch) (*model.TestResult, error) {
	return run[repository.TestResultRepository](ctx, f.chain, f.local, "UpdateTestResult", func(r repository.TestResultRepository) (*model.TestResult, error) {
		return r.UpdateTestResult(ctx, id, patch)
	})
}

func (f *LabFacade) DeleteTestResult(ctx context.Context, id string) (bool, error) {
	return run[repository.TestResultRepository](ctx, f.chain, f.local, "DeleteTestResult", func(r repository.TestResultRepository) (bool, error) {
		return r.DeleteTestResult(ctx, id)
	})
}

func (f *LabFacade) SetTestResultStatus(ctx context.Context, id, status, actor, reason string) (*model.TestResult, error) {
	return run[repository.TestResultRepository](ctx, f.chain, f.local, "SetTestResultStatus", func(r repository.TestResultRepository) (*model.TestResult, error) {
		return r.SetTestResultStatus(ctx, id, status, actor, reason)
	})
}

// --- inventory ---

func (f *LabFacade) GetInventoryItems(ctx context.Context) ([]model.InventoryItem, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "GetInventoryItems", func(r repository.InventoryRepository) ([]model.InventoryItem, error) {
		return r.GetInventoryItems(ctx)
	})
}

func (f *LabFacade) GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "GetInventoryItem", func(r repository.InventoryRepository) (*model.InventoryItem, error) {
		return r.GetInventoryItem(ctx, id)
	})
}

func (f *LabFacade) CreateInventoryItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "CreateInventoryItem", func(r repository.InventoryRepository) (*model.InventoryItem, error) {
		return r.CreateInventoryItem(ctx, in)
	})
}

func (f *LabFacade) UpdateInventoryItem(ctx context.Context, id string, patch model.InventoryItemPatch) (*model.InventoryItem, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "UpdateInventoryItem", func(r repository.InventoryRepository) (*model.InventoryItem, error) {
		return r.UpdateInventoryItem(ctx, id, patch)
	})
}

func (f *LabFacade) DeleteInventoryItem(ctx context.Context, id string) (bool, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "DeleteInventoryItem", func(r repository.InventoryRepository) (bool, error) {
		return r.DeleteInventoryItem(ctx, id)
	})
}

func (f *LabFacade) GetInventoryTransactions(ctx context.Context, itemID string) ([]model.InventoryTransaction, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "GetInventoryTransactions", func(r repository.InventoryRepository) ([]model.InventoryTransaction, error) {
		return r.GetInventoryTransactions(ctx, itemID)
	})
}

func (f *LabFacade) AddStock(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "AddStock", func(r repository.InventoryRepository) (*model.InventoryTransaction, error) {
		return r.AddStock(ctx, itemID, mv)
	})
}

func (f *LabFacade) WithdrawItem(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	return run[repository.InventoryRepository](ctx, f.chain, f.local, "WithdrawItem", func(r repository.InventoryRepository) (*model.InventoryTransaction, error) {
		return r.WithdrawItem(ctx, itemID, mv)
	})
}

// --- animal shipments ---

func (f *VetFacade) GetAnimalShipments(ctx context.Context) ([]model.AnimalShipment, error) {
	return run[repository.ShipmentRepository](ctx, f.chain, f.local, "GetAnimalShipments", func(r repository.ShipmentRepository) ([]model.AnimalShipment, error) {
		return r.GetAnimalShipments(ctx)
	})
}

func (f *VetFacade) GetAnimalShipment(ctx context.Context, id string) (*model.AnimalShipment, error) {
	return run[repository.ShipmentRepository](ctx, f.chain, f.local, "GetAnimalShipment", func(r repository.ShipmentRepository) (*model.AnimalShipment, error) {
		return r.GetAnimalShipment(ctx, id)
	})
}

func (f *VetFacade) CreateAnimalShipment(ctx context.Context, in model.AnimalShipmentInput) (*model.AnimalShipment, error) {
	return run[repository.ShipmentRepository](ctx, f.chain, f.local, "CreateAnimalShipment", func(r repository.ShipmentRepository) (*model.AnimalShipment, error) {
		return r.CreateAnimalShipment(ctx, in)
	})
}

func (f *VetFacade) UpdateAnimalShipment(ctx context.Context, id string, patch model.AnimalShipmentPatch) (*model.AnimalShipment, error) {
	return run[repository.ShipmentRepository](ctx, f.chain, f.local, "UpdateAnimalShipment", func(r repository.ShipmentRepository) (*model.AnimalShipment, error) {
		return r.UpdateAnimalShipment(ctx, id, patch)
	})
}

func (f *VetFacade) DeleteAnimalShipment(ctx context.Context, id string) (bool, error) {
	return run[repository.ShipmentRepository](ctx, f.chain, f.local, "DeleteAnimalShipment", func(r repository.ShipmentRepository) (bool, error) {
		return r.DeleteAnimalShipment(ctx, id)
	})
}

func (f *VetFacade) GetNextShipmentNumber(ctx context.Context) (string, error) {
	return run[repository.ShipmentRepository](ctx, f.chain, f.local, "GetNextShipmentNumber", func(r repository.ShipmentRepository) (string, error) {
		return r.GetNextShipmentNumber(ctx)
	})
}

// --- quarantine traders ---

func (f *VetFacade) GetTraderEntries(ctx context.Context) ([]model.TraderEntry, error) {
	return run[repository.TraderRepository](ctx, f.chain, f.local, "GetTraderEntries", func(r repository.TraderRepository) ([]model.TraderEntry, error) {
		return r.GetTraderEntries(ctx)
	})
}

func (f *VetFacade) GetTraderEntriesByProcedure(ctx context.Context, procedureNumber string) ([]model.TraderEntry, error) {
	return run[repository.TraderRepository](ctx, f.chain, f.local, "GetTraderEntriesByProcedure", func(r repository.TraderRepository) ([]model.TraderEntry, error) {
		return r.GetTraderEntriesByProcedure(ctx, procedureNumber)
	})
}

func (f *VetFacade) CreateTraderEntry(ctx context.Context, in model.TraderEntryInput) (*model.TraderEntry, error) {
	return run[repository.TraderRepository](ctx, f.chain, f.local, "CreateTraderEntry", func(r repository.TraderRepository) (*model.TraderEntry, error) {
		return r.CreateTraderEntry(ctx, in)
	})
}

func (f *VetFacade) UpdateTraderEntry(ctx context.Context, id string, patch model.TraderEntryPatch) (*model.TraderEntry, error) {
	return run[repository.TraderRepository](ctx, f.chain, f.local, "UpdateTraderEntry", func(r repository.TraderRepository) (*model.TraderEntry, error) {
		return r.UpdateTraderEntry(ctx, id, patch)
	})
}

func (f *VetFacade) DeleteTraderEntry(ctx context.Context, id string) (bool, error) {
	return run[repository.TraderRepository](ctx, f.chain, f.local, "DeleteTraderEntry", func(r repository.TraderRepository) (bool, error) {
		return r.DeleteTraderEntry(ctx, id)
	})
}

// --- users ---

func (f *peopleFacade) GetUsers(ctx context.Context) ([]model.User, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "GetUsers", func(r repository.UserRepository) ([]model.User, error) {
		return r.GetUsers(ctx)
	})
}

func (f *peopleFacade) GetUser(ctx context.Context, id string) (*model.User, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "GetUser", func(r repository.UserRepository) (*model.User, error) {
		return r.GetUser(ctx, id)
	})
}

func (f *peopleFacade) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "GetUserByUsername", func(r repository.UserRepository) (*model.User, error) {
		return r.GetUserByUsername(ctx, username)
	})
}

func (f *peopleFacade) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "CreateUser", func(r repository.UserRepository) (*model.User, error) {
		return r.CreateUser(ctx, in)
	})
}

func (f *peopleFacade) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "UpdateUser", func(r repository.UserRepository) (*model.User, error) {
		return r.UpdateUser(ctx, id, patch)
	})
}

func (f *peopleFacade) DeleteUser(ctx context.Context, id string) (bool, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "DeleteUser", func(r repository.UserRepository) (bool, error) {
		return r.DeleteUser(ctx, id)
	})
}

func (f *peopleFacade) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return run[repository.UserRepository](ctx, f.chain, f.users, "Authenticate", func(r repository.UserRepository) (*model.User, error) {
		return r.Authenticate(ctx, username, password)
	})
}

// --- notifications ---

func (f *peopleFacade) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	return run[repository.NotificationRepository](ctx, f.chain, f.notes, "GetNotifications", func(r repository.NotificationRepository) ([]model.Notification, error) {
		return r.GetNotifications(ctx)
	})
}

func (f *peopleFacade) CreateNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	return run[repository.NotificationRepository](ctx, f.chain, f.notes, "CreateNotification", func(r repository.NotificationRepository) (*model.Notification, error) {
		return r.CreateNotification(ctx, in)
	})
}

func (f *peopleFacade) ToggleNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	return run[repository.NotificationRepository](ctx, f.chain, f.notes, "ToggleNotificationRead", func(r repository.NotificationRepository) (*model.Notification, error) {
		return r.ToggleNotificationRead(ctx, id)
	})
}

func (f *peopleFacade) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	return run[repository.NotificationRepository](ctx, f.chain, f.notes, "MarkAllNotificationsRead", func(r repository.NotificationRepository) (int, error) {
		return r.MarkAllNotificationsRead(ctx)
	})
}

func (f *peopleFacade) DeleteNotification(ctx context.Context, id string) (bool, error) {
	return run[repository.NotificationRepository](ctx, f.chain, f.notes, "DeleteNotification", func(r repository.NotificationRepository) (bool, error) {
		return r.DeleteNotification(ctx, id)
	})
}
