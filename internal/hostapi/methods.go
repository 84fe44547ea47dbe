package hostapi

import (
	"context"

	"vetlab/internal/model"
	"vetlab/internal/repository"
)

// The host names its operations in camelCase; the Go methods below map onto
// them one to one.

var (
	_ repository.LabStore = (*Client)(nil)
	_ repository.VetStore = (*Client)(nil)
)

// --- saved samples ---

func (c *Client) GetSavedSamples(ctx context.Context) ([]model.SavedSample, error) {
	return invoke[[]model.SavedSample](ctx, c, "getSavedSamples")
}

func (c *Client) GetSavedSample(ctx context.Context, id string) (*model.SavedSample, error) {
	return invoke[*model.SavedSample](ctx, c, "getSavedSample", id)
}

func (c *Client) CreateSavedSample(ctx context.Context, in model.SavedSampleInput) (*model.SavedSample, error) {
	return invoke[*model.SavedSample](ctx, c, "createSavedSample", in)
}

func (c *Client) UpdateSavedSample(ctx context.Context, id string, patch model.SavedSamplePatch) (*model.SavedSample, error) {
	return invoke[*model.SavedSample](ctx, c, "updateSavedSample", id, patch)
}

func (c *Client) DeleteSavedSample(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteSavedSample", id)
}

func (c *Client) GetNextProcedureNumber(ctx context.Context) (string, error) {
	return invoke[string](ctx, c, "getNextProcedureNumber")
}

// --- samples ---

func (c *Client) GetSamples(ctx context.Context) ([]model.Sample, error) {
	return invoke[[]model.Sample](ctx, c, "getSamples")
}

func (c *Client) GetSamplesBySavedSample(ctx context.Context, savedSampleID string) ([]model.Sample, error) {
	return invoke[[]model.Sample](ctx, c, "getSamplesBySavedSample", savedSampleID)
}

func (c *Client) CreateSample(ctx context.Context, in model.SampleInput) (*model.Sample, error) {
	return invoke[*model.Sample](ctx, c, "createSample", in)
}

func (c *Client) UpdateSample(ctx context.Context, id string, patch model.SamplePatch) (*model.Sample, error) {
	return invoke[*model.Sample](ctx, c, "updateSample", id, patch)
}

func (c *Client) DeleteSample(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteSample", id)
}

// --- test results ---

func (c *Client) GetTestResults(ctx context.Context) ([]model.TestResult, error) {
	return invoke[[]model.TestResult](ctx, c, "getTestResults")
}

func (c *Client) GetTestResultsBySample(ctx context.Context, sampleID string) ([]model.TestResult, error) {
	return invoke[[]model.TestResult](ctx, c, "getTestResultsBySample", sampleID)
}

func (c *Client) CreateTestResult(ctx context.Context, in model.TestResultInput) (*model.TestResult, error) {
	return invoke[*model.TestResult](ctx, c, "createTestResult", in)
}

func (c *Client) UpdateTestResult(ctx context.Context, id string, patch model.TestResultPatch) (*model.TestResult, error) {
	return invoke[*model.TestResult](ctx, c, "updateTestResult", id, patch)
}

func (c *Client) DeleteTestResult(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteTestResult", id)
}

func (c *Client) SetTestResultStatus(ctx context.Context, id, status, actor, reason string) (*model.TestResult, error) {
	return invoke[*model.TestResult](ctx, c, "setTestResultStatus", id, status, actor, reason)
}

// --- inventory ---

func (c *Client) GetInventoryItems(ctx context.Context) ([]model.InventoryItem, error) {
	return invoke[[]model.InventoryItem](ctx, c, "getInventoryItems")
}

func (c *Client) GetInventoryItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	return invoke[*model.InventoryItem](ctx, c, "getInventoryItem", id)
}

func (c *Client) CreateInventoryItem(ctx context.Context, in model.InventoryItemInput) (*model.InventoryItem, error) {
	return invoke[*model.InventoryItem](ctx, c, "createInventoryItem", in)
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id string, patch model.InventoryItemPatch) (*model.InventoryItem, error) {
	return invoke[*model.InventoryItem](ctx, c, "updateInventoryItem", id, patch)
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteInventoryItem", id)
}

func (c *Client) GetInventoryTransactions(ctx context.Context, itemID string) ([]model.InventoryTransaction, error) {
	return invoke[[]model.InventoryTransaction](ctx, c, "getInventoryTransactions", itemID)
}

func (c *Client) AddStock(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	return invoke[*model.InventoryTransaction](ctx, c, "addStock", itemID, mv)
}

func (c *Client) WithdrawItem(ctx context.Context, itemID string, mv model.StockMovement) (*model.InventoryTransaction, error) {
	return invoke[*model.InventoryTransaction](ctx, c, "withdrawItem", itemID, mv)
}

// --- users ---

func (c *Client) GetUsers(ctx context.Context) ([]model.User, error) {
	return invoke[[]model.User](ctx, c, "getUsers")
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	return invoke[*model.User](ctx, c, "getUser", id)
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return invoke[*model.User](ctx, c, "getUserByUsername", username)
}

func (c *Client) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	return invoke[*model.User](ctx, c, "createUser", in)
}

func (c *Client) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	return invoke[*model.User](ctx, c, "updateUser", id, patch)
}

func (c *Client) DeleteUser(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteUser", id)
}

func (c *Client) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return invoke[*model.User](ctx, c, "authenticate", username, password)
}

// --- notifications ---

func (c *Client) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	return invoke[[]model.Notification](ctx, c, "getNotifications")
}

func (c *Client) CreateNotification(ctx context.Context, in model.NotificationInput) (*model.Notification, error) {
	return invoke[*model.Notification](ctx, c, "createNotification", in)
}

func (c *Client) ToggleNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	return invoke[*model.Notification](ctx, c, "toggleNotificationRead", id)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	return invoke[int](ctx, c, "markAllNotificationsRead")
}

func (c *Client) DeleteNotification(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteNotification", id)
}

// --- animal shipments ---

func (c *Client) GetAnimalShipments(ctx context.Context) ([]model.AnimalShipment, error) {
	return invoke[[]model.AnimalShipment](ctx, c, "getAnimalShipments")
}

func (c *Client) GetAnimalShipment(ctx context.Context, id string) (*model.AnimalShipment, error) {
	return invoke[*model.AnimalShipment](ctx, c, "getAnimalShipment", id)
}

func (c *Client) CreateAnimalShipment(ctx context.Context, in model.AnimalShipmentInput) (*model.AnimalShipment, error) {
	return invoke[*model.AnimalShipment](ctx, c, "createAnimalShipment", in)
}

func (c *Client) UpdateAnimalShipment(ctx context.Context, id string, patch model.AnimalShipmentPatch) (*model.AnimalShipment, error) {
	return invoke[*model.AnimalShipment](ctx, c, "updateAnimalShipment", id, patch)
}

func (c *Client) DeleteAnimalShipment(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteAnimalShipment", id)
}

func (c *Client) GetNextShipmentNumber(ctx context.Context) (string, error) {
	return invoke[string](ctx, c, "getNextShipmentNumber")
}

// --- quarantine traders ---

func (c *Client) GetTraderEntries(ctx context.Context) ([]model.TraderEntry, error) {
	return invoke[[]model.TraderEntry](ctx, c, "getTraderEntries")
}

func (c *Client) GetTraderEntriesByProcedure(ctx context.Context, procedureNumber string) ([]model.TraderEntry, error) {
	return invoke[[]model.TraderEntry](ctx, c, "getTraderEntriesByProcedure", procedureNumber)
}

func (c *Client) CreateTraderEntry(ctx context.Context, in model.TraderEntryInput) (*model.TraderEntry, error) {
	return invoke[*model.TraderEntry](ctx, c, "createTraderEntry", in)
}

func (c *Client) UpdateTraderEntry(ctx context.Context, id string, patch model.TraderEntryPatch) (*model.TraderEntry, error) {
	return invoke[*model.TraderEntry](ctx, c, "updateTraderEntry", id, patch)
}

func (c *Client) DeleteTraderEntry(ctx context.Context, id string) (bool, error) {
	return invoke[bool](ctx, c, "deleteTraderEntry", id)
}
