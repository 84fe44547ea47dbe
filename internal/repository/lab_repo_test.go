package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// stepClock advances one second per call so created_at values are distinct.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock(start time.Time) *stepClock { return &stepClock{now: start} }

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type failingPort struct {
	storage.Port
	failSave bool
}

func (p *failingPort) Save(ctx context.Context, key string, data []byte) error {
	if p.failSave {
		return errors.New("disk full")
	}
	return p.Port.Save(ctx, key, data)
}

func newTestLab(t *testing.T) (*LabRepository, storage.Port, *stepClock) {
	t.Helper()
	port := storage.NewMemory()
	clock := newStepClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	return NewLabRepository(port, WithClock(clock.Now), WithBcryptCost(bcrypt.MinCost)), port, clock
}

func mustProcedure(t *testing.T, r *LabRepository, client string) *model.SavedSample {
	t.Helper()
	s, err := r.CreateSavedSample(context.Background(), model.SavedSampleInput{ClientName: client, ReceptionDate: "2025-03-01"})
	require.NoError(t, err)
	return s
}

func mustSample(t *testing.T, r *LabRepository, parentID, number string) *model.Sample {
	t.Helper()
	s, err := r.CreateSample(context.Background(), model.SampleInput{
		SavedSampleID: parentID, SampleNumber: number, Department: "virology", RequestedTest: "PCR", SampleCount: 1,
	})
	require.NoError(t, err)
	return s
}

func TestCreateSavedSampleAssignsNumbers(t *testing.T) {
	ctx := context.Background()
	r, _, clock := newTestLab(t)

	first := mustProcedure(t, r, "Client A")
	assert.Equal(t, "0001-2025-L", first.InternalProcedureNumber)
	assert.NotEmpty(t, first.ID)

	previous := 1
	for i := 0; i < 5; i++ {
		s := mustProcedure(t, r, fmt.Sprintf("Client %d", i))
		seq, year, _, ok := model.ParseProcedureNumber(s.InternalProcedureNumber)
		require.True(t, ok)
		assert.Equal(t, 2025, year)
		assert.Greater(t, seq, previous)
		previous = seq
	}

	next, err := r.GetNextProcedureNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0007-2025-L", next)

	clock.Set(time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC))
	rolled := mustProcedure(t, r, "New Year")
	assert.Equal(t, "0001-2026-L", rolled.InternalProcedureNumber)
}

func TestCreateSavedSampleRejectsDuplicateNumber(t *testing.T) {
	r, _, _ := newTestLab(t)
	ctx := context.Background()

	_, err := r.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "A", InternalProcedureNumber: "0042-2025-L"})
	require.NoError(t, err)
	_, err = r.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "B", InternalProcedureNumber: "0042-2025-L"})
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	next, err := r.GetNextProcedureNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0043-2025-L", next)
}

func TestDeleteSavedSampleCascades(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)

	keep := mustProcedure(t, r, "Keep")
	keepSample := mustSample(t, r, keep.ID, "K1")

	parent := mustProcedure(t, r, "Drop")
	a := mustSample(t, r, parent.ID, "S1")
	b := mustSample(t, r, parent.ID, "S2")
	for _, s := range []*model.Sample{a, b, keepSample} {
		_, err := r.CreateTestResult(ctx, model.TestResultInput{SampleID: s.ID, TestResult: "negative"})
		require.NoError(t, err)
	}

	ok, err := r.DeleteSavedSample(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	samples, err := r.GetSamples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, keepSample.ID, samples[0].ID)

	results, err := r.GetTestResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, keepSample.ID, results[0].SampleID)

	ok, err = r.DeleteSavedSample(ctx, parent.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteSampleCascadesResults(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)
	p := mustProcedure(t, r, "A")
	s := mustSample(t, r, p.ID, "S1")
	_, err := r.CreateTestResult(ctx, model.TestResultInput{SampleID: s.ID})
	require.NoError(t, err)

	ok, err := r.DeleteSample(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	results, err := r.GetTestResultsBySample(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCreateSampleRequiresParent(t *testing.T) {
	r, _, _ := newTestLab(t)
	_, err := r.CreateSample(context.Background(), model.SampleInput{SavedSampleID: "missing", Department: "d", RequestedTest: "t"})
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = r.CreateSample(context.Background(), model.SampleInput{SavedSampleID: "x"})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestTestResultWorkflow(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)
	p := mustProcedure(t, r, "A")
	s := mustSample(t, r, p.ID, "S1")

	res, err := r.CreateTestResult(ctx, model.TestResultInput{
		SampleID:         s.ID,
		TestResult:       "positive",
		ConfirmatoryTest: &model.ConfirmatoryTest{TestMethod: "ELISA", PositiveSamples: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalDraft, res.ApprovalStatus)
	assert.Equal(t, "2025-03-01", res.TestDate)

	approved, err := r.SetTestResultStatus(ctx, res.ID, model.ApprovalApproved, "manager", "")
	require.NoError(t, err)
	assert.Equal(t, "manager", approved.ApprovedBy)
	require.NotNil(t, approved.ApprovedAt)

	rejected, err := r.SetTestResultStatus(ctx, res.ID, model.ApprovalRejected, "manager", "contaminated")
	require.NoError(t, err)
	assert.Equal(t, "contaminated", rejected.RejectionReason)
	assert.Nil(t, rejected.ApprovedAt)

	_, err = r.SetTestResultStatus(ctx, res.ID, "done", "", "")
	assert.ErrorIs(t, err, ErrInvalidApprovalStatus)

	missingResult, err := r.SetTestResultStatus(ctx, "nope", model.ApprovalApproved, "m", "")
	require.NoError(t, err)
	assert.Nil(t, missingResult)

	// returned values must not alias the stored document
	approved.ConfirmatoryTest.TestMethod = "mutated"
	stored, err := r.GetTestResultsBySample(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "ELISA", stored[0].ConfirmatoryTest.TestMethod)
}

func TestUpdateNotFoundReturnsNil(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)
	name := "x"

	ss, err := r.UpdateSavedSample(ctx, "nope", model.SavedSamplePatch{ClientName: &name})
	require.NoError(t, err)
	assert.Nil(t, ss)

	it, err := r.UpdateInventoryItem(ctx, "nope", model.InventoryItemPatch{Name: &name})
	require.NoError(t, err)
	assert.Nil(t, it)

	ok, err := r.DeleteInventoryItem(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetSavedSamplesNewestFirst(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)
	mustProcedure(t, r, "first")
	mustProcedure(t, r, "second")
	mustProcedure(t, r, "third")

	list, err := r.GetSavedSamples(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].ClientName)
	assert.Equal(t, "first", list[2].ClientName)
}

func TestWithdrawItemRejectsOverdraw(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)

	item, err := r.CreateInventoryItem(ctx, model.InventoryItemInput{
		Name: "PCR kit", Quantity: decimal.NewFromInt(10), Type: model.InventoryTypeDiagnostic, Unit: model.UnitKit,
	})
	require.NoError(t, err)

	_, err = r.WithdrawItem(ctx, item.ID, model.StockMovement{Quantity: decimal.NewFromInt(11)})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = r.WithdrawItem(ctx, item.ID, model.StockMovement{Quantity: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	got, err := r.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))

	tx, err := r.WithdrawItem(ctx, item.ID, model.StockMovement{Quantity: decimal.NewFromInt(4), SpecialistName: "Huda"})
	require.NoError(t, err)
	assert.Equal(t, model.TxTypeWithdrawal, tx.Type)
	assert.Equal(t, "2025-03-01", tx.TransactionDate)

	_, err = r.AddStock(ctx, item.ID, model.StockMovement{Quantity: decimal.RequireFromString("2.5")})
	require.NoError(t, err)

	got, err = r.GetInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.5", got.Quantity.String())

	txs, err := r.GetInventoryTransactions(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 2)

	_, err = r.WithdrawItem(ctx, "missing", model.StockMovement{Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestInventoryValidationAndCascade(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)

	_, err := r.CreateInventoryItem(ctx, model.InventoryItemInput{Name: "x", Type: "consumable"})
	assert.ErrorIs(t, err, ErrInvalidInventoryType)
	_, err = r.CreateInventoryItem(ctx, model.InventoryItemInput{Name: "x", Type: model.InventoryTypeTools, Quantity: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	item, err := r.CreateInventoryItem(ctx, model.InventoryItemInput{Name: "Pipette", Type: model.InventoryTypeTools, Quantity: decimal.NewFromInt(3)})
	require.NoError(t, err)
	_, err = r.AddStock(ctx, item.ID, model.StockMovement{Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	ok, err := r.DeleteInventoryItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	txs, err := r.GetInventoryTransactions(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)

	u, err := r.CreateUser(ctx, model.UserInput{Name: "Sara", Username: "sara", Password: "secret", Role: model.RoleLabSpecialist})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.True(t, u.IsActive)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NotEqual(t, "secret", u.Password)

	users, err := r.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, *u, users[0])

	name := "X"
	updated, err := r.UpdateUser(ctx, u.ID, model.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, u.Username, updated.Username)
	assert.Equal(t, u.Role, updated.Role)
	assert.Equal(t, u.Password, updated.Password)
	assert.Equal(t, u.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(u.UpdatedAt))
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)

	admin, err := r.CreateUser(ctx, model.UserInput{Name: "Admin", Username: "admin", Password: "pw12", Role: model.RoleProgramManager})
	require.NoError(t, err)

	_, err = r.CreateUser(ctx, model.UserInput{Name: "Dup", Username: "Admin", Password: "pw12", Role: model.RoleLabManager})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.Equal(t, "اسم المستخدم موجود مسبقاً", Message(err))

	_, err = r.CreateUser(ctx, model.UserInput{Name: "PM2", Username: "pm2", Password: "pw12", Role: model.RoleProgramManager})
	assert.ErrorIs(t, err, ErrProgramManagerExists)

	other, err := r.CreateUser(ctx, model.UserInput{Name: "Lab", Username: "lab", Password: "pw12", Role: model.RoleLabManager})
	require.NoError(t, err)

	role := model.RoleProgramManager
	_, err = r.UpdateUser(ctx, other.ID, model.UserPatch{Role: &role})
	assert.ErrorIs(t, err, ErrProgramManagerExists)

	username := "admin"
	_, err = r.UpdateUser(ctx, other.ID, model.UserPatch{Username: &username})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	// saving a user with its own values is not a conflict
	_, err = r.UpdateUser(ctx, admin.ID, model.UserPatch{Username: &username, Role: &role})
	assert.NoError(t, err)

	vetRole := model.RoleVeterinarian
	_, err = r.UpdateUser(ctx, other.ID, model.UserPatch{Role: &vetRole})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	r, port, _ := newTestLab(t)

	_, err := r.CreateUser(ctx, model.UserInput{Name: "Sara", Username: "sara", Password: "secret", Role: model.RoleLabSpecialist})
	require.NoError(t, err)
	inactive := false
	_, err = r.CreateUser(ctx, model.UserInput{Name: "Old", Username: "old", Password: "secret", Role: model.RoleLabSpecialist, IsActive: &inactive})
	require.NoError(t, err)

	u, err := r.Authenticate(ctx, "sara", "secret")
	require.NoError(t, err)
	require.NotNil(t, u)

	u, err = r.Authenticate(ctx, "sara", "wrong")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = r.Authenticate(ctx, "old", "secret")
	require.NoError(t, err)
	assert.Nil(t, u)

	// legacy plaintext passwords are accepted then upgraded
	legacy := model.NewLabDocument()
	legacy.Users = append(legacy.Users, model.User{ID: "u1", Name: "L", Username: "legacy", Password: "plain", Role: model.RoleLabManager, IsActive: true})
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, port.Save(ctx, model.LabDocumentKey, raw))
	require.NoError(t, r.Reload(ctx))

	u, err = r.Authenticate(ctx, "legacy", "plain")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, isBcryptHash(u.Password))

	stored, err := r.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("plain")))
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)

	n, err := r.CreateNotification(ctx, model.NotificationInput{Title: "Low stock", Type: "bogus"})
	require.NoError(t, err)
	assert.False(t, n.Read)
	assert.Equal(t, model.NotificationInfo, n.Type)
	_, err = r.CreateNotification(ctx, model.NotificationInput{Title: "Second", Type: model.NotificationWarning})
	require.NoError(t, err)

	toggled, err := r.ToggleNotificationRead(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Read)

	count, err := r.MarkAllNotificationsRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ok, err := r.DeleteNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := r.GetNotifications(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestMalformedDocumentFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	require.NoError(t, port.Save(ctx, model.LabDocumentKey, []byte("{not json")))

	r := NewLabRepository(port)
	samples, err := r.GetSavedSamples(ctx)
	require.NoError(t, err)
	assert.Empty(t, samples)

	backup, err := port.Load(ctx, model.LabDocumentKey+"_corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(backup))
}

func TestMissingCollectionsAreNormalized(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	require.NoError(t, port.Save(ctx, model.LabDocumentKey, []byte(`{"users":[]}`)))

	r := NewLabRepository(port)
	items, err := r.GetInventoryItems(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestFailedSaveRollsBack(t *testing.T) {
	ctx := context.Background()
	port := &failingPort{Port: storage.NewMemory()}
	r := NewLabRepository(port)

	p, err := r.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "A"})
	require.NoError(t, err)

	port.failSave = true
	_, err = r.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "B"})
	require.Error(t, err)
	ok, err := r.DeleteSavedSample(ctx, p.ID)
	require.Error(t, err)
	assert.False(t, ok)

	list, err := r.GetSavedSamples(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	r, _, _ := newTestLab(t)
	mustProcedure(t, r, "A")

	data, err := r.Export(ctx)
	require.NoError(t, err)

	other := NewLabRepository(storage.NewMemory())
	require.NoError(t, other.Import(ctx, data))
	list, err := other.GetSavedSamples(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].ClientName)

	assert.Error(t, other.Import(ctx, []byte("[")))
	list, err = other.GetSavedSamples(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPersistedShapeUsesDocumentKeys(t *testing.T) {
	ctx := context.Background()
	r, port, _ := newTestLab(t)
	mustProcedure(t, r, "A")

	raw, err := port.Load(ctx, model.LabDocumentKey)
	require.NoError(t, err)
	var shape map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &shape))
	for _, key := range []string{"saved_samples", "samples", "test_results", "inventory_items", "inventory_transactions", "users", "notifications"} {
		assert.Contains(t, shape, key)
	}
}
