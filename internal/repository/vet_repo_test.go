package repository

import (
	"context"
	"testing"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestVet(t *testing.T) *VetRepository {
	t.Helper()
	clock := newStepClock(time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC))
	return NewVetRepository(storage.NewMemory(), WithClock(clock.Now), WithBcryptCost(bcrypt.MinCost))
}

func trader(number string) model.TraderEntryInput {
	return model.TraderEntryInput{
		ProcedureNumber: number,
		ImporterName:    "Al Noor Trading",
		PermitNumber:    "P-1",
		StatementNumber: "S-1",
		Reasons:         []string{"fever"},
	}
}

func TestShipmentNumberingAndQuarantineFlag(t *testing.T) {
	ctx := context.Background()
	r := newTestVet(t)

	s, err := r.CreateAnimalShipment(ctx, model.AnimalShipmentInput{
		ImporterName: "Al Noor",
		Animals: []model.Animal{
			{AnimalType: "sheep", Count: 200, FinalDecision: model.DecisionRelease},
			{AnimalType: "goats", Count: 20, FinalDecision: model.DecisionQuarantine, QuarantineLocations: []string{"Pen 3"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "0001-2025-V", s.ProcedureNumber)
	assert.True(t, s.QuarantineRelevant())

	next, err := r.GetNextShipmentNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0002-2025-V", next)

	s.Animals[1].QuarantineLocations[0] = "mutated"
	stored, err := r.GetAnimalShipment(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pen 3", stored.Animals[1].QuarantineLocations[0])

	released := []model.Animal{{AnimalType: "sheep", Count: 200, FinalDecision: model.DecisionRelease}}
	updated, err := r.UpdateAnimalShipment(ctx, s.ID, model.AnimalShipmentPatch{Animals: &released})
	require.NoError(t, err)
	assert.False(t, updated.QuarantineRelevant())
	assert.Equal(t, s.ProcedureNumber, updated.ProcedureNumber)
}

func TestDeleteShipmentCascadesTraders(t *testing.T) {
	ctx := context.Background()
	r := newTestVet(t)

	a, err := r.CreateAnimalShipment(ctx, model.AnimalShipmentInput{ImporterName: "A"})
	require.NoError(t, err)
	b, err := r.CreateAnimalShipment(ctx, model.AnimalShipmentInput{ImporterName: "B"})
	require.NoError(t, err)

	_, err = r.CreateTraderEntry(ctx, trader(a.ProcedureNumber))
	require.NoError(t, err)
	_, err = r.CreateTraderEntry(ctx, trader(a.ProcedureNumber))
	require.NoError(t, err)
	kept, err := r.CreateTraderEntry(ctx, trader(b.ProcedureNumber))
	require.NoError(t, err)

	ok, err := r.DeleteAnimalShipment(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	entries, err := r.GetTraderEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, kept.ID, entries[0].ID)

	byProc, err := r.GetTraderEntriesByProcedure(ctx, a.ProcedureNumber)
	require.NoError(t, err)
	assert.Empty(t, byProc)
}

func TestRenumberShipmentMovesTraders(t *testing.T) {
	ctx := context.Background()
	r := newTestVet(t)

	s, err := r.CreateAnimalShipment(ctx, model.AnimalShipmentInput{ImporterName: "A"})
	require.NoError(t, err)
	entry, err := r.CreateTraderEntry(ctx, trader(s.ProcedureNumber))
	require.NoError(t, err)

	blank := ""
	_, err = r.UpdateAnimalShipment(ctx, s.ID, model.AnimalShipmentPatch{ProcedureNumber: &blank})
	assert.ErrorIs(t, err, ErrMissingField)
	stored, err := r.GetAnimalShipment(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ProcedureNumber, stored.ProcedureNumber)

	renumbered := "0050-2025-V"
	updated, err := r.UpdateAnimalShipment(ctx, s.ID, model.AnimalShipmentPatch{ProcedureNumber: &renumbered})
	require.NoError(t, err)
	assert.Equal(t, renumbered, updated.ProcedureNumber)

	moved, err := r.GetTraderEntriesByProcedure(ctx, renumbered)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, entry.ID, moved[0].ID)
	stale, err := r.GetTraderEntriesByProcedure(ctx, s.ProcedureNumber)
	require.NoError(t, err)
	assert.Empty(t, stale)

	ok, err := r.DeleteAnimalShipment(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	all, err := r.GetTraderEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTraderEntryRequiresFields(t *testing.T) {
	ctx := context.Background()
	r := newTestVet(t)

	for _, mutate := range []func(*model.TraderEntryInput){
		func(in *model.TraderEntryInput) { in.ProcedureNumber = " " },
		func(in *model.TraderEntryInput) { in.ImporterName = "" },
		func(in *model.TraderEntryInput) { in.PermitNumber = "" },
		func(in *model.TraderEntryInput) { in.StatementNumber = "\t" },
	} {
		in := trader("0001-2025-V")
		mutate(&in)
		_, err := r.CreateTraderEntry(ctx, in)
		assert.ErrorIs(t, err, ErrMissingField)
	}

	entry, err := r.CreateTraderEntry(ctx, trader("0001-2025-V"))
	require.NoError(t, err)
	blank := ""
	_, err = r.UpdateTraderEntry(ctx, entry.ID, model.TraderEntryPatch{PermitNumber: &blank})
	assert.ErrorIs(t, err, ErrMissingField)

	stored, err := r.GetTraderEntries(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "P-1", stored[0].PermitNumber)
}

func TestVetUsersRejectLabRoles(t *testing.T) {
	ctx := context.Background()
	r := newTestVet(t)

	_, err := r.CreateUser(ctx, model.UserInput{Name: "x", Username: "x", Password: "pw12", Role: model.RoleLabSpecialist})
	assert.ErrorIs(t, err, ErrInvalidRole)

	u, err := r.CreateUser(ctx, model.UserInput{Name: "Supervisor", Username: "sup", Password: "pw12", Role: model.RoleQuarantineGeneralSupervisor})
	require.NoError(t, err)
	assert.Equal(t, model.RoleQuarantineGeneralSupervisor, u.Role)
}

func TestProgramManagerUniqueAcrossDomains(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	opts := []Option{WithBcryptCost(bcrypt.MinCost)}
	lab := NewLabRepository(port, opts...)
	vet := NewVetRepository(port, opts...)
	LinkUsers(lab, vet)

	_, err := lab.CreateUser(ctx, model.UserInput{Name: "Admin", Username: "admin", Password: "pw12", Role: model.RoleProgramManager})
	require.NoError(t, err)

	_, err = vet.CreateUser(ctx, model.UserInput{Name: "Admin 2", Username: "admin2", Password: "pw12", Role: model.RoleProgramManager})
	assert.ErrorIs(t, err, ErrProgramManagerExists)

	sup, err := vet.CreateUser(ctx, model.UserInput{Name: "Supervisor", Username: "sup", Password: "pw12", Role: model.RoleQuarantineGeneralSupervisor})
	require.NoError(t, err)
	pm := model.RoleProgramManager
	_, err = vet.UpdateUser(ctx, sup.ID, model.UserPatch{Role: &pm})
	assert.ErrorIs(t, err, ErrProgramManagerExists)

	users, err := vet.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, model.RoleQuarantineGeneralSupervisor, users[0].Role)
}
