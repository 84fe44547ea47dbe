package service

import (
	"context"
	"testing"
	"time"

	"vetlab/internal/auth"
	"vetlab/internal/model"
	"vetlab/internal/search"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchService(f *fixture) *SearchService {
	return NewSearchService(
		f.lab, f.vet,
		NewInventoryService(f.lab, nil, time.Minute, nil),
		NewUserService(model.DomainLab, f.lab, time.Minute, nil),
		NewUserService(model.DomainVet, f.vet, time.Minute, nil),
		auth.Default(),
	)
}

func groupTypes(groups []search.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Type
	}
	return out
}

func TestSearchLabDomain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newSearchService(f)

	proc, err := f.lab.CreateSavedSample(ctx, model.SavedSampleInput{ClientName: "Brucella farm"})
	require.NoError(t, err)
	_, err = f.lab.CreateSample(ctx, model.SampleInput{SavedSampleID: proc.ID, Department: "serology", RequestedTest: "Brucella RBT"})
	require.NoError(t, err)
	_, err = f.lab.CreateInventoryItem(ctx, model.InventoryItemInput{Name: "Brucella antigen", Type: model.InventoryTypeDiagnostic, Quantity: decimal.NewFromInt(2)})
	require.NoError(t, err)
	_, err = f.lab.CreateUser(ctx, model.UserInput{Name: "Brucella expert", Username: "bex", Password: "secret", Role: model.RoleLabSpecialist})
	require.NoError(t, err)

	manager := model.SessionUser{ID: "m", Role: model.RoleLabManager, Domain: model.DomainLab}
	groups, err := svc.Search(ctx, manager, "brucella")
	require.NoError(t, err)
	assert.Equal(t, []string{search.TypeProcedures, search.TypeSamples, search.TypeInventory, search.TypeUsers}, groupTypes(groups))

	users := groups[3].Results
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Data.(model.User).Password)

	reception := model.SessionUser{ID: "r", Role: model.RoleReceptionSpecialist, Domain: model.DomainLab}
	groups, err = svc.Search(ctx, reception, "brucella")
	require.NoError(t, err)
	assert.Equal(t, []string{search.TypeProcedures, search.TypeSamples}, groupTypes(groups))

	groups, err = svc.Search(ctx, manager, "b")
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestSearchVetDomain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newSearchService(f)

	sh, err := f.vet.CreateAnimalShipment(ctx, model.AnimalShipmentInput{
		ImporterName: "مؤسسة النخيل",
		Animals:      []model.Animal{{AnimalType: "goats", Count: 3, FinalDecision: model.DecisionQuarantine}},
	})
	require.NoError(t, err)
	_, err = f.vet.CreateTraderEntry(ctx, model.TraderEntryInput{
		ProcedureNumber: sh.ProcedureNumber, ImporterName: "مؤسسة النخيل", PermitNumber: "1", StatementNumber: "2",
	})
	require.NoError(t, err)

	user := model.SessionUser{ID: "v", Role: model.RoleVeterinarian, Domain: model.DomainVet}
	groups, err := svc.Search(ctx, user, "النخيل")
	require.NoError(t, err)
	assert.Equal(t, []string{search.TypeShipments, search.TypeTraders}, groupTypes(groups))

	groups, err = svc.Search(ctx, user, sh.ProcedureNumber)
	require.NoError(t, err)
	assert.Equal(t, []string{search.TypeShipments, search.TypeTraders}, groupTypes(groups))
}
