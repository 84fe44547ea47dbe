package service

import (
	"context"
	"testing"

	"vetlab/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShipmentsWithTraders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	views := NewVetService(f.vet)

	held, err := f.vet.CreateAnimalShipment(ctx, model.AnimalShipmentInput{
		ImporterName: "مؤسسة الريان",
		Animals: []model.Animal{
			{AnimalType: "sheep", Count: 40, FinalDecision: model.DecisionRelease},
			{AnimalType: "goats", Count: 12, FinalDecision: model.DecisionQuarantine, QuarantineLocation: "محجر الميناء"},
		},
	})
	require.NoError(t, err)
	released, err := f.vet.CreateAnimalShipment(ctx, model.AnimalShipmentInput{
		ImporterName: "شركة الأنعام",
		Animals:      []model.Animal{{AnimalType: "camels", Count: 5, FinalDecision: model.DecisionRelease}},
	})
	require.NoError(t, err)

	_, err = f.vet.CreateTraderEntry(ctx, model.TraderEntryInput{
		ProcedureNumber: held.ProcedureNumber, ImporterName: "مؤسسة الريان",
		PermitNumber: "P-77", StatementNumber: "ST-3", Reasons: []string{"فحص إضافي"}, AnimalCount: 12,
	})
	require.NoError(t, err)

	all, err := views.GetShipmentsWithTraders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// 0002 before 0001
	assert.Equal(t, released.ID, all[0].ID)
	assert.False(t, all[0].QuarantineRelevant)
	assert.Empty(t, all[0].Traders)
	assert.Equal(t, held.ID, all[1].ID)
	assert.True(t, all[1].QuarantineRelevant)
	require.Len(t, all[1].Traders, 1)
	assert.Equal(t, "P-77", all[1].Traders[0].PermitNumber)

	quarantined, err := views.GetQuarantineShipments(ctx)
	require.NoError(t, err)
	require.Len(t, quarantined, 1)
	assert.Equal(t, held.ID, quarantined[0].ID)

	assert.True(t, IsQuarantineRelevant(*held))
	assert.False(t, IsQuarantineRelevant(*released))
}
