package service

import (
	"context"
	"sort"

	"vetlab/internal/model"
	"vetlab/internal/repository"
)

// VetService joins shipments with their quarantine trader entries.
type VetService struct {
	store repository.VetStore
}

func NewVetService(store repository.VetStore) *VetService {
	return &VetService{store: store}
}

// IsQuarantineRelevant reports whether any animal of the shipment was sent to quarantine.
func IsQuarantineRelevant(s model.AnimalShipment) bool {
	return s.QuarantineRelevant()
}

func (s *VetService) GetShipmentsWithTraders(ctx context.Context) ([]model.ShipmentWithTraders, error) {
	shipments, err := s.store.GetAnimalShipments(ctx)
	if err != nil {
		return nil, err
	}
	traders, err := s.store.GetTraderEntries(ctx)
	if err != nil {
		return nil, err
	}
	byProcedure := make(map[string][]model.TraderEntry)
	for _, t := range traders {
		byProcedure[t.ProcedureNumber] = append(byProcedure[t.ProcedureNumber], t)
	}

	out := make([]model.ShipmentWithTraders, 0, len(shipments))
	for _, sh := range shipments {
		entries := byProcedure[sh.ProcedureNumber]
		if entries == nil || sh.ProcedureNumber == "" {
			entries = []model.TraderEntry{}
		}
		out = append(out, model.ShipmentWithTraders{
			AnimalShipment:     sh,
			Traders:            entries,
			QuarantineRelevant: IsQuarantineRelevant(sh),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return keyOf(out[i].ProcedureNumber, out[i].CreatedAt).before(keyOf(out[j].ProcedureNumber, out[j].CreatedAt))
	})
	return out, nil
}

// GetQuarantineShipments keeps only the shipments holding animals in quarantine.
func (s *VetService) GetQuarantineShipments(ctx context.Context) ([]model.ShipmentWithTraders, error) {
	all, err := s.GetShipmentsWithTraders(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ShipmentWithTraders, 0, len(all))
	for _, sh := range all {
		if sh.QuarantineRelevant {
			out = append(out, sh)
		}
	}
	return out, nil
}
