package repository

import (
	"context"
	"strings"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/storage"
)

// VetRepository is the local provider for the veterinary quarantine document.
type VetRepository struct {
	*userStore[model.VetDocument]
	*notificationStore[model.VetDocument]

	store *documentStore[model.VetDocument]
	opts  *options
}

func NewVetRepository(port storage.Port, opts ...Option) *VetRepository {
	o := newOptions(opts)
	store := newDocumentStore(port, model.VetDocumentKey, model.NewVetDocument,
		(*model.VetDocument).Normalize, o.logger)
	return &VetRepository{
		userStore: &userStore[model.VetDocument]{
			store:  store,
			users:  func(d *model.VetDocument) *[]model.User { return &d.Users },
			domain: model.DomainVet,
			opts:   o,
		},
		notificationStore: &notificationStore[model.VetDocument]{
			store:         store,
			notifications: func(d *model.VetDocument) *[]model.Notification { return &d.Notifications },
			opts:          o,
		},
		store: store,
		opts:  o,
	}
}

func (r *VetRepository) Name() string { return "local" }

func (r *VetRepository) Reload(ctx context.Context) error { return r.store.Reload(ctx) }

func (r *VetRepository) Export(ctx context.Context) ([]byte, error) { return r.store.Export(ctx) }

func (r *VetRepository) Import(ctx context.Context, data []byte) error {
	return r.store.Import(ctx, data)
}

func shipmentCreated(s model.AnimalShipment) time.Time { return s.CreatedAt }

func (r *VetRepository) GetAnimalShipments(ctx context.Context) ([]model.AnimalShipment, error) {
	var out []model.AnimalShipment
	err := r.store.View(ctx, func(doc *model.VetDocument) error {
		out = collect(doc.AnimalShipments, nil, cloneShipment, shipmentCreated)
		return nil
	})
	return out, err
}

func (r *VetRepository) GetAnimalShipment(ctx context.Context, id string) (*model.AnimalShipment, error) {
	var found *model.AnimalShipment
	err := r.store.View(ctx, func(doc *model.VetDocument) error {
		if i := indexOf(doc.AnimalShipments, func(s model.AnimalShipment) bool { return s.ID == id }); i >= 0 {
			s := cloneShipment(doc.AnimalShipments[i])
			found = &s
		}
		return nil
	})
	return found, err
}

func nextVetNumber(doc *model.VetDocument, year int) string {
	existing := make([]string, len(doc.AnimalShipments))
	for i, s := range doc.AnimalShipments {
		existing[i] = s.ProcedureNumber
	}
	return model.NextProcedureNumber(existing, year, model.VetNumberSuffix)
}

func (r *VetRepository) GetNextShipmentNumber(ctx context.Context) (string, error) {
	var next string
	err := r.store.View(ctx, func(doc *model.VetDocument) error {
		next = nextVetNumber(doc, r.opts.now().Year())
		return nil
	})
	return next, err
}

func vetNumberTaken(doc *model.VetDocument, number, selfID string) bool {
	return indexOf(doc.AnimalShipments, func(s model.AnimalShipment) bool {
		return s.ID != selfID && s.ProcedureNumber == number
	}) >= 0
}

func validateAnimals(animals []model.Animal) error {
	for _, a := range animals {
		if a.Count < 0 {
			return ErrNegativeQuantity
		}
	}
	return nil
}

func (r *VetRepository) CreateAnimalShipment(ctx context.Context, in model.AnimalShipmentInput) (*model.AnimalShipment, error) {
	if strings.TrimSpace(in.ImporterName) == "" {
		return nil, missing("importer_name")
	}
	if err := validateAnimals(in.Animals); err != nil {
		return nil, err
	}
	in.ProcedureNumber = strings.TrimSpace(in.ProcedureNumber)

	var created model.AnimalShipment
	err := r.store.Update(ctx, func(doc *model.VetDocument) (bool, error) {
		number := in.ProcedureNumber
		if number == "" {
			number = nextVetNumber(doc, r.opts.now().Year())
		} else if vetNumberTaken(doc, number, "") {
			return false, ErrDuplicateNumber
		}
		now := r.opts.timestamp()
		created = model.AnimalShipment{
			ID:              r.opts.newID(),
			ProcedureNumber: number,
			ImporterName:    in.ImporterName,
			CountryOfOrigin: in.CountryOfOrigin,
			ArrivalDate:     in.ArrivalDate,
			Port:            in.Port,
			Animals:         cloneAnimals(in.Animals),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		doc.AnimalShipments = append(doc.AnimalShipments, cloneShipment(created))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *VetRepository) UpdateAnimalShipment(ctx context.Context, id string, patch model.AnimalShipmentPatch) (*model.AnimalShipment, error) {
	if patch.Animals != nil {
		if err := validateAnimals(*patch.Animals); err != nil {
			return nil, err
		}
	}
	var updated *model.AnimalShipment
	err := r.store.Update(ctx, func(doc *model.VetDocument) (bool, error) {
		i := indexOf(doc.AnimalShipments, func(s model.AnimalShipment) bool { return s.ID == id })
		if i < 0 {
			return false, nil
		}
		s := cloneShipment(doc.AnimalShipments[i])
		now := r.opts.timestamp()
		if patch.ProcedureNumber != nil {
			n := strings.TrimSpace(*patch.ProcedureNumber)
			if n != "" && vetNumberTaken(doc, n, id) {
				return false, ErrDuplicateNumber
			}
			if old := s.ProcedureNumber; old != "" && old != n {
				if err := renumberTraders(doc, old, n, now); err != nil {
					return false, err
				}
			}
			s.ProcedureNumber = n
		}
		setString(&s.ImporterName, patch.ImporterName)
		setString(&s.CountryOfOrigin, patch.CountryOfOrigin)
		setString(&s.ArrivalDate, patch.ArrivalDate)
		setString(&s.Port, patch.Port)
		if patch.Animals != nil {
			s.Animals = cloneAnimals(*patch.Animals)
		}
		s.UpdatedAt = now
		doc.AnimalShipments[i] = s
		out := cloneShipment(s)
		updated = &out
		return true, nil
	})
	return updated, err
}

// renumberTraders moves the trader entries of a shipment to its new number.
// A shipment with traders cannot lose its number.
func renumberTraders(doc *model.VetDocument, from, to string, now time.Time) error {
	for i := range doc.QuarantineTraders {
		t := &doc.QuarantineTraders[i]
		if t.ProcedureNumber != from {
			continue
		}
		if to == "" {
			return missing("procedure_number")
		}
		t.ProcedureNumber = to
		t.UpdatedAt = now
	}
	return nil
}

// DeleteAnimalShipment removes the shipment and the trader entries filed
// under its procedure number.
func (r *VetRepository) DeleteAnimalShipment(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *model.VetDocument) (bool, error) {
		i := indexOf(doc.AnimalShipments, func(s model.AnimalShipment) bool { return s.ID == id })
		if i < 0 {
			return false, nil
		}
		number := doc.AnimalShipments[i].ProcedureNumber
		removeWhere(&doc.AnimalShipments, func(s model.AnimalShipment) bool { return s.ID == id })
		if number != "" {
			removeWhere(&doc.QuarantineTraders, func(t model.TraderEntry) bool { return t.ProcedureNumber == number })
		}
		removed = true
		return true, nil
	})
	return removed && err == nil, err
}
