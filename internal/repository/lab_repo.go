package repository

import (
	"context"
	"strings"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/storage"
)

// LabRepository is the local provider for the laboratory document.
type LabRepository struct {
	*userStore[model.LabDocument]
	*notificationStore[model.LabDocument]

	store *documentStore[model.LabDocument]
	opts  *options
}

// NewLabRepository returns a repository persisting the lab document to port.
// The document is read lazily on first access.
func NewLabRepository(port storage.Port, opts ...Option) *LabRepository {
	o := newOptions(opts)
	store := newDocumentStore(port, model.LabDocumentKey, model.NewLabDocument,
		(*model.LabDocument).Normalize, o.logger)
	return &LabRepository{
		userStore: &userStore[model.LabDocument]{
			store:  store,
			users:  func(d *model.LabDocument) *[]model.User { return &d.Users },
			domain: model.DomainLab,
			opts:   o,
		},
		notificationStore: &notificationStore[model.LabDocument]{
			store:         store,
			notifications: func(d *model.LabDocument) *[]model.Notification { return &d.Notifications },
			opts:          o,
		},
		store: store,
		opts:  o,
	}
}

func (r *LabRepository) Name() string { return "local" }

func (r *LabRepository) Reload(ctx context.Context) error { return r.store.Reload(ctx) }

func (r *LabRepository) Export(ctx context.Context) ([]byte, error) { return r.store.Export(ctx) }

func (r *LabRepository) Import(ctx context.Context, data []byte) error {
	return r.store.Import(ctx, data)
}

func savedSampleCreated(s model.SavedSample) time.Time { return s.CreatedAt }

func (r *LabRepository) GetSavedSamples(ctx context.Context) ([]model.SavedSample, error) {
	var out []model.SavedSample
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		out = collect(doc.SavedSamples, nil, identity[model.SavedSample], savedSampleCreated)
		return nil
	})
	return out, err
}

func (r *LabRepository) GetSavedSample(ctx context.Context, id string) (*model.SavedSample, error) {
	var found *model.SavedSample
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		if i := indexOf(doc.SavedSamples, func(s model.SavedSample) bool { return s.ID == id }); i >= 0 {
			s := doc.SavedSamples[i]
			found = &s
		}
		return nil
	})
	return found, err
}

func nextLabNumber(doc *model.LabDocument, year int) string {
	existing := make([]string, len(doc.SavedSamples))
	for i, s := range doc.SavedSamples {
		existing[i] = s.InternalProcedureNumber
	}
	return model.NextProcedureNumber(existing, year, model.LabNumberSuffix)
}

// GetNextProcedureNumber previews the number the next procedure of the
// current year would get. CreateSavedSample assigns under the write lock.
func (r *LabRepository) GetNextProcedureNumber(ctx context.Context) (string, error) {
	var next string
	err := r.store.View(ctx, func(doc *model.LabDocument) error {
		next = nextLabNumber(doc, r.opts.now().Year())
		return nil
	})
	return next, err
}

func labNumberTaken(doc *model.LabDocument, number, selfID string) bool {
	return indexOf(doc.SavedSamples, func(s model.SavedSample) bool {
		return s.ID != selfID && s.InternalProcedureNumber == number
	}) >= 0
}

func (r *LabRepository) CreateSavedSample(ctx context.Context, in model.SavedSampleInput) (*model.SavedSample, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return nil, missing("client_name")
	}
	in.InternalProcedureNumber = strings.TrimSpace(in.InternalProcedureNumber)

	var created model.SavedSample
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		number := in.InternalProcedureNumber
		if number == "" {
			number = nextLabNumber(doc, r.opts.now().Year())
		} else if labNumberTaken(doc, number, "") {
			return false, ErrDuplicateNumber
		}
		now := r.opts.timestamp()
		created = model.SavedSample{
			ID:                      r.opts.newID(),
			ClientName:              in.ClientName,
			ReceptionDate:           in.ReceptionDate,
			InternalProcedureNumber: number,
			ExternalProcedureNumber: in.ExternalProcedureNumber,
			CountryPort:             in.CountryPort,
			ReceiverName:            in.ReceiverName,
			Notes:                   in.Notes,
			CreatedAt:               now,
			UpdatedAt:               now,
		}
		if created.ReceptionDate == "" {
			created.ReceptionDate = r.opts.today()
		}
		doc.SavedSamples = append(doc.SavedSamples, created)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *LabRepository) UpdateSavedSample(ctx context.Context, id string, patch model.SavedSamplePatch) (*model.SavedSample, error) {
	var updated *model.SavedSample
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		i := indexOf(doc.SavedSamples, func(s model.SavedSample) bool { return s.ID == id })
		if i < 0 {
			return false, nil
		}
		s := doc.SavedSamples[i]
		if patch.InternalProcedureNumber != nil {
			n := strings.TrimSpace(*patch.InternalProcedureNumber)
			if n != "" && labNumberTaken(doc, n, id) {
				return false, ErrDuplicateNumber
			}
			s.InternalProcedureNumber = n
		}
		setString(&s.ClientName, patch.ClientName)
		setString(&s.ReceptionDate, patch.ReceptionDate)
		setString(&s.ExternalProcedureNumber, patch.ExternalProcedureNumber)
		setString(&s.CountryPort, patch.CountryPort)
		setString(&s.ReceiverName, patch.ReceiverName)
		setString(&s.Notes, patch.Notes)
		s.UpdatedAt = r.opts.timestamp()
		doc.SavedSamples[i] = s
		updated = &s
		return true, nil
	})
	return updated, err
}

// DeleteSavedSample removes the procedure, its samples and their results in
// one persisted write.
func (r *LabRepository) DeleteSavedSample(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *model.LabDocument) (bool, error) {
		if removeWhere(&doc.SavedSamples, func(s model.SavedSample) bool { return s.ID == id }) == 0 {
			return false, nil
		}
		children := map[string]struct{}{}
		removeWhere(&doc.Samples, func(s model.Sample) bool {
			if s.SavedSampleID == id {
				children[s.ID] = struct{}{}
				return true
			}
			return false
		})
		removeWhere(&doc.TestResults, func(t model.TestResult) bool {
			_, ok := children[t.SampleID]
			return ok
		})
		removed = true
		return true, nil
	})
	return removed && err == nil, err
}
