package service

import (
	"context"

	"vetlab/internal/auth"
	"vetlab/internal/model"
	"vetlab/internal/repository"
	"vetlab/internal/search"
)

// SearchService wires the quick-search box to the facades.
type SearchService struct {
	lab       repository.LabStore
	vet       repository.VetStore
	inventory *InventoryService
	users     map[model.Domain]*UserService
	table     *auth.Table
}

func NewSearchService(lab repository.LabStore, vet repository.VetStore, inventory *InventoryService, labUsers, vetUsers *UserService, table *auth.Table) *SearchService {
	return &SearchService{
		lab:       lab,
		vet:       vet,
		inventory: inventory,
		users:     map[model.Domain]*UserService{model.DomainLab: labUsers, model.DomainVet: vetUsers},
		table:     table,
	}
}

func records[T any](items []T, describe func(T) search.Record) []search.Record {
	out := make([]search.Record, len(items))
	for i, it := range items {
		out[i] = describe(it)
	}
	return out
}

func (s *SearchService) sources(domain model.Domain) map[string]search.Source {
	users := s.users[domain]
	src := map[string]search.Source{
		search.TypeUsers: func(ctx context.Context) ([]search.Record, error) {
			list, err := users.List(ctx)
			return records(list, func(u model.User) search.Record {
				return search.Record{ID: u.ID, Title: u.Name, Subtitle: u.Username, Data: u}
			}), err
		},
	}
	if domain == model.DomainVet {
		src[search.TypeShipments] = func(ctx context.Context) ([]search.Record, error) {
			list, err := s.vet.GetAnimalShipments(ctx)
			return records(list, func(sh model.AnimalShipment) search.Record {
				return search.Record{ID: sh.ID, Title: sh.ProcedureNumber, Subtitle: sh.ImporterName, Data: sh}
			}), err
		}
		src[search.TypeTraders] = func(ctx context.Context) ([]search.Record, error) {
			list, err := s.vet.GetTraderEntries(ctx)
			return records(list, func(t model.TraderEntry) search.Record {
				return search.Record{ID: t.ID, Title: t.ImporterName, Subtitle: t.ProcedureNumber, Data: t}
			}), err
		}
		return src
	}

	src[search.TypeProcedures] = func(ctx context.Context) ([]search.Record, error) {
		list, err := s.lab.GetSavedSamples(ctx)
		return records(list, func(p model.SavedSample) search.Record {
			return search.Record{ID: p.ID, Title: p.InternalProcedureNumber, Subtitle: p.ClientName, Data: p}
		}), err
	}
	src[search.TypeSamples] = func(ctx context.Context) ([]search.Record, error) {
		list, err := s.lab.GetSamples(ctx)
		return records(list, func(sm model.Sample) search.Record {
			return search.Record{ID: sm.ID, Title: sm.SampleNumber, Subtitle: sm.RequestedTest, Data: sm}
		}), err
	}
	src[search.TypeTestResults] = func(ctx context.Context) ([]search.Record, error) {
		list, err := s.lab.GetTestResults(ctx)
		return records(list, func(r model.TestResult) search.Record {
			return search.Record{ID: r.ID, Title: r.TestMethod, Subtitle: r.ApprovalStatus, Data: r}
		}), err
	}
	src[search.TypeInventory] = func(ctx context.Context) ([]search.Record, error) {
		list, err := s.inventory.GetItems(ctx)
		return records(list, func(it model.InventoryItem) search.Record {
			return search.Record{ID: it.ID, Title: it.Name, Subtitle: it.Section, Data: it}
		}), err
	}
	return src
}

// Search runs query in the user's domain, showing only the groups the
// user's role may see.
func (s *SearchService) Search(ctx context.Context, user model.SessionUser, query string) ([]search.Group, error) {
	allowed := func(perm string) bool { return s.table.Has(user.Role, perm) }
	return search.Search(ctx, search.ConfigFor(user.Domain), query, allowed, s.sources(user.Domain))
}
