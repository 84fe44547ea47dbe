// Package search runs the quick-search box: a case-insensitive substring scan
// over every record a user may see, grouped by entity type.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"vetlab/internal/auth"
	"vetlab/internal/model"

	"golang.org/x/sync/errgroup"
)

// MinQueryLength is the shortest query, in runes, that is searched.
const MinQueryLength = 2

// Entity types.
const (
	TypeProcedures  = "procedures"
	TypeSamples     = "samples"
	TypeTestResults = "test_results"
	TypeInventory   = "inventory"
	TypeUsers       = "users"
	TypeShipments   = "shipments"
	TypeTraders     = "traders"
)

// Entity configures one result group. A user sees the group when holding
// any of Permissions.
type Entity struct {
	Type        string
	Limit       int
	Permissions []string
}

// Config is the ordered list of groups searched for a domain.
type Config struct {
	Domain   model.Domain
	Entities []Entity
}

func LabConfig() Config {
	return Config{Domain: model.DomainLab, Entities: []Entity{
		{Type: TypeProcedures, Limit: 5, Permissions: []string{auth.ViewSamples}},
		{Type: TypeSamples, Limit: 5, Permissions: []string{auth.ViewSamples}},
		{Type: TypeTestResults, Limit: 3, Permissions: []string{auth.ViewResults}},
		{Type: TypeInventory, Limit: 3, Permissions: []string{auth.ViewInventory}},
		{Type: TypeUsers, Limit: 3, Permissions: []string{auth.ViewUsers, auth.ManageUsers}},
	}}
}

func VetConfig() Config {
	return Config{Domain: model.DomainVet, Entities: []Entity{
		{Type: TypeShipments, Limit: 5, Permissions: []string{auth.ViewShipments}},
		{Type: TypeTraders, Limit: 5, Permissions: []string{auth.ViewTraders, auth.ViewQuarantine}},
		{Type: TypeUsers, Limit: 3, Permissions: []string{auth.ViewUsers, auth.ManageUsers}},
	}}
}

// ConfigFor returns the configuration of domain d.
func ConfigFor(d model.Domain) Config {
	if d == model.DomainVet {
		return VetConfig()
	}
	return LabConfig()
}

// Record is a searchable item with display fields.
type Record struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Data     any    `json:"data"`
}

// Group is the matches of one entity type, in collection order.
type Group struct {
	Type    string   `json:"type"`
	Results []Record `json:"results"`
}

// Source loads every record of one entity type.
type Source func(ctx context.Context) ([]Record, error)

// Search loads the permitted sources concurrently and keeps the first Limit
// records per type whose flattened text contains the query. Short queries
// return nothing.
func Search(ctx context.Context, cfg Config, query string, allowed func(perm string) bool, sources map[string]Source) ([]Group, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []Group{}, nil
	}

	visible := make([]Entity, 0, len(cfg.Entities))
	for _, e := range cfg.Entities {
		if sources[e.Type] != nil && permitted(e, allowed) {
			visible = append(visible, e)
		}
	}

	loaded := make([][]Record, len(visible))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range visible {
		g.Go(func() error {
			recs, err := sources[e.Type](gctx)
			if err != nil {
				return fmt.Errorf("search %s: %w", e.Type, err)
			}
			loaded[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := make([]Group, 0, len(visible))
	for i, e := range visible {
		var hits []Record
		for _, r := range loaded[i] {
			if len(hits) >= e.Limit {
				break
			}
			if strings.Contains(strings.ToLower(FlattenToSearchableText(r.Data)), q) {
				hits = append(hits, r)
			}
		}
		if len(hits) > 0 {
			groups = append(groups, Group{Type: e.Type, Results: hits})
		}
	}
	return groups, nil
}

func permitted(e Entity, allowed func(string) bool) bool {
	if allowed == nil {
		return false
	}
	for _, p := range e.Permissions {
		if allowed(p) {
			return true
		}
	}
	return false
}

// FlattenToSearchableText renders every primitive inside v, recursively,
// joined by single spaces. Structs are flattened through their JSON form so
// field tags decide what is visible. Map keys are visited in sorted order.
func FlattenToSearchableText(v any) string {
	var parts []string
	flatten(normalize(v), &parts)
	return strings.Join(parts, " ")
}

func normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, int, int64, map[string]any, []any:
		return v
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}

func flatten(v any, parts *[]string) {
	switch t := v.(type) {
	case nil:
	case string:
		if t != "" {
			*parts = append(*parts, t)
		}
	case bool:
		*parts = append(*parts, strconv.FormatBool(t))
	case float64:
		*parts = append(*parts, strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		*parts = append(*parts, strconv.Itoa(t))
	case int64:
		*parts = append(*parts, strconv.FormatInt(t, 10))
	case []any:
		for _, item := range t {
			flatten(item, parts)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(t[k], parts)
		}
	default:
		flatten(normalize(t), parts)
	}
}
