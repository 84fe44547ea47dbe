// Package auth holds the static role permission table, the sign-in session
// state machine and JWT issuing for the HTTP layer.
package auth

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Permission tags.
const (
	ViewDashboard       = "view_dashboard"
	ViewSamples         = "view_samples"
	ManageSamples       = "manage_samples"
	DeleteSamples       = "delete_samples"
	ViewResults         = "view_results"
	EnterResults        = "enter_results"
	ApproveResults      = "approve_results"
	ViewInventory       = "view_inventory"
	ManageInventory     = "manage_inventory"
	WithdrawInventory   = "withdraw_inventory"
	ViewShipments       = "view_shipments"
	ManageShipments     = "manage_shipments"
	DeleteShipments     = "delete_shipments"
	ViewTraders         = "view_traders"
	ManageTraders       = "manage_traders"
	ViewQuarantine      = "view_quarantine"
	ViewReports         = "view_reports"
	ExportData          = "export_data"
	ViewUsers           = "view_users"
	ManageUsers         = "manage_users"
	ViewNotifications   = "view_notifications"
	ManageNotifications = "manage_notifications"
)

//go:embed permissions.yaml
var defaultTable []byte

type tableFile struct {
	Permissions []string            `yaml:"permissions"`
	Bases       map[string][]string `yaml:"bases"`
	Roles       map[string]roleFile `yaml:"roles"`
}

type roleFile struct {
	Domain      string   `yaml:"domain"`
	All         bool     `yaml:"all"`
	Include     []string `yaml:"include"`
	Permissions []string `yaml:"permissions"`
}

// Role is a flattened table entry.
type Role struct {
	Name        string
	Domain      string // lab, vet or global
	permissions map[string]struct{}
}

// Table maps role names to permission sets. It is immutable after Load.
type Table struct {
	catalog []string
	roles   map[string]Role
}

// Load parses a YAML table, expanding bases and checking every tag against
// the catalog.
func Load(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse permission table: %w", err)
	}
	known := make(map[string]struct{}, len(f.Permissions))
	for _, p := range f.Permissions {
		known[p] = struct{}{}
	}
	check := func(where, p string) error {
		if _, ok := known[p]; !ok {
			return fmt.Errorf("%s: unknown permission %q", where, p)
		}
		return nil
	}
	for name, perms := range f.Bases {
		for _, p := range perms {
			if err := check("base "+name, p); err != nil {
				return nil, err
			}
		}
	}

	t := &Table{catalog: f.Permissions, roles: make(map[string]Role, len(f.Roles))}
	for name, rf := range f.Roles {
		switch rf.Domain {
		case "lab", "vet", "global":
		default:
			return nil, fmt.Errorf("role %s: invalid domain %q", name, rf.Domain)
		}
		set := map[string]struct{}{}
		if rf.All {
			for _, p := range f.Permissions {
				set[p] = struct{}{}
			}
		}
		for _, b := range rf.Include {
			base, ok := f.Bases[b]
			if !ok {
				return nil, fmt.Errorf("role %s: unknown base %q", name, b)
			}
			for _, p := range base {
				set[p] = struct{}{}
			}
		}
		for _, p := range rf.Permissions {
			if err := check("role "+name, p); err != nil {
				return nil, err
			}
			set[p] = struct{}{}
		}
		t.roles[name] = Role{Name: name, Domain: rf.Domain, permissions: set}
	}
	return t, nil
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Load(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

// Has reports whether role holds perm. Unknown roles hold nothing.
func (t *Table) Has(role, perm string) bool {
	r, ok := t.roles[role]
	if !ok {
		return false
	}
	_, ok = r.permissions[perm]
	return ok
}

// HasAny reports whether role holds at least one of perms.
func (t *Table) HasAny(role string, perms ...string) bool {
	for _, p := range perms {
		if t.Has(role, p) {
			return true
		}
	}
	return false
}

// Permissions lists the tags held by role in catalog order.
func (t *Table) Permissions(role string) []string {
	r, ok := t.roles[role]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(r.permissions))
	for _, p := range t.catalog {
		if _, ok := r.permissions[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (t *Table) Role(name string) (Role, bool) {
	r, ok := t.roles[name]
	return r, ok
}

// Roles returns the role names sorted.
func (t *Table) Roles() []string {
	names := make([]string, 0, len(t.roles))
	for n := range t.roles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Catalog returns every known permission tag.
func (t *Table) Catalog() []string {
	return append([]string(nil), t.catalog...)
}
