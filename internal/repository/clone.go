package repository

import (
	"sort"
	"time"

	"vetlab/internal/model"
)

// Values handed out of the store never share memory with the document.

func cloneTestResult(r model.TestResult) model.TestResult {
	if r.ConfirmatoryTest != nil {
		c := *r.ConfirmatoryTest
		r.ConfirmatoryTest = &c
	}
	if r.ApprovedAt != nil {
		t := *r.ApprovedAt
		r.ApprovedAt = &t
	}
	return r
}

func cloneInventoryItem(it model.InventoryItem) model.InventoryItem {
	if it.MinQuantity != nil {
		m := *it.MinQuantity
		it.MinQuantity = &m
	}
	return it
}

func cloneAnimals(in []model.Animal) []model.Animal {
	if in == nil {
		return []model.Animal{}
	}
	out := make([]model.Animal, len(in))
	for i, a := range in {
		if a.QuarantineLocations != nil {
			a.QuarantineLocations = append([]string(nil), a.QuarantineLocations...)
		}
		out[i] = a
	}
	return out
}

func cloneShipment(s model.AnimalShipment) model.AnimalShipment {
	s.Animals = cloneAnimals(s.Animals)
	return s
}

func cloneTrader(t model.TraderEntry) model.TraderEntry {
	if t.Reasons == nil {
		t.Reasons = []string{}
	} else {
		t.Reasons = append([]string(nil), t.Reasons...)
	}
	return t
}

func identity[T any](v T) T { return v }

// collect copies items matching keep, newest first.
func collect[T any](items []T, keep func(T) bool, clone func(T) T, created func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep == nil || keep(it) {
			out = append(out, clone(it))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return created(out[i]).After(created(out[j]))
	})
	return out
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

// removeWhere deletes matching items in place and returns how many were removed.
func removeWhere[T any](items *[]T, match func(T) bool) int {
	kept := (*items)[:0]
	removed := 0
	for _, it := range *items {
		if match(it) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	*items = kept
	return removed
}
