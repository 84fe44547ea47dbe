package service

import (
	"sync"
	"testing"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/repository"
	"vetlab/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// manualClock only moves when told to.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	port     storage.Port
	labLocal *repository.LabRepository
	vetLocal *repository.VetRepository
	lab      *LabFacade
	vet      *VetFacade
}

func newFixture(t *testing.T, delegates ...repository.Provider) *fixture {
	t.Helper()
	port := storage.NewMemory()
	clock := &stepClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	opts := []repository.Option{repository.WithClock(clock.Now), repository.WithBcryptCost(bcrypt.MinCost)}
	labLocal := repository.NewLabRepository(port, opts...)
	vetLocal := repository.NewVetRepository(port, opts...)
	return &fixture{
		port:     port,
		labLocal: labLocal,
		vetLocal: vetLocal,
		lab:      NewLabFacade(labLocal, nil, delegates...),
		vet:      NewVetFacade(vetLocal, nil, delegates...),
	}
}

type event struct {
	domain model.Domain
	name   string
	data   any
}

// recorder is a Broadcaster that keeps what it was asked to send.
type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Broadcast(domain model.Domain, name string, data any) {
	r.mu.Lock()
	r.events = append(r.events, event{domain: domain, name: name, data: data})
	r.mu.Unlock()
}

func (r *recorder) Events() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func ptr[T any](v T) *T { return &v }
