package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"vetlab/internal/model"
	"vetlab/internal/storage"
)

// ErrInvalidCredentials is returned when no store accepts the sign-in.
var ErrInvalidCredentials = errors.New("invalid username or password")

// State of a Session.
type State int

const (
	StateLoading State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// UserAuthenticator checks credentials against one domain's user store.
type UserAuthenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// Directory signs users in across the two domain stores.
type Directory struct {
	stores map[model.Domain]UserAuthenticator
	logger *slog.Logger
}

func NewDirectory(lab, vet UserAuthenticator, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		stores: map[model.Domain]UserAuthenticator{model.DomainLab: lab, model.DomainVet: vet},
		logger: logger,
	}
}

// SignIn authenticates against the requested domain. When that fails the
// other domain is tried, and its answer is only accepted for global roles.
func (d *Directory) SignIn(ctx context.Context, identifier, password string, domain model.Domain) (*model.SessionUser, error) {
	if !domain.Valid() {
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := d.try(ctx, domain, identifier, password)
	if u == nil {
		u, err = d.try(ctx, domain.Other(), identifier, password)
		if u != nil && !model.IsGlobalRole(u.Role) {
			u = nil
		}
	}
	if u == nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}
	su := model.NewSessionUser(*u, domain)
	return &su, nil
}

func (d *Directory) try(ctx context.Context, domain model.Domain, identifier, password string) (*model.User, error) {
	store := d.stores[domain]
	if store == nil {
		return nil, nil
	}
	u, err := store.Authenticate(ctx, identifier, password)
	if err != nil {
		d.logger.Warn("sign-in lookup failed", "domain", domain, "error", err)
		return nil, err
	}
	if u != nil && !model.RoleAllowedIn(u.Role, domain) {
		d.logger.Warn("sign-in rejected: role does not belong to domain", "domain", domain, "role", u.Role)
		return nil, nil
	}
	return u, nil
}

// Session is the single signed-in user of a process, mirrored into storage
// under model.SessionKey.
type Session struct {
	mu    sync.RWMutex
	state State
	user  *model.SessionUser

	dir    *Directory
	table  *Table
	port   storage.Port
	logger *slog.Logger
}

func NewSession(dir *Directory, table *Table, port storage.Port, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{state: StateLoading, dir: dir, table: table, port: port, logger: logger}
}

// Restore reads the persisted session user and leaves the loading state.
func (s *Session) Restore(ctx context.Context) error {
	raw, err := s.port.Load(ctx, model.SessionKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(err, storage.ErrNotFound) {
		s.state, s.user = StateUnauthenticated, nil
		return nil
	}
	if err != nil {
		s.state, s.user = StateUnauthenticated, nil
		return fmt.Errorf("restore session: %w", err)
	}
	var u model.SessionUser
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		s.logger.Warn("discarding unreadable session")
		s.state, s.user = StateUnauthenticated, nil
		_ = s.port.Delete(ctx, model.SessionKey)
		return nil
	}
	s.state, s.user = StateAuthenticated, &u
	return nil
}

func (s *Session) SignIn(ctx context.Context, identifier, password string, domain model.Domain) (*model.SessionUser, error) {
	u, err := s.dir.SignIn(ctx, identifier, password, domain)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	if err := s.port.Save(ctx, model.SessionKey, raw); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	s.mu.Lock()
	s.state, s.user = StateAuthenticated, u
	s.mu.Unlock()
	s.logger.Info("signed in", "username", u.Username, "role", u.Role, "domain", u.Domain)
	return u, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.state, s.user = StateUnauthenticated, nil
	s.mu.Unlock()
	if err := s.port.Delete(ctx, model.SessionKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *model.SessionUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// HasPermission is false unless a user is signed in and its role lists action.
func (s *Session) HasPermission(action string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateAuthenticated || s.user == nil {
		return false
	}
	return s.table.Has(s.user.Role, action)
}
