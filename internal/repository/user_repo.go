package repository

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"vetlab/internal/model"

	"golang.org/x/crypto/bcrypt"
)

// userStore serves the users collection of either domain document.
type userStore[D any] struct {
	store  *documentStore[D]
	users  func(*D) *[]model.User
	domain model.Domain
	opts   *options
	peer   func(ctx context.Context) ([]model.User, error)
}

// LinkUsers lets each domain see the other's accounts, so the program
// manager stays unique across both documents.
func LinkUsers(lab *LabRepository, vet *VetRepository) {
	lab.userStore.peer = vet.userStore.GetUsers
	vet.userStore.peer = lab.userStore.GetUsers
}

// checkPeer rejects a second program manager held by the linked document.
// It reads the peer before taking this store's lock.
func (r *userStore[D]) checkPeer(ctx context.Context, role string) error {
	if r.peer == nil || role != model.RoleProgramManager {
		return nil
	}
	users, err := r.peer(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Role == model.RoleProgramManager {
			return ErrProgramManagerExists
		}
	}
	return nil
}

func (r *userStore[D]) GetUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := r.store.View(ctx, func(doc *D) error {
		out = collect(*r.users(doc), nil, identity[model.User], func(u model.User) time.Time { return u.CreatedAt })
		return nil
	})
	return out, err
}

func (r *userStore[D]) GetUser(ctx context.Context, id string) (*model.User, error) {
	return r.find(ctx, func(u model.User) bool { return u.ID == id })
}

func (r *userStore[D]) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	return r.find(ctx, func(u model.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *userStore[D]) find(ctx context.Context, match func(model.User) bool) (*model.User, error) {
	var found *model.User
	err := r.store.View(ctx, func(doc *D) error {
		if i := indexOf(*r.users(doc), match); i >= 0 {
			u := (*r.users(doc))[i]
			found = &u
		}
		return nil
	})
	return found, err
}

func (r *userStore[D]) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), r.opts.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// checkUnique enforces username uniqueness and the single program manager.
// selfID is skipped so a user can be saved with its own values.
func checkUnique(users []model.User, selfID, username, role string) error {
	for _, u := range users {
		if u.ID == selfID {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return ErrDuplicateUsername
		}
		if role == model.RoleProgramManager && u.Role == model.RoleProgramManager {
			return ErrProgramManagerExists
		}
	}
	return nil
}

func (r *userStore[D]) CreateUser(ctx context.Context, in model.UserInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, missing("name")
	case in.Username == "":
		return nil, missing("username")
	case in.Password == "":
		return nil, missing("password")
	}
	if !model.RoleAllowedIn(in.Role, r.domain) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, in.Role)
	}
	if err := r.checkPeer(ctx, in.Role); err != nil {
		return nil, err
	}
	hashed, err := r.hash(in.Password)
	if err != nil {
		return nil, err
	}

	var created model.User
	err = r.store.Update(ctx, func(doc *D) (bool, error) {
		users := r.users(doc)
		if err := checkUnique(*users, "", in.Username, in.Role); err != nil {
			return false, err
		}
		now := r.opts.timestamp()
		created = model.User{
			ID:        r.opts.newID(),
			Name:      strings.TrimSpace(in.Name),
			Username:  in.Username,
			Password:  hashed,
			Role:      in.Role,
			IsActive:  in.IsActive == nil || *in.IsActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		*users = append(*users, created)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *userStore[D]) UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	if patch.Role != nil {
		if !model.RoleAllowedIn(*patch.Role, r.domain) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRole, *patch.Role)
		}
		if err := r.checkPeer(ctx, *patch.Role); err != nil {
			return nil, err
		}
	}
	if patch.Username != nil {
		u := strings.TrimSpace(*patch.Username)
		if u == "" {
			return nil, missing("username")
		}
		patch.Username = &u
	}
	var hashed string
	if patch.Password != nil && *patch.Password != "" {
		h, err := r.hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		hashed = h
	}

	var updated *model.User
	err := r.store.Update(ctx, func(doc *D) (bool, error) {
		users := r.users(doc)
		i := indexOf(*users, func(u model.User) bool { return u.ID == id })
		if i < 0 {
			return false, nil
		}
		u := (*users)[i]
		setString(&u.Name, patch.Name)
		setString(&u.Username, patch.Username)
		setString(&u.Role, patch.Role)
		if patch.IsActive != nil {
			u.IsActive = *patch.IsActive
		}
		if hashed != "" {
			u.Password = hashed
		}
		if err := checkUnique(*users, u.ID, u.Username, u.Role); err != nil {
			return false, err
		}
		u.UpdatedAt = r.opts.timestamp()
		(*users)[i] = u
		updated = &u
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *userStore[D]) DeleteUser(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := r.store.Update(ctx, func(doc *D) (bool, error) {
		removed = removeWhere(r.users(doc), func(u model.User) bool { return u.ID == id }) > 0
		return removed, nil
	})
	return removed && err == nil, err
}

// Authenticate returns the active user matching the credentials, or nil.
// Plaintext passwords from older documents are accepted once and rehashed.
func (r *userStore[D]) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := r.GetUserByUsername(ctx, username)
	if err != nil || u == nil || !u.IsActive || password == "" {
		return nil, err
	}

	if isBcryptHash(u.Password) {
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			return nil, nil
		}
		return u, nil
	}

	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, nil
	}
	hashed, err := r.hash(password)
	if err != nil {
		return nil, err
	}
	err = r.store.Update(ctx, func(doc *D) (bool, error) {
		users := r.users(doc)
		i := indexOf(*users, func(x model.User) bool { return x.ID == u.ID })
		if i < 0 {
			return false, nil
		}
		(*users)[i].Password = hashed
		return true, nil
	})
	if err != nil {
		r.opts.logger.Warn("failed to upgrade legacy password", "user_id", u.ID, "error", err)
	} else {
		u.Password = hashed
	}
	return u, nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
