package service

import (
	"context"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/repository"
)

// UserService manages the accounts of one domain. Everything it returns has
// the password stripped.
type UserService struct {
	domain model.Domain
	store  repository.UserRepository
	users  *listCache[model.User]
}

func NewUserService(domain model.Domain, store repository.UserRepository, ttl time.Duration, now func() time.Time) *UserService {
	return &UserService{
		domain: domain,
		store:  store,
		users:  newListCache[model.User]("users_"+string(domain), ttl, now),
	}
}

func (s *UserService) Domain() model.Domain { return s.domain }

func publicUsers(users []model.User) []model.User {
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

func publicUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	p := u.Public()
	return &p
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.get(ctx, false, s.store.GetUsers)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func (s *UserService) Refetch(ctx context.Context) ([]model.User, error) {
	users, err := s.users.get(ctx, true, s.store.GetUsers)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.GetUser(ctx, id)
	return publicUser(u), err
}

func (s *UserService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	u, err := s.store.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}
	s.users.invalidate()
	return publicUser(u), nil
}

func (s *UserService) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	u, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.users.invalidate()
	return publicUser(u), nil
}

func (s *UserService) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.DeleteUser(ctx, id)
	if ok {
		s.users.invalidate()
	}
	return ok, err
}

// Authenticate is the sign-in lookup used by the auth directory.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return s.store.Authenticate(ctx, username, password)
}
