package service

import (
	"context"
	"time"

	"vetlab/internal/auth"
	"vetlab/internal/model"
)

// LoginResponse is returned by a successful sign-in.
type LoginResponse struct {
	Token       string            `json:"token"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        model.SessionUser `json:"user"`
	Permissions []string          `json:"permissions"`
}

// MeResponse describes the caller of an authenticated request.
type MeResponse struct {
	User        model.SessionUser `json:"user"`
	Permissions []string          `json:"permissions"`
}

// AuthService signs users in and issues session tokens.
type AuthService struct {
	dir    *auth.Directory
	table  *auth.Table
	tokens *auth.TokenManager
}

func NewAuthService(dir *auth.Directory, table *auth.Table, tokens *auth.TokenManager) *AuthService {
	return &AuthService{dir: dir, table: table, tokens: tokens}
}

// Login checks credentials for domain (falling back to the other domain for
// global roles) and issues a token.
func (s *AuthService) Login(ctx context.Context, identifier, password string, domain model.Domain) (*LoginResponse, error) {
	user, err := s.dir.SignIn(ctx, identifier, password, domain)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{
		Token:       token,
		ExpiresAt:   exp,
		User:        *user,
		Permissions: s.table.Permissions(user.Role),
	}, nil
}

// Me resolves the permissions of the token holder.
func (s *AuthService) Me(claims *auth.Claims) MeResponse {
	return MeResponse{User: claims.SessionUser(), Permissions: s.table.Permissions(claims.Role)}
}

func (s *AuthService) Tokens() *auth.TokenManager { return s.tokens }

func (s *AuthService) Table() *auth.Table { return s.table }
