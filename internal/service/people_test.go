package service

import (
	"context"
	"testing"
	"time"

	"vetlab/internal/auth"
	"vetlab/internal/model"
	"vetlab/internal/repository"
	ws "vetlab/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceHidesPasswords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewUserService(model.DomainLab, f.lab, time.Minute, nil)

	created, err := svc.Create(ctx, model.UserInput{Name: "سارة", Username: "sara", Password: "secret1", Role: model.RoleLabSpecialist})
	require.NoError(t, err)
	assert.Empty(t, created.Password)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Password)

	_, err = svc.Create(ctx, model.UserInput{Name: "other", Username: "SARA", Password: "secret2", Role: model.RoleLabSpecialist})
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)

	updated, err := svc.Update(ctx, created.ID, model.UserPatch{Name: ptr("سارة أحمد")})
	require.NoError(t, err)
	assert.Equal(t, "سارة أحمد", updated.Name)
	assert.Equal(t, "sara", updated.Username)
	assert.Empty(t, updated.Password)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "سارة أحمد", list[0].Name)

	missing, err := svc.Update(ctx, "ghost", model.UserPatch{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNotificationServiceBroadcasts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	hub := &recorder{}
	svc := NewNotificationService(model.DomainVet, f.vet, hub)

	n, err := svc.Create(ctx, model.NotificationInput{Title: "شحنة جديدة", Message: "تم تسجيل شحنة", Type: model.NotificationSuccess})
	require.NoError(t, err)
	assert.False(t, n.Read)

	events := hub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.DomainVet, events[0].domain)
	assert.Equal(t, ws.EventNotification, events[0].name)

	unread, err := svc.Unread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	toggled, err := svc.Toggle(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Read)

	_, err = svc.Create(ctx, model.NotificationInput{Title: "second"})
	require.NoError(t, err)
	count, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, err = svc.Unread(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread)

	ok, err := svc.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	table := auth.Default()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(auth.NewDirectory(f.lab, f.vet, nil), table, tokens)

	_, err := f.lab.CreateUser(ctx, model.UserInput{Name: "Admin", Username: "admin", Password: "admin123", Role: model.RoleProgramManager})
	require.NoError(t, err)
	_, err = f.lab.CreateUser(ctx, model.UserInput{Name: "Lab", Username: "lab1", Password: "pass123", Role: model.RoleLabSpecialist})
	require.NoError(t, err)

	res, err := svc.Login(ctx, "admin", "admin123", model.DomainVet)
	require.NoError(t, err)
	assert.Equal(t, model.DomainVet, res.User.Domain)
	assert.Contains(t, res.Permissions, auth.ApproveResults)

	claims, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	me := svc.Me(claims)
	assert.Equal(t, "admin", me.User.Username)
	assert.Equal(t, table.Permissions(model.RoleProgramManager), me.Permissions)

	_, err = svc.Login(ctx, "lab1", "pass123", model.DomainVet)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	res, err = svc.Login(ctx, "lab1", "pass123", model.DomainLab)
	require.NoError(t, err)
	assert.NotContains(t, res.Permissions, auth.ApproveResults)

	_, err = svc.Login(ctx, "lab1", "wrong", model.DomainLab)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
