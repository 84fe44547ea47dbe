package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"vetlab/internal/model"
	"vetlab/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expected = map[string][]string{
	model.RoleProgramManager: {
		ViewDashboard, ViewSamples, ManageSamples, DeleteSamples, ViewResults, EnterResults, ApproveResults,
		ViewInventory, ManageInventory, WithdrawInventory, ViewShipments, ManageShipments, DeleteShipments,
		ViewTraders, ManageTraders, ViewQuarantine, ViewReports, ExportData, ViewUsers, ManageUsers,
		ViewNotifications, ManageNotifications,
	},
	model.RoleQuarantineGeneralSupervisor: {
		ViewDashboard, ViewSamples, ViewResults, ViewShipments, ManageShipments, DeleteShipments, ViewTraders,
		ManageTraders, ViewQuarantine, ViewReports, ExportData, ViewUsers, ManageUsers, ViewNotifications,
		ManageNotifications,
	},
	model.RoleLabManager: {
		ViewDashboard, ViewSamples, ViewNotifications, ManageSamples, DeleteSamples, ViewResults, EnterResults,
		ApproveResults, ViewInventory, ManageInventory, WithdrawInventory, ViewReports, ExportData, ViewUsers,
		ManageNotifications,
	},
	model.RoleSectionSupervisor: {
		ViewDashboard, ViewSamples, ViewNotifications, ManageSamples, ViewResults, EnterResults, ApproveResults,
		ViewInventory, WithdrawInventory, ViewReports,
	},
	model.RoleLabSpecialist: {
		ViewDashboard, ViewSamples, ViewNotifications, ViewResults, EnterResults, ViewInventory, WithdrawInventory,
	},
	model.RoleReceptionSpecialist: {ViewDashboard, ViewSamples, ViewNotifications, ManageSamples},
	model.RoleInventoryOfficer: {
		ViewDashboard, ViewNotifications, ViewInventory, ManageInventory, WithdrawInventory, ViewReports,
	},
	model.RoleQuarantineSupervisor: {
		ViewDashboard, ViewShipments, ViewNotifications, ManageShipments, ViewTraders, ManageTraders,
		ViewQuarantine, ViewReports, ExportData,
	},
	model.RoleVeterinarian: {
		ViewDashboard, ViewShipments, ViewNotifications, ManageShipments, ViewTraders, ViewQuarantine,
	},
	model.RoleDataEntry: {ViewDashboard, ViewShipments, ViewNotifications, ViewTraders, ManageTraders},
}

func TestDefaultTableMatchesRoles(t *testing.T) {
	table := Default()
	assert.Len(t, table.Roles(), len(expected))

	for role, perms := range expected {
		assert.ElementsMatch(t, perms, table.Permissions(role), role)
		allowed := map[string]bool{}
		for _, p := range perms {
			allowed[p] = true
		}
		for _, p := range table.Catalog() {
			assert.Equal(t, allowed[p], table.Has(role, p), "%s/%s", role, p)
		}
	}
}

func TestUnknownRoleHoldsNothing(t *testing.T) {
	table := Default()
	assert.False(t, table.Has("admin", ViewDashboard))
	assert.False(t, table.HasAny("", ViewDashboard, ViewSamples))
	assert.Empty(t, table.Permissions("admin"))
}

func TestLoadRejectsUnknownPermission(t *testing.T) {
	_, err := Load([]byte("permissions: [a]\nroles:\n  r:\n    domain: lab\n    permissions: [b]\n"))
	assert.Error(t, err)

	_, err = Load([]byte("permissions: [a]\nroles:\n  r:\n    domain: lab\n    include: [missing]\n"))
	assert.Error(t, err)

	_, err = Load([]byte("permissions: [a]\nroles:\n  r:\n    domain: mars\n"))
	assert.Error(t, err)
}

type fakeStore map[string]model.User

func (f fakeStore) Authenticate(_ context.Context, username, password string) (*model.User, error) {
	u, ok := f[username]
	if !ok || u.Password != password {
		return nil, nil
	}
	return &u, nil
}

func newTestDirectory() *Directory {
	lab := fakeStore{
		"admin": {ID: "1", Name: "Admin", Username: "admin", Password: "pw", Role: model.RoleProgramManager, IsActive: true},
		"sara":  {ID: "2", Name: "Sara", Username: "sara", Password: "pw", Role: model.RoleLabSpecialist, IsActive: true},
	}
	vet := fakeStore{
		"gs":  {ID: "3", Name: "General", Username: "gs", Password: "pw", Role: model.RoleQuarantineGeneralSupervisor, IsActive: true},
		"vet": {ID: "4", Name: "Vet", Username: "vet", Password: "pw", Role: model.RoleVeterinarian, IsActive: true},
	}
	return NewDirectory(lab, vet, nil)
}

func TestDirectoryCrossDomainOnlyForGlobalRoles(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory()

	u, err := dir.SignIn(ctx, "gs", "pw", model.DomainLab)
	require.NoError(t, err)
	assert.Equal(t, model.DomainLab, u.Domain)
	assert.Equal(t, model.RoleQuarantineGeneralSupervisor, u.Role)

	_, err = dir.SignIn(ctx, "vet", "pw", model.DomainLab)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = dir.SignIn(ctx, "sara", "wrong", model.DomainLab)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = dir.SignIn(ctx, "sara", "pw", "mars")
	assert.Error(t, err)
}

func TestDirectoryRejectsRoleFromWrongStore(t *testing.T) {
	// a vet store that hands back a lab-only account, as a misrouted host would
	vet := fakeStore{"sara": {ID: "2", Username: "sara", Password: "pw", Role: model.RoleLabSpecialist, IsActive: true}}
	dir := NewDirectory(fakeStore{}, vet, nil)

	_, err := dir.SignIn(context.Background(), "sara", "pw", model.DomainVet)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

type erroringStore struct{}

func (erroringStore) Authenticate(context.Context, string, string) (*model.User, error) {
	return nil, errors.New("store offline")
}

func TestDirectorySurfacesStoreErrors(t *testing.T) {
	dir := NewDirectory(erroringStore{}, erroringStore{}, nil)
	_, err := dir.SignIn(context.Background(), "x", "y", model.DomainLab)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	s := NewSession(newTestDirectory(), Default(), port, nil)

	assert.Equal(t, StateLoading, s.State())
	assert.False(t, s.HasPermission(ViewDashboard))

	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.False(t, s.HasPermission(ViewDashboard))

	_, err := s.SignIn(ctx, "admin", "pw", model.DomainLab)
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.True(t, s.HasPermission(ApproveResults))
	assert.False(t, s.HasPermission("launch_rockets"))

	// a fresh session picks up the persisted user
	restored := NewSession(newTestDirectory(), Default(), port, nil)
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, StateAuthenticated, restored.State())
	assert.Equal(t, "admin", restored.User().Username)

	require.NoError(t, restored.SignOut(ctx))
	assert.Nil(t, restored.User())
	assert.False(t, restored.HasPermission(ViewDashboard))
	_, err = port.Load(ctx, model.SessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestApproveResultsByRole(t *testing.T) {
	ctx := context.Background()
	admin := NewSession(newTestDirectory(), Default(), storage.NewMemory(), nil)
	_, err := admin.SignIn(ctx, "admin", "pw", model.DomainLab)
	require.NoError(t, err)

	specialist := NewSession(newTestDirectory(), Default(), storage.NewMemory(), nil)
	_, err = specialist.SignIn(ctx, "sara", "pw", model.DomainLab)
	require.NoError(t, err)

	assert.True(t, admin.HasPermission(ApproveResults))
	assert.False(t, specialist.HasPermission(ApproveResults))
}

func TestRestoreDiscardsGarbage(t *testing.T) {
	ctx := context.Background()
	port := storage.NewMemory()
	require.NoError(t, port.Save(ctx, model.SessionKey, []byte("nope")))

	s := NewSession(newTestDirectory(), Default(), port, nil)
	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	user := model.SessionUser{ID: "u1", Name: "Admin", Role: model.RoleProgramManager, Domain: model.DomainVet}

	token, exp, err := m.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, model.DomainVet, claims.Domain)
	assert.Equal(t, model.RoleProgramManager, claims.SessionUser().Role)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(user)
	require.NoError(t, err)
	_, err = m.Parse(old)
	assert.Error(t, err)
}
