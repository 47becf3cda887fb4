package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

type adminFixture struct {
	svc        *AdminService
	users      *fakeUserRepo
	complaints *fakeComplaintRepo
	admin      *domain.User
}

func newAdminFixture() *adminFixture {
	users := newFakeUserRepo()
	complaints := newFakeComplaintRepo()
	authSvc := NewAuthService(users, auth.NewTokenManager("test-secret", 60), 4)
	svc := NewAdminService(AdminDependencies{
		UserRepo:      users,
		ComplaintRepo: complaints,
		Auth:          authSvc,
	})
	admin := users.add(&domain.User{Name: "Root", Email: "root@city.test", Role: domain.RoleAdmin, Active: true})
	return &adminFixture{svc: svc, users: users, complaints: complaints, admin: admin}
}

func TestDeleteUserGuards(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	err := f.svc.DeleteUser(ctx, f.admin, f.admin.ID)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code, "self-deletion is blocked")

	citizen := f.users.add(&domain.User{Name: "Asha", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})
	require.NoError(t, f.complaints.Create(ctx, &domain.Complaint{
		UserID:   citizen.ID,
		Category: domain.CategoryGarbage,
		Status:   domain.StatusSubmitted,
	}))

	err = f.svc.DeleteUser(ctx, f.admin, citizen.ID)
	require.Error(t, err)
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code, "reporters of active complaints cannot be deleted")
}

func TestDeleteUserBlockedForAssignedOfficer(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	assigned := f.users.add(officer("Priya", "roads"))
	require.NoError(t, f.complaints.Create(ctx, &domain.Complaint{
		UserID:          "someone",
		Category:        domain.CategoryPotholes,
		Status:          domain.StatusInProgress,
		AssignedOfficer: &assigned.ID,
	}))

	err := f.svc.DeleteUser(ctx, f.admin, assigned.ID)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestDeleteUserSucceedsWhenUninvolved(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	idle := f.users.add(&domain.User{Name: "Vik", Email: "vik@city.test", Role: domain.RoleCitizen, Active: true})
	require.NoError(t, f.svc.DeleteUser(ctx, f.admin, idle.ID))

	_, err := f.users.GetByID(ctx, idle.ID)
	require.Error(t, err)
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	citizen := f.users.add(&domain.User{Name: "Asha", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})
	err := f.svc.DeleteUser(ctx, citizen, f.admin.ID)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestSetUserActiveBlocksSelfDeactivation(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	_, err := f.svc.SetUserActive(ctx, f.admin, f.admin.ID, false)
	require.Error(t, err)

	target := f.users.add(&domain.User{Name: "Asha", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})
	updated, err := f.svc.SetUserActive(ctx, f.admin, target.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)
}

func TestUpdateUserEditsAccount(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	worker := f.users.add(officer("Priya", "roads"))
	updated, err := f.svc.UpdateUser(ctx, f.admin, worker.ID, UpdateUserInput{
		Name:       "Priya N",
		Email:      "priya.n@city.test",
		Role:       domain.RoleMunicipal,
		Department: "Water",
		Active:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Priya N", updated.Name)
	require.NotNil(t, updated.Department)
	assert.Equal(t, "water", *updated.Department, "department names are normalized to lowercase")
}

func TestUpdateUserClearsDepartmentForCitizens(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	worker := f.users.add(officer("Priya", "roads"))
	updated, err := f.svc.UpdateUser(ctx, f.admin, worker.ID, UpdateUserInput{
		Name:   "Priya",
		Email:  "priya@city.test",
		Role:   domain.RoleCitizen,
		Active: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Department)
}

func TestUpdateUserValidation(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	other := f.users.add(&domain.User{Name: "Vik", Email: "vik@city.test", Role: domain.RoleCitizen, Active: true})
	target := f.users.add(&domain.User{Name: "Asha", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})

	_, err := f.svc.UpdateUser(ctx, f.admin, target.ID, UpdateUserInput{
		Name:  "A",
		Email: other.Email,
		Role:  domain.Role("overlord"),
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	messages, ok := domainErr.Details["errors"].([]string)
	require.True(t, ok)
	assert.Contains(t, messages, "Name must be at least 2 characters long")
	assert.Contains(t, messages, "Email already exists")
	assert.Contains(t, messages, "Invalid role selected")

	_, err = f.svc.UpdateUser(ctx, f.admin, target.ID, UpdateUserInput{
		Name:  "Asha",
		Email: "asha@city.test",
		Role:  domain.RoleMunicipal,
	})
	require.Error(t, err, "officers need a department")
}

func TestDashboardComputesWithoutCache(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()

	citizen := f.users.add(&domain.User{Name: "Asha", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})
	roads := "roads"
	require.NoError(t, f.complaints.Create(ctx, &domain.Complaint{
		UserID:             citizen.ID,
		Category:           domain.CategoryPotholes,
		Status:             domain.StatusSubmitted,
		AssignedDepartment: &roads,
	}))
	require.NoError(t, f.complaints.Create(ctx, &domain.Complaint{
		UserID:             citizen.ID,
		Category:           domain.CategoryPotholes,
		Status:             domain.StatusResolved,
		AssignedDepartment: &roads,
	}))

	stats, err := f.svc.Dashboard(ctx, f.admin)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalComplaints)
	assert.Equal(t, int64(1), stats.ByStatus[domain.StatusSubmitted])
	assert.Equal(t, int64(1), stats.ByStatus[domain.StatusResolved])
	assert.Equal(t, int64(2), stats.ByDepartment["roads"])
	require.Len(t, stats.Categories, 1)
	assert.Equal(t, int64(2), stats.Categories[0].Total)
	assert.Equal(t, int64(1), stats.Categories[0].Resolved)
	assert.Equal(t, int64(1), stats.UnassignedActive)
	assert.Equal(t, int64(1), stats.UsersByRole[domain.RoleAdmin])
	assert.Equal(t, int64(1), stats.UsersByRole[domain.RoleCitizen])
}

func TestDashboardRequiresAdmin(t *testing.T) {
	f := newAdminFixture()

	citizen := f.users.add(&domain.User{Name: "Asha", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})
	_, err := f.svc.Dashboard(context.Background(), citizen)
	require.Error(t, err)
}
