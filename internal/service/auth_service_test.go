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

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := auth.NewTokenManager("test-secret", 60)
	return NewAuthService(users, tokens, 4), users
}

func TestRegisterCitizen(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Asha Rao",
		Email:    "Asha@City.Test",
		Password: "Sunny123",
		Role:     domain.RoleCitizen,
	})
	require.NoError(t, err)

	assert.Equal(t, "asha@city.test", user.Email, "email is stored lowercased")
	assert.Equal(t, domain.RoleCitizen, user.Role)
	assert.Nil(t, user.Department, "citizens carry no department")
	assert.True(t, user.Active)
	assert.NotEqual(t, "Sunny123", user.PasswordHash)
}

func TestRegisterOfficerRequiresDepartment(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Priya",
		Email:    "priya@city.test",
		Password: "Sunny123",
		Role:     domain.RoleMunicipal,
	})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	messages, ok := domainErr.Details["errors"].([]string)
	require.True(t, ok)
	assert.Contains(t, messages, "Department is required for municipal officers")
}

func TestRegisterAdminDefaultsDepartment(t *testing.T) {
	svc, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Root",
		Email:    "root@city.test",
		Password: "Sunny123",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.NotNil(t, user.Department)
	assert.Equal(t, "administration", *user.Department)
}

func TestRegisterCollectsWeakPasswordAndBadEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	cases := []struct {
		name     string
		password string
		expect   string
	}{
		{"too short", "Ab1", "Password must be at least 8 characters long"},
		{"no uppercase", "lowercase1", "Password must contain at least one uppercase letter"},
		{"no lowercase", "UPPERCASE1", "Password must contain at least one lowercase letter"},
		{"no digit", "NoDigitsHere", "Password must contain at least one digit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), RegisterInput{
				Name:     "Test",
				Email:    "not-an-email",
				Password: tc.password,
				Role:     domain.RoleCitizen,
			})
			require.Error(t, err)

			var domainErr *apperrors.DomainError
			require.True(t, errors.As(err, &domainErr))
			messages, ok := domainErr.Details["errors"].([]string)
			require.True(t, ok)
			assert.Contains(t, messages, tc.expect)
			assert.Contains(t, messages, "Please provide a valid email address")
		})
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	input := RegisterInput{Name: "Asha", Email: "asha@city.test", Password: "Sunny123", Role: domain.RoleCitizen}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	_, err = svc.Register(ctx, input)
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "CONFLICT", domainErr.Code)
}

func TestLoginStampsLastLogin(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@city.test", Password: "Sunny123", Role: domain.RoleCitizen,
	})
	require.NoError(t, err)
	assert.Nil(t, registered.LastLogin)

	result, err := svc.Login(ctx, "ASHA@city.test", "Sunny123")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, registered.ID, result.User.ID)

	stored, err := users.GetByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@city.test", Password: "Sunny123", Role: domain.RoleCitizen,
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "asha@city.test", "WrongPass1")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code)

	_, err = svc.Login(ctx, "nobody@city.test", "Sunny123")
	require.Error(t, err)
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "UNAUTHORIZED", domainErr.Code, "unknown email reads the same as a wrong password")

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.Active = false
	require.NoError(t, users.Update(ctx, stored))

	_, err = svc.Login(ctx, "asha@city.test", "Sunny123")
	require.Error(t, err)
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestChangePassword(t *testing.T) {
	svc, users := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name: "Asha", Email: "asha@city.test", Password: "Sunny123", Role: domain.RoleCitizen,
	})
	require.NoError(t, err)

	require.Error(t, svc.ChangePassword(ctx, user, "WrongPass1", "Rainy456"))
	require.Error(t, svc.ChangePassword(ctx, user, "Sunny123", "weak"))
	require.NoError(t, svc.ChangePassword(ctx, user, "Sunny123", "Rainy456"))

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, auth.ComparePassword(stored.PasswordHash, "Rainy456"))
}
