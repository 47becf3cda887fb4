package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// AdministrationDepartment is assigned to admin accounts created without an
// explicit department.
const AdministrationDepartment = "administration"

// AuthService handles registration and credential checks.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// RegisterInput carries a registration request. Department is required for
// municipal officers and ignored for citizens.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
}

// LoginResult bundles the issued token with its subject.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt int64        `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// Register creates an account. Self-service registration covers citizens and
// municipal officers; admin accounts come through the admin user management
// surface but share this validation path.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	var problems []string

	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		problems = append(problems, "Name must be at least 2 characters long")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		problems = append(problems, "Please provide a valid email address")
	}
	if ok, msg := auth.ValidatePasswordStrength(input.Password); !ok {
		problems = append(problems, msg)
	}
	if !domain.ValidRole(input.Role) {
		problems = append(problems, "Please select a valid role")
	}

	department := strings.TrimSpace(strings.ToLower(input.Department))
	switch input.Role {
	case domain.RoleMunicipal:
		if department == "" {
			problems = append(problems, "Department is required for municipal officers")
		}
	case domain.RoleAdmin:
		if department == "" {
			department = AdministrationDepartment
		}
	default:
		department = ""
	}

	if len(problems) > 0 {
		return nil, apperrors.NewValidationList(problems)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email is already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		Active:       true,
	}
	if department != "" {
		user.Department = &department
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login verifies credentials, stamps last_login and issues a JWT. Invalid
// email and wrong password are indistinguishable to the caller; deactivated
// accounts are told so explicitly.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	if !user.Active {
		return nil, apperrors.NewForbidden("account is deactivated")
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt.Unix(), User: user}, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, current, next string) error {
	if err := auth.ComparePassword(actor.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if ok, msg := auth.ValidatePasswordStrength(next); !ok {
		return apperrors.NewValidationError(msg, nil)
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	actor.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, actor))
}
