package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

const statsCacheKey = "admin:dashboard:stats"

// AdminService covers user management and the aggregated dashboard.
// Dashboard statistics are served through a Redis read-through cache; a
// cold or unreachable cache falls back to Postgres.
type AdminService struct {
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	auth       *AuthService
	cache      *redis.Client
	cacheTTL   time.Duration
	trendDays  int
	logger     *zap.Logger
}

// AdminDependencies bundles collaborators for the admin service.
type AdminDependencies struct {
	UserRepo        repository.UserRepository
	ComplaintRepo   repository.ComplaintRepository
	Auth            *AuthService
	Cache           *redis.Client
	CacheTTLSeconds int
	TrendWindowDays int
	Logger          *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	ttl := time.Duration(deps.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Minute
	}
	trend := deps.TrendWindowDays
	if trend <= 0 {
		trend = 7
	}
	return &AdminService{
		users:      deps.UserRepo,
		complaints: deps.ComplaintRepo,
		auth:       deps.Auth,
		cache:      deps.Cache,
		cacheTTL:   ttl,
		trendDays:  trend,
		logger:     deps.Logger,
	}
}

// DashboardStats is the cached admin dashboard payload.
type DashboardStats struct {
	TotalComplaints    int64                             `json:"total_complaints"`
	ByStatus           map[domain.ComplaintStatus]int64  `json:"by_status"`
	ByDepartment       map[string]int64                  `json:"by_department"`
	Categories         []repository.CategoryBreakdown    `json:"categories"`
	CreatedPerDay      []repository.DayCount             `json:"created_per_day"`
	ResolvedPerDay     []repository.DayCount             `json:"resolved_per_day"`
	RejectedPerDay     []repository.DayCount             `json:"rejected_per_day"`
	InProgressPerDay   []repository.DayCount             `json:"in_progress_per_day"`
	UnassignedActive   int64                             `json:"unassigned_active"`
	UsersByRole        map[domain.Role]int64             `json:"users_by_role"`
	GeneratedAt        time.Time                         `json:"generated_at"`
}

// ListUsers returns a filtered user listing.
func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}
	list, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// CreateUser lets an admin provision any account, including officers and
// other admins. Validation matches self-service registration.
func (s *AdminService) CreateUser(ctx context.Context, actor *domain.User, input RegisterInput) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}
	return s.auth.Register(ctx, input)
}

// SetUserActive toggles an account's active flag. Admins cannot deactivate
// themselves.
func (s *AdminService) SetUserActive(ctx context.Context, actor *domain.User, userID string, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}
	if userID == actor.ID && !active {
		return nil, apperrors.NewConflict("cannot deactivate your own account", nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user.Active = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUserInput carries a full user edit from the admin surface.
type UpdateUserInput struct {
	Name       string
	Email      string
	Role       domain.Role
	Department string
	Active     bool
}

// UpdateUser edits an account's name, email, role, department and active
// flag. Validation failures are collected; the department is kept only for
// officers and admins and cleared for citizens.
func (s *AdminService) UpdateUser(ctx context.Context, actor *domain.User, userID string, input UpdateUserInput) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	var problems []string
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		problems = append(problems, "Name must be at least 2 characters long")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		problems = append(problems, "Email is required")
	} else if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != userID {
		problems = append(problems, "Email already exists")
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if !domain.ValidRole(input.Role) {
		problems = append(problems, "Invalid role selected")
	}
	department := strings.TrimSpace(strings.ToLower(input.Department))
	if input.Role == domain.RoleMunicipal && department == "" {
		problems = append(problems, "Department is required for municipal officers")
	}
	if len(problems) > 0 {
		return nil, apperrors.NewValidationList(problems)
	}

	user.Name = name
	user.Email = email
	user.Role = input.Role
	if (input.Role == domain.RoleMunicipal || input.Role == domain.RoleAdmin) && department != "" {
		user.Department = &department
	} else {
		user.Department = nil
	}
	user.Active = input.Active

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes an account. Blocked for the acting admin themselves
// and for any user still involved in active complaints, as reporter or as
// assigned officer.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.User, userID string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin required")
	}
	if userID == actor.ID {
		return apperrors.NewConflict("cannot delete your own account", nil)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	involved, err := s.complaints.CountActiveInvolving(ctx, userID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if involved > 0 {
		return apperrors.NewConflict("user has active complaints", map[string]any{"active_complaints": involved})
	}
	return apperrors.MapError(s.users.Delete(ctx, userID))
}

// Dashboard returns aggregated statistics, served from Redis when fresh.
func (s *AdminService) Dashboard(ctx context.Context, actor *domain.User) (*DashboardStats, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}

	if cached := s.readCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.computeStats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, stats)
	return stats, nil
}

// InvalidateDashboard drops the cached payload so the next read recomputes.
func (s *AdminService) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil && s.logger != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

func (s *AdminService) computeStats(ctx context.Context) (*DashboardStats, error) {
	since := time.Now().UTC().AddDate(0, 0, -s.trendDays)
	stats := &DashboardStats{GeneratedAt: time.Now().UTC()}

	var err error
	if stats.TotalComplaints, err = s.complaints.Count(ctx, repository.ComplaintFilter{}); err != nil {
		return nil, err
	}
	if stats.ByStatus, err = s.complaints.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.ByDepartment, err = s.complaints.CountByDepartment(ctx); err != nil {
		return nil, err
	}
	if stats.Categories, err = s.complaints.CategoryBreakdowns(ctx); err != nil {
		return nil, err
	}
	if stats.CreatedPerDay, err = s.complaints.CreatedPerDay(ctx, since); err != nil {
		return nil, err
	}
	if stats.ResolvedPerDay, err = s.complaints.ResolvedPerDay(ctx, since); err != nil {
		return nil, err
	}
	if stats.RejectedPerDay, err = s.complaints.UpdatedPerDayWithStatus(ctx, domain.StatusRejected, since); err != nil {
		return nil, err
	}
	if stats.InProgressPerDay, err = s.complaints.UpdatedPerDayWithStatus(ctx, domain.StatusInProgress, since); err != nil {
		return nil, err
	}
	if stats.UnassignedActive, err = s.complaints.CountUnassignedActive(ctx); err != nil {
		return nil, err
	}
	if stats.UsersByRole, err = s.users.CountByRole(ctx); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *AdminService) readCache(ctx context.Context) *DashboardStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) && s.logger != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *AdminService) writeCache(ctx context.Context, stats *DashboardStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}
