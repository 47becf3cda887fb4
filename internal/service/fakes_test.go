package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

// In-memory repository fakes. They implement just enough filtering for the
// service tests; write failures are injected through the fail* flags.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetManyByIDs(_ context.Context, ids []string) (map[string]domain.User, error) {
	result := make(map[string]domain.User)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			result[id] = *user
		}
	}
	return result, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && (user.Department == nil || *user.Department != *filter.Department) {
			continue
		}
		if filter.Active != nil && user.Active != *filter.Active {
			continue
		}
		result = append(result, *user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeUserRepo) TouchLastLogin(_ context.Context, id string) error {
	if user, ok := r.users[id]; ok {
		now := time.Now()
		user.LastLogin = &now
	}
	return nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	result := make(map[domain.Role]int64)
	for _, user := range r.users {
		result[user.Role]++
	}
	return result, nil
}

type fakeComplaintRepo struct {
	complaints map[string]*domain.Complaint
	order      []string
	failCreate error
	failUpdate error
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{complaints: make(map[string]*domain.Complaint)}
}

func (r *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now
	copied := *complaint
	r.complaints[complaint.ID] = &copied
	r.order = append(r.order, complaint.ID)
	return nil
}

func (r *fakeComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	if _, ok := r.complaints[complaint.ID]; !ok {
		return pgx.ErrNoRows
	}
	complaint.UpdatedAt = time.Now()
	copied := *complaint
	r.complaints[complaint.ID] = &copied
	return nil
}

func (r *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	complaint, ok := r.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *complaint
	return &copied, nil
}

func (r *fakeComplaintRepo) matches(c *domain.Complaint, filter repository.ComplaintFilter) bool {
	if filter.UserID != nil && c.UserID != *filter.UserID {
		return false
	}
	if filter.AssignedDepartment != nil && (c.AssignedDepartment == nil || *c.AssignedDepartment != *filter.AssignedDepartment) {
		return false
	}
	if filter.AssignedOfficer != nil && (c.AssignedOfficer == nil || *c.AssignedOfficer != *filter.AssignedOfficer) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, c.Status) {
		return false
	}
	if len(filter.Categories) > 0 && !containsCategory(filter.Categories, c.Category) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, c.Priority) {
		return false
	}
	if filter.CreatedFrom != nil && c.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && c.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	if filter.ResolvedFrom != nil && (c.ResolvedAt == nil || c.ResolvedAt.Before(*filter.ResolvedFrom)) {
		return false
	}
	if filter.Unassigned && c.AssignedOfficer != nil {
		return false
	}
	return true
}

// ListWithFilter walks insertion order backwards, matching the store's
// newest-first listings.
func (r *fakeComplaintRepo) ListWithFilter(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for i := len(r.order) - 1; i >= 0; i-- {
		c := r.complaints[r.order[i]]
		if r.matches(c, filter) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fakeComplaintRepo) Count(ctx context.Context, filter repository.ComplaintFilter) (int64, error) {
	list, _ := r.ListWithFilter(ctx, filter)
	return int64(len(list)), nil
}

func (r *fakeComplaintRepo) CountInProgressByOfficer(_ context.Context, officerIDs []string) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, c := range r.complaints {
		if c.Status != domain.StatusInProgress || c.AssignedOfficer == nil {
			continue
		}
		for _, id := range officerIDs {
			if id == *c.AssignedOfficer {
				result[id]++
			}
		}
	}
	return result, nil
}

func (r *fakeComplaintRepo) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int64, error) {
	result := make(map[domain.ComplaintStatus]int64)
	for _, c := range r.complaints {
		result[c.Status]++
	}
	return result, nil
}

func (r *fakeComplaintRepo) CountByDepartment(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, c := range r.complaints {
		if c.AssignedDepartment != nil {
			result[*c.AssignedDepartment]++
		}
	}
	return result, nil
}

func (r *fakeComplaintRepo) CategoryBreakdowns(_ context.Context) ([]repository.CategoryBreakdown, error) {
	byCategory := make(map[domain.ComplaintCategory]*repository.CategoryBreakdown)
	for _, c := range r.complaints {
		entry, ok := byCategory[c.Category]
		if !ok {
			entry = &repository.CategoryBreakdown{Category: c.Category}
			byCategory[c.Category] = entry
		}
		entry.Total++
		if c.Status == domain.StatusResolved {
			entry.Resolved++
		}
	}
	var result []repository.CategoryBreakdown
	for _, entry := range byCategory {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

func (r *fakeComplaintRepo) CreatedPerDay(_ context.Context, _ time.Time) ([]repository.DayCount, error) {
	return nil, nil
}

func (r *fakeComplaintRepo) ResolvedPerDay(_ context.Context, _ time.Time) ([]repository.DayCount, error) {
	return nil, nil
}

func (r *fakeComplaintRepo) UpdatedPerDayWithStatus(_ context.Context, _ domain.ComplaintStatus, _ time.Time) ([]repository.DayCount, error) {
	return nil, nil
}

func (r *fakeComplaintRepo) CountUnassignedActive(_ context.Context) (int64, error) {
	var count int64
	for _, c := range r.complaints {
		if c.AssignedOfficer == nil && (c.Status == domain.StatusSubmitted || c.Status == domain.StatusInProgress) {
			count++
		}
	}
	return count, nil
}

func (r *fakeComplaintRepo) CountActiveInvolving(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, c := range r.complaints {
		if c.Status != domain.StatusSubmitted && c.Status != domain.StatusInProgress {
			continue
		}
		if c.UserID == userID || (c.AssignedOfficer != nil && *c.AssignedOfficer == userID) {
			count++
		}
	}
	return count, nil
}

type fakeUpdateRepo struct {
	updates    []domain.StatusUpdate
	failCreate error
}

func newFakeUpdateRepo() *fakeUpdateRepo {
	return &fakeUpdateRepo{}
}

func (r *fakeUpdateRepo) Create(_ context.Context, update *domain.StatusUpdate) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.Timestamp.IsZero() {
		update.Timestamp = time.Now()
	}
	r.updates = append(r.updates, *update)
	return nil
}

func (r *fakeUpdateRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	var result []domain.StatusUpdate
	for i := len(r.updates) - 1; i >= 0; i-- {
		if r.updates[i].ComplaintID == complaintID {
			result = append(result, r.updates[i])
		}
	}
	return result, nil
}

func (r *fakeUpdateRepo) CountByComplaints(_ context.Context, complaintIDs []string) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, update := range r.updates {
		for _, id := range complaintIDs {
			if update.ComplaintID == id {
				result[id]++
			}
		}
	}
	return result, nil
}

// fakeTxManager snapshots repository state before running the function and
// restores it when the function fails, mimicking a rollback.
type fakeTxManager struct {
	users      *fakeUserRepo
	complaints *fakeComplaintRepo
	updates    *fakeUpdateRepo
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	userSnap := make(map[string]*domain.User, len(m.users.users))
	for id, user := range m.users.users {
		copied := *user
		userSnap[id] = &copied
	}
	complaintSnap := make(map[string]*domain.Complaint, len(m.complaints.complaints))
	for id, c := range m.complaints.complaints {
		copied := *c
		complaintSnap[id] = &copied
	}
	orderSnap := append([]string(nil), m.complaints.order...)
	updateSnap := append([]domain.StatusUpdate(nil), m.updates.updates...)

	err := fn(ctx, repository.TxRepos{
		Users:      m.users,
		Complaints: m.complaints,
		Updates:    m.updates,
	})
	if err != nil {
		m.users.users = userSnap
		m.complaints.complaints = complaintSnap
		m.complaints.order = orderSnap
		m.updates.updates = updateSnap
	}
	return err
}

type fakeUploadCleaner struct {
	removed []string
}

func (c *fakeUploadCleaner) Remove(filename string) error {
	c.removed = append(c.removed, filename)
	return nil
}

func containsStatus(list []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func containsCategory(list []domain.ComplaintCategory, c domain.ComplaintCategory) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.ComplaintPriority, p domain.ComplaintPriority) bool {
	for _, item := range list {
		if item == p {
			return true
		}
	}
	return false
}
