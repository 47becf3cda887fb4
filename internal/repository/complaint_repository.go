package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// ComplaintFilter captures listing and counting parameters.
type ComplaintFilter struct {
	UserID             *string
	AssignedDepartment *string
	AssignedOfficer    *string
	Statuses           []domain.ComplaintStatus
	Categories         []domain.ComplaintCategory
	Priorities         []domain.ComplaintPriority
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
	ResolvedFrom       *time.Time
	Unassigned         bool
	OrderByPriority    bool
	Limit              int
	Offset             int
}

// DayCount is one bucket of a per-day aggregate.
type DayCount struct {
	Day   time.Time
	Count int64
}

// CategoryBreakdown pairs per-category totals with how many are resolved.
type CategoryBreakdown struct {
	Category domain.ComplaintCategory
	Total    int64
	Resolved int64
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	Count(ctx context.Context, filter ComplaintFilter) (int64, error)
	CountInProgressByOfficer(ctx context.Context, officerIDs []string) (map[string]int64, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error)
	CountByDepartment(ctx context.Context) (map[string]int64, error)
	CategoryBreakdowns(ctx context.Context) ([]CategoryBreakdown, error)
	CreatedPerDay(ctx context.Context, since time.Time) ([]DayCount, error)
	ResolvedPerDay(ctx context.Context, since time.Time) ([]DayCount, error)
	UpdatedPerDayWithStatus(ctx context.Context, status domain.ComplaintStatus, since time.Time) ([]DayCount, error)
	CountUnassignedActive(ctx context.Context) (int64, error)
	CountActiveInvolving(ctx context.Context, userID string) (int64, error)
}

type complaintRepository struct {
	q Querier
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(q Querier) ComplaintRepository {
	return &complaintRepository{q: q}
}

const complaintColumns = `id, user_id, category, description, address, landmark, image_filename,
               assigned_department, assigned_officer, status, priority, resolution_notes,
               created_at, updated_at, resolved_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, category, description, address, landmark, image_filename,
            assigned_department, assigned_officer, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.q.QueryRow(ctx, query,
		complaint.UserID,
		complaint.Category,
		complaint.Description,
		complaint.Address,
		complaint.Landmark,
		complaint.ImageFilename,
		complaint.AssignedDepartment,
		complaint.AssignedOfficer,
		complaint.Status,
		complaint.Priority,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints
        SET assigned_department=$1, assigned_officer=$2, status=$3, priority=$4,
            resolution_notes=$5, resolved_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.q.Exec(ctx, query,
		complaint.AssignedDepartment,
		complaint.AssignedOfficer,
		complaint.Status,
		complaint.Priority,
		complaint.ResolutionNotes,
		complaint.ResolvedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	var complaint domain.Complaint
	if err := r.q.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.UserID,
		&complaint.Category,
		&complaint.Description,
		&complaint.Address,
		&complaint.Landmark,
		&complaint.ImageFilename,
		&complaint.AssignedDepartment,
		&complaint.AssignedOfficer,
		&complaint.Status,
		&complaint.Priority,
		&complaint.ResolutionNotes,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses, args := buildComplaintClauses(filter)

	order := " ORDER BY created_at DESC"
	if filter.OrderByPriority {
		order = ` ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at DESC`
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s%s LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), order, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) Count(ctx context.Context, filter ComplaintFilter) (int64, error) {
	clauses, args := buildComplaintClauses(filter)
	query := `SELECT COUNT(*) FROM complaints WHERE ` + strings.Join(clauses, " AND ")

	var count int64
	if err := r.q.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountInProgressByOfficer recomputes per-officer active load in one grouped
// query; officers without in_progress complaints are absent from the result.
func (r *complaintRepository) CountInProgressByOfficer(ctx context.Context, officerIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(officerIDs))
	if len(officerIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT assigned_officer, COUNT(*)
        FROM complaints
        WHERE status='in_progress' AND assigned_officer = ANY($1)
        GROUP BY assigned_officer`
	rows, err := r.q.Query(ctx, query, officerIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var officerID string
		var count int64
		if err := rows.Scan(&officerID, &count); err != nil {
			return nil, err
		}
		result[officerID] = count
	}
	return result, rows.Err()
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.ComplaintStatus]int64)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *complaintRepository) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	const query = `
        SELECT assigned_department, COUNT(*)
        FROM complaints
        WHERE assigned_department IS NOT NULL
        GROUP BY assigned_department`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var dept string
		var count int64
		if err := rows.Scan(&dept, &count); err != nil {
			return nil, err
		}
		result[dept] = count
	}
	return result, rows.Err()
}

func (r *complaintRepository) CategoryBreakdowns(ctx context.Context) ([]CategoryBreakdown, error) {
	const query = `
        SELECT category, COUNT(*),
               COUNT(*) FILTER (WHERE status='resolved')
        FROM complaints
        GROUP BY category
        ORDER BY category`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryBreakdown
	for rows.Next() {
		var item CategoryBreakdown
		if err := rows.Scan(&item.Category, &item.Total, &item.Resolved); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *complaintRepository) CreatedPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	const query = `
        SELECT date_trunc('day', created_at), COUNT(*)
        FROM complaints
        WHERE created_at >= $1
        GROUP BY 1 ORDER BY 1`
	return r.dayCounts(ctx, query, since)
}

func (r *complaintRepository) ResolvedPerDay(ctx context.Context, since time.Time) ([]DayCount, error) {
	const query = `
        SELECT date_trunc('day', resolved_at), COUNT(*)
        FROM complaints
        WHERE resolved_at >= $1
        GROUP BY 1 ORDER BY 1`
	return r.dayCounts(ctx, query, since)
}

func (r *complaintRepository) UpdatedPerDayWithStatus(ctx context.Context, status domain.ComplaintStatus, since time.Time) ([]DayCount, error) {
	const query = `
        SELECT date_trunc('day', updated_at), COUNT(*)
        FROM complaints
        WHERE status=$1 AND updated_at >= $2
        GROUP BY 1 ORDER BY 1`
	rows, err := r.q.Query(ctx, query, status, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDayCounts(rows)
}

func (r *complaintRepository) CountUnassignedActive(ctx context.Context) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM complaints
        WHERE assigned_officer IS NULL AND status IN ('submitted','in_progress')`
	var count int64
	if err := r.q.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveInvolving counts open complaints the user filed or is assigned
// to; used to refuse account deletion.
func (r *complaintRepository) CountActiveInvolving(ctx context.Context, userID string) (int64, error) {
	const query = `
        SELECT COUNT(*) FROM complaints
        WHERE (user_id=$1 OR assigned_officer=$1) AND status IN ('submitted','in_progress')`
	var count int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *complaintRepository) dayCounts(ctx context.Context, query string, since time.Time) ([]DayCount, error) {
	rows, err := r.q.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDayCounts(rows)
}

func collectDayCounts(rows pgx.Rows) ([]DayCount, error) {
	var result []DayCount
	for rows.Next() {
		var item DayCount
		if err := rows.Scan(&item.Day, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func buildComplaintClauses(filter ComplaintFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.AssignedDepartment != nil {
		args = append(args, *filter.AssignedDepartment)
		clauses = append(clauses, fmt.Sprintf("assigned_department=$%d", len(args)))
	}
	if filter.AssignedOfficer != nil {
		args = append(args, *filter.AssignedOfficer)
		clauses = append(clauses, fmt.Sprintf("assigned_officer=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "assigned_officer IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, priority := range filter.Priorities {
			args = append(args, priority)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.ResolvedFrom != nil {
		args = append(args, *filter.ResolvedFrom)
		clauses = append(clauses, fmt.Sprintf("resolved_at >= $%d", len(args)))
	}

	return clauses, args
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.UserID,
			&complaint.Category,
			&complaint.Description,
			&complaint.Address,
			&complaint.Landmark,
			&complaint.ImageFilename,
			&complaint.AssignedDepartment,
			&complaint.AssignedOfficer,
			&complaint.Status,
			&complaint.Priority,
			&complaint.ResolutionNotes,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
