package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// StatusUpdateRepository stores the append-only complaint timeline.
type StatusUpdateRepository interface {
	Create(ctx context.Context, update *domain.StatusUpdate) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusUpdate, error)
	CountByComplaints(ctx context.Context, complaintIDs []string) (map[string]int64, error)
}

type statusUpdateRepository struct {
	q Querier
}

// NewStatusUpdateRepository builds the repository.
func NewStatusUpdateRepository(q Querier) StatusUpdateRepository {
	return &statusUpdateRepository{q: q}
}

func (r *statusUpdateRepository) Create(ctx context.Context, update *domain.StatusUpdate) error {
	const query = `
        INSERT INTO status_updates (complaint_id, updated_by, old_status, new_status, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, timestamp`
	return r.q.QueryRow(ctx, query,
		update.ComplaintID,
		update.UpdatedBy,
		update.OldStatus,
		update.NewStatus,
		update.Note,
	).Scan(&update.ID, &update.Timestamp)
}

// ListByComplaint returns the timeline newest first.
func (r *statusUpdateRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.StatusUpdate, error) {
	const query = `
        SELECT id, complaint_id, updated_by, old_status, new_status, note, timestamp
        FROM status_updates WHERE complaint_id=$1 ORDER BY timestamp DESC, id DESC`
	rows, err := r.q.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusUpdate
	for rows.Next() {
		var update domain.StatusUpdate
		if err := scanStatusUpdate(rows, &update); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}

func (r *statusUpdateRepository) CountByComplaints(ctx context.Context, complaintIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(complaintIDs))
	if len(complaintIDs) == 0 {
		return result, nil
	}
	const query = `
        SELECT complaint_id, COUNT(*)
        FROM status_updates
        WHERE complaint_id = ANY($1)
        GROUP BY complaint_id`
	rows, err := r.q.Query(ctx, query, complaintIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var complaintID string
		var count int64
		if err := rows.Scan(&complaintID, &count); err != nil {
			return nil, err
		}
		result[complaintID] = count
	}
	return result, rows.Err()
}

func scanStatusUpdate(rows pgx.Rows, update *domain.StatusUpdate) error {
	return rows.Scan(
		&update.ID,
		&update.ComplaintID,
		&update.UpdatedBy,
		&update.OldStatus,
		&update.NewStatus,
		&update.Note,
		&update.Timestamp,
	)
}
