package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRepos bundles transaction-bound repositories. Every write that touches a
// complaint together with its timeline goes through these so the audit
// invariant never observes a torn write.
type TxRepos struct {
	Users      UserRepository
	Complaints ComplaintRepository
	Updates    StatusUpdateRepository
}

// TxManager runs a function against repositories bound to one transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

type pgxTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager builds a pgx-backed transaction manager.
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &pgxTxManager{pool: pool}
}

func (m *pgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	repos := TxRepos{
		Users:      NewUserRepository(tx),
		Complaints: NewComplaintRepository(tx),
		Updates:    NewStatusUpdateRepository(tx),
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
