package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"calmerge/internal/domain"
)

type mergeUnitOfWork struct {
	DB *sql.DB
}

// NewMergeUnitOfWork returns a MergeUnitOfWork that runs fn inside a single
// database transaction with repositories bound to it.
func NewMergeUnitOfWork(db *sql.DB) domain.MergeUnitOfWork {
	return &mergeUnitOfWork{DB: db}
}

func (u *mergeUnitOfWork) Execute(ctx context.Context, fn func(events domain.EventRepository, audits domain.AuditLogRepository) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(NewEventRepository(tx), NewAuditLogRepository(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
