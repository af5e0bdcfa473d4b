package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"calmerge/internal/domain"
)

func TestMergeUnitOfWork_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM events WHERE id = ANY`).
		WithArgs(pq.Array([]string{"ev-1", "ev-2"})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(`INSERT INTO events`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-new"))
	mock.ExpectQuery(`INSERT INTO merge_audit_logs`).
		WithArgs("u1", "ev-new", pq.Array([]string{"ev-1", "ev-2"}), now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("audit-1"))
	mock.ExpectCommit()

	uow := NewMergeUnitOfWork(db)
	err = uow.Execute(ctx, func(events domain.EventRepository, audits domain.AuditLogRepository) error {
		if err := events.DeleteByIDs(ctx, []string{"ev-1", "ev-2"}); err != nil {
			return err
		}
		merged := domain.NewEvent("Planning | Review", nil, domain.StatusTodo, start, end,
			domain.Participant{ID: "u1"}, nil, now, now)
		merged.MergedFrom = []string{"ev-1", "ev-2"}
		if err := events.Create(ctx, merged); err != nil {
			return err
		}
		return audits.Create(ctx, domain.NewAuditLog("u1", merged.ID, []string{"ev-1", "ev-2"}, now))
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeUnitOfWork_RollsBackOnError(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM events WHERE id = ANY`).
		WillReturnError(boom)
	mock.ExpectRollback()

	uow := NewMergeUnitOfWork(db)
	err = uow.Execute(ctx, func(events domain.EventRepository, audits domain.AuditLogRepository) error {
		return events.DeleteByIDs(ctx, []string{"ev-1"})
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMergeUnitOfWork_BeginFailure(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	uow := NewMergeUnitOfWork(db)
	err = uow.Execute(ctx, func(events domain.EventRepository, audits domain.AuditLogRepository) error {
		return nil
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
