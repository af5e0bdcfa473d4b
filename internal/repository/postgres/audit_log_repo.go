package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"calmerge/internal/domain"
)

type auditLogRepository struct {
	DB querier
}

func NewAuditLogRepository(db querier) domain.AuditLogRepository {
	return &auditLogRepository{DB: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	query := `
		INSERT INTO merge_audit_logs (user_id, new_event_id, merged_event_ids, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		log.UserID, log.NewEventID, pq.Array(log.MergedEventIDs), log.CreatedAt,
	).Scan(&log.ID)
}

// UpdateNotes writes the summary note, but only while notes are still null.
// A second write is a no-op reported as ErrNotFound.
func (r *auditLogRepository) UpdateNotes(ctx context.Context, id, notes string) error {
	query := `
		UPDATE merge_audit_logs SET notes = $2
		WHERE id = $1 AND notes IS NULL
	`
	result, err := r.DB.ExecContext(ctx, query, id, notes)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *auditLogRepository) ListByUserID(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.AuditLog, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM merge_audit_logs WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, new_event_id, merged_event_ids, notes, created_at
		FROM merge_audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		l := &domain.AuditLog{}
		var mergedIDs pq.StringArray
		var notesNull sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.NewEventID, &mergedIDs, &notesNull, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		l.MergedEventIDs = mergedIDs
		if notesNull.Valid {
			l.Notes = &notesNull.String
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
