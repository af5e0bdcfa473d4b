package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"calmerge/internal/domain"
)

type eventRepository struct {
	DB querier
}

func NewEventRepository(db querier) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `
	e.id, e.title, e.description, e.status, e.start_time, e.end_time, e.merged_from, e.created_at, e.updated_at,
	c.id, c.name, c.last_name, c.email
`

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, status, start_time, end_time, creator_id, merged_from, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, string(e.Status), e.StartTime, e.EndTime,
		e.Creator.ID, pq.Array(e.MergedFrom), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return err
	}
	return r.insertInvitees(ctx, e.ID, e.Invitees)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN users c ON c.id = e.creator_id
		WHERE e.id = $1
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadInvitees(ctx, []*domain.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListInvolving(ctx context.Context, userID string, limit int) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN users c ON c.id = e.creator_id
		WHERE e.creator_id = $1
		   OR EXISTS (SELECT 1 FROM event_invitees ei WHERE ei.event_id = e.id AND ei.user_id = $1)
		ORDER BY e.start_time, e.id
		LIMIT $2
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadInvitees(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, eventID string, title, description *string, status *domain.EventStatus, startTime, endTime *time.Time) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *title)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, string(*status))
		n++
	}
	if startTime != nil {
		setClauses = append(setClauses, fmt.Sprintf("start_time = $%d", n))
		args = append(args, *startTime)
		n++
	}
	if endTime != nil {
		setClauses = append(setClauses, fmt.Sprintf("end_time = $%d", n))
		args = append(args, *endTime)
		n++
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
	`, strings.Join(setClauses, ", "), n)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, eventID)
}

func (r *eventRepository) ReplaceInvitees(ctx context.Context, eventID string, invitees []domain.Participant) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM event_invitees WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	return r.insertInvitees(ctx, eventID, invitees)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows != int64(len(ids)) {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) insertInvitees(ctx context.Context, eventID string, invitees []domain.Participant) error {
	for _, p := range invitees {
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO event_invitees (event_id, user_id) VALUES ($1, $2) ON CONFLICT (event_id, user_id) DO NOTHING`,
			eventID, p.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// loadInvitees fills in the invitee lists for the given events in one query.
func (r *eventRepository) loadInvitees(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Event, len(events))
	ids := make([]string, len(events))
	for i, e := range events {
		byID[e.ID] = e
		ids[i] = e.ID
		e.Invitees = []domain.Participant{}
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT ei.event_id, u.id, u.name, u.last_name, u.email
		FROM event_invitees ei
		JOIN users u ON u.id = ei.user_id
		WHERE ei.event_id = ANY($1)
		ORDER BY ei.event_id, u.id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var eventID string
		var p domain.Participant
		if err := rows.Scan(&eventID, &p.ID, &p.Name, &p.LastName, &p.Email); err != nil {
			return err
		}
		if e, ok := byID[eventID]; ok {
			e.Invitees = append(e.Invitees, p)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull sql.NullString
	var status string
	var mergedFrom pq.StringArray
	err := row.Scan(
		&e.ID, &e.Title, &descNull, &status, &e.StartTime, &e.EndTime, &mergedFrom, &e.CreatedAt, &e.UpdatedAt,
		&e.Creator.ID, &e.Creator.Name, &e.Creator.LastName, &e.Creator.Email,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	e.Status = domain.EventStatus(status)
	e.MergedFrom = mergedFrom
	return e, nil
}
