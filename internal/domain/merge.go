package domain

import (
	"context"
	"errors"
	"time"
)

// MaxMergeBatchSize caps how many events a single merge invocation loads.
const MaxMergeBatchSize = 500

// Validation failures of a merge attempt. Each cause is a distinct sentinel
// so callers and tests can tell them apart.
var (
	ErrNotEnoughEvents       = errors.New("user must have at least 2 events to merge")
	ErrNotEnoughActiveEvents = errors.New("user must have at least 2 non-canceled events to merge")
	ErrNoOverlappingEvents   = errors.New("no overlapping events found")
)

// IsMergeValidationError reports whether err is one of the merge validation
// failures, as opposed to a not-found or persistence error.
func IsMergeValidationError(err error) bool {
	return errors.Is(err, ErrNotEnoughEvents) ||
		errors.Is(err, ErrNotEnoughActiveEvents) ||
		errors.Is(err, ErrNoOverlappingEvents)
}

// AuditLog is the immutable record of one merge operation. Notes starts null
// and is populated at most once afterward with the summary text.
// swagger:model AuditLog
type AuditLog struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	NewEventID     string    `json:"new_event_id"`
	MergedEventIDs []string  `json:"merged_event_ids"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewAuditLog returns a new AuditLog with null notes. ID is typically set by the repository on create.
func NewAuditLog(userID, newEventID string, mergedEventIDs []string, createdAt time.Time) *AuditLog {
	return &AuditLog{
		UserID:         userID,
		NewEventID:     newEventID,
		MergedEventIDs: mergedEventIDs,
		CreatedAt:      createdAt,
	}
}

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// AuditLogRepository defines the interface for audit log storage
type AuditLogRepository interface {
	Create(ctx context.Context, log *AuditLog) error
	// UpdateNotes sets the notes of an audit log whose notes are still null.
	UpdateNotes(ctx context.Context, id, notes string) error
	ListByUserID(ctx context.Context, userID string, params PaginationParams) ([]*AuditLog, int, error)
}

// MergeUnitOfWork runs a function against transaction-scoped repositories.
// Either every write inside fn commits or none do.
type MergeUnitOfWork interface {
	Execute(ctx context.Context, fn func(events EventRepository, audits AuditLogRepository) error) error
}

// MergeResult is the response-shaping view returned by a successful merge:
// the synthesized event plus its audit record. The attachment is transient,
// not persisted state.
type MergeResult struct {
	Event *Event    `json:"event"`
	Audit *AuditLog `json:"audit"`
}

// MergeService consolidates a user's overlapping events.
type MergeService interface {
	MergeAll(ctx context.Context, userID string) (*MergeResult, error)
	ListAuditLogs(ctx context.Context, userID string, params PaginationParams) ([]*AuditLog, int, error)
}

// Summarizer produces a human-readable summary of the merged events,
// callable synchronously.
type Summarizer interface {
	Summarize(ctx context.Context, events []*Event) (string, error)
}

// SummaryJob carries everything a background summarizer needs: the audit log
// to annotate and a snapshot of the merged events taken before they were
// deleted, so the worker never re-queries the store.
type SummaryJob struct {
	AuditLogID string   `json:"audit_log_id"`
	EventCount int      `json:"event_count"`
	Events     []*Event `json:"events"`
}

// SummaryQueue is the optional asynchronous summarization path. Enqueue
// reports whether the job was accepted; on false the caller falls back to
// the synchronous summarizer.
type SummaryQueue interface {
	Enqueue(job SummaryJob) bool
}
