package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across event operations.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// EventStatus is the lifecycle status of a calendar event.
type EventStatus string

const (
	StatusTodo       EventStatus = "TODO"
	StatusInProgress EventStatus = "IN_PROGRESS"
	StatusCompleted  EventStatus = "COMPLETED"
	StatusCanceled   EventStatus = "CANCELED"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// MergePriority orders statuses for merge resolution:
// COMPLETED > IN_PROGRESS > TODO > CANCELED.
func (s EventStatus) MergePriority() int {
	switch s {
	case StatusCompleted:
		return 4
	case StatusInProgress:
		return 3
	case StatusTodo:
		return 2
	case StatusCanceled:
		return 1
	}
	return 0
}

// Event represents a calendar event owned by its creator, with a set of
// invitees unique by participant ID. The creator is never listed among the
// invitees. MergedFrom carries the source event IDs when the event is the
// product of a merge.
// swagger:model Event
type Event struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      EventStatus   `json:"status"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Creator     Participant   `json:"creator"`
	Invitees    []Participant `json:"invitees"`
	MergedFrom  []string      `json:"merged_from,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title string, description *string, status EventStatus, startTime, endTime time.Time, creator Participant, invitees []Participant, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Description: description,
		Status:      status,
		StartTime:   startTime,
		EndTime:     endTime,
		Creator:     creator,
		Invitees:    invitees,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// Participants returns the creator followed by the invitees.
func (e *Event) Participants() []Participant {
	out := make([]Participant, 0, len(e.Invitees)+1)
	out = append(out, e.Creator)
	out = append(out, e.Invitees...)
	return out
}

// Involves reports whether the user with the given ID is the creator or an
// invitee of the event.
func (e *Event) Involves(userID string) bool {
	if e.Creator.ID == userID {
		return true
	}
	for _, p := range e.Invitees {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// EventUpdate holds the optional fields of a partial event update. Nil
// pointers leave the stored value unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Status      *EventStatus
	StartTime   *time.Time
	EndTime     *time.Time
	InviteeIDs  *[]string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// ListInvolving returns events where the user is creator or invitee,
	// ordered by start time ascending, capped at limit rows.
	ListInvolving(ctx context.Context, userID string, limit int) ([]*Event, error)
	Update(ctx context.Context, eventID string, title, description *string, status *EventStatus, startTime, endTime *time.Time) (*Event, error)
	ReplaceInvitees(ctx context.Context, eventID string, invitees []Participant) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) error
}

// EventService defines the business logic for event CRUD.
type EventService interface {
	CreateEvent(ctx context.Context, creatorID, title string, description *string, status EventStatus, startTime, endTime time.Time, inviteeIDs []string) (*Event, error)
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, error)
	ListMyEvents(ctx context.Context, userID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
}
