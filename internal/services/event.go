package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calmerge/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, creatorID, title string, description *string, status domain.EventStatus, startTime, endTime time.Time, inviteeIDs []string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if title == "" {
		return nil, domain.ErrInvalidInput
	}
	if !startTime.Before(endTime) {
		return nil, domain.ErrInvalidInput
	}
	if status == "" {
		status = domain.StatusTodo
	}
	if !status.Valid() {
		return nil, domain.ErrInvalidInput
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get creator: %w", err)
	}

	invitees, err := s.resolveInvitees(ctx, creatorID, inviteeIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	event := domain.NewEvent(title, description, status, startTime, endTime, creator.AsParticipant(), invitees, now, now)
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// resolveInvitees deduplicates invitee IDs, drops the creator, and resolves
// the rest to participants. Unknown IDs fail the request.
func (s *eventService) resolveInvitees(ctx context.Context, creatorID string, inviteeIDs []string) ([]domain.Participant, error) {
	seen := map[string]struct{}{creatorID: {}}
	unique := make([]string, 0, len(inviteeIDs))
	for _, id := range inviteeIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []domain.Participant{}, nil
	}

	users, err := s.userRepo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve invitees: %w", err)
	}
	if len(users) != len(unique) {
		return nil, domain.ErrUserNotFound
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	invitees := make([]domain.Participant, 0, len(unique))
	for _, id := range unique {
		u, ok := byID[id]
		if !ok {
			return nil, domain.ErrUserNotFound
		}
		invitees = append(invitees, u.AsParticipant())
	}
	return invitees, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.Involves(callerID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListInvolving(ctx, userID, domain.MaxMergeBatchSize)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.Creator.ID != callerID {
		return nil, domain.ErrForbidden
	}

	if upd.Title != nil && *upd.Title == "" {
		return nil, domain.ErrInvalidInput
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, domain.ErrInvalidInput
	}

	// Time changes are re-validated against the resulting range.
	newStart := event.StartTime
	if upd.StartTime != nil {
		newStart = *upd.StartTime
	}
	newEnd := event.EndTime
	if upd.EndTime != nil {
		newEnd = *upd.EndTime
	}
	if !newStart.Before(newEnd) {
		return nil, domain.ErrInvalidInput
	}

	if upd.InviteeIDs != nil {
		invitees, err := s.resolveInvitees(ctx, event.Creator.ID, *upd.InviteeIDs)
		if err != nil {
			return nil, err
		}
		if err := s.eventRepo.ReplaceInvitees(ctx, eventID, invitees); err != nil {
			return nil, fmt.Errorf("replace invitees: %w", err)
		}
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd.Title, upd.Description, upd.Status, upd.StartTime, upd.EndTime)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.Creator.ID != callerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
