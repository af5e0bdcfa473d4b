package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"calmerge/internal/domain"
	"calmerge/internal/merge"
)

type mergeService struct {
	userRepo       domain.UserRepository
	eventRepo      domain.EventRepository
	auditRepo      domain.AuditLogRepository
	uow            domain.MergeUnitOfWork
	summarizer     domain.Summarizer   // optional
	queue          domain.SummaryQueue // optional
	emailService   domain.EmailService // optional
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewMergeService creates the merge orchestrator. Summarizer, queue, and
// email service are optional capabilities; the orchestrator stays correct
// with any combination of them missing.
func NewMergeService(userRepo domain.UserRepository,
	eventRepo domain.EventRepository,
	auditRepo domain.AuditLogRepository,
	uow domain.MergeUnitOfWork,
	summarizer domain.Summarizer,
	queue domain.SummaryQueue,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.MergeService {
	return &mergeService{
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		auditRepo:      auditRepo,
		uow:            uow,
		summarizer:     summarizer,
		queue:          queue,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// MergeAll consolidates the largest group of overlapping events involving
// the given user into a single event, deleting the sources and recording an
// audit log. Summarization and the merge-notice email are best-effort and
// never fail the merge.
func (s *mergeService) MergeAll(ctx context.Context, userID string) (*domain.MergeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Loading
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	events, err := s.eventRepo.ListInvolving(ctx, userID, domain.MaxMergeBatchSize)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	// Validating
	if len(events) < 2 {
		return nil, domain.ErrNotEnoughEvents
	}
	active := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if e.Status != domain.StatusCanceled {
			active = append(active, e)
		}
	}
	if len(active) < 2 {
		return nil, domain.ErrNotEnoughActiveEvents
	}

	// Grouping and selecting
	groups := merge.Groups(active, userID)
	if len(groups) == 0 {
		return nil, domain.ErrNoOverlappingEvents
	}
	group := merge.SelectGroup(groups)

	// Synthesizing
	draft := merge.Synthesize(group)
	now := time.Now()
	draft.CreatedAt = now
	draft.UpdatedAt = now

	// Persisting: delete sources, insert the merged event, and write the
	// audit row (notes null) in one transaction. On failure nothing below
	// runs and no partial state is observable.
	audit := domain.NewAuditLog(userID, "", draft.MergedFrom, now)
	err = s.uow.Execute(ctx, func(events domain.EventRepository, audits domain.AuditLogRepository) error {
		if err := events.DeleteByIDs(ctx, draft.MergedFrom); err != nil {
			return fmt.Errorf("delete source events: %w", err)
		}
		if err := events.Create(ctx, draft); err != nil {
			return fmt.Errorf("insert merged event: %w", err)
		}
		audit.NewEventID = draft.ID
		if err := audits.Create(ctx, audit); err != nil {
			return fmt.Errorf("create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply merge: %w", err)
	}
	s.logger.InfoContext(ctx, "merged overlapping events",
		"user_id", userID, "new_event_id", draft.ID, "merged", len(group))

	// Summarizing
	s.attachSummary(ctx, audit, group)

	s.notifyMerge(ctx, user, draft, len(group))

	return &domain.MergeResult{Event: draft, Audit: audit}, nil
}

// attachSummary fills the audit notes. Preferred path is the async queue;
// when the queue is absent or refuses the job it falls back to the
// synchronous summarizer, and on any failure there to the deterministic
// fallback note. Notes always end up non-null.
func (s *mergeService) attachSummary(ctx context.Context, audit *domain.AuditLog, group []*domain.Event) {
	if s.queue != nil {
		job := domain.SummaryJob{
			AuditLogID: audit.ID,
			EventCount: len(group),
			Events:     group,
		}
		if s.queue.Enqueue(job) {
			return
		}
		s.logger.WarnContext(ctx, "summary queue refused job, summarizing inline", "audit_log_id", audit.ID)
	}

	notes := FallbackSummaryNote(len(group))
	if s.summarizer != nil {
		text, err := s.summarizer.Summarize(ctx, group)
		if err != nil {
			s.logger.WarnContext(ctx, "summarizer failed, using fallback note", "audit_log_id", audit.ID, "err", err)
		} else if strings.TrimSpace(text) != "" {
			notes = text
		}
	}
	if err := s.auditRepo.UpdateNotes(ctx, audit.ID, notes); err != nil {
		s.logger.WarnContext(ctx, "failed to update audit notes", "audit_log_id", audit.ID, "err", err)
		return
	}
	audit.Notes = &notes
}

// notifyMerge sends the merge-notice email. Best-effort only.
func (s *mergeService) notifyMerge(ctx context.Context, user *domain.User, merged *domain.Event, count int) {
	if s.emailService == nil {
		return
	}
	data := &domain.MergeNoticeEmailData{
		Email:       user.Email,
		FirstName:   user.Name,
		EventCount:  count,
		MergedTitle: merged.Title,
		StartTime:   merged.StartTime,
		EndTime:     merged.EndTime,
	}
	if err := s.emailService.SendMergeNotice(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to send merge notice", "user_id", user.ID, "err", err)
	}
}

func (s *mergeService) ListAuditLogs(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.AuditLog, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	logs, total, err := s.auditRepo.ListByUserID(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	return logs, total, nil
}

// FallbackSummaryNote is the deterministic note written when no summarizer
// produced usable text.
func FallbackSummaryNote(n int) string {
	return fmt.Sprintf("Merged %d overlapping events", n)
}
