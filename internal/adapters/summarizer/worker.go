package summarizer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"calmerge/internal/domain"
	"calmerge/internal/services"
)

// Worker consumes summary jobs from a bounded in-process queue and writes
// the resulting note onto the audit log. A job that cannot be summarized
// still gets the fallback note so the log never stays unannotated.
type Worker struct {
	jobs       chan domain.SummaryJob
	summarizer domain.Summarizer
	auditRepo  domain.AuditLogRepository
	timeout    time.Duration
	logger     *slog.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewWorker returns a stopped worker with a queue of the given size.
func NewWorker(summarizer domain.Summarizer, auditRepo domain.AuditLogRepository, queueSize int, timeout time.Duration, logger *slog.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Worker{
		jobs:       make(chan domain.SummaryJob, queueSize),
		summarizer: summarizer,
		auditRepo:  auditRepo,
		timeout:    timeout,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

var _ domain.SummaryQueue = (*Worker)(nil)

// Enqueue offers a job without blocking. It reports false when the queue is
// full or the worker is stopping.
func (w *Worker) Enqueue(job domain.SummaryJob) bool {
	select {
	case <-w.stop:
		return false
	default:
	}
	select {
	case w.jobs <- job:
		return true
	default:
		return false
	}
}

// Start launches the consumer goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.stop:
				return
			case job := <-w.jobs:
				w.process(job)
			}
		}
	}()
}

// Stop signals the consumer and waits for the in-flight job to finish.
// Queued jobs that were not picked up yet are dropped.
func (w *Worker) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Worker) process(job domain.SummaryJob) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	notes := services.FallbackSummaryNote(job.EventCount)
	text, err := w.summarizer.Summarize(ctx, job.Events)
	if err != nil {
		w.logger.Warn("summarization failed, using fallback note", "audit_log_id", job.AuditLogID, "error", err)
	} else if text != "" {
		notes = text
	}

	if err := w.auditRepo.UpdateNotes(ctx, job.AuditLogID, notes); err != nil {
		w.logger.Error("failed to update audit log notes", "audit_log_id", job.AuditLogID, "error", err)
		return
	}
	w.logger.Info("audit log annotated", "audit_log_id", job.AuditLogID)
}
