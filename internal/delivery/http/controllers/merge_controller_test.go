package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calmerge/internal/delivery/http/helpers"
	"calmerge/internal/delivery/http/middleware"
	"calmerge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMergeService implements domain.MergeService for handler tests.
type fakeMergeService struct {
	result   *domain.MergeResult
	mergeErr error
	logs     []*domain.AuditLog
	total    int
	listErr  error
}

func (f *fakeMergeService) MergeAll(ctx context.Context, userID string) (*domain.MergeResult, error) {
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	return f.result, nil
}

func (f *fakeMergeService) ListAuditLogs(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.AuditLog, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.logs, f.total, nil
}

func testControllerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestMergeController_MergeEvents(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	okResult := &domain.MergeResult{
		Event: &domain.Event{ID: "ev-new", Title: "Planning | Review"},
		Audit: &domain.AuditLog{ID: "audit-1", UserID: "user-123", NewEventID: "ev-new", MergedEventIDs: []string{"ev-1", "ev-2"}, CreatedAt: now},
	}

	tests := []struct {
		name          string
		contextUserID string
		svc           *fakeMergeService
		wantStatus    int
		wantBodyCode  string
		wantMessage   string
	}{
		{
			name:          "success",
			contextUserID: "user-123",
			svc:           &fakeMergeService{result: okResult},
			wantStatus:    http.StatusOK,
		},
		{
			name:         "no user in context",
			svc:          &fakeMergeService{result: okResult},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:          "user not found",
			contextUserID: "ghost",
			svc:           &fakeMergeService{mergeErr: domain.ErrUserNotFound},
			wantStatus:    http.StatusNotFound,
			wantBodyCode:  helpers.ErrCodeNotFound,
		},
		{
			name:          "not enough events",
			contextUserID: "user-123",
			svc:           &fakeMergeService{mergeErr: domain.ErrNotEnoughEvents},
			wantStatus:    http.StatusUnprocessableEntity,
			wantBodyCode:  helpers.ErrCodeValidationFailed,
			wantMessage:   "user must have at least 2 events to merge",
		},
		{
			name:          "not enough active events",
			contextUserID: "user-123",
			svc:           &fakeMergeService{mergeErr: domain.ErrNotEnoughActiveEvents},
			wantStatus:    http.StatusUnprocessableEntity,
			wantBodyCode:  helpers.ErrCodeValidationFailed,
		},
		{
			name:          "no overlapping events",
			contextUserID: "user-123",
			svc:           &fakeMergeService{mergeErr: domain.ErrNoOverlappingEvents},
			wantStatus:    http.StatusUnprocessableEntity,
			wantBodyCode:  helpers.ErrCodeValidationFailed,
			wantMessage:   "no overlapping events found",
		},
		{
			name:          "service error",
			contextUserID: "user-123",
			svc:           &fakeMergeService{mergeErr: assert.AnError},
			wantStatus:    http.StatusInternalServerError,
			wantBodyCode:  helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewMergeController(testControllerLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "http://test/events/merge", nil)
			if tt.contextUserID != "" {
				req = req.WithContext(middleware.SetUserID(req.Context(), tt.contextUserID))
			}
			rr := httptest.NewRecorder()

			controller.MergeEvents(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantBodyCode != "" {
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
				if tt.wantMessage != "" {
					assert.Equal(t, tt.wantMessage, envelope.Error.Message)
				}
				return
			}
			require.Nil(t, envelope.Error)
			raw, err := json.Marshal(envelope.Data)
			require.NoError(t, err)
			var result domain.MergeResult
			require.NoError(t, json.Unmarshal(raw, &result))
			assert.Equal(t, "ev-new", result.Event.ID)
			assert.Equal(t, []string{"ev-1", "ev-2"}, result.Audit.MergedEventIDs)
		})
	}
}

func TestMergeController_ListAuditLogs(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	notes := "Two meetings merged."
	svc := &fakeMergeService{
		logs: []*domain.AuditLog{
			{ID: "audit-2", UserID: "user-123", NewEventID: "ev-9", MergedEventIDs: []string{"ev-7", "ev-8"}, Notes: &notes, CreatedAt: now},
			{ID: "audit-1", UserID: "user-123", NewEventID: "ev-3", MergedEventIDs: []string{"ev-1", "ev-2"}, CreatedAt: now.Add(-time.Hour)},
		},
		total: 42,
	}
	controller := NewMergeController(testControllerLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "http://test/merge/audit-logs?page=2&page_size=2", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
	rr := httptest.NewRecorder()

	controller.ListAuditLogs(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope struct {
		Data  AuditLogListResponse `json:"data"`
		Error *helpers.APIError    `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	require.Len(t, envelope.Data.AuditLogs, 2)
	assert.Equal(t, "audit-2", envelope.Data.AuditLogs[0].ID)
	assert.Equal(t, 2, envelope.Data.Pagination.Page)
	assert.Equal(t, 2, envelope.Data.Pagination.PageSize)
	assert.Equal(t, 42, envelope.Data.Pagination.Total)
	assert.Equal(t, 21, envelope.Data.Pagination.TotalPages)
}

func TestMergeController_ListAuditLogs_unauthorized(t *testing.T) {
	controller := NewMergeController(testControllerLogger(), &fakeMergeService{})

	req := httptest.NewRequest(http.MethodGet, "http://test/merge/audit-logs", nil)
	rr := httptest.NewRecorder()

	controller.ListAuditLogs(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
