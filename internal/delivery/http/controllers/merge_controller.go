package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"calmerge/internal/delivery/http/helpers"
	"calmerge/internal/delivery/http/middleware"
	"calmerge/internal/domain"
)

// MergeSuccessResponse is the success envelope for POST /events/merge (200).
type MergeSuccessResponse struct {
	Data  *domain.MergeResult `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// AuditLogListResponse is the response body for GET /merge/audit-logs.
type AuditLogListResponse struct {
	AuditLogs  []*domain.AuditLog     `json:"audit_logs"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// AuditLogListSuccessResponse is the success envelope for GET /merge/audit-logs (200).
type AuditLogListSuccessResponse struct {
	Data  AuditLogListResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// MergeController handles merge and audit log endpoints.
type MergeController struct {
	Logger  *slog.Logger
	Service domain.MergeService
}

// NewMergeController creates a MergeController with the given logger and service.
func NewMergeController(logger *slog.Logger, svc domain.MergeService) *MergeController {
	return &MergeController{
		Logger:  logger,
		Service: svc,
	}
}

// MergeEvents godoc
// @Summary Merge my overlapping events
// @Description Consolidates the largest group of the authenticated user's overlapping events into a single event. The source events are deleted and an audit log records the merge.
// @Tags merge
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MergeSuccessResponse "data contains the merged event and its audit log"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/merge [post]
func (c *MergeController) MergeEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	result, err := c.Service.MergeAll(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		if domain.IsMergeValidationError(err) {
			helpers.WriteJSONError(w, http.StatusUnprocessableEntity, helpers.ErrCodeValidationFailed, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListAuditLogs godoc
// @Summary List my merge audit logs
// @Description Returns the authenticated user's merge audit logs, newest first, with pagination.
// @Tags merge
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.AuditLogListSuccessResponse "data contains audit_logs and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /merge/audit-logs [get]
func (c *MergeController) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	logs, total, err := c.Service.ListAuditLogs(r.Context(), userID, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, AuditLogListResponse{
		AuditLogs:  logs,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
