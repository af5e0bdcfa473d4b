// Package summarizer provides the HTTP client for the external summary
// service and the background worker that annotates audit logs with summaries.
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"calmerge/internal/domain"
)

type eventSnapshot struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type summarizeRequest struct {
	Events []eventSnapshot `json:"events"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type httpSummarizer struct {
	client  *http.Client
	baseURL string
}

// NewHTTPSummarizer returns a Summarizer that POSTs event snapshots to an
// external summary service at baseURL.
func NewHTTPSummarizer(client *http.Client, baseURL string) domain.Summarizer {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpSummarizer{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *httpSummarizer) Summarize(ctx context.Context, events []*domain.Event) (string, error) {
	payload := summarizeRequest{Events: make([]eventSnapshot, len(events))}
	for i, e := range events {
		payload.Events[i] = eventSnapshot{
			Title:       e.Title,
			Description: e.Description,
			Status:      string(e.Status),
			StartTime:   e.StartTime,
			EndTime:     e.EndTime,
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode summarize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/summarize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call summary service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("summary service returned status: %d", resp.StatusCode)
	}

	var data summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}
	return strings.TrimSpace(data.Summary), nil
}
