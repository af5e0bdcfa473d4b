package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email     string
	FirstName string
}

// MergeNoticeEmailData holds data for the email sent after a user's
// overlapping events were consolidated.
type MergeNoticeEmailData struct {
	Email       string
	FirstName   string
	EventCount  int
	MergedTitle string
	StartTime   time.Time
	EndTime     time.Time
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendMergeNotice(ctx context.Context, data *MergeNoticeEmailData) error
}
