package services

import (
	"context"
	"fmt"
	"log"

	"calmerge/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendWelcomeMessage sends a welcome email using the "welcome" template and the given data.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}

// SendMergeNotice sends the post-merge notification using the "merge_notice" template.
func (s *emailService) SendMergeNotice(ctx context.Context, data *domain.MergeNoticeEmailData) error {
	if data == nil {
		return fmt.Errorf("merge notice data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("merge_notice", data)
	if err != nil {
		return fmt.Errorf("failed to render merge_notice template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send merge notice email: %w", err)
	}
	log.Printf("[EMAIL] Merge notice sent to %s", data.Email)
	return nil
}
