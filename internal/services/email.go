package services

import (
	"context"
	"fmt"

	"commondays/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService creates an EmailService over the given mailer and
// template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{
		mailer:   mailer,
		renderer: renderer,
	}
}

func (s *emailService) SendGuestLink(ctx context.Context, data *domain.GuestLinkEmailData) error {
	subject, htmlBody, textBody, err := s.renderer.Render("guest_link", data)
	if err != nil {
		return fmt.Errorf("render guest link email: %w", err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send guest link email: %w", err)
	}
	return nil
}
