package domain

import "context"

// GuestLinkEmailData is the template payload for a guest invitation email.
type GuestLinkEmailData struct {
	Email     string
	GuestName string
	EventName string
	HostName  string
	LinkURL   string
}

// Mailer sends plain emails. Implementations: SES, noop.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// EmailTemplateRenderer renders a named email template to subject, html and
// text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// EmailService sends domain emails.
type EmailService interface {
	SendGuestLink(ctx context.Context, data *GuestLinkEmailData) error
}
