package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email sent on signup.
type WelcomeEmailData struct {
	Email     string
	FirstName string
}

// RegistrationEmailData holds data for registration confirmation and pending
// approval emails.
type RegistrationEmailData struct {
	Email        string
	FirstName    string
	EventTitle   string
	TicketNumber string
}

// EmailService defines the contract for sending domain-level emails.
// Callers in the registration workflow treat failures as non-fatal.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
	SendRegistrationPending(ctx context.Context, data *RegistrationEmailData) error
}
