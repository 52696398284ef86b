package interfaces

import "context"

// Notifier delivers outbound messages such as alert emails
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendHTMLEmail(ctx context.Context, to, subject, htmlBody, textBody string) error
	IsConfigured() bool
}
