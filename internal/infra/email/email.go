// Package email implements outbound mail for review decisions and
// password resets.
package email

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Sender delivers one message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, body string, html bool) error
}

// Mailer formats the application's messages on top of a Sender. It is
// the usecase.Notifier implementation. The From header belongs to the
// Sender.
type Mailer struct {
	sender Sender
}

func NewMailer(sender Sender) *Mailer {
	return &Mailer{sender: sender}
}

func (m *Mailer) SendApproval(ctx context.Context, to, companyName, notes string) error {
	body := fmt.Sprintf("Hello %s,\n\nYour company registration has been approved. You can now sign in and start posting.\n", companyName)
	if notes != "" {
		body += fmt.Sprintf("\nReviewer notes: %s\n", notes)
	}
	return m.sender.Send(ctx, to, "Registration approved - JobStream", body, false)
}

func (m *Mailer) SendRejection(ctx context.Context, to, companyName, reason string) error {
	body := fmt.Sprintf("Hello %s,\n\nWe are sorry to inform you that your company registration was not approved.\n\nReason: %s\n\nYou may address the issues above and register again.\n", companyName, reason)
	return m.sender.Send(ctx, to, "Registration decision - JobStream", body, false)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf("We received a request to reset the password for your account (%s).\n\nReset it here: %s\n\nThe link expires in 1 hour. If you did not request this, ignore this message.\n", to, resetURL)
	return m.sender.Send(ctx, to, "Password Reset Request - JobStream", body, false)
}

// LogSender is the dev-mode Sender: it logs instead of delivering.
type LogSender struct {
	Log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSender{Log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string, _ bool) error {
	s.Log.Info("outbound mail (not delivered, smtp disabled)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}
