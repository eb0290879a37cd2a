package mailer

import "log/slog"

// LogMailer writes outgoing mail to the log instead of delivering it. Used
// in development when no SMTP server is configured.
type LogMailer struct{}

func NewLog() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(to, subject, body string) error {
	slog.Info("outbound mail (log only)", "to", to, "subject", subject, "body", body)
	return nil
}
