package mail

import (
	"context"
	"log/slog"
)

// LogMailer writes the emails it would send to the log instead of delivering
// them. Used in development and in tests. Tokens are not logged.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(ctx context.Context, to, _ string) error {
	m.log.InfoContext(ctx, "verification email suppressed", "to", to)
	return nil
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, _ string) error {
	m.log.InfoContext(ctx, "password reset email suppressed", "to", to)
	return nil
}
