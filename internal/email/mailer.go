package email

import (
	"context"

	"go.uber.org/zap"

	"caresync-api/internal/observability/logger"
)

// Mailer delivers transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outbound messages to the structured log instead of
// delivering them. Used when Gmail credentials are not configured (dev,
// CI) so flows that send email still complete.
type LogMailer struct {
	logger *logger.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{logger: log}
}

// Send logs the message and reports success
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info(ctx, "email delivery skipped (log-only mailer)",
		logger.Module("email"),
		logger.Action("send"),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
