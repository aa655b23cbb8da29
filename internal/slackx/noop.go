package slackx

import (
	"context"
	"log/slog"
	"time"

	"deskbot/internal/domain"
)

// Noop is the disabled messenger used when no credential resolves for a
// request. Sends are skipped and logged; the request itself still
// succeeds, which keeps the webhook contract idempotent for tenants whose
// installation has not completed yet.
type Noop struct {
	logger *slog.Logger
}

var _ domain.Messenger = (*Noop)(nil)

func NewNoop(logger *slog.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) PostMessage(_ context.Context, channelID, text string) error {
	n.logger.Warn("send skipped: no credential", "channel", channelID, "content_len", len(text))
	return nil
}

func (n *Noop) PostButtons(_ context.Context, channelID, text string, _ []domain.Button) error {
	n.logger.Warn("interactive send skipped: no credential", "channel", channelID, "content_len", len(text))
	return nil
}

func (n *Noop) ScheduleMessage(_ context.Context, channelID, _ string, postAt time.Time) error {
	n.logger.Warn("scheduled send skipped: no credential", "channel", channelID, "post_at", postAt)
	return nil
}
