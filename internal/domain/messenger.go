package domain

import (
	"context"
	"time"
)

// Button is a single interactive button attached to a message.
type Button struct {
	ActionID string
	Label    string
	Value    string
}

// Messenger sends messages to the chat platform on behalf of one tenant.
// All calls are fire-and-forget from the caller's perspective: a failed
// send is logged by the implementation and must not abort the request.
type Messenger interface {
	// PostMessage sends a plain text message to a channel.
	PostMessage(ctx context.Context, channelID, text string) error

	// PostButtons sends a message with an attached row of buttons.
	PostButtons(ctx context.Context, channelID, text string, buttons []Button) error

	// ScheduleMessage submits a message for delivery at postAt.
	ScheduleMessage(ctx context.Context, channelID, text string, postAt time.Time) error
}
