// Package slackx adapts the Slack Web API to the domain.Messenger
// contract, one client per tenant credential.
package slackx

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"deskbot/internal/domain"

	"github.com/slack-go/slack"
)

const maxMsgLen = 4000

// Messenger sends messages through the Slack Web API using one tenant's
// bot token.
type Messenger struct {
	client *slack.Client
	logger *slog.Logger
}

var _ domain.Messenger = (*Messenger)(nil)

// New creates a Messenger for the given bot token.
func New(botToken string, logger *slog.Logger) *Messenger {
	return &Messenger{
		client: slack.New(botToken),
		logger: logger,
	}
}

// PostMessage sends text to a channel, splitting messages that exceed
// Slack's length limit.
func (m *Messenger) PostMessage(ctx context.Context, channelID, text string) error {
	for _, chunk := range splitMessage(text, maxMsgLen) {
		_, _, err := m.client.PostMessageContext(ctx, channelID,
			slack.MsgOptionText(chunk, false),
		)
		if err != nil {
			m.logger.Error("slack send failed", "channel", channelID, "err", err)
			return fmt.Errorf("slack post: %w", err)
		}
	}
	return nil
}

// PostButtons sends text with a row of interactive buttons.
func (m *Messenger) PostButtons(ctx context.Context, channelID, text string, buttons []domain.Button) error {
	elements := make([]slack.BlockElement, 0, len(buttons))
	for _, b := range buttons {
		elements = append(elements, slack.NewButtonBlockElement(
			b.ActionID, b.Value,
			slack.NewTextBlockObject(slack.PlainTextType, b.Label, true, false),
		))
	}
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.PlainTextType, text, true, false), nil, nil),
		slack.NewActionBlock("deskbot_actions", elements...),
	}
	_, _, err := m.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		m.logger.Error("slack interactive send failed", "channel", channelID, "err", err)
		return fmt.Errorf("slack post buttons: %w", err)
	}
	return nil
}

// ScheduleMessage submits text for delivery at postAt via Slack's message
// scheduler. Delivery after submission is Slack's concern, not ours.
func (m *Messenger) ScheduleMessage(ctx context.Context, channelID, text string, postAt time.Time) error {
	_, _, err := m.client.ScheduleMessageContext(ctx, channelID,
		strconv.FormatInt(postAt.Unix(), 10),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		m.logger.Error("slack schedule failed", "channel", channelID, "err", err)
		return fmt.Errorf("slack schedule: %w", err)
	}
	return nil
}

func splitMessage(msg string, maxLen int) []string {
	if len(msg) <= maxLen {
		return []string{msg}
	}

	var chunks []string
	for len(msg) > 0 {
		if len(msg) <= maxLen {
			chunks = append(chunks, msg)
			break
		}
		cut := maxLen
		if idx := strings.LastIndex(msg[:maxLen], "\n"); idx > maxLen/2 {
			cut = idx + 1
		}
		chunks = append(chunks, msg[:cut])
		msg = msg[cut:]
	}
	return chunks
}
