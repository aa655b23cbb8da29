// Package executor turns classified actions into replies and side effects.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"deskbot/internal/domain"
	"deskbot/internal/intent"
	"deskbot/internal/metrics"
	"deskbot/internal/timeparse"
)

// Canned reply texts. The voice is deliberately casual.
const (
	replyHelp           = "Try `/deskbot joke`, `/deskbot status`, `/deskbot faq`, `/deskbot remind me to ...`, or `/deskbot checkin`"
	replyJoke           = "Why do Java developers wear glasses? Because they don't C#."
	replyStatus         = "Bot is alive and kicking! ✅"
	replyNoTopics       = "There are no FAQs available right now. Please check back later."
	replyNotFound       = "❓ I couldn't find that FAQ. Try `faq list` to see what's available."
	replyBadTime        = "I couldn't understand the time. Try something like 'in 30 minutes' or 'at 5pm'."
	replyCheckin        = "Check-in sent!"
	replyThanks         = "Thanks for your feedback! 🙏"
	replyThanksDegraded = "Thanks for your feedback! 🙏 (We had trouble saving it — please try again later.)"

	checkinPrompt = "Good morning! How are you feeling today?"
)

// CheckinButtons is the mood selector attached to the check-in prompt.
var CheckinButtons = []domain.Button{
	{ActionID: "mood_great", Label: "😊 Great", Value: "great"},
	{ActionID: "mood_okay", Label: "😐 Okay", Value: "okay"},
	{ActionID: "mood_meh", Label: "😞 Meh", Value: "meh"},
}

// Context carries the per-request state an action executes against.
type Context struct {
	Messenger domain.Messenger
	UserID    string
	ChannelID string
}

// Executor executes actions. Topic lookups go store-first with the static
// table as fallback; failures of the outward capabilities degrade the
// reply, never the request.
type Executor struct {
	topics   domain.TopicStore // primary store, may be nil
	fallback domain.TopicStore // in-process table, never nil
	feedback domain.FeedbackStore
	resolver *timeparse.Resolver
	logger   *slog.Logger
}

// Config configures the Executor.
type Config struct {
	Topics   domain.TopicStore
	Fallback domain.TopicStore
	Feedback domain.FeedbackStore
	Resolver *timeparse.Resolver
	Logger   *slog.Logger
}

func New(cfg Config) *Executor {
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = emptyTopics{}
	}
	return &Executor{
		topics:   cfg.Topics,
		fallback: fallback,
		feedback: cfg.Feedback,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
	}
}

// Execute performs action and returns the reply text. Side effects that
// fail are logged and reflected in the reply; Execute itself never fails.
func (e *Executor) Execute(ctx context.Context, action intent.Action, rctx Context) string {
	switch action.Kind {
	case intent.KindGreet:
		return fmt.Sprintf("Hi <@%s> 👋", rctx.UserID)
	case intent.KindShowHelp:
		return replyHelp
	case intent.KindTellJoke:
		return replyJoke
	case intent.KindReportStatus:
		return replyStatus
	case intent.KindListTopics:
		if action.Query != "" {
			return e.answerTopic(ctx, action.Query)
		}
		return e.listTopics(ctx)
	case intent.KindRecordFeedback:
		return e.recordFeedback(ctx, rctx, action.Body)
	case intent.KindScheduleReminder:
		return e.scheduleReminder(ctx, rctx, action.Task, action.When)
	case intent.KindPromptCheckin:
		return e.promptCheckin(ctx, rctx)
	default:
		if action.Hint != "" {
			return action.Hint
		}
		return intent.HintGeneric
	}
}

func (e *Executor) listTopics(ctx context.Context) string {
	topics, err := e.loadTopics(ctx)
	if err != nil {
		e.logger.Error("topic listing failed", "err", err)
		return replyNoTopics
	}
	if len(topics) == 0 {
		return replyNoTopics
	}

	var sb strings.Builder
	sb.WriteString("*Here are the available FAQ topics:*\n")
	for _, t := range topics {
		sb.WriteString("• " + t.Question + "\n")
	}
	return sb.String()
}

// loadTopics reads the primary store and falls back to the static table
// when the store is unreachable.
func (e *Executor) loadTopics(ctx context.Context) ([]domain.Topic, error) {
	if e.topics != nil {
		topics, err := e.topics.ListAll(ctx)
		if err == nil {
			return topics, nil
		}
		e.logger.Warn("topic store unavailable, using fallback table", "err", err)
	}
	return e.fallback.ListAll(ctx)
}

// answerTopic looks the query up store-first; a store error or a miss both
// fall through to the static table before giving up.
func (e *Executor) answerTopic(ctx context.Context, query string) string {
	if e.topics != nil {
		t, err := e.topics.FindByQuery(ctx, query)
		if err != nil {
			e.logger.Warn("topic store unavailable, using fallback table", "query", query, "err", err)
		} else if t != nil {
			return t.Answer
		}
	}

	t, err := e.fallback.FindByQuery(ctx, query)
	if err == nil && t != nil {
		return t.Answer
	}
	return replyNotFound
}

func (e *Executor) recordFeedback(ctx context.Context, rctx Context, body string) string {
	if e.feedback == nil {
		e.logger.Warn("feedback dropped: no store configured", "user", rctx.UserID)
		return replyThanksDegraded
	}
	if err := e.feedback.Append(ctx, rctx.UserID, body); err != nil {
		e.logger.Error("feedback persist failed", "user", rctx.UserID, "err", err)
		return replyThanksDegraded
	}
	return replyThanks
}

func (e *Executor) scheduleReminder(ctx context.Context, rctx Context, task, when string) string {
	res, err := e.resolver.Resolve(when, time.Now())
	if err != nil {
		return replyBadTime
	}

	if sendErr := rctx.Messenger.ScheduleMessage(ctx, rctx.ChannelID, "⏰ Reminder: "+task, res.At); sendErr != nil {
		e.logger.Error("reminder submission failed", "channel", rctx.ChannelID, "err", sendErr)
	}
	metrics.RemindersTotal.Inc()

	if res.Adjusted {
		return fmt.Sprintf("Reminder set for *%s* in 2 minutes (adjusted for safety).", task)
	}
	return fmt.Sprintf("Reminder set for *%s* at %s!", task, e.resolver.FormatClock(res.At))
}

func (e *Executor) promptCheckin(ctx context.Context, rctx Context) string {
	if err := rctx.Messenger.PostButtons(ctx, rctx.ChannelID, checkinPrompt, CheckinButtons); err != nil {
		e.logger.Error("checkin prompt failed", "channel", rctx.ChannelID, "err", err)
	}
	metrics.CheckinsTotal.Inc()
	return replyCheckin
}

// MoodReply maps a check-in button value to its canned response.
func MoodReply(value string) string {
	switch value {
	case "great":
		return "Love to hear it! 😊 Keep that energy going."
	case "okay":
		return "Steady is good. 😐 Hope the day picks up!"
	case "meh":
		return "Sorry to hear that. 😞 Be kind to yourself today."
	default:
		return "Thanks for checking in!"
	}
}

// HandleMood answers a check-in button press: the canned mood response is
// posted to the originating channel, addressed to the acting user.
func (e *Executor) HandleMood(ctx context.Context, rctx Context, value string) {
	reply := fmt.Sprintf("<@%s> %s", rctx.UserID, MoodReply(value))
	if err := rctx.Messenger.PostMessage(ctx, rctx.ChannelID, reply); err != nil {
		e.logger.Error("mood reply failed", "channel", rctx.ChannelID, "err", err)
	}
}

// CheckinPrompt returns the check-in prompt text, shared with the
// scheduled check-in path.
func CheckinPrompt() string { return checkinPrompt }

// emptyTopics is the zero-value fallback when no static table is supplied.
type emptyTopics struct{}

func (emptyTopics) ListAll(context.Context) ([]domain.Topic, error)            { return nil, nil }
func (emptyTopics) FindByQuery(context.Context, string) (*domain.Topic, error) { return nil, nil }
