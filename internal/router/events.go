package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"deskbot/internal/executor"
	"deskbot/internal/intent"
	"deskbot/internal/metrics"

	"github.com/slack-go/slack/slackevents"
)

// handleEvents serves the Events API endpoint: URL verification handshake,
// message events, app mentions, and member-joined notifications.
func (rt *Router) handleEvents(w http.ResponseWriter, r *http.Request) {
	logger := rt.requestLogger()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("event handler panic", "panic", rec)
			w.WriteHeader(http.StatusOK)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	metrics.EventsTotal.Inc()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		// Unparseable payloads still get a 2xx so Slack does not retry.
		logger.Warn("unparseable event payload", "err", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	if !rt.verifyTokenOK(event.Token) {
		metrics.VerifyFailures.Inc()
		logger.Warn("event token verification failed")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// Handshake: echo the challenge and stop. No tenant resolution, no
	// classification.
	if event.Type == slackevents.URLVerification {
		var cr slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			logger.Warn("malformed challenge payload", "err", err)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(cr.Challenge))
		return
	}

	if event.Type == slackevents.CallbackEvent {
		rt.dispatchCallbackEvent(r, event, logger)
	}

	w.WriteHeader(http.StatusOK)
}

func (rt *Router) dispatchCallbackEvent(r *http.Request, event slackevents.EventsAPIEvent, logger *slog.Logger) {
	ctx := r.Context()

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		// Bot-originated and edited messages are dropped, or the bot
		// would reply to itself forever.
		if ev.BotID != "" || ev.User == "" || ev.SubType != "" {
			return
		}
		logger.Info("message event", "team", event.TeamID, "channel", ev.Channel, "content_len", len(ev.Text))
		rt.classifyAndReply(ctx, event.TeamID, ev.User, ev.Channel, ev.Text, logger)

	case *slackevents.AppMentionEvent:
		if ev.BotID != "" {
			return
		}
		text := ev.Text
		if idx := strings.Index(text, ">"); idx >= 0 {
			text = strings.TrimSpace(text[idx+1:])
		}
		logger.Info("app mention", "team", event.TeamID, "channel", ev.Channel)
		rt.classifyAndReply(ctx, event.TeamID, ev.User, ev.Channel, text, logger)

	case *slackevents.MemberJoinedChannelEvent:
		logger.Info("member joined", "team", event.TeamID, "channel", ev.Channel)
		messenger := rt.messengerFor(ctx, event.TeamID, logger)
		if err := messenger.PostMessage(ctx, ev.Channel, rt.welcome); err != nil {
			logger.Error("welcome message failed", "channel", ev.Channel, "err", err)
		}
	}
}

// classifyAndReply runs the classifier and executor over event text and
// posts the reply back to the channel. Ambient channel chatter that
// classifies as unrecognized gets no reply.
func (rt *Router) classifyAndReply(ctx context.Context, teamID, userID, channelID, text string, logger *slog.Logger) {
	action := intent.Classify(text)
	if action.Kind == intent.KindUnrecognized {
		return
	}

	messenger := rt.messengerFor(ctx, teamID, logger)
	reply := rt.exec.Execute(ctx, action, executor.Context{
		Messenger: messenger,
		UserID:    userID,
		ChannelID: channelID,
	})
	if reply == "" {
		return
	}
	if err := messenger.PostMessage(ctx, channelID, reply); err != nil {
		logger.Error("event reply failed", "channel", channelID, "err", err)
	}
}
