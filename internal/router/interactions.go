package router

import (
	"encoding/json"
	"net/http"

	"deskbot/internal/executor"
	"deskbot/internal/metrics"

	"github.com/slack-go/slack"
)

// handleInteraction serves button presses from the check-in prompt. This
// is the one endpoint where an internal error may surface as a 5xx: the
// mood reply has no side effect worth protecting from a retry.
func (rt *Router) handleInteraction(w http.ResponseWriter, r *http.Request) {
	logger := rt.requestLogger()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("interaction handler panic", "panic", rec)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	metrics.InteractionsTotal.Inc()

	if err := r.ParseForm(); err != nil {
		logger.Warn("unparseable interaction form", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &callback); err != nil {
		logger.Warn("malformed interaction payload", "err", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !rt.verifyTokenOK(callback.Token) {
		metrics.VerifyFailures.Inc()
		logger.Warn("interaction token verification failed")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	value, ok := selectedValue(callback)
	if !ok {
		logger.Warn("interaction payload carries no action value")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logger.Info("interaction",
		"team", callback.Team.ID,
		"user", callback.User.ID,
		"channel", callback.Channel.ID,
		"value", value,
	)

	ctx := r.Context()
	messenger := rt.messengerFor(ctx, callback.Team.ID, logger)
	rt.exec.HandleMood(ctx, executor.Context{
		Messenger: messenger,
		UserID:    callback.User.ID,
		ChannelID: callback.Channel.ID,
	}, value)

	w.WriteHeader(http.StatusOK)
}

// selectedValue pulls the pressed button's value out of the callback,
// preferring Block Kit actions and falling back to legacy attachments.
func selectedValue(callback slack.InteractionCallback) (string, bool) {
	if actions := callback.ActionCallback.BlockActions; len(actions) > 0 {
		return actions[0].Value, true
	}
	if actions := callback.ActionCallback.AttachmentActions; len(actions) > 0 {
		return actions[0].Value, true
	}
	return "", false
}
