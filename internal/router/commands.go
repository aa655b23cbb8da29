package router

import (
	"encoding/json"
	"net/http"

	"deskbot/internal/executor"
	"deskbot/internal/intent"
	"deskbot/internal/metrics"

	"github.com/slack-go/slack"
)

const commandErrorReply = "Something went wrong while processing your command."

// handleCommand serves the slash-command endpoint. After verification it
// always answers 200 with a JSON text body: Slack shows the body to the
// user and retries anything else.
func (rt *Router) handleCommand(w http.ResponseWriter, r *http.Request) {
	logger := rt.requestLogger()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("command handler panic", "panic", rec)
			writeCommandReply(w, commandErrorReply)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	metrics.CommandsTotal.Inc()

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		logger.Warn("unparseable slash command", "err", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !rt.verifyTokenOK(cmd.Token) {
		metrics.VerifyFailures.Inc()
		logger.Warn("command token verification failed", "command", cmd.Command)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	logger.Info("slash command",
		"command", cmd.Command,
		"team", cmd.TeamID,
		"user", cmd.UserID,
		"channel", cmd.ChannelID,
	)

	ctx := r.Context()
	messenger := rt.messengerFor(ctx, cmd.TeamID, logger)

	action := intent.Classify(cmd.Text)
	reply := rt.exec.Execute(ctx, action, executor.Context{
		Messenger: messenger,
		UserID:    cmd.UserID,
		ChannelID: cmd.ChannelID,
	})
	writeCommandReply(w, reply)
}

func writeCommandReply(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"text": text})
}
