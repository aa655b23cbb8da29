// Package router is the inbound HTTP boundary: it receives Slack event
// callbacks, slash commands, and interaction callbacks, resolves the
// tenant, and dispatches through the intent classifier and executor.
//
// Once token verification has passed, every branch terminates with a 2xx:
// Slack retries non-2xx deliveries, and a retry would duplicate side
// effects (scheduled reminders, feedback rows). The one exception is the
// interaction endpoint, where a 5xx on a malformed payload is safe.
package router

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"deskbot/internal/domain"
	"deskbot/internal/executor"
	"deskbot/internal/metrics"
	"deskbot/internal/registry"
	"deskbot/internal/slackx"

	"github.com/google/uuid"
)

const defaultWelcome = "Welcome aboard! 👋 Say `hi` or try `help` to see what I can do."

// Config configures the Router.
type Config struct {
	Host         string
	Port         int
	VerifyToken  string
	WelcomeText  string
	ServeMetrics bool
	Registry     *registry.Registry
	Executor     *executor.Executor
	Logger       *slog.Logger

	// NewMessenger builds a per-tenant messenger from a credential.
	// Defaults to the Slack Web API client; tests substitute a fake.
	NewMessenger func(botToken string) domain.Messenger
}

// Router handles the three inbound Slack endpoints.
type Router struct {
	verifyToken  string
	welcome      string
	serveMetrics bool
	registry     *registry.Registry
	exec         *executor.Executor
	logger       *slog.Logger
	newMessenger func(botToken string) domain.Messenger
	noop         domain.Messenger

	host   string
	port   int
	server *http.Server
}

// New creates a Router.
func New(cfg Config) *Router {
	welcome := cfg.WelcomeText
	if welcome == "" {
		welcome = defaultWelcome
	}
	newMessenger := cfg.NewMessenger
	if newMessenger == nil {
		newMessenger = func(botToken string) domain.Messenger {
			return slackx.New(botToken, cfg.Logger)
		}
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	return &Router{
		verifyToken:  cfg.VerifyToken,
		welcome:      welcome,
		serveMetrics: cfg.ServeMetrics,
		registry:     cfg.Registry,
		exec:         cfg.Executor,
		logger:       cfg.Logger,
		newMessenger: newMessenger,
		noop:         slackx.NewNoop(cfg.Logger),
		host:         cfg.Host,
		port:         cfg.Port,
	}
}

// Handler returns the full route table.
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slack/events", rt.handleEvents)
	mux.HandleFunc("/slack/command", rt.handleCommand)
	mux.HandleFunc("/slack/interactions", rt.handleInteraction)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if rt.serveMetrics {
		mux.HandleFunc("/metrics", metrics.Collector.Handler())
	}
	return mux
}

// Start runs the HTTP server until ctx is done.
func (rt *Router) Start(ctx context.Context) error {
	rt.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", rt.host, rt.port),
		Handler:           rt.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	rt.logger.Info("webhook server starting", "addr", rt.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := rt.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		rt.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return rt.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

// requestLogger attaches a short request ID so log lines from one request
// can be grouped.
func (rt *Router) requestLogger() *slog.Logger {
	return rt.logger.With("request_id", uuid.NewString()[:8])
}

// verifyTokenOK compares the payload's verification token in constant
// time. An unconfigured token disables verification (local development).
func (rt *Router) verifyTokenOK(token string) bool {
	if rt.verifyToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(rt.verifyToken)) == 1
}

// messengerFor resolves the tenant credential into a messenger. An
// unknown tenant gets the disabled messenger: the request still runs to a
// normal reply, sends are skipped.
func (rt *Router) messengerFor(ctx context.Context, teamID string, logger *slog.Logger) domain.Messenger {
	inst, ok := rt.registry.Resolve(ctx, teamID)
	if !ok {
		metrics.UnknownTenants.Inc()
		logger.Warn("no installation for tenant, sends disabled", "team", teamID)
		return rt.noop
	}
	return rt.newMessenger(inst.BotToken)
}
