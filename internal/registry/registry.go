// Package registry resolves workspace credentials for inbound requests.
//
// Every request goes through Resolve, so the degrade-gracefully rule for
// unknown tenants is enforced in exactly one place.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"deskbot/internal/domain"
)

// Registry maps team IDs to installations. Reads are served from an
// in-memory cache filled through the installation store; many requests may
// read concurrently. Writes only arrive via Upsert (the install flow).
type Registry struct {
	store    domain.InstallationStore
	fallback *domain.Installation // single-tenant default, may be nil
	logger   *slog.Logger

	mu    sync.RWMutex
	cache map[string]domain.Installation
}

// Config configures the registry.
type Config struct {
	Store domain.InstallationStore

	// DefaultToken, when set, serves requests that carry no team ID
	// (single-tenant fallback mode).
	DefaultToken    string
	DefaultTeamName string

	Logger *slog.Logger
}

func New(cfg Config) *Registry {
	r := &Registry{
		store:  cfg.Store,
		logger: cfg.Logger,
		cache:  make(map[string]domain.Installation),
	}
	if cfg.DefaultToken != "" {
		r.fallback = &domain.Installation{
			TeamName: cfg.DefaultTeamName,
			BotToken: cfg.DefaultToken,
		}
	}
	return r
}

// Resolve returns the installation for teamID. An empty teamID returns the
// process default when one is configured. A false return is a normal
// outcome, not an error: requests routinely arrive before an installation
// completes, and the caller proceeds with a disabled messenger.
func (r *Registry) Resolve(ctx context.Context, teamID string) (domain.Installation, bool) {
	if teamID == "" {
		if r.fallback != nil {
			return *r.fallback, true
		}
		return domain.Installation{}, false
	}

	r.mu.RLock()
	inst, ok := r.cache[teamID]
	r.mu.RUnlock()
	if ok {
		return inst, true
	}

	if r.store != nil {
		stored, err := r.store.Get(ctx, teamID)
		if err != nil {
			r.logger.Error("installation lookup failed", "team", teamID, "err", err)
		} else if stored != nil {
			r.mu.Lock()
			r.cache[teamID] = *stored
			r.mu.Unlock()
			return *stored, true
		}
	}
	return domain.Installation{}, false
}

// Upsert registers or updates an installation and refreshes the cache.
// Used by the install flow and the CLI; never by request handling.
func (r *Registry) Upsert(ctx context.Context, inst domain.Installation) error {
	if inst.InstalledAt.IsZero() {
		inst.InstalledAt = time.Now()
	}
	if r.store != nil {
		if err := r.store.Upsert(ctx, inst); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.cache[inst.TeamID] = inst
	r.mu.Unlock()
	r.logger.Info("installation registered", "team", inst.TeamID, "team_name", inst.TeamName)
	return nil
}
