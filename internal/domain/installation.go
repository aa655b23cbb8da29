package domain

import (
	"context"
	"time"
)

// Installation is one workspace that installed the bot. BotToken is the
// tenant's messaging credential and must never be logged or echoed back.
type Installation struct {
	TeamID      string    `json:"team_id"`
	TeamName    string    `json:"team_name,omitempty"`
	BotToken    string    `json:"-"`
	InstalledAt time.Time `json:"installed_at"`
}

// InstallationStore persists installations keyed by team ID.
type InstallationStore interface {
	// Get returns the installation for teamID, or nil when none exists.
	// A nil, nil return is the normal "not installed yet" outcome.
	Get(ctx context.Context, teamID string) (*Installation, error)

	// Upsert inserts or replaces the installation for inst.TeamID.
	Upsert(ctx context.Context, inst Installation) error

	// List returns all installations ordered by install time.
	List(ctx context.Context) ([]Installation, error)
}
