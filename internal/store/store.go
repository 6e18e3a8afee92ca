package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no profile is stored for an identity.
var ErrNotFound = errors.New("profile not found")

// Profile is a persisted Battle.net authorization for a voice-chat
// identity. The core never reads it; the default wiring uses it to
// re-verify returning clients instead of re-sending the auth link.
type Profile struct {
	StableID    string
	SessionID   string
	AccountID   string
	Battletag   string
	AccessToken string
	UpdatedAt   time.Time
}

// ProfileStore handles profile persistence.
type ProfileStore interface {
	// SaveProfile inserts or replaces the profile for its stable identity.
	SaveProfile(ctx context.Context, p *Profile) error

	// GetProfile retrieves the profile stored for a stable identity.
	GetProfile(ctx context.Context, stableID string) (*Profile, error)

	// DeleteProfile removes the profile for a stable identity.
	DeleteProfile(ctx context.Context, stableID string) error

	// Close closes the underlying database connection.
	Close() error
}
