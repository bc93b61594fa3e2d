// Package session provides the opaque session identity correlating all
// requests of one visitor across the multi-step flow. Registrations stay
// keyed to the identity they were created under; regenerating deliberately
// orphans the old record so a finished flow cannot be replayed.
package session

import (
	"context"

	"github.com/google/uuid"
)

// Manager issues and rotates session identities.
type Manager interface {
	// Touch registers or refreshes an identity so it stays live for the
	// configured TTL.
	Touch(ctx context.Context, id string) error
	// Regenerate replaces an identity with a fresh one. The old identity is
	// invalidated before Regenerate returns.
	Regenerate(ctx context.Context, oldID string) (string, error)
}

// NewID mints a fresh session identity.
func NewID() string {
	return uuid.NewString()
}
