package registration

import (
	"context"

	"regflow/pkg/apperrors"
)

// ErrNotFound keeps storage-specific lookup misses consistent across the
// in-memory and PostgreSQL implementations.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "registration not found")

// Store persists registrations. Implementations are interface-driven so the
// engine stays testable and the backend can be swapped without rewiring
// business code.
type Store interface {
	Find(ctx context.Context, sessionID string) (*Registration, error)
	Create(ctx context.Context, reg *Registration) error
	Save(ctx context.Context, reg *Registration) error
	Delete(ctx context.Context, sessionID string) error
}
