package identity

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no profile exists for an identity.
var ErrNotFound = errors.New("profile not found")

type Repository interface {
	GetByIdentityID(ctx context.Context, identityID string) (*Profile, error)
	// GetByIdentityIDs fetches profiles for a set of identities in one query.
	// Identities without a profile are simply absent from the result map.
	GetByIdentityIDs(ctx context.Context, identityIDs []string) (map[string]*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}
