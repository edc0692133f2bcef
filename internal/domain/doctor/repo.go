package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no doctor record matches.
var ErrNotFound = errors.New("doctor not found")

// ErrForbidden is returned when an actor edits a record they do not own.
var ErrForbidden = errors.New("forbidden")

type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	GetByIdentityID(ctx context.Context, identityID string) (*Record, error)
	// GetByIDs fetches a set of doctors in one query. Missing IDs are absent
	// from the result map.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Record, error)
	List(ctx context.Context, limit, offset int) ([]*Record, int, error)
	Update(ctx context.Context, r *Record) error
}
