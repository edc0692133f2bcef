package access

import (
	"context"
	"time"
)

// RoleRecord is a stored role assignment.
type RoleRecord struct {
	IdentityID string    `json:"identity_id"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RoleRepository stores role assignments. Get returns (RoleNone, nil) when
// no record exists for the identity; absence is not an error.
type RoleRepository interface {
	Get(ctx context.Context, identityID string) (Role, error)
	Set(ctx context.Context, identityID string, role Role) error
}
