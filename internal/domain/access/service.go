package access

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Service resolves and assigns roles backed by the role repository.
type Service struct {
	repo   RoleRepository
	logger zerolog.Logger
}

func NewService(repo RoleRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Resolve returns the role for an identity. A missing record or a failed
// lookup resolves to patient rather than an error so callers always get a
// usable role; only an empty identity resolves to RoleNone.
func (s *Service) Resolve(ctx context.Context, identityID string) Role {
	if identityID == "" {
		return RoleNone
	}
	role, err := s.repo.Get(ctx, identityID)
	if err != nil {
		s.logger.Warn().Err(err).Str("identity_id", identityID).
			Msg("role lookup failed, falling back to patient")
		return RolePatient
	}
	if role == RoleNone {
		return RolePatient
	}
	return role
}

// Lookup adapts the service to the resolver's RoleLookup contract: raw
// repository results, fallback left to the resolver.
func (s *Service) Lookup() RoleLookup {
	return func(ctx context.Context, identityID string) (Role, error) {
		return s.repo.Get(ctx, identityID)
	}
}

// Assign stores a role for an identity, replacing any existing assignment.
func (s *Service) Assign(ctx context.Context, identityID string, role Role) error {
	if identityID == "" {
		return fmt.Errorf("identity id is required")
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	return s.repo.Set(ctx, identityID, role)
}
