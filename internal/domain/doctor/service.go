package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mediconnect/api/internal/domain/access"
	"github.com/mediconnect/api/internal/domain/identity"
	"github.com/mediconnect/api/internal/platform/db"
)

// ProfileSource supplies the batched profile fetch for directory listings.
type ProfileSource interface {
	GetMap(ctx context.Context, identityIDs []string) (map[string]*identity.Profile, error)
}

// RoleAssigner stores a role assignment; provisioning grants the doctor
// role alongside the record.
type RoleAssigner interface {
	Assign(ctx context.Context, identityID string, role access.Role) error
}

type Service struct {
	repo     Repository
	profiles ProfileSource
	roles    RoleAssigner
	pool     *pgxpool.Pool
	logger   zerolog.Logger
}

// NewService builds the directory service. pool may be nil, in which case
// provisioning runs without a transaction (in-memory tests).
func NewService(repo Repository, profiles ProfileSource, roles RoleAssigner, pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{repo: repo, profiles: profiles, roles: roles, pool: pool, logger: logger}
}

// Directory lists doctors joined with their profile names. One batched
// profile fetch covers the whole page; a doctor without a profile gets the
// Unknown placeholder rather than being dropped.
func (s *Service) Directory(ctx context.Context, limit, offset int) ([]*DirectoryEntry, int, error) {
	records, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing doctors: %w", err)
	}

	identityIDs := make([]string, 0, len(records))
	for _, r := range records {
		identityIDs = append(identityIDs, r.IdentityID)
	}
	profiles, err := s.profiles.GetMap(ctx, identityIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching doctor profiles: %w", err)
	}

	entries := make([]*DirectoryEntry, 0, len(records))
	for _, r := range records {
		p, ok := profiles[r.IdentityID]
		if !ok {
			p = identity.UnknownProfile(r.IdentityID)
		}
		entries = append(entries, &DirectoryEntry{Record: r, Profile: p})
	}
	return entries, total, nil
}

// Get returns one doctor joined with their profile.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DirectoryEntry, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profiles, err := s.profiles.GetMap(ctx, []string{r.IdentityID})
	if err != nil {
		return nil, fmt.Errorf("fetching doctor profile: %w", err)
	}
	p, ok := profiles[r.IdentityID]
	if !ok {
		p = identity.UnknownProfile(r.IdentityID)
	}
	return &DirectoryEntry{Record: r, Profile: p}, nil
}

// GetByIdentityID returns the doctor record owned by an identity.
func (s *Service) GetByIdentityID(ctx context.Context, identityID string) (*Record, error) {
	return s.repo.GetByIdentityID(ctx, identityID)
}

// GetByIDs fetches a set of doctor records in one batched query.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Record, error) {
	return s.repo.GetByIDs(ctx, ids)
}

// ProvisionInput creates a doctor record for an existing identity.
type ProvisionInput struct {
	IdentityID      string  `json:"identity_id"`
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
	Bio             string  `json:"bio"`
}

// Provision creates the doctor record and grants the doctor role in one
// transaction, so a doctor never exists without the role or vice versa.
func (s *Service) Provision(ctx context.Context, in ProvisionInput) (*Record, error) {
	if in.IdentityID == "" {
		return nil, fmt.Errorf("identity_id is required")
	}
	if in.Specialization == "" {
		return nil, fmt.Errorf("specialization is required")
	}
	if in.ExperienceYears < 0 {
		return nil, fmt.Errorf("experience_years must not be negative")
	}
	if in.ConsultationFee < 0 {
		return nil, fmt.Errorf("consultation_fee must not be negative")
	}

	rec := &Record{
		IdentityID:      in.IdentityID,
		Specialization:  in.Specialization,
		Qualification:   in.Qualification,
		ExperienceYears: in.ExperienceYears,
		ConsultationFee: in.ConsultationFee,
		Bio:             in.Bio,
	}

	provision := func(ctx context.Context) error {
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("creating doctor record: %w", err)
		}
		if err := s.roles.Assign(ctx, in.IdentityID, access.RoleDoctor); err != nil {
			return fmt.Errorf("assigning doctor role: %w", err)
		}
		return nil
	}

	var err error
	if s.pool != nil {
		err = db.WithTx(ctx, s.pool, provision)
	} else {
		err = provision(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("doctor_id", rec.ID.String()).
		Str("identity_id", rec.IdentityID).Msg("doctor provisioned")
	return rec, nil
}

// UpdateInput edits the descriptive fields of a record. The identity linkage
// is not editable.
type UpdateInput struct {
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experience_years"`
	ConsultationFee float64 `json:"consultation_fee"`
	Bio             string  `json:"bio"`
}

// Update edits a doctor's descriptive fields without an ownership check.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, rec, in)
}

// UpdateAs edits a doctor's descriptive fields on behalf of an actor. An
// admin may edit any record; any other actor must own it.
func (s *Service) UpdateAs(ctx context.Context, actorIdentityID string, actorRole access.Role, id uuid.UUID, in UpdateInput) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != access.RoleAdmin && rec.IdentityID != actorIdentityID {
		return nil, ErrForbidden
	}
	return s.applyUpdate(ctx, rec, in)
}

func (s *Service) applyUpdate(ctx context.Context, rec *Record, in UpdateInput) (*Record, error) {
	if in.ExperienceYears < 0 {
		return nil, fmt.Errorf("experience_years must not be negative")
	}
	if in.ConsultationFee < 0 {
		return nil, fmt.Errorf("consultation_fee must not be negative")
	}

	rec.Specialization = in.Specialization
	rec.Qualification = in.Qualification
	rec.ExperienceYears = in.ExperienceYears
	rec.ConsultationFee = in.ConsultationFee
	rec.Bio = in.Bio
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
