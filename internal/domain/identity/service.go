package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetByIdentityID(ctx context.Context, identityID string) (*Profile, error) {
	return s.repo.GetByIdentityID(ctx, identityID)
}

// GetMap fetches profiles for a set of identities in a single batched query.
func (s *Service) GetMap(ctx context.Context, identityIDs []string) (map[string]*Profile, error) {
	return s.repo.GetByIdentityIDs(ctx, dedupe(identityIDs))
}

// UpdateInput carries a full profile write. Owners replace their profile
// wholesale; there is no field-level patching here.
type UpdateInput struct {
	FullName  string `json:"full_name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

// Update writes the profile for identityID. Only the owner reaches this
// path; the handler derives identityID from the authenticated request.
func (s *Service) Update(ctx context.Context, identityID string, in UpdateInput) (*Profile, error) {
	if identityID == "" {
		return nil, fmt.Errorf("identity id is required")
	}
	if in.Age < 0 {
		return nil, fmt.Errorf("age must not be negative")
	}

	p := &Profile{
		IdentityID: identityID,
		FullName:   in.FullName,
		Age:        in.Age,
		Gender:     in.Gender,
		Phone:      in.Phone,
		AvatarURL:  in.AvatarURL,
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("upserting profile: %w", err)
	}
	return s.repo.GetByIdentityID(ctx, identityID)
}

// ContactDetails are the fields booking collects on the appointment form.
type ContactDetails struct {
	FullName string
	Age      int
	Gender   string
	Phone    string
}

// SetContactDetails writes the contact fields of a profile, preserving
// whatever else the profile already holds. Booking calls this before
// creating the appointment row.
func (s *Service) SetContactDetails(ctx context.Context, identityID string, d ContactDetails) error {
	if identityID == "" {
		return fmt.Errorf("identity id is required")
	}

	p, err := s.repo.GetByIdentityID(ctx, identityID)
	if errors.Is(err, ErrNotFound) {
		p = &Profile{IdentityID: identityID}
	} else if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	p.FullName = d.FullName
	p.Age = d.Age
	p.Gender = d.Gender
	p.Phone = d.Phone
	if err := s.repo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
