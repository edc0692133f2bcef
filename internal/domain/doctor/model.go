package doctor

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/api/internal/domain/identity"
)

// Record is a provisioned doctor. IdentityID links the record to the
// authenticated identity and never changes after provisioning; the
// descriptive fields may be edited later.
type Record struct {
	ID              uuid.UUID `json:"id"`
	IdentityID      string    `json:"identity_id"`
	Specialization  string    `json:"specialization"`
	Qualification   string    `json:"qualification"`
	ExperienceYears int       `json:"experience_years"`
	ConsultationFee float64   `json:"consultation_fee"`
	Bio             string    `json:"bio"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DirectoryEntry is a doctor joined with their profile for public listings.
// Profile is the Unknown placeholder when the doctor has not filled one in.
type DirectoryEntry struct {
	*Record
	Profile *identity.Profile `json:"profile"`
}
