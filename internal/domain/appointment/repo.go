package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create assigns the ID and populates CreatedAt/UpdatedAt on a, so the
	// caller can serialize it without a re-read.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListByDoctor and ListByPatient return appointments ordered by
	// appointment date ascending; same-date rows keep insertion order.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// UpdateNotes overwrites only the non-nil fields.
	UpdateNotes(ctx context.Context, id uuid.UUID, prescription, meetLink *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
