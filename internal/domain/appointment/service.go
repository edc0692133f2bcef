package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mediconnect/api/internal/domain/doctor"
	"github.com/mediconnect/api/internal/domain/identity"
	"github.com/mediconnect/api/internal/platform/notification"
	"github.com/mediconnect/api/internal/platform/telemetry"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("appointment not found")
	ErrNotPending = errors.New("appointment is not pending")
)

// DoctorSource resolves doctor records for booking checks and the join
// layer.
type DoctorSource interface {
	GetByIdentityID(ctx context.Context, identityID string) (*doctor.Record, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*doctor.Record, error)
}

// ProfileStore covers both sides of the profile dependency: the batched
// read for listings and the contact-details write booking performs.
type ProfileStore interface {
	GetMap(ctx context.Context, identityIDs []string) (map[string]*identity.Profile, error)
	GetByIdentityID(ctx context.Context, identityID string) (*identity.Profile, error)
	SetContactDetails(ctx context.Context, identityID string, d identity.ContactDetails) error
}

type Service struct {
	repo      Repository
	doctors   DoctorSource
	profiles  ProfileStore
	templates *notification.TemplateEngine
	metrics   *telemetry.Provider
	logger    zerolog.Logger
}

// NewService builds the lifecycle manager. metrics may be nil.
func NewService(repo Repository, doctors DoctorSource, profiles ProfileStore,
	metrics *telemetry.Provider, logger zerolog.Logger) *Service {
	return &Service{repo: repo, doctors: doctors, profiles: profiles,
		templates: notification.NewTemplateEngine(),
		metrics:   metrics, logger: logger}
}

// BookInput is the appointment form. Every field is mandatory.
type BookInput struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	FullName string    `json:"full_name"`
	Age      int       `json:"age"`
	Gender   string    `json:"gender"`
	Phone    string    `json:"phone"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Symptoms string    `json:"symptoms"`
}

func (in *BookInput) validate() error {
	switch {
	case in.DoctorID == uuid.Nil:
		return fmt.Errorf("%w: doctor_id is required", ErrValidation)
	case in.FullName == "":
		return fmt.Errorf("%w: full_name is required", ErrValidation)
	case in.Age <= 0:
		return fmt.Errorf("%w: age is required", ErrValidation)
	case in.Gender == "":
		return fmt.Errorf("%w: gender is required", ErrValidation)
	case in.Phone == "":
		return fmt.Errorf("%w: phone is required", ErrValidation)
	case in.Date == "":
		return fmt.Errorf("%w: date is required", ErrValidation)
	case in.Time == "":
		return fmt.Errorf("%w: time is required", ErrValidation)
	case in.Symptoms == "":
		return fmt.Errorf("%w: symptoms is required", ErrValidation)
	}
	return nil
}

// Book validates the form, writes the patient's contact details to their
// profile, then creates the appointment in pending state. Validation
// failures perform zero writes; a profile write failure aborts before the
// appointment insert, so no appointment exists with stale contact details.
// The two writes are not transactional: a profile update may survive a
// failed insert.
func (s *Service) Book(ctx context.Context, patientID string, in BookInput) (*Appointment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}

	docs, err := s.doctors.GetByIDs(ctx, []uuid.UUID{in.DoctorID})
	if err != nil {
		return nil, fmt.Errorf("checking doctor: %w", err)
	}
	if docs[in.DoctorID] == nil {
		return nil, fmt.Errorf("%w: unknown doctor", ErrValidation)
	}

	if err := s.profiles.SetContactDetails(ctx, patientID, identity.ContactDetails{
		FullName: in.FullName,
		Age:      in.Age,
		Gender:   in.Gender,
		Phone:    in.Phone,
	}); err != nil {
		return nil, fmt.Errorf("updating patient profile: %w", err)
	}

	a := &Appointment{
		DoctorID:  in.DoctorID,
		PatientID: patientID,
		Date:      date,
		Time:      in.Time,
		Symptoms:  in.Symptoms,
		Status:    StatusPending,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.metrics.OperationCounter("appointment", "book")
	s.logger.Info().Str("appointment_id", a.ID.String()).
		Str("patient_id", patientID).Str("doctor_id", in.DoctorID.String()).
		Msg("appointment booked")
	return a, nil
}

// ListForDoctor returns the appointments of the doctor owned by
// doctorIdentityID, each joined with the patient's profile.
func (s *Service) ListForDoctor(ctx context.Context, doctorIdentityID string) ([]*PatientView, error) {
	rec, err := s.doctors.GetByIdentityID(ctx, doctorIdentityID)
	if errors.Is(err, doctor.ErrNotFound) {
		return nil, fmt.Errorf("%w: no doctor record for identity", ErrForbidden)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving doctor: %w", err)
	}

	appts, err := s.repo.ListByDoctor(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return s.joinPatients(ctx, appts)
}

// ListForPatient returns a patient's appointments, each joined with the
// doctor record and its profile.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]*DoctorView, error) {
	appts, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	return s.joinDoctors(ctx, appts)
}

// SetStatus moves an appointment to any of the four statuses. Only the
// doctor the appointment references may call it; setting the current status
// again is a no-op success.
func (s *Service) SetStatus(ctx context.Context, actorIdentityID string, id uuid.UUID, status Status) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwningDoctor(ctx, actorIdentityID, a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}
	a.Status = status

	s.metrics.OperationCounter("appointment", "set_status")
	s.logger.Info().Str("appointment_id", id.String()).
		Str("status", string(status)).Msg("appointment status changed")
	return a, nil
}

// AnnotateInput carries a partial notes update; nil fields are left alone.
type AnnotateInput struct {
	Prescription *string `json:"prescription"`
	MeetLink     *string `json:"meet_link"`
}

// Annotate overwrites the supplied note fields on an appointment. Only the
// referenced doctor may call it; the appointment's status does not matter.
func (s *Service) Annotate(ctx context.Context, actorIdentityID string, id uuid.UUID, in AnnotateInput) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwningDoctor(ctx, actorIdentityID, a); err != nil {
		return nil, err
	}

	if in.Prescription == nil && in.MeetLink == nil {
		return a, nil
	}

	if err := s.repo.UpdateNotes(ctx, id, in.Prescription, in.MeetLink); err != nil {
		return nil, fmt.Errorf("updating notes: %w", err)
	}
	if in.Prescription != nil {
		a.Prescription = *in.Prescription
	}
	if in.MeetLink != nil {
		a.MeetLink = *in.MeetLink
	}

	s.metrics.OperationCounter("appointment", "annotate")
	return a, nil
}

// Cancel deletes a pending appointment. Only the booking patient may call
// it, and only while the appointment is still pending.
func (s *Service) Cancel(ctx context.Context, actorIdentityID string, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.PatientID != actorIdentityID {
		return fmt.Errorf("%w: not your appointment", ErrForbidden)
	}
	if a.Status != StatusPending {
		return ErrNotPending
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}

	s.metrics.OperationCounter("appointment", "cancel")
	s.logger.Info().Str("appointment_id", id.String()).
		Str("patient_id", actorIdentityID).Msg("appointment cancelled")
	return nil
}

// ComposeWhatsAppLink builds the wa.me deep link the doctor opens to
// message the patient of an appointment. A non-empty message is used
// verbatim; otherwise templateID selects a message template rendered with
// the patient's name and the appointment's date and time, defaulting to
// the greeting template. The server never performs delivery.
func (s *Service) ComposeWhatsAppLink(ctx context.Context, actorIdentityID string, id uuid.UUID, templateID, message string) (string, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.requireOwningDoctor(ctx, actorIdentityID, a); err != nil {
		return "", err
	}

	p, err := s.profiles.GetByIdentityID(ctx, a.PatientID)
	if errors.Is(err, identity.ErrNotFound) {
		p = identity.UnknownProfile(a.PatientID)
	} else if err != nil {
		return "", fmt.Errorf("loading patient profile: %w", err)
	}

	if p.Phone == "" {
		return "", fmt.Errorf("%w: patient has no phone number", ErrValidation)
	}
	if message == "" {
		if templateID == "" {
			templateID = notification.TemplateWhatsAppGreeting
		}
		message, err = s.templates.Render(templateID, map[string]string{
			"patient_name": p.FullName,
			"date":         a.Date.Format("2006-01-02"),
			"time":         a.Time,
		})
		if err != nil {
			return "", fmt.Errorf("%w: unknown template %q", ErrValidation, templateID)
		}
	}

	s.metrics.OperationCounter("appointment", "whatsapp_link")
	return notification.WhatsAppLink(p.Phone, message), nil
}

func (s *Service) requireOwningDoctor(ctx context.Context, actorIdentityID string, a *Appointment) error {
	rec, err := s.doctors.GetByIdentityID(ctx, actorIdentityID)
	if errors.Is(err, doctor.ErrNotFound) {
		return fmt.Errorf("%w: no doctor record for identity", ErrForbidden)
	}
	if err != nil {
		return fmt.Errorf("resolving doctor: %w", err)
	}
	if rec.ID != a.DoctorID {
		return fmt.Errorf("%w: not your appointment", ErrForbidden)
	}
	return nil
}
