package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediconnect/api/internal/domain/doctor"
	"github.com/mediconnect/api/internal/domain/identity"
)

// PatientView is an appointment as the doctor sees it: joined with the
// booking patient's profile.
type PatientView struct {
	*Appointment
	Patient *identity.Profile `json:"patient"`
}

// DoctorView is an appointment as the patient sees it: joined with the
// doctor record and that doctor's profile.
type DoctorView struct {
	*Appointment
	Doctor *doctor.DirectoryEntry `json:"doctor"`
}

// joinPatients attaches patient profiles to a batch of appointments with a
// single batched fetch. A missing profile becomes the Unknown placeholder;
// no row is ever dropped.
func (s *Service) joinPatients(ctx context.Context, appts []*Appointment) ([]*PatientView, error) {
	ids := make([]string, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.PatientID)
	}
	profiles, err := s.profiles.GetMap(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching patient profiles: %w", err)
	}

	views := make([]*PatientView, 0, len(appts))
	for _, a := range appts {
		p, ok := profiles[a.PatientID]
		if !ok {
			p = identity.UnknownProfile(a.PatientID)
		}
		views = append(views, &PatientView{Appointment: a, Patient: p})
	}
	return views, nil
}

// joinDoctors attaches doctor records and their profiles to a batch of
// appointments: one batched doctor fetch, then one batched profile fetch
// over the doctors found. Missing records get placeholders.
func (s *Service) joinDoctors(ctx context.Context, appts []*Appointment) ([]*DoctorView, error) {
	doctorIDs := make([]uuid.UUID, 0, len(appts))
	seen := make(map[uuid.UUID]struct{}, len(appts))
	for _, a := range appts {
		if _, ok := seen[a.DoctorID]; ok {
			continue
		}
		seen[a.DoctorID] = struct{}{}
		doctorIDs = append(doctorIDs, a.DoctorID)
	}

	records, err := s.doctors.GetByIDs(ctx, doctorIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching doctors: %w", err)
	}

	identityIDs := make([]string, 0, len(records))
	for _, r := range records {
		identityIDs = append(identityIDs, r.IdentityID)
	}
	profiles, err := s.profiles.GetMap(ctx, identityIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching doctor profiles: %w", err)
	}

	views := make([]*DoctorView, 0, len(appts))
	for _, a := range appts {
		entry := &doctor.DirectoryEntry{}
		if rec, ok := records[a.DoctorID]; ok {
			entry.Record = rec
			if p, ok := profiles[rec.IdentityID]; ok {
				entry.Profile = p
			} else {
				entry.Profile = identity.UnknownProfile(rec.IdentityID)
			}
		} else {
			entry.Record = unknownDoctor(a.DoctorID)
			entry.Profile = identity.UnknownProfile("")
		}
		views = append(views, &DoctorView{Appointment: a, Doctor: entry})
	}
	return views, nil
}

// unknownDoctor is the placeholder for an appointment whose doctor record
// no longer exists.
func unknownDoctor(id uuid.UUID) *doctor.Record {
	return &doctor.Record{ID: id, Specialization: "Unknown"}
}
