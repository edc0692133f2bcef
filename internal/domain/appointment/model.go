package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is an appointment's lifecycle state, stored as the literal string.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// validStatuses lists every assignable status. Any of them is reachable
// from any current status; the graph is deliberately permissive, including
// reopening a completed appointment.
var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// Appointment links a patient identity to a doctor record for a given date
// and time. Prescription and MeetLink start empty and are filled in by the
// doctor later.
type Appointment struct {
	ID           uuid.UUID `json:"id"`
	DoctorID     uuid.UUID `json:"doctor_id"`
	PatientID    string    `json:"patient_id"`
	Date         time.Time `json:"appointment_date"`
	Time         string    `json:"appointment_time"`
	Symptoms     string    `json:"symptoms"`
	Status       Status    `json:"status"`
	Prescription string    `json:"prescription,omitempty"`
	MeetLink     string    `json:"meet_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
