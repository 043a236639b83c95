package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	// StatusCompleted is a terminal state with no transition into it from
	// the console; records carrying it are kept and may be deleted by
	// their patient.
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a status change is allowed. Only pending
// records move; confirmed, cancelled and completed are terminal.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusConfirmed || to == StatusCancelled
}

// Appointment is one booking record. DoctorID is nullable and carries no
// referential guarantee; the doctor name and specialty are denormalized
// copies taken at booking time.
type Appointment struct {
	ID              uuid.UUID  `json:"id"`
	DoctorID        *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName      string     `json:"doctor_name"`
	DoctorSpecialty string     `json:"doctor_specialty,omitempty"`
	PatientName     string     `json:"patient_name"`
	PatientEmail    string     `json:"patient_email"`
	Phone           string     `json:"phone"`
	Date            time.Time  `json:"date"`
	TimeLabel       string     `json:"time"`
	Reason          string     `json:"reason"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
