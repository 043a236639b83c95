package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/doctor"
	"github.com/medibook/medibook/internal/platform/websocket"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not allowed")
)

// ValidationError marks a rejected booking form; the message is shown to
// the caller verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// DoctorLookup is the slice of the doctor service the booking flow needs to
// denormalize name and specialty when a doctor id is supplied.
type DoctorLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

// BookingRequest is the booking form. Exactly one of Date or the carousel
// pair (Weekday, DayOfMonth) identifies the day.
type BookingRequest struct {
	DoctorID   *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName string     `json:"doctor_name"`
	Date       string     `json:"date"`
	Weekday    string     `json:"weekday,omitempty"`
	DayOfMonth int        `json:"day_of_month,omitempty"`
	TimeLabel  string     `json:"time"`
	Reason     string     `json:"reason"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
}

type Service struct {
	repo    Repository
	doctors DoctorLookup
	events  websocket.EventPublisher
	now     func() time.Time
}

func NewService(repo Repository, doctors DoctorLookup, events websocket.EventPublisher) *Service {
	return &Service{repo: repo, doctors: doctors, events: events, now: time.Now}
}

// Book validates the form and creates a pending appointment. There is no
// slot-collision check: two bookings for the same doctor, date and time
// both succeed and produce two records.
func (s *Service) Book(ctx context.Context, req BookingRequest, patientEmail string) (*Appointment, error) {
	if req.DoctorID == nil && req.DoctorName == "" {
		return nil, invalid("please select a doctor")
	}
	if req.Name == "" {
		return nil, invalid("please enter your name")
	}
	if req.Phone == "" {
		return nil, invalid("please enter your phone number")
	}
	if req.Reason == "" {
		return nil, invalid("please select a reason for your visit")
	}
	if req.TimeLabel == "" {
		return nil, invalid("please select a time slot")
	}
	if !ValidSlotLabel(req.TimeLabel) {
		return nil, invalid("unknown time slot: %s", req.TimeLabel)
	}

	date, err := s.resolveDate(req)
	if err != nil {
		return nil, err
	}

	a := &Appointment{
		DoctorID:     req.DoctorID,
		DoctorName:   req.DoctorName,
		PatientName:  req.Name,
		PatientEmail: patientEmail,
		Phone:        req.Phone,
		Date:         date,
		TimeLabel:    req.TimeLabel,
		Reason:       req.Reason,
		Status:       StatusPending,
	}

	if req.DoctorID != nil && s.doctors != nil {
		if d, err := s.doctors.Get(ctx, *req.DoctorID); err == nil {
			a.DoctorName = d.Name
			a.DoctorSpecialty = d.Specialty
		}
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update appointments: %w", err)
	}
	s.publish(ctx, "appointment.created", a)
	return a, nil
}

func (s *Service) resolveDate(req BookingRequest) (time.Time, error) {
	if req.Date != "" {
		date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			return time.Time{}, invalid("please select a valid date")
		}
		if err := ValidateBookingDate(date, s.now()); err != nil {
			return time.Time{}, &ValidationError{Msg: err.Error()}
		}
		return date, nil
	}
	if req.Weekday != "" && req.DayOfMonth > 0 {
		date, err := ResolveCarouselDate(req.Weekday, req.DayOfMonth, s.now())
		if err != nil {
			return time.Time{}, &ValidationError{Msg: err.Error()}
		}
		return date, nil
	}
	return time.Time{}, invalid("please select a date")
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	return items, total, nil
}

func (s *Service) ListForPatient(ctx context.Context, email string, limit, offset int) ([]*Appointment, int, error) {
	items, total, err := s.repo.ListByPatientEmail(ctx, email, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	return items, total, nil
}

// UpdateStatus applies an admin transition. Only pending appointments move,
// and only to confirmed or cancelled. Confirming a past-dated appointment
// is allowed.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Appointment, error) {
	if !to.Valid() {
		return nil, ErrInvalidTransition
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if !CanTransition(a.Status, to) {
		return nil, ErrInvalidTransition
	}
	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	a.Status = to
	s.publish(ctx, "appointment.status_changed", a)
	return a, nil
}

// Delete removes an appointment. Admins may delete any record; a patient
// may only delete their own record once it is completed.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, requesterEmail string, isAdmin bool) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if !isAdmin {
		if a.PatientEmail != requesterEmail || a.Status != StatusCompleted {
			return ErrForbidden
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	s.publish(ctx, "appointment.deleted", a)
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, a *Appointment) {
	if s.events == nil {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	_ = s.events.Publish(ctx, websocket.Event{
		Type:      eventType,
		Topic:     websocket.TopicAppointments,
		EntityID:  a.ID.String(),
		Timestamp: time.Now(),
		Data:      data,
	})
}
