package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook/internal/domain/doctor"
	"github.com/medibook/medibook/internal/platform/websocket"
)

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
	order        []uuid.UUID
	failAll      bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

var errStore = errors.New("store unavailable")

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if m.failAll {
		return errStore
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.appointments[a.ID] = &cp
	m.order = append(m.order, a.ID)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	if m.failAll {
		return nil, errStore
	}
	a, ok := m.appointments[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	if m.failAll {
		return nil, 0, errStore
	}
	var items []*Appointment
	for i := len(m.order) - 1; i >= 0; i-- {
		cp := *m.appointments[m.order[i]]
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatientEmail(_ context.Context, email string, limit, offset int) ([]*Appointment, int, error) {
	if m.failAll {
		return nil, 0, errStore
	}
	var items []*Appointment
	for i := len(m.order) - 1; i >= 0; i-- {
		a := m.appointments[m.order[i]]
		if a.PatientEmail == email {
			cp := *a
			items = append(items, &cp)
		}
	}
	return items, len(items), nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	if m.failAll {
		return errStore
	}
	a, ok := m.appointments[id]
	if !ok {
		return errors.New("no rows")
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if m.failAll {
		return errStore
	}
	delete(m.appointments, id)
	return nil
}

type mockDoctors struct {
	doctors map[uuid.UUID]*doctor.Doctor
}

func (m *mockDoctors) Get(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	return d, nil
}

type capturingPublisher struct {
	events []websocket.Event
}

func (p *capturingPublisher) Publish(_ context.Context, ev websocket.Event) error {
	p.events = append(p.events, ev)
	return nil
}

func fixedClock(s *Service, at time.Time) { s.now = func() time.Time { return at } }

func validRequest() BookingRequest {
	return BookingRequest{
		DoctorName: "Dr. Jane Doe",
		Date:       "2025-06-20",
		TimeLabel:  "10:00 AM",
		Reason:     "Fever",
		Name:       "John Smith",
		Phone:      "555-0100",
	}
}

func TestBook_CreatesPendingRecord(t *testing.T) {
	repo := newMockRepo()
	pub := &capturingPublisher{}
	svc := NewService(repo, nil, pub)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "john@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	if a.Status != StatusPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
	if a.DoctorName != "Dr. Jane Doe" {
		t.Errorf("doctor_name = %q", a.DoctorName)
	}
	if a.PatientName != "John Smith" || a.Phone != "555-0100" {
		t.Errorf("patient fields = %q %q", a.PatientName, a.Phone)
	}
	if a.PatientEmail != "john@example.com" {
		t.Errorf("patient_email = %q, want the authenticated identity's email", a.PatientEmail)
	}
	if a.TimeLabel != "10:00 AM" || a.Reason != "Fever" {
		t.Errorf("slot fields = %q %q", a.TimeLabel, a.Reason)
	}
	if got := a.Date.Format("2006-01-02"); got != "2025-06-20" {
		t.Errorf("date = %s", got)
	}
	if a.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("record count = %d, want exactly 1", len(repo.appointments))
	}
	if len(pub.events) != 1 || pub.events[0].Type != "appointment.created" {
		t.Errorf("events = %+v", pub.events)
	}
}

func TestBook_EmailNeverFromBody(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "real@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.PatientEmail != "real@example.com" {
		t.Errorf("patient_email = %q", a.PatientEmail)
	}
}

func TestBook_ValidationFailures(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	cases := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{"missing doctor", func(r *BookingRequest) { r.DoctorID = nil; r.DoctorName = "" }},
		{"missing name", func(r *BookingRequest) { r.Name = "" }},
		{"missing phone", func(r *BookingRequest) { r.Phone = "" }},
		{"missing reason", func(r *BookingRequest) { r.Reason = "" }},
		{"missing time", func(r *BookingRequest) { r.TimeLabel = "" }},
		{"unknown slot", func(r *BookingRequest) { r.TimeLabel = "10:45 AM" }},
		{"missing date", func(r *BookingRequest) { r.Date = "" }},
		{"malformed date", func(r *BookingRequest) { r.Date = "20/06/2025" }},
		{"past date", func(r *BookingRequest) { r.Date = "2025-06-01" }},
		{"beyond window", func(r *BookingRequest) { r.Date = "2025-12-01" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Book(context.Background(), req, "p@example.com")
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("err = %v, want a validation error", err)
			}
		})
	}
}

func TestBook_CarouselDate(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)
	// Tuesday 2025-06-10.
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	req := validRequest()
	req.Date = ""
	req.Weekday = "Friday"
	req.DayOfMonth = 13

	a, err := svc.Book(context.Background(), req, "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if got := a.Date.Format("2006-01-02"); got != "2025-06-13" {
		t.Errorf("date = %s, want 2025-06-13", got)
	}
}

func TestBook_DenormalizesDoctorByID(t *testing.T) {
	docID := uuid.New()
	doctors := &mockDoctors{doctors: map[uuid.UUID]*doctor.Doctor{
		docID: {ID: docID, Name: "Dr. Jane Doe", Specialty: "Neurologist"},
	}}
	svc := NewService(newMockRepo(), doctors, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	req := validRequest()
	req.DoctorID = &docID
	req.DoctorName = ""

	a, err := svc.Book(context.Background(), req, "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.DoctorName != "Dr. Jane Doe" || a.DoctorSpecialty != "Neurologist" {
		t.Errorf("denormalized fields = %q %q", a.DoctorName, a.DoctorSpecialty)
	}
}

func TestBook_NameOnlyDoctorAccepted(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.DoctorID != nil {
		t.Error("name-only booking should leave doctor_id empty")
	}
}

func TestBook_SameSlotTwiceCreatesTwoRecords(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	first, err := svc.Book(context.Background(), validRequest(), "a@example.com")
	if err != nil {
		t.Fatalf("first Book: %v", err)
	}
	second, err := svc.Book(context.Background(), validRequest(), "b@example.com")
	if err != nil {
		t.Fatalf("second Book: %v", err)
	}

	if first.ID == second.ID {
		t.Error("the two bookings should be distinct records")
	}
	if len(repo.appointments) != 2 {
		t.Errorf("record count = %d, want 2", len(repo.appointments))
	}
}

func TestUpdateStatus_PendingToConfirmed(t *testing.T) {
	repo := newMockRepo()
	pub := &capturingPublisher{}
	svc := NewService(repo, nil, pub)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), a.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Errorf("status = %s", updated.Status)
	}
	if repo.appointments[a.ID].Status != StatusConfirmed {
		t.Error("stored record not updated")
	}
	last := pub.events[len(pub.events)-1]
	if last.Type != "appointment.status_changed" {
		t.Errorf("last event = %s", last.Type)
	}
}

func TestUpdateStatus_RejectsFromTerminalStates(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	for _, from := range []Status{StatusConfirmed, StatusCancelled, StatusCompleted} {
		a, err := svc.Book(context.Background(), validRequest(), "p@example.com")
		if err != nil {
			t.Fatalf("Book: %v", err)
		}
		repo.appointments[a.ID].Status = from

		for _, to := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
			if _, err := svc.UpdateStatus(context.Background(), a.ID, to); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: err = %v, want ErrInvalidTransition", from, to, err)
			}
		}
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)
	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), Status("archived")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateStatus_PastDateAllowed(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	// The booked day has since passed; confirmation is still allowed.
	repo.appointments[a.ID].Date = time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local)

	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusConfirmed); err != nil {
		t.Errorf("confirming a past-dated appointment should succeed: %v", err)
	}
}

func TestListForPatient_FiltersByEmail(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	if _, err := svc.Book(context.Background(), validRequest(), "a@example.com"); err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := svc.Book(context.Background(), validRequest(), "b@example.com"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	items, total, err := svc.ListForPatient(context.Background(), "a@example.com", 20, 0)
	if err != nil {
		t.Fatalf("ListForPatient: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].PatientEmail != "a@example.com" {
		t.Errorf("items = %+v", items)
	}
}

func TestDelete_AdminDeletesAny(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if err := svc.Delete(context.Background(), a.ID, "admin@example.com", true); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.appointments) != 0 {
		t.Error("record should be gone")
	}
}

func TestDelete_PatientOnlyOwnCompleted(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, nil)
	fixedClock(svc, time.Date(2025, 6, 10, 12, 0, 0, 0, time.Local))

	a, err := svc.Book(context.Background(), validRequest(), "p@example.com")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}

	// Pending record: the patient may not delete it.
	if err := svc.Delete(context.Background(), a.ID, "p@example.com", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("deleting own pending record: err = %v, want ErrForbidden", err)
	}

	repo.appointments[a.ID].Status = StatusCompleted

	// Someone else's completed record: still forbidden.
	if err := svc.Delete(context.Background(), a.ID, "other@example.com", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("deleting another patient's record: err = %v, want ErrForbidden", err)
	}

	// Own completed record: allowed.
	if err := svc.Delete(context.Background(), a.ID, "p@example.com", false); err != nil {
		t.Errorf("deleting own completed record: %v", err)
	}
}

func TestList_StoreFailure(t *testing.T) {
	repo := newMockRepo()
	repo.failAll = true
	svc := NewService(repo, nil, nil)

	if _, _, err := svc.List(context.Background(), 20, 0); err == nil {
		t.Error("expected store error to surface")
	}
}
