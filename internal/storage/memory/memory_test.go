package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Storage {
	t.Helper()
	s := New()
	if err := s.UpsertProvider(context.Background(), models.Provider{ID: "p1", Name: "Dr. One"}); err != nil {
		t.Fatalf("UpsertProvider: %v", err)
	}
	return s
}

func appt(id string, slot schedule.TimeOfDay, status models.AppointmentStatus) *models.Appointment {
	return &models.Appointment{
		ID:         id,
		ProviderID: "p1",
		ConsumerID: "c1",
		Date:       day,
		Slot:       slot,
		Status:     status,
	}
}

func TestCreateAppointment_RejectsActiveDuplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	nine := schedule.NewTimeOfDay(9, 0)

	if err := s.CreateAppointment(ctx, appt("a1", nine, models.StatusPending)); err != nil {
		t.Fatalf("first create: %v", err)
	}
	err := s.CreateAppointment(ctx, appt("a2", nine, models.StatusPending))
	if !errors.Is(err, response.ErrSlotNotAvailable) {
		t.Fatalf("expected ErrSlotNotAvailable, got %v", err)
	}
	if _, err := s.GetAppointment(ctx, "a2"); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("rejected appointment must not be stored, got %v", err)
	}
}

func TestCreateAppointment_CancelledFreesSlot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	nine := schedule.NewTimeOfDay(9, 0)

	if err := s.CreateAppointment(ctx, appt("a1", nine, models.StatusPending)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateAppointmentStatus(ctx, "a1", models.StatusPending, models.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := s.CreateAppointment(ctx, appt("a2", nine, models.StatusPending)); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}

	slots, err := s.ActiveSlots(ctx, "p1", day)
	if err != nil {
		t.Fatalf("ActiveSlots: %v", err)
	}
	if len(slots) != 1 || slots[0] != nine {
		t.Fatalf("active slots = %v, want [09:00]", slots)
	}
}

func TestCreateAppointment_UnknownProvider(t *testing.T) {
	s := newStore(t)
	a := appt("a1", schedule.NewTimeOfDay(9, 0), models.StatusPending)
	a.ProviderID = "nope"
	if err := s.CreateAppointment(context.Background(), a); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAppointmentStatus_CompareAndSet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.CreateAppointment(ctx, appt("a1", schedule.NewTimeOfDay(9, 0), models.StatusPending)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.UpdateAppointmentStatus(ctx, "a1", models.StatusConfirmed, models.StatusCompleted); !errors.Is(err, response.ErrInvalidTransition) {
		t.Fatalf("stale from status: expected ErrInvalidTransition, got %v", err)
	}
	got, _ := s.GetAppointment(ctx, "a1")
	if got.Status != models.StatusPending {
		t.Fatalf("status changed to %s after failed update", got.Status)
	}

	if _, err := s.UpdateAppointmentStatus(ctx, "missing", models.StatusPending, models.StatusConfirmed); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveAppointment(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	nine, ten := schedule.NewTimeOfDay(9, 0), schedule.NewTimeOfDay(10, 0)

	_ = s.CreateAppointment(ctx, appt("a1", nine, models.StatusPending))
	_ = s.CreateAppointment(ctx, appt("a2", ten, models.StatusConfirmed))

	if _, err := s.MoveAppointment(ctx, "a1", models.StatusPending, models.StatusConfirmed, day, ten, "x"); !errors.Is(err, response.ErrSlotNotAvailable) {
		t.Fatalf("moving onto a held slot: expected ErrSlotNotAvailable, got %v", err)
	}

	// Moving onto its own slot is allowed.
	moved, err := s.MoveAppointment(ctx, "a1", models.StatusPending, models.StatusConfirmed, day, nine, "checkup")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Status != models.StatusConfirmed || moved.Reason != "checkup" {
		t.Fatalf("unexpected moved appointment %+v", moved)
	}
}

func TestListAppointments_FilterAndOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	a1 := appt("a1", schedule.NewTimeOfDay(11, 0), models.StatusPending)
	a2 := appt("a2", schedule.NewTimeOfDay(9, 0), models.StatusConfirmed)
	a3 := appt("a3", schedule.NewTimeOfDay(9, 0), models.StatusPending)
	a3.Date = day.AddDate(0, 0, 20)
	for _, a := range []*models.Appointment{a1, a2, a3} {
		if err := s.CreateAppointment(ctx, a); err != nil {
			t.Fatalf("create %s: %v", a.ID, err)
		}
	}

	got, err := s.ListAppointments(ctx, models.AppointmentFilter{ProviderID: "p1", From: day, To: day.AddDate(0, 0, 10)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a2" || got[1].ID != "a1" {
		t.Fatalf("unexpected list %v", ids(got))
	}

	got, _ = s.ListAppointments(ctx, models.AppointmentFilter{ProviderID: "p1", Status: models.StatusPending})
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a3" {
		t.Fatalf("unexpected status filtered list %v", ids(got))
	}
}

func TestNotifications_NewestFirstAndMarkRead(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"n1", "n2", "n3"} {
		_ = s.SaveNotification(ctx, models.Notification{ID: id, RecipientID: "c1"})
	}
	_ = s.SaveNotification(ctx, models.Notification{ID: "other", RecipientID: "c2"})

	list, err := s.ListNotifications(ctx, "c1", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "n3" || list[1].ID != "n2" {
		t.Fatalf("unexpected notifications %+v", list)
	}

	// "other" belongs to c2 and must survive a c1 mark.
	if err := s.MarkNotificationsRead(ctx, "c1", []string{"n3", "n2", "other"}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	list, _ = s.ListNotifications(ctx, "c1", 0)
	read := map[string]bool{}
	for _, n := range list {
		read[n.ID] = n.Read
	}
	if !read["n3"] || !read["n2"] || read["n1"] {
		t.Fatalf("only listed notifications should be read, got %v", read)
	}
	other, _ := s.ListNotifications(ctx, "c2", 0)
	if other[0].Read {
		t.Fatalf("another recipient's notification was marked read")
	}
}

func TestCancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.GetProvider(ctx, "p1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func ids(list []*models.Appointment) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}
