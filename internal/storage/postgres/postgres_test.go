package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func TestMapErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"active slot", &pq.Error{Code: "23505", Constraint: activeSlotIndex}, response.ErrSlotNotAvailable},
		{"other unique", &pq.Error{Code: "23505", Constraint: "appointments_pkey"}, response.ErrConflict},
		{"foreign key", &pq.Error{Code: "23503"}, response.ErrNotFound},
		{"bad uuid", &pq.Error{Code: "22P02"}, response.ErrNotFound},
	}
	for _, c := range cases {
		if got := mapErr(c.err); !errors.Is(got, c.want) {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}

	plain := errors.New("connection reset")
	if got := mapErr(plain); got != plain {
		t.Fatalf("unrelated errors must pass through, got %v", got)
	}
}

// openTestDB connects to POSTGRES_TEST_DSN and resets the tables.
func openTestDB(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	s, err := New(dsn)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `TRUNCATE notifications, appointments, weekly_windows, providers CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if err := s.UpsertProvider(ctx, models.Provider{ID: "p1", Name: "Dr. One"}); err != nil {
		t.Fatalf("UpsertProvider: %v", err)
	}

	return s
}

func newAppointment(slot schedule.TimeOfDay) *models.Appointment {
	now := time.Now().UTC()
	return &models.Appointment{
		ID:         uuid.NewString(),
		ProviderID: "p1",
		ConsumerID: "c1",
		Date:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Slot:       slot,
		Duration:   schedule.SlotDuration,
		Reason:     "checkup",
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestStorage_ConcurrentCreateOneWinner(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateAppointment(ctx, newAppointment(schedule.NewTimeOfDay(9, 0)))
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, response.ErrSlotNotAvailable) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected one winner, got %d", wins)
	}
}

func TestStorage_AppointmentRoundTrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	a := newAppointment(schedule.NewTimeOfDay(14, 30))
	if err := s.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	got, err := s.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if !got.Date.Equal(a.Date) || got.Slot != a.Slot || got.Duration != a.Duration || got.Status != a.Status {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, a)
	}

	if _, err := s.UpdateAppointmentStatus(ctx, a.ID, models.StatusConfirmed, models.StatusCompleted); !errors.Is(err, response.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := s.UpdateAppointmentStatus(ctx, "not-a-uuid", models.StatusPending, models.StatusConfirmed); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cancelled, err := s.UpdateAppointmentStatus(ctx, a.ID, models.StatusPending, models.StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("status = %s", cancelled.Status)
	}

	// The partial index frees the slot once the holder is inactive.
	if err := s.CreateAppointment(ctx, newAppointment(schedule.NewTimeOfDay(14, 30))); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestStorage_ReplaceWeeklyWindows(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	week := []schedule.Window{
		{Day: time.Monday, Start: schedule.NewTimeOfDay(9, 0), End: schedule.NewTimeOfDay(12, 0)},
		{Day: time.Friday, Start: schedule.NewTimeOfDay(13, 0), End: schedule.NewTimeOfDay(24, 0)},
	}
	if err := s.ReplaceWeeklyWindows(ctx, "p1", week); err != nil {
		t.Fatalf("ReplaceWeeklyWindows: %v", err)
	}

	got, err := s.ListWeeklyWindows(ctx, "p1")
	if err != nil {
		t.Fatalf("ListWeeklyWindows: %v", err)
	}
	if len(got) != 2 || got[0] != week[0] || got[1] != week[1] {
		t.Fatalf("unexpected windows %+v", got)
	}

	if err := s.ReplaceWeeklyWindows(ctx, "ghost", week); !errors.Is(err, response.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkNotificationsRead_OnlyGivenIDs(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.NewString()
		n := models.Notification{
			ID:          ids[i],
			RecipientID: "c1",
			Kind:        models.NotifyBooked,
			Title:       "t",
			Message:     "m",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := s.SaveNotification(ctx, n); err != nil {
			t.Fatalf("SaveNotification: %v", err)
		}
	}

	newest, err := s.ListNotifications(ctx, "c1", 2)
	if err != nil || len(newest) != 2 {
		t.Fatalf("ListNotifications = %v, %v", newest, err)
	}
	if err := s.MarkNotificationsRead(ctx, "c1", []string{newest[0].ID, newest[1].ID}); err != nil {
		t.Fatalf("MarkNotificationsRead: %v", err)
	}

	all, _ := s.ListNotifications(ctx, "c1", 0)
	for _, n := range all {
		if want := n.ID != ids[0]; n.Read != want {
			t.Fatalf("notification %s read = %v, want %v", n.ID, n.Read, want)
		}
	}
}
