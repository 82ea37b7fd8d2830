// Package memory is a process-local store used for development and tests.
// Every write holds one mutex, which makes the slot check and the insert a
// single atomic step.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
)

type Storage struct {
	mu            sync.RWMutex
	providers     map[string]models.Provider
	windows       map[string][]schedule.Window
	appointments  map[string]models.Appointment
	notifications []models.Notification
}

func New() *Storage {
	return &Storage{
		providers:    make(map[string]models.Provider),
		windows:      make(map[string][]schedule.Window),
		appointments: make(map[string]models.Appointment),
	}
}

func (s *Storage) Close() error { return nil }

func (s *Storage) UpsertProvider(ctx context.Context, p models.Provider) error {
	const op = "storage.memory.UpsertProvider"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.providers[p.ID] = p
	return nil
}

func (s *Storage) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	const op = "storage.memory.GetProvider"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &p, nil
}

func (s *Storage) ListWeeklyWindows(ctx context.Context, providerID string) ([]schedule.Window, error) {
	const op = "storage.memory.ListWeeklyWindows"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]schedule.Window(nil), s.windows[providerID]...), nil
}

func (s *Storage) ReplaceWeeklyWindows(ctx context.Context, providerID string, windows []schedule.Window) error {
	const op = "storage.memory.ReplaceWeeklyWindows"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[providerID]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	s.windows[providerID] = append([]schedule.Window(nil), windows...)
	return nil
}

func (s *Storage) ActiveSlots(ctx context.Context, providerID string, date time.Time) ([]schedule.TimeOfDay, error) {
	const op = "storage.memory.ActiveSlots"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schedule.TimeOfDay
	for _, a := range s.appointments {
		if a.ProviderID == providerID && a.Date.Equal(date) && a.Status.Active() {
			out = append(out, a.Slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// occupied reports whether an active appointment other than exceptID holds
// the slot. Callers hold the lock.
func (s *Storage) occupied(providerID string, date time.Time, slot schedule.TimeOfDay, exceptID string) bool {
	for id, a := range s.appointments {
		if id == exceptID || !a.Status.Active() {
			continue
		}
		if a.ProviderID == providerID && a.Date.Equal(date) && a.Slot == slot {
			return true
		}
	}
	return false
}

func (s *Storage) CreateAppointment(ctx context.Context, appt *models.Appointment) error {
	const op = "storage.memory.CreateAppointment"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.providers[appt.ProviderID]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	if appt.Status.Active() && s.occupied(appt.ProviderID, appt.Date, appt.Slot, "") {
		return fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}
	if _, ok := s.appointments[appt.ID]; ok {
		return fmt.Errorf("%s: %w: duplicate id", op, response.ErrConflict)
	}

	s.appointments[appt.ID] = *appt
	return nil
}

func (s *Storage) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	const op = "storage.memory.GetAppointment"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	return &a, nil
}

func (s *Storage) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]*models.Appointment, error) {
	const op = "storage.memory.ListAppointments"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Appointment, 0)
	for _, a := range s.appointments {
		if filter.ProviderID != "" && a.ProviderID != filter.ProviderID {
			continue
		}
		if !filter.From.IsZero() && a.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && a.Date.After(filter.To) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		a := a
		out = append(out, &a)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}

func (s *Storage) UpdateAppointmentStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error) {
	const op = "storage.memory.UpdateAppointmentStatus"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	if a.Status != from {
		return nil, fmt.Errorf("%s: %w: status is %s", op, response.ErrInvalidTransition, a.Status)
	}
	if to.Active() && !from.Active() && s.occupied(a.ProviderID, a.Date, a.Slot, a.ID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a
	return &a, nil
}

func (s *Storage) MoveAppointment(ctx context.Context, id string, from, to models.AppointmentStatus, date time.Time, slot schedule.TimeOfDay, reason string) (*models.Appointment, error) {
	const op = "storage.memory.MoveAppointment"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	if a.Status != from {
		return nil, fmt.Errorf("%s: %w: status is %s", op, response.ErrInvalidTransition, a.Status)
	}
	if to.Active() && s.occupied(a.ProviderID, date, slot, a.ID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	a.Date = date
	a.Slot = slot
	a.Reason = reason
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	s.appointments[id] = a
	return &a, nil
}

func (s *Storage) DeleteAppointment(ctx context.Context, id string) error {
	const op = "storage.memory.DeleteAppointment"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.appointments[id]; !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}
	delete(s.appointments, id)
	return nil
}

func (s *Storage) SaveNotification(ctx context.Context, n models.Notification) error {
	const op = "storage.memory.SaveNotification"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, n)
	return nil
}

// ListNotifications returns up to limit notifications for recipientID, newest first.
func (s *Storage) ListNotifications(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	const op = "storage.memory.ListNotifications"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0)
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if n := s.notifications[i]; n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Storage) MarkNotificationsRead(ctx context.Context, recipientID string, ids []string) error {
	const op = "storage.memory.MarkNotificationsRead"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	marked := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		marked[id] = struct{}{}
	}

	for i := range s.notifications {
		n := &s.notifications[i]
		if _, ok := marked[n.ID]; ok && n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}
