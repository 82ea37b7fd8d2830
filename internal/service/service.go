package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"appointment-service/internal/authz"
	"appointment-service/internal/lock"
	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
	"appointment-service/pkg/sl"
)

const (
	defaultStoreTimeout = 3 * time.Second
	defaultLockTTL      = 10 * time.Second
	upcomingDays        = 10
	notificationsLimit  = 50
)

// Store is the schedule store and the commitment store together.
//
// CreateAppointment and MoveAppointment must check that the target slot has no
// active appointment and write in one atomic unit, returning
// response.ErrSlotNotAvailable when it is taken. UpdateAppointmentStatus is a
// compare-and-set on the current status and returns response.ErrInvalidTransition
// when the row no longer has status from.
type Store interface {
	// Schedule
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	ListWeeklyWindows(ctx context.Context, providerID string) ([]schedule.Window, error)
	ReplaceWeeklyWindows(ctx context.Context, providerID string, windows []schedule.Window) error

	// Commitments
	ActiveSlots(ctx context.Context, providerID string, date time.Time) ([]schedule.TimeOfDay, error)
	CreateAppointment(ctx context.Context, appt *models.Appointment) error
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]*models.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error)
	MoveAppointment(ctx context.Context, id string, from, to models.AppointmentStatus, date time.Time, slot schedule.TimeOfDay, reason string) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, id string) error

	// Notifications
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, recipientID string, ids []string) error
}

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

type Options struct {
	// StoreTimeout bounds every store call.
	StoreTimeout time.Duration
	LockTTL      time.Duration
	// RejectPastDates refuses bookings for dates before today.
	RejectPastDates bool
	Now             func() time.Time
}

type Service struct {
	store    Store
	locker   lock.Locker
	notifier Notifier
	log      *slog.Logger
	opts     Options
}

func NewService(store Store, locker lock.Locker, notifier Notifier, log *slog.Logger, opts Options) *Service {
	if locker == nil {
		locker = lock.Noop{}
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		store:    store,
		locker:   locker,
		notifier: notifier,
		log:      log,
		opts:     opts,
	}
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// storeErr keeps domain errors as they are and files everything else,
// timeouts included, under ErrStoreUnavailable.
func (s *Service) storeErr(op string, err error) error {
	switch {
	case errors.Is(err, response.ErrNotFound),
		errors.Is(err, response.ErrSlotNotAvailable),
		errors.Is(err, response.ErrInvalidTransition),
		errors.Is(err, response.ErrConflict),
		errors.Is(err, response.ErrValidation):
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Error("store unavailable", slog.String("op", op), sl.Err(err))
	return fmt.Errorf("%s: %w: %w", op, response.ErrStoreUnavailable, err)
}

func (s *Service) today() time.Time {
	return schedule.Day(s.opts.Now().UTC())
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, response.Invalid(field, "is required")
	}
	d, err := schedule.ParseDate(value)
	if err != nil {
		return time.Time{}, response.Invalid(field, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

func parseSlot(field, value string) (schedule.TimeOfDay, error) {
	if strings.TrimSpace(value) == "" {
		return 0, response.Invalid(field, "is required")
	}
	t, err := schedule.ParseTimeOfDay(value)
	if err != nil {
		return 0, response.Invalid(field, "must be a HH:MM time")
	}
	return t, nil
}

// provider loads a provider, reporting an unknown id as a validation failure.
func (s *Service) provider(ctx context.Context, op, id string) (*models.Provider, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("provider", "is required"))
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	p, err := s.store.GetProvider(sctx, id)
	if errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("provider", "unknown provider"))
	}
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	return p, nil
}

// Slots

// GenerateSlots returns the candidate slots of a provider for a date and how
// they were resolved. Bookings are not taken into account.
func (s *Service) GenerateSlots(ctx context.Context, providerID, date string) ([]schedule.TimeOfDay, schedule.Resolution, error) {
	const op = "service.GenerateSlots"

	day, err := parseDate("date", date)
	if err != nil {
		return nil, schedule.Resolution{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.provider(ctx, op, providerID)
	if err != nil {
		return nil, schedule.Resolution{}, err
	}

	return s.candidates(ctx, op, p, day)
}

func (s *Service) candidates(ctx context.Context, op string, p *models.Provider, day time.Time) ([]schedule.TimeOfDay, schedule.Resolution, error) {
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	weekly, err := s.store.ListWeeklyWindows(sctx, p.ID)
	if err != nil {
		return nil, schedule.Resolution{}, s.storeErr(op, err)
	}

	slots, res := schedule.Generate(day, weekly, p.AvailableTime)
	if res.InformalErr != nil {
		s.log.Warn("informal availability ignored",
			slog.String("provider_id", p.ID),
			slog.String("available_time", p.AvailableTime),
			sl.Err(res.InformalErr),
		)
	}

	return slots, res, nil
}

// AvailableSlots returns the provider's candidate slots for date minus the
// ones held by active appointments, ascending.
func (s *Service) AvailableSlots(ctx context.Context, providerID, date string) ([]schedule.TimeOfDay, error) {
	const op = "service.AvailableSlots"

	day, err := parseDate("date", date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.provider(ctx, op, providerID)
	if err != nil {
		return nil, err
	}

	slots, _, err := s.candidates(ctx, op, p, day)
	if err != nil {
		return nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	taken, err := s.store.ActiveSlots(sctx, p.ID, day)
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	return schedule.Subtract(slots, taken), nil
}

// Provider schedule

func (s *Service) ProviderSchedule(ctx context.Context, providerID string) (*models.Provider, []schedule.Window, error) {
	const op = "service.ProviderSchedule"

	p, err := s.provider(ctx, op, providerID)
	if err != nil {
		return nil, nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	windows, err := s.store.ListWeeklyWindows(sctx, p.ID)
	if err != nil {
		return nil, nil, s.storeErr(op, err)
	}
	schedule.SortWeek(windows)

	return p, windows, nil
}

// SetProviderSchedule replaces the provider's weekly windows. Overlapping
// windows on the same day are rejected.
func (s *Service) SetProviderSchedule(ctx context.Context, actor models.Actor, providerID string, windows []schedule.Window) ([]schedule.Window, error) {
	const op = "service.SetProviderSchedule"

	if err := authz.Check(actor, authz.ActionManageSchedule, authz.Target{ProviderID: providerID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := schedule.ValidateWeek(windows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("windows", err.Error()))
	}

	p, err := s.provider(ctx, op, providerID)
	if err != nil {
		return nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.store.ReplaceWeeklyWindows(sctx, p.ID, windows); err != nil {
		return nil, s.storeErr(op, err)
	}

	out := append([]schedule.Window(nil), windows...)
	schedule.SortWeek(out)
	return out, nil
}
