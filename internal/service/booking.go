package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"appointment-service/internal/authz"
	"appointment-service/internal/lifecycle"
	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
	"appointment-service/pkg/sl"

	"github.com/google/uuid"
)

type BookRequest struct {
	ProviderID string
	// ConsumerID defaults to the actor when the actor is a consumer.
	ConsumerID string
	Date       string
	Slot       string
	Reason     string
}

type RescheduleRequest struct {
	Date string
	Slot string
	// Reason replaces the stored reason when not empty.
	Reason string
}

type slotRequest struct {
	day  time.Time
	slot schedule.TimeOfDay
}

func (s *Service) parseSlotRequest(date, slot string) (slotRequest, error) {
	day, err := parseDate("date", date)
	if err != nil {
		return slotRequest{}, err
	}
	t, err := parseSlot("slot", slot)
	if err != nil {
		return slotRequest{}, err
	}
	if t.Minute()%int(schedule.SlotDuration/time.Minute) != 0 {
		return slotRequest{}, response.Invalid("slot", "must start on the half hour")
	}
	if s.opts.RejectPastDates && day.Before(s.today()) {
		return slotRequest{}, response.Invalid("date", "must not be in the past")
	}
	return slotRequest{day: day, slot: t}, nil
}

// Book re-validates the requested slot against the provider's schedule and
// commits a Pending appointment. Of any number of concurrent requests for the
// same provider, date and slot at most one succeeds; the rest get
// ErrSlotNotAvailable.
func (s *Service) Book(ctx context.Context, actor models.Actor, req BookRequest) (*models.Appointment, error) {
	const op = "service.Book"

	if req.ConsumerID == "" && actor.Role == models.RoleConsumer {
		req.ConsumerID = actor.ID
	}
	if err := authz.Check(actor, authz.ActionBook, authz.Target{ProviderID: req.ProviderID, ConsumerID: req.ConsumerID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(req.ConsumerID) == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("consumer", "is required"))
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("reason", "is required"))
	}
	sr, err := s.parseSlotRequest(req.Date, req.Slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.provider(ctx, op, req.ProviderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCandidate(ctx, op, p, sr); err != nil {
		return nil, err
	}

	unlock, err := s.lockSlot(ctx, op, p.ID, sr)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := s.opts.Now().UTC()
	appt := &models.Appointment{
		ID:         uuid.NewString(),
		ProviderID: p.ID,
		ConsumerID: req.ConsumerID,
		Date:       sr.day,
		Slot:       sr.slot,
		Duration:   schedule.SlotDuration,
		Reason:     reason,
		Status:     models.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.store.CreateAppointment(sctx, appt); err != nil {
		return nil, s.storeErr(op, err)
	}

	s.notify(ctx, appt.ProviderID, appt, models.NotifyBooked)

	return appt, nil
}

// Reschedule moves an active appointment to another free slot of the same
// provider and leaves it Confirmed.
func (s *Service) Reschedule(ctx context.Context, actor models.Actor, id string, req RescheduleRequest) (*models.Appointment, error) {
	const op = "service.Reschedule"

	appt, err := s.loadAuthorized(ctx, op, actor, id, authz.ActionReschedule)
	if err != nil {
		return nil, err
	}

	to, err := lifecycle.Next(appt.Status, lifecycle.ActionReschedule)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sr, err := s.parseSlotRequest(req.Date, req.Slot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	reason := appt.Reason
	if r := strings.TrimSpace(req.Reason); r != "" {
		reason = r
	}

	p, err := s.provider(ctx, op, appt.ProviderID)
	if err != nil {
		return nil, err
	}

	if err := s.checkCandidate(ctx, op, p, sr); err != nil {
		return nil, err
	}

	unlock, err := s.lockSlot(ctx, op, p.ID, sr)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	moved, err := s.store.MoveAppointment(sctx, appt.ID, appt.Status, to, sr.day, sr.slot, reason)
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	s.notify(ctx, s.counterpart(actor, moved), moved, models.NotifyRescheduled)

	return moved, nil
}

func (s *Service) checkCandidate(ctx context.Context, op string, p *models.Provider, sr slotRequest) error {
	slots, _, err := s.candidates(ctx, op, p, sr.day)
	if err != nil {
		return err
	}
	if !schedule.Contains(slots, sr.slot) {
		return fmt.Errorf("%s: %w: %s is outside the schedule", op, response.ErrSlotNotAvailable, sr.slot)
	}
	return nil
}

// lockSlot takes the advisory slot lock. Contention means another request is
// committing the same slot right now, so the caller fails fast. A broken lock
// backend is logged and ignored since the store enforces uniqueness anyway.
func (s *Service) lockSlot(ctx context.Context, op, providerID string, sr slotRequest) (func(), error) {
	key := fmt.Sprintf("slot:%s:%s:%s", providerID, sr.day.Format(schedule.DateLayout), sr.slot)

	lctx, cancel := s.storeCtx(ctx)
	defer cancel()

	token, ok, err := s.locker.Lock(lctx, key, s.opts.LockTTL)
	if err != nil {
		s.log.Warn("slot lock unavailable", slog.String("op", op), slog.String("key", key), sl.Err(err))
		return func() {}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w: %w", op, response.ErrSlotNotAvailable, response.ErrLocked)
	}

	return func() {
		uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.StoreTimeout)
		defer cancel()

		if err := s.locker.Unlock(uctx, key, token); err != nil {
			s.log.Warn("failed to release slot lock", slog.String("key", key), sl.Err(err))
		}
	}, nil
}
