package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"appointment-service/internal/authz"
	"appointment-service/internal/lifecycle"
	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
	"appointment-service/pkg/sl"

	"github.com/google/uuid"
)

func (s *Service) Confirm(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	return s.transition(ctx, "service.Confirm", actor, id, lifecycle.ActionConfirm, authz.ActionConfirm)
}

func (s *Service) Cancel(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	return s.transition(ctx, "service.Cancel", actor, id, lifecycle.ActionCancel, authz.ActionCancel)
}

func (s *Service) Complete(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	return s.transition(ctx, "service.Complete", actor, id, lifecycle.ActionComplete, authz.ActionComplete)
}

// transition applies one lifecycle action as a compare-and-set on the status
// that was read. A concurrent writer that got there first turns this call into
// ErrInvalidTransition and nothing is changed.
func (s *Service) transition(ctx context.Context, op string, actor models.Actor, id string, action lifecycle.Action, perm authz.Action) (*models.Appointment, error) {
	appt, err := s.loadAuthorized(ctx, op, actor, id, perm)
	if err != nil {
		return nil, err
	}

	to, err := lifecycle.Next(appt.Status, action)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	updated, err := s.store.UpdateAppointmentStatus(sctx, appt.ID, appt.Status, to)
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	s.notify(ctx, s.counterpart(actor, updated), updated, lifecycle.NotificationKind(action))

	return updated, nil
}

func (s *Service) GetAppointment(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	return s.loadAuthorized(ctx, "service.GetAppointment", actor, id, authz.ActionView)
}

func (s *Service) loadAuthorized(ctx context.Context, op string, actor models.Actor, id string, perm authz.Action) (*models.Appointment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appt, err := s.store.GetAppointment(sctx, id)
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	if err := authz.Check(actor, perm, authz.ForAppointment(appt)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appt, nil
}

// DeleteAppointment removes the row outright. It is an operator tool and
// ignores the lifecycle.
func (s *Service) DeleteAppointment(ctx context.Context, actor models.Actor, id string) error {
	const op = "service.DeleteAppointment"

	if err := authz.Check(actor, authz.ActionDelete, authz.Target{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	if err := s.store.DeleteAppointment(sctx, id); err != nil {
		return s.storeErr(op, err)
	}

	s.log.Info("appointment deleted", slog.String("id", id), slog.String("actor_id", actor.ID))

	return nil
}

type ListRequest struct {
	ProviderID string
	// From and To are inclusive dates; From defaults to today and To to
	// ten days after From.
	From   string
	To     string
	Status string
}

// ListProviderAppointments returns a provider's appointments ordered by date
// and slot.
func (s *Service) ListProviderAppointments(ctx context.Context, actor models.Actor, req ListRequest) ([]*models.Appointment, error) {
	const op = "service.ListProviderAppointments"

	if err := authz.Check(actor, authz.ActionListAppointments, authz.Target{ProviderID: req.ProviderID}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter := models.AppointmentFilter{ProviderID: req.ProviderID}

	filter.From = s.today()
	if req.From != "" {
		d, err := parseDate("from", req.From)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		filter.From = d
	}

	filter.To = filter.From.AddDate(0, 0, upcomingDays)
	if req.To != "" {
		d, err := parseDate("to", req.To)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		filter.To = d
	}
	if filter.To.Before(filter.From) {
		return nil, fmt.Errorf("%s: %w", op, response.Invalid("to", "must not be before from"))
	}

	if req.Status != "" {
		st := models.AppointmentStatus(req.Status)
		if !st.Valid() {
			return nil, fmt.Errorf("%s: %w", op, response.Invalid("status", "unknown status"))
		}
		filter.Status = st
	}

	if _, err := s.provider(ctx, op, req.ProviderID); err != nil {
		return nil, err
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	appts, err := s.store.ListAppointments(sctx, filter)
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	return appts, nil
}

// Notifications returns the actor's newest notifications and marks exactly
// those read. Older ones beyond the limit stay unread.
func (s *Service) Notifications(ctx context.Context, actor models.Actor) ([]models.Notification, error) {
	const op = "service.Notifications"

	if actor.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, response.ErrForbidden)
	}

	sctx, cancel := s.storeCtx(ctx)
	defer cancel()

	list, err := s.store.ListNotifications(sctx, actor.ID, notificationsLimit)
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	if len(list) > 0 {
		ids := make([]string, 0, len(list))
		for _, n := range list {
			ids = append(ids, n.ID)
		}
		if err := s.store.MarkNotificationsRead(sctx, actor.ID, ids); err != nil {
			return nil, s.storeErr(op, err)
		}
	}

	return list, nil
}

// counterpart is who hears about a change: the provider when the consumer
// made it, the consumer otherwise.
func (s *Service) counterpart(actor models.Actor, a *models.Appointment) string {
	if actor.ID == a.ConsumerID {
		return a.ProviderID
	}
	return a.ConsumerID
}

var notificationTitles = map[models.NotificationKind]string{
	models.NotifyBooked:      "New appointment request",
	models.NotifyConfirmed:   "Appointment confirmed",
	models.NotifyCancelled:   "Appointment cancelled",
	models.NotifyCompleted:   "Appointment completed",
	models.NotifyRescheduled: "Appointment rescheduled",
}

// notify hands a notification to the notifier. Delivery never fails the
// operation that triggered it.
func (s *Service) notify(ctx context.Context, recipient string, a *models.Appointment, kind models.NotificationKind) {
	if s.notifier == nil {
		return
	}

	n := models.Notification{
		ID:            uuid.NewString(),
		RecipientID:   recipient,
		AppointmentID: a.ID,
		Kind:          kind,
		Title:         notificationTitles[kind],
		Message: fmt.Sprintf("Appointment on %s at %s is %s.",
			a.Date.Format(schedule.DateLayout), a.Slot, strings.ToLower(string(a.Status))),
		CreatedAt: s.opts.Now().UTC(),
	}

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification not delivered",
			slog.String("appointment_id", a.ID),
			slog.String("kind", string(kind)),
			sl.Err(err),
		)
	}
}
