// Package lifecycle holds the appointment state machine.
//
//	Pending ──confirm──▶ Confirmed ──complete──▶ Completed
//	   │                    │
//	   └──cancel──▶ Cancelled ◀──cancel──┘
//
// Reschedule moves an active appointment to a new slot and leaves it Confirmed.
// Completed and Cancelled are terminal.
package lifecycle

import (
	"fmt"

	"appointment-service/internal/models"
	"appointment-service/pkg/response"
)

type Action string

const (
	ActionConfirm    Action = "confirm"
	ActionCancel     Action = "cancel"
	ActionComplete   Action = "complete"
	ActionReschedule Action = "reschedule"
)

var transitions = map[models.AppointmentStatus]map[Action]models.AppointmentStatus{
	models.StatusPending: {
		ActionConfirm:    models.StatusConfirmed,
		ActionCancel:     models.StatusCancelled,
		ActionReschedule: models.StatusConfirmed,
	},
	models.StatusConfirmed: {
		ActionCancel:     models.StatusCancelled,
		ActionComplete:   models.StatusCompleted,
		ActionReschedule: models.StatusConfirmed,
	},
}

// Next returns the status reached by applying action to from.
func Next(from models.AppointmentStatus, action Action) (models.AppointmentStatus, error) {
	if to, ok := transitions[from][action]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: cannot %s a %s appointment", response.ErrInvalidTransition, action, from)
}

// NotificationKind maps a successful action to the notification it emits.
func NotificationKind(action Action) models.NotificationKind {
	switch action {
	case ActionConfirm:
		return models.NotifyConfirmed
	case ActionCancel:
		return models.NotifyCancelled
	case ActionComplete:
		return models.NotifyCompleted
	default:
		return models.NotifyRescheduled
	}
}
