// Package authz is the single capability check the scheduling service runs on
// entry to every operation that reads or changes an appointment or schedule.
// The actor itself is taken as already authenticated.
package authz

import (
	"fmt"

	"appointment-service/internal/models"
	"appointment-service/pkg/response"
)

type Action string

const (
	ActionBook             Action = "book"
	ActionView             Action = "view"
	ActionConfirm          Action = "confirm"
	ActionCancel           Action = "cancel"
	ActionComplete         Action = "complete"
	ActionReschedule       Action = "reschedule"
	ActionDelete           Action = "delete"
	ActionManageSchedule   Action = "manage_schedule"
	ActionListAppointments Action = "list_appointments"
)

// Target names the parties an action touches.
type Target struct {
	ProviderID string
	ConsumerID string
}

func ForAppointment(a *models.Appointment) Target {
	return Target{ProviderID: a.ProviderID, ConsumerID: a.ConsumerID}
}

type rule struct {
	consumerOwner bool
	providerOwner bool
}

// Operators may do everything; the table lists what the parties themselves may do.
var rules = map[Action]rule{
	ActionBook:             {consumerOwner: true},
	ActionView:             {consumerOwner: true, providerOwner: true},
	ActionConfirm:          {providerOwner: true},
	ActionCancel:           {consumerOwner: true, providerOwner: true},
	ActionComplete:         {providerOwner: true},
	ActionReschedule:       {},
	ActionDelete:           {},
	ActionManageSchedule:   {providerOwner: true},
	ActionListAppointments: {providerOwner: true},
}

func Check(actor models.Actor, action Action, target Target) error {
	if actor.ID == "" || !actor.Role.Valid() {
		return fmt.Errorf("%w: unknown actor", response.ErrForbidden)
	}

	if actor.Role == models.RoleOperator {
		return nil
	}

	r, ok := rules[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", response.ErrForbidden, action)
	}

	switch actor.Role {
	case models.RoleConsumer:
		if r.consumerOwner && target.ConsumerID == actor.ID {
			return nil
		}
	case models.RoleProvider:
		if r.providerOwner && target.ProviderID == actor.ID {
			return nil
		}
	}

	return fmt.Errorf("%w: %s may not %s", response.ErrForbidden, actor.Role, action)
}
