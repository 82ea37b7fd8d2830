package models

import (
	"time"

	"appointment-service/internal/schedule"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// ActiveStatuses occupy a slot.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

func (s AppointmentStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Role string

const (
	RoleConsumer Role = "consumer"
	RoleProvider Role = "provider"
	RoleOperator Role = "operator"
)

func (r Role) Valid() bool {
	return r == RoleConsumer || r == RoleProvider || r == RoleOperator
}

// Actor is the already authenticated party performing an operation.
type Actor struct {
	ID   string
	Role Role
}

type Provider struct {
	ID   string `db:"id"`
	Name string `db:"name"`
	// AvailableTime is the informal fallback description, e.g. "09:00-17:00".
	AvailableTime string `db:"available_time"`
}

type Appointment struct {
	ID         string             `db:"id"`
	ProviderID string             `db:"provider_id"`
	ConsumerID string             `db:"consumer_id"`
	Date       time.Time          `db:"date"`
	Slot       schedule.TimeOfDay `db:"slot"`
	Duration   time.Duration      `db:"duration_minutes"`
	Reason     string             `db:"reason"`
	Status     AppointmentStatus  `db:"status"`
	CreatedAt  time.Time          `db:"created_at"`
	UpdatedAt  time.Time          `db:"updated_at"`
}

// Start is the instant the appointment begins, in UTC.
func (a *Appointment) Start() time.Time {
	return a.Slot.On(a.Date)
}

type AppointmentFilter struct {
	ProviderID string
	From       time.Time
	To         time.Time
	// Status is optional; empty matches every status.
	Status AppointmentStatus
}

type NotificationKind string

const (
	NotifyBooked      NotificationKind = "booked"
	NotifyConfirmed   NotificationKind = "confirmed"
	NotifyCancelled   NotificationKind = "cancelled"
	NotifyCompleted   NotificationKind = "completed"
	NotifyRescheduled NotificationKind = "rescheduled"
)

type Notification struct {
	ID            string           `db:"id"`
	RecipientID   string           `db:"recipient_id"`
	AppointmentID string           `db:"appointment_id"`
	Kind          NotificationKind `db:"kind"`
	Title         string           `db:"title"`
	Message       string           `db:"message"`
	Read          bool             `db:"is_read"`
	CreatedAt     time.Time        `db:"created_at"`
}
