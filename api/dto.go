package api

import (
	"fmt"
	"time"

	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
)

type Appointment struct {
	ID              string    `json:"id"`
	ProviderID      string    `json:"provider_id"`
	ConsumerID      string    `json:"consumer_id"`
	Date            string    `json:"date"`
	Slot            string    `json:"slot"`
	DurationMinutes int       `json:"duration_minutes"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func FromAppointment(a *models.Appointment) Appointment {
	return Appointment{
		ID:              a.ID,
		ProviderID:      a.ProviderID,
		ConsumerID:      a.ConsumerID,
		Date:            a.Date.Format(schedule.DateLayout),
		Slot:            a.Slot.String(),
		DurationMinutes: int(a.Duration / time.Minute),
		Reason:          a.Reason,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func FromAppointments(list []*models.Appointment) []Appointment {
	out := make([]Appointment, 0, len(list))
	for _, a := range list {
		out = append(out, FromAppointment(a))
	}
	return out
}

type BookingRequest struct {
	ProviderID string `json:"provider_id"`
	// ConsumerID is only honoured for operators booking on someone's behalf.
	ConsumerID string `json:"consumer_id,omitempty"`
	Date       string `json:"date"`
	Slot       string `json:"slot"`
	Reason     string `json:"reason"`
}

type RescheduleRequest struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	Reason string `json:"reason,omitempty"`
}

type Window struct {
	Day   string `json:"day" yaml:"day"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

func FromWindows(windows []schedule.Window) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		out = append(out, Window{Day: w.Day.String(), Start: w.Start.String(), End: w.End.String()})
	}
	return out
}

// ToWindows parses the wire form. Days may be names, abbreviations or numbers.
func ToWindows(in []Window) ([]schedule.Window, error) {
	out := make([]schedule.Window, 0, len(in))
	for i, w := range in {
		day, ok := schedule.ParseWeekday(w.Day)
		if !ok {
			return nil, fmt.Errorf("windows[%d]: unknown day %q", i, w.Day)
		}
		start, err := schedule.ParseTimeOfDay(w.Start)
		if err != nil {
			return nil, fmt.Errorf("windows[%d]: start: %w", i, err)
		}
		end, err := schedule.ParseTimeOfDay(w.End)
		if err != nil {
			return nil, fmt.Errorf("windows[%d]: end: %w", i, err)
		}
		out = append(out, schedule.Window{Day: day, Start: start, End: end})
	}
	return out, nil
}

type Schedule struct {
	ProviderID    string   `json:"provider_id"`
	Name          string   `json:"name"`
	AvailableTime string   `json:"available_time,omitempty"`
	Windows       []Window `json:"windows"`
}

type Notification struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

func FromNotifications(list []models.Notification) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		out = append(out, Notification{
			ID:            n.ID,
			AppointmentID: n.AppointmentID,
			Kind:          string(n.Kind),
			Title:         n.Title,
			Message:       n.Message,
			Read:          n.Read,
			CreatedAt:     n.CreatedAt,
		})
	}
	return out
}

func Slots(slots []schedule.TimeOfDay) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}
