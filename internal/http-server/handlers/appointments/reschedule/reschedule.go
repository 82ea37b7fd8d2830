package reschedule

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"
	"appointment-service/internal/service"
	"appointment-service/pkg/response"
	"appointment-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AppointmentRescheduler interface {
	Reschedule(ctx context.Context, actor models.Actor, id string, req service.RescheduleRequest) (*models.Appointment, error)
}

type Request struct {
	api.RescheduleRequest
}

type Response struct {
	response.Response
	Appointment *api.Appointment `json:"appointment,omitempty"`
}

func New(log *slog.Logger, rescheduler AppointmentRescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.reschedule.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			respond.BadRequest(w, r, response.BAD_REQUEST, "failed to decode request")
			return
		}

		appt, err := rescheduler.Reschedule(r.Context(), actor, id, service.RescheduleRequest{
			Date:   req.Date,
			Slot:   req.Slot,
			Reason: req.Reason,
		})
		if err != nil {
			respond.Error(w, r, log, err, "failed to reschedule appointment")
			return
		}

		log.Info("appointment rescheduled",
			slog.String("id", appt.ID),
			slog.String("date", req.Date),
			slog.String("slot", req.Slot),
		)

		dto := api.FromAppointment(appt)
		render.JSON(w, r, Response{Appointment: &dto})
	}
}
