package complete

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"
	"appointment-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AppointmentCompleter interface {
	Complete(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error)
}

type Response struct {
	response.Response
	Appointment *api.Appointment `json:"appointment,omitempty"`
}

func New(log *slog.Logger, svc AppointmentCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.complete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "id")

		appt, err := svc.Complete(r.Context(), actor, id)
		if err != nil {
			respond.Error(w, r, log, err, "failed to complete appointment")
			return
		}

		log.Info("appointment completed", slog.String("id", appt.ID), slog.String("actor_id", actor.ID))

		dto := api.FromAppointment(appt)
		render.JSON(w, r, Response{Appointment: &dto})
	}
}
