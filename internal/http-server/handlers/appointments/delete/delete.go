package delete

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type AppointmentDeleter interface {
	DeleteAppointment(ctx context.Context, actor models.Actor, id string) error
}

func New(log *slog.Logger, deleter AppointmentDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.delete.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		if err := deleter.DeleteAppointment(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
			respond.Error(w, r, log, err, "failed to delete appointment")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
