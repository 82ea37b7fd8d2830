package list

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"
	"appointment-service/internal/service"
	"appointment-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type AppointmentLister interface {
	ListProviderAppointments(ctx context.Context, actor models.Actor, req service.ListRequest) ([]*models.Appointment, error)
}

type Response struct {
	response.Response
	Appointments []api.Appointment `json:"appointments"`
}

// New lists a provider's appointments. Query parameters from, to (dates) and
// status narrow the result.
func New(log *slog.Logger, lister AppointmentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		appts, err := lister.ListProviderAppointments(r.Context(), actor, service.ListRequest{
			ProviderID: chi.URLParam(r, "id"),
			From:       q.Get("from"),
			To:         q.Get("to"),
			Status:     q.Get("status"),
		})
		if err != nil {
			respond.Error(w, r, log, err, "failed to list appointments")
			return
		}

		render.JSON(w, r, Response{Appointments: api.FromAppointments(appts)})
	}
}
