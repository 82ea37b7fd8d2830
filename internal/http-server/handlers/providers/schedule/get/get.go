package get

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"
	"appointment-service/internal/schedule"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleGetter interface {
	ProviderSchedule(ctx context.Context, providerID string) (*models.Provider, []schedule.Window, error)
}

func New(log *slog.Logger, getter ScheduleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.providers.schedule.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		p, windows, err := getter.ProviderSchedule(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respond.Error(w, r, log, err, "failed to get schedule")
			return
		}

		render.JSON(w, r, api.Schedule{
			ProviderID:    p.ID,
			Name:          p.Name,
			AvailableTime: p.AvailableTime,
			Windows:       api.FromWindows(windows),
		})
	}
}
