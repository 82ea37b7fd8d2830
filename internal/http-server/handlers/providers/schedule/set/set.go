package set

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"
	"appointment-service/internal/schedule"
	"appointment-service/pkg/response"
	"appointment-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleSetter interface {
	SetProviderSchedule(ctx context.Context, actor models.Actor, providerID string, windows []schedule.Window) ([]schedule.Window, error)
}

type Request struct {
	Windows []api.Window `json:"windows"`
}

type Response struct {
	response.Response
	ProviderID string       `json:"provider_id,omitempty"`
	Windows    []api.Window `json:"windows,omitempty"`
}

// New replaces the provider's whole weekly schedule with the posted windows.
func New(log *slog.Logger, setter ScheduleSetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.providers.schedule.set.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			respond.BadRequest(w, r, response.BAD_REQUEST, "failed to decode request")
			return
		}

		windows, err := api.ToWindows(req.Windows)
		if err != nil {
			log.Info("invalid windows", sl.Err(err))
			respond.BadRequest(w, r, response.VALIDATION_FAILED, err.Error())
			return
		}

		providerID := chi.URLParam(r, "id")

		saved, err := setter.SetProviderSchedule(r.Context(), actor, providerID, windows)
		if err != nil {
			respond.Error(w, r, log, err, "failed to set schedule")
			return
		}

		log.Info("schedule replaced", slog.String("provider_id", providerID), slog.Int("windows", len(saved)))

		render.JSON(w, r, Response{ProviderID: providerID, Windows: api.FromWindows(saved)})
	}
}
