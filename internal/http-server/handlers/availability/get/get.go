package get

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/schedule"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type AvailabilityGetter interface {
	AvailableSlots(ctx context.Context, providerID, date string) ([]schedule.TimeOfDay, error)
}

type Response struct {
	ProviderID string   `json:"provider_id"`
	Date       string   `json:"date"`
	Slots      []string `json:"slots"`
}

func New(log *slog.Logger, getter AvailabilityGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		providerID := r.URL.Query().Get("provider")
		date := r.URL.Query().Get("date")

		slots, err := getter.AvailableSlots(r.Context(), providerID, date)
		if err != nil {
			respond.Error(w, r, log, err, "failed to compute availability")
			return
		}

		log.Debug("availability computed", slog.String("provider_id", providerID), slog.Int("slots", len(slots)))

		render.JSON(w, r, Response{
			ProviderID: providerID,
			Date:       date,
			Slots:      api.Slots(slots),
		})
	}
}
