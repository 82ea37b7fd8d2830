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

type SlotGenerator interface {
	GenerateSlots(ctx context.Context, providerID, date string) ([]schedule.TimeOfDay, schedule.Resolution, error)
}

type Response struct {
	ProviderID    string   `json:"provider_id"`
	Date          string   `json:"date"`
	Source        string   `json:"source"`
	InformalError string   `json:"informal_error,omitempty"`
	Slots         []string `json:"slots"`
}

// New returns every candidate slot of the day regardless of bookings, along
// with the schedule source they came from.
func New(log *slog.Logger, generator SlotGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		providerID := r.URL.Query().Get("provider")
		date := r.URL.Query().Get("date")

		slots, res, err := generator.GenerateSlots(r.Context(), providerID, date)
		if err != nil {
			respond.Error(w, r, log, err, "failed to generate slots")
			return
		}

		resp := Response{
			ProviderID: providerID,
			Date:       date,
			Source:     string(res.Source),
			Slots:      api.Slots(slots),
		}
		if res.InformalErr != nil {
			resp.InformalError = res.InformalErr.Error()
		}

		render.JSON(w, r, resp)
	}
}
