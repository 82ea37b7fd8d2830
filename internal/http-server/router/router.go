package router

import (
	"log/slog"
	"net/http"

	availabilityGet "appointment-service/internal/http-server/handlers/availability/get"
	apptBook "appointment-service/internal/http-server/handlers/appointments/book"
	apptCancel "appointment-service/internal/http-server/handlers/appointments/cancel"
	apptComplete "appointment-service/internal/http-server/handlers/appointments/complete"
	apptConfirm "appointment-service/internal/http-server/handlers/appointments/confirm"
	apptDelete "appointment-service/internal/http-server/handlers/appointments/delete"
	apptGet "appointment-service/internal/http-server/handlers/appointments/get"
	apptList "appointment-service/internal/http-server/handlers/appointments/list"
	apptReschedule "appointment-service/internal/http-server/handlers/appointments/reschedule"
	notificationsList "appointment-service/internal/http-server/handlers/notifications/list"
	scheduleGet "appointment-service/internal/http-server/handlers/providers/schedule/get"
	scheduleSet "appointment-service/internal/http-server/handlers/providers/schedule/set"
	slotsGet "appointment-service/internal/http-server/handlers/slots/get"
	"appointment-service/internal/http-server/middleware/actor"
	"appointment-service/internal/http-server/middleware/ratelimit"
	"appointment-service/internal/service"
	"appointment-service/pkg/middleware/mwLogger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type Options struct {
	// RateLimitRPS of zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+actor.HeaderID+", "+actor.HeaderRole)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func New(log *slog.Logger, svc *service.Service, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS)
	if opts.RateLimitRPS > 0 {
		router.Use(ratelimit.New(log, opts.RateLimitRPS, opts.RateLimitBurst))
	}

	// Public reads
	router.Group(func(r chi.Router) {
		r.Get("/availability", availabilityGet.New(log, svc))
		r.Get("/slots", slotsGet.New(log, svc))
		r.Get("/providers/{id}/schedule", scheduleGet.New(log, svc))
	})

	router.Group(func(r chi.Router) {
		r.Use(actor.New(log))

		// Appointments
		r.Post("/booking", apptBook.New(log, svc))
		r.Get("/appointment/{id}", apptGet.New(log, svc))
		r.Post("/appointment/{id}/confirm", apptConfirm.New(log, svc))
		r.Post("/appointment/{id}/cancel", apptCancel.New(log, svc))
		r.Post("/appointment/{id}/complete", apptComplete.New(log, svc))
		r.Post("/appointment/{id}/reschedule", apptReschedule.New(log, svc))
		r.Delete("/appointment/{id}", apptDelete.New(log, svc))

		// Providers
		r.Get("/providers/{id}/appointments", apptList.New(log, svc))
		r.Put("/providers/{id}/schedule", scheduleSet.New(log, svc))

		r.Get("/notifications", notificationsList.New(log, svc))
	})

	return router
}
