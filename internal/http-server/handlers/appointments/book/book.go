package book

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
	"github.com/go-chi/render"
)

type Booker interface {
	Book(ctx context.Context, actor models.Actor, req service.BookRequest) (*models.Appointment, error)
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Appointment *api.Appointment `json:"appointment,omitempty"`
}

func New(log *slog.Logger, booker Booker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.appointments.book.New"

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

		log.Info("request body decoded", slog.Any("request", req))

		if actor.Role != models.RoleOperator {
			req.ConsumerID = ""
		}

		appt, err := booker.Book(r.Context(), actor, service.BookRequest{
			ProviderID: req.ProviderID,
			ConsumerID: req.ConsumerID,
			Date:       req.Date,
			Slot:       req.Slot,
			Reason:     req.Reason,
		})
		if err != nil {
			respond.Error(w, r, log, err, "failed to book appointment")
			return
		}

		log.Info("appointment booked", slog.String("id", appt.ID))

		dto := api.FromAppointment(appt)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Appointment: &dto})
	}
}
