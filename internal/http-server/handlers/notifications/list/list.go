package list

import (
	"context"
	"log/slog"
	"net/http"

	"appointment-service/api"
	"appointment-service/internal/http-server/handlers/respond"
	"appointment-service/internal/models"
	"appointment-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type NotificationLister interface {
	Notifications(ctx context.Context, actor models.Actor) ([]models.Notification, error)
}

type Response struct {
	response.Response
	Notifications []api.Notification `json:"notifications"`
}

func New(log *slog.Logger, lister NotificationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notifications.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		actor, ok := respond.Actor(w, r)
		if !ok {
			return
		}

		list, err := lister.Notifications(r.Context(), actor)
		if err != nil {
			respond.Error(w, r, log, err, "failed to list notifications")
			return
		}

		render.JSON(w, r, Response{Notifications: api.FromNotifications(list)})
	}
}
