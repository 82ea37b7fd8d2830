// Package actor reads the caller identity that the upstream gateway has
// already authenticated and puts it on the request context.
package actor

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"appointment-service/internal/models"
	"appointment-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const (
	HeaderID   = "X-Actor-ID"
	HeaderRole = "X-Actor-Role"
)

type ctxKey struct{}

func New(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/actor"))

		fn := func(w http.ResponseWriter, r *http.Request) {
			a := models.Actor{
				ID:   strings.TrimSpace(r.Header.Get(HeaderID)),
				Role: models.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderRole)))),
			}

			if a.ID == "" || !a.Role.Valid() {
				log.Warn("request without a valid actor",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("role", string(a.Role)),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHENTICATED), "actor headers are missing or invalid"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), a)))
		}

		return http.HandlerFunc(fn)
	}
}

func WithActor(ctx context.Context, a models.Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(models.Actor)
	return a, ok
}
