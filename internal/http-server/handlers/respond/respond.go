package respond

import (
	"log/slog"
	"net/http"

	"appointment-service/internal/http-server/middleware/actor"
	"appointment-service/internal/models"
	"appointment-service/pkg/response"
	"appointment-service/pkg/sl"

	"github.com/go-chi/render"
)

// Error writes the envelope for err. Client errors are logged at info, the
// rest at error with msg.
func Error(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, msg string) {
	status, resp := response.FromError(err)

	if status >= http.StatusInternalServerError {
		log.Error(msg, sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}

	render.Status(r, status)
	render.JSON(w, r, resp)
}

func BadRequest(w http.ResponseWriter, r *http.Request, code response.ErrCode, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(string(code), msg))
}

// Actor returns the caller put on the context by the actor middleware.
func Actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	a, ok := actor.FromContext(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(string(response.UNAUTHENTICATED), "unknown actor"))
	}
	return a, ok
}
