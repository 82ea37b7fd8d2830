package actor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"appointment-service/internal/models"
	"appointment-service/pkg/handlers/slogdiscard"
)

func TestActorMiddleware(t *testing.T) {
	var got models.Actor
	h := New(slogdiscard.NewDiscardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	cases := []struct {
		name   string
		id     string
		role   string
		status int
	}{
		{"consumer", "c1", "consumer", http.StatusOK},
		{"role is case insensitive", "p1", "Provider", http.StatusOK},
		{"missing id", "", "consumer", http.StatusUnauthorized},
		{"unknown role", "x", "admin", http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got = models.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderID, c.id)
			req.Header.Set(HeaderRole, c.role)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != c.status {
				t.Fatalf("status = %d, want %d", rr.Code, c.status)
			}
			if c.status == http.StatusOK && got.ID != c.id {
				t.Fatalf("actor id = %q, want %q", got.ID, c.id)
			}
		})
	}
}
