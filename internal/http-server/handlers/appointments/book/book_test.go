package book

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"appointment-service/internal/http-server/middleware/actor"
	"appointment-service/internal/models"
	"appointment-service/internal/service"
	"appointment-service/pkg/handlers/slogdiscard"
	"appointment-service/pkg/response"
)

type fakeBooker struct {
	got service.BookRequest
	err error
}

func (f *fakeBooker) Book(_ context.Context, a models.Actor, req service.BookRequest) (*models.Appointment, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Appointment{ID: "a1", ProviderID: req.ProviderID, ConsumerID: a.ID, Status: models.StatusPending}, nil
}

func serve(t *testing.T, b Booker, a models.Actor, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/booking", strings.NewReader(body))
	req = req.WithContext(actor.WithActor(req.Context(), a))
	rr := httptest.NewRecorder()
	New(slogdiscard.NewDiscardLogger(), b).ServeHTTP(rr, req)
	return rr
}

func TestBook_ConsumerCannotBookForSomeoneElse(t *testing.T) {
	b := &fakeBooker{}
	rr := serve(t, b, models.Actor{ID: "c1", Role: models.RoleConsumer},
		`{"provider_id":"p1","consumer_id":"c2","date":"2024-01-01","slot":"09:00","reason":"x"}`)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	if b.got.ConsumerID != "" {
		t.Fatalf("consumer_id from body must be ignored for consumers, got %q", b.got.ConsumerID)
	}
	if !strings.Contains(rr.Body.String(), `"id":"a1"`) {
		t.Fatalf("appointment missing from body %s", rr.Body)
	}
}

func TestBook_LockedSlotIsConflict(t *testing.T) {
	b := &fakeBooker{err: fmt.Errorf("service.Book: %w: %w", response.ErrSlotNotAvailable, response.ErrLocked)}
	rr := serve(t, b, models.Actor{ID: "c1", Role: models.RoleConsumer},
		`{"provider_id":"p1","date":"2024-01-01","slot":"09:00","reason":"x"}`)

	if rr.Code != http.StatusConflict || !strings.Contains(rr.Body.String(), "SLOT_NOT_AVAILABLE") {
		t.Fatalf("got %d %s", rr.Code, rr.Body)
	}
}

func TestBook_StoreDownIs503(t *testing.T) {
	b := &fakeBooker{err: fmt.Errorf("service.Book: %w: timeout", response.ErrStoreUnavailable)}
	rr := serve(t, b, models.Actor{ID: "c1", Role: models.RoleConsumer},
		`{"provider_id":"p1","date":"2024-01-01","slot":"09:00","reason":"x"}`)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d %s", rr.Code, rr.Body)
	}
}
