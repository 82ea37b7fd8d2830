package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"appointment-service/internal/http-server/middleware/actor"
	"appointment-service/pkg/response"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

// idleTTL is how long a client may stay silent before its bucket is dropped.
const idleTTL = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per client key. Idle clients are swept
// on access, at most once per idleTTL.
type limiterStore struct {
	mu        sync.Mutex
	clients   map[string]*client
	rps       rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		clients:   make(map[string]*client),
		rps:       rate.Limit(rps),
		burst:     burst,
		idle:      idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		for k, c := range s.clients {
			if now.Sub(c.lastSeen) >= s.idle {
				delete(s.clients, k)
			}
		}
		s.lastSweep = now
	}

	c, ok := s.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// New limits each client to rps requests per second with the given burst.
// Clients are told apart by actor id when one is known, by remote IP otherwise.
// Mount it once so a client has one budget across all routes.
func New(log *slog.Logger, rps float64, burst int) func(next http.Handler) http.Handler {
	return newMiddleware(log, newStore(rps, burst))
}

func newMiddleware(log *slog.Logger, store *limiterStore) func(next http.Handler) http.Handler {
	log = log.With(slog.String("component", "middleware/ratelimit"))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !store.get(key).Allow() {
				log.Warn("rate limit exceeded", slog.String("client", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error(string(response.RATE_LIMITED), "rate limit exceeded, try again later"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func clientKey(r *http.Request) string {
	if a, ok := actor.FromContext(r.Context()); ok {
		return "actor:" + a.ID
	}
	if id := strings.TrimSpace(r.Header.Get(actor.HeaderID)); id != "" {
		return "actor:" + id
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
