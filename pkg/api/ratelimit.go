package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultLimiterIdle is how long a client's limiter survives without requests.
const DefaultLimiterIdle = 10 * time.Minute

// ClientLimiter implements per-client rate limiting keyed by remote address.
// Limiters of idle clients are evicted. One ClientLimiter can be shared by
// successive routers so a reload does not reset the budgets.
type ClientLimiter struct {
	clients *gocache.Cache
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
}

// NewClientLimiter returns a limiter allowing requestsPerSecond with the given
// burst per client. idle <= 0 selects DefaultLimiterIdle.
func NewClientLimiter(requestsPerSecond float64, burst int, idle time.Duration) *ClientLimiter {
	if burst <= 0 {
		burst = 1
	}
	if idle <= 0 {
		idle = DefaultLimiterIdle
	}
	return &ClientLimiter{
		clients: gocache.New(idle, idle),
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// get returns the limiter for a client, creating it on first use. Each call
// pushes the client's expiry back.
func (l *ClientLimiter) get(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.clients.Get(client)
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
	}
	l.clients.SetDefault(client, limiter)
	return limiter.(*rate.Limiter)
}

// Middleware rejects requests over budget with 429 and Retry-After.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.get(clientKey(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
