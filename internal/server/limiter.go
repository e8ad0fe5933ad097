package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket per client key.
type Limiter struct {
	mu           sync.RWMutex
	clients      map[string]*clientLimiter
	defaultRate  rate.Limit
	defaultBurst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// NewLimiter creates a limiter allowing requestsPerSecond per client with the
// given burst. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		clients:      make(map[string]*clientLimiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Allow reports whether the client may make a request now.
func (l *Limiter) Allow(key string) bool {
	return l.allowAt(key, time.Now())
}

func (l *Limiter) allowAt(key string, t time.Time) bool {
	c := l.getClient(key)
	c.mu.Lock()
	c.lastSeen = t
	c.mu.Unlock()
	return c.limiter.AllowN(t, 1)
}

// getClient returns the limiter for a client key.
func (l *Limiter) getClient(key string) *clientLimiter {
	l.mu.RLock()
	c, exists := l.clients[key]
	l.mu.RUnlock()

	if exists {
		return c
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if c, exists := l.clients[key]; exists {
		return c
	}

	c = &clientLimiter{limiter: rate.NewLimiter(l.defaultRate, l.defaultBurst)}
	l.clients[key] = c
	return c
}

// Sweep forgets clients idle since before cutoff and returns how many were
// removed.
func (l *Limiter) Sweep(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, c := range l.clients {
		c.mu.Lock()
		idle := c.lastSeen.Before(cutoff)
		c.mu.Unlock()
		if idle {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}
