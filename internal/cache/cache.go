// Package cache implements an in-memory key-value store whose entries expire
// after a fixed time-to-live.
package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Entry is an immutable cached response.
type Entry struct {
	Key        string
	Value      json.RawMessage
	InsertedAt time.Time
}

// Expiring maps keys to responses that expire ttl after insertion.
// Expiry is checked lazily on Lookup; there is no background eviction.
type Expiring struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]Entry

	now   func() time.Time
	total *prometheus.CounterVec
}

// Option configures an Expiring cache.
type Option func(*Expiring)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Expiring) { c.now = now }
}

// WithCounter counts lookups on a counter vec with label "result" ("hit"/"miss").
func WithCounter(total *prometheus.CounterVec) Option {
	return func(c *Expiring) { c.total = total }
}

// New creates an empty cache.
func New(ttl time.Duration, opts ...Option) *Expiring {
	c := &Expiring{
		ttl:     ttl,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *Expiring) TTL() time.Duration { return c.ttl }

// Insert stores value under key, replacing any previous entry.
func (c *Expiring) Insert(key string, value json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{Key: key, Value: value, InsertedAt: c.now()}
}

// Lookup returns the value for key if it was inserted less than ttl ago.
// An expired entry is removed and reported as a miss.
func (c *Expiring) Lookup(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Sub(e.InsertedAt) >= c.ttl {
		delete(c.entries, key)
		ok = false
	}
	if !ok {
		c.inc("miss")
		return nil, false
	}
	c.inc("hit")
	return e.Value, true
}

// Clear removes every entry.
func (c *Expiring) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len returns the number of stored entries, expired ones included until looked up.
func (c *Expiring) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Expiring) inc(result string) {
	if c.total != nil {
		c.total.WithLabelValues(result).Inc()
	}
}
