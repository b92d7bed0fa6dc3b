package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics keeps in-process counters for the work-order API: request volume
// per route/status and error volume per route/code. Counters reset on
// restart; they exist for log correlation, not long-term storage.
type Metrics struct {
	mu       sync.Mutex
	requests map[string]int64
	errors   map[string]int64
}

// NewMetrics initializes empty counters.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: make(map[string]int64),
		errors:   make(map[string]int64),
	}
}

// RecordRequest counts a completed request. Nil-safe so handlers can run
// without metrics wired.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := counterKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[key]++
}

// RecordError counts a request that ended in a domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := counterKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[key]++
}

// RequestCount reads a request counter, keyed the way RecordRequest writes it.
func (m *Metrics) RequestCount(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[counterKey(path, method, strconv.Itoa(status))]
}

func counterKey(path, method, suffix string) string {
	return path + "|" + method + "|" + suffix
}
