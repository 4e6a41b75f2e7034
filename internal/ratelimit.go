package internal

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
)

// Rate-limit headers advertised by the API on every response.
const (
	HeaderRateLimitReset     = "X-Ratelimit-Reset"
	HeaderRateLimitUsed      = "X-Ratelimit-Used"
	HeaderRateLimitRemaining = "X-Ratelimit-Remaining"
)

// RateLimit is a snapshot of the server-advertised rate-limit counters.
type RateLimit struct {
	// Reset is the number of seconds until the current window ends.
	Reset int
	// Used is the number of requests made in the current window.
	Used int
	// Remaining is the number of requests left in the current window.
	Remaining int
}

// RateLimitTracker stores the latest counters. Each counter is updated
// independently; concurrent responses race per field and the last writer
// wins.
type RateLimitTracker struct {
	reset     atomic.Int64
	used      atomic.Int64
	remaining atomic.Int64
}

// Update overwrites each counter whose header is present and numeric. It
// reports whether any counter was written.
func (t *RateLimitTracker) Update(h http.Header) bool {
	if h == nil {
		return false
	}
	updated := false
	for header, counter := range map[string]*atomic.Int64{
		HeaderRateLimitReset:     &t.reset,
		HeaderRateLimitUsed:      &t.used,
		HeaderRateLimitRemaining: &t.remaining,
	} {
		if v, ok := parseCounter(h.Get(header)); ok {
			counter.Store(v)
			updated = true
		}
	}
	return updated
}

// Snapshot returns the current counters.
func (t *RateLimitTracker) Snapshot() RateLimit {
	return RateLimit{
		Reset:     int(t.reset.Load()),
		Used:      int(t.used.Load()),
		Remaining: int(t.remaining.Load()),
	}
}

// maxCounter bounds every counter so it fits an int on any platform.
const maxCounter = math.MaxInt32

// parseCounter accepts integers and finite decimals, truncating the latter;
// the service sends the remaining count as e.g. "598.0". Values whose
// magnitude exceeds maxCounter are rejected.
func parseCounter(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if v > maxCounter || v < -maxCounter {
			return 0, false
		}
		return v, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxCounter {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}
