package internal

import (
	"math"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func headers(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestRateLimitTracker_Update(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		start       http.Header
		update      http.Header
		wantUpdated bool
		want        RateLimit
	}{
		{
			name:        "all headers",
			update:      headers(HeaderRateLimitReset, "120", HeaderRateLimitUsed, "4", HeaderRateLimitRemaining, "596"),
			wantUpdated: true,
			want:        RateLimit{Reset: 120, Used: 4, Remaining: 596},
		},
		{
			name:        "only used leaves the others",
			start:       headers(HeaderRateLimitReset, "100", HeaderRateLimitUsed, "1", HeaderRateLimitRemaining, "599"),
			update:      headers(HeaderRateLimitUsed, "7"),
			wantUpdated: true,
			want:        RateLimit{Reset: 100, Used: 7, Remaining: 599},
		},
		{
			name:        "decimal remaining is truncated",
			update:      headers(HeaderRateLimitRemaining, "598.0", HeaderRateLimitUsed, "2.9"),
			wantUpdated: true,
			want:        RateLimit{Remaining: 598, Used: 2},
		},
		{
			name:   "unparseable values are ignored",
			start:  headers(HeaderRateLimitUsed, "5"),
			update: headers(HeaderRateLimitUsed, "lots", HeaderRateLimitReset, "NaN", HeaderRateLimitRemaining, "1e40"),
			want:   RateLimit{Used: 5},
		},
		{
			name:   "no headers",
			update: http.Header{},
			want:   RateLimit{},
		},
		{
			name: "nil headers",
			want: RateLimit{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var tracker RateLimitTracker
			if tc.start != nil {
				tracker.Update(tc.start)
			}
			assert.Equal(t, tc.wantUpdated, tracker.Update(tc.update))
			assert.Equal(t, tc.want, tracker.Snapshot())
		})
	}
}

func TestRateLimitTracker_Concurrent(t *testing.T) {
	t.Parallel()

	var tracker RateLimitTracker
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Update(headers(HeaderRateLimitUsed, "1", HeaderRateLimitRemaining, "10"))
			_ = tracker.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, RateLimit{Used: 1, Remaining: 10}, tracker.Snapshot())
}

func TestParseCounter(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw    string
		want   int64
		wantOK bool
	}{
		{raw: "42", want: 42, wantOK: true},
		{raw: " 42 ", want: 42, wantOK: true},
		{raw: "598.0", want: 598, wantOK: true},
		{raw: "-3", want: -3, wantOK: true},
		{raw: "", wantOK: false},
		{raw: "Inf", wantOK: false},
		{raw: "abc", wantOK: false},
		{raw: "2147483647", want: math.MaxInt32, wantOK: true},
		{raw: "2147483648", wantOK: false},
		{raw: "-2147483648", wantOK: false},
		{raw: "2147483648.0", wantOK: false},
		{raw: "9223372036854775807", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := parseCounter(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
