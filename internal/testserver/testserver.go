// Package testserver provides a configurable fake of the reddit API for
// tests: canned responses per path, rate-limit headers and a request log.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// TokenPath is where the fake serves the token endpoint.
const TokenPath = "/api/v1/access_token"

// RequestEntry logs an incoming request.
type RequestEntry struct {
	Method       string
	Path         string
	Query        url.Values
	Headers      http.Header
	Body         string
	Timestamp    time.Time
	ResponseCode int
}

// Response defines a canned response.
type Response struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// Server is an httptest.Server answering with canned responses.
type Server struct {
	server *httptest.Server

	mu          sync.RWMutex
	responses   map[string]*Response
	defaultResp *Response
	rateHeaders map[string]string

	logMu      sync.Mutex
	requestLog []RequestEntry
	callCount  map[string]int
}

// New starts a fake API. Unknown paths answer 404; every response carries
// the rate-limit headers set by SetRateLimit.
func New() *Server {
	s := &Server{
		responses: make(map[string]*Response),
		defaultResp: &Response{
			Status: http.StatusNotFound,
			Body:   `{"message": "Not Found", "error": 404}`,
		},
		callCount: make(map[string]int),
	}
	s.server = httptest.NewServer(s)
	s.SetRateLimit(600, 0, 600)
	s.SetResponse(TokenPath, &Response{
		Status: http.StatusOK,
		Body:   `{"access_token":"mock_token","token_type":"bearer","expires_in":3600,"scope":"*","refresh_token":"mock_refresh"}`,
	})
	return s
}

// URL returns the base URL of the server.
func (s *Server) URL() string {
	return s.server.URL
}

// Client returns an HTTP client wired to the server.
func (s *Server) Client() *http.Client {
	return s.server.Client()
}

// Close shuts down the server.
func (s *Server) Close() {
	s.server.Close()
}

// SetResponse configures the response for a path.
func (s *Server) SetResponse(path string, resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[path] = resp
}

// SetJSON answers path with status and v encoded as JSON.
func (s *Server) SetJSON(path string, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testserver: encoding fixture for %s: %v", path, err))
	}
	s.SetResponse(path, &Response{Status: status, Body: string(body)})
}

// SetDefaultResponse configures the response for unknown paths.
func (s *Server) SetDefaultResponse(resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultResp = resp
}

// SetRateLimit sets the rate-limit headers sent with every response.
func (s *Server) SetRateLimit(remaining, used, reset int) {
	s.SetRateLimitHeaders(map[string]string{
		"X-Ratelimit-Remaining": strconv.Itoa(remaining),
		"X-Ratelimit-Used":      strconv.Itoa(used),
		"X-Ratelimit-Reset":     strconv.Itoa(reset),
	})
}

// SetRateLimitHeaders replaces the raw rate-limit headers, so tests can send
// partial or malformed values. A nil map sends none.
func (s *Server) SetRateLimitHeaders(headers map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateHeaders = headers
}

// SetupError makes unknown paths fail with statusCode.
func (s *Server) SetupError(statusCode int, message string) {
	s.SetDefaultResponse(&Response{
		Status: statusCode,
		Body:   fmt.Sprintf(`{"message": %q, "error": %d}`, message, statusCode),
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Timestamp: time.Now(),
	}
	if r.Body != nil {
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		entry.Body = string(body)
	}

	s.mu.RLock()
	resp, ok := s.responses[r.URL.Path]
	if !ok {
		resp = s.defaultResp
	}
	rateHeaders := s.rateHeaders
	s.mu.RUnlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
		}
	}

	w.Header().Set("Content-Type", "application/json")
	for k, v := range rateHeaders {
		w.Header().Set(k, v)
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write([]byte(resp.Body))
	entry.ResponseCode = resp.Status

	s.logMu.Lock()
	s.requestLog = append(s.requestLog, entry)
	s.callCount[r.URL.Path]++
	s.logMu.Unlock()
}

// RequestLog returns a copy of the request log.
func (s *Server) RequestLog() []RequestEntry {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return append([]RequestEntry{}, s.requestLog...)
}

// CallCount returns how many requests reached path.
func (s *Server) CallCount(path string) int {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return s.callCount[path]
}

// TotalCalls returns the number of requests served.
func (s *Server) TotalCalls() int {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return len(s.requestLog)
}

// LastRequest returns the last request made to path.
func (s *Server) LastRequest(path string) (*RequestEntry, error) {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	for i := len(s.requestLog) - 1; i >= 0; i-- {
		if s.requestLog[i].Path == path {
			entry := s.requestLog[i]
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("no requests found for path: %s", path)
}

// WaitForRequests waits until at least count requests were served.
func (s *Server) WaitForRequests(count int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s.TotalCalls() >= count {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %d requests", count)
		case <-ticker.C:
		}
	}
}

// Thing builds a {kind, data} envelope.
func Thing(kind string, data map[string]any) map[string]any {
	return map[string]any{"kind": kind, "data": data}
}

// Listing builds a Listing envelope around children.
func Listing(after, before string, children ...map[string]any) map[string]any {
	kids := make([]any, 0, len(children))
	for _, c := range children {
		kids = append(kids, c)
	}
	data := map[string]any{"children": kids, "modhash": ""}
	if after != "" {
		data["after"] = after
	} else {
		data["after"] = nil
	}
	if before != "" {
		data["before"] = before
	} else {
		data["before"] = nil
	}
	return Thing("Listing", data)
}
