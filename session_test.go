package graw

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jamesprial/go-reddit-session/internal/metrics"
	"github.com/jamesprial/go-reddit-session/internal/testserver"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

const callbackTimeout = 5 * time.Second

// newTestSession returns a session talking to a fresh fake API.
func newTestSession(t *testing.T, cfg *SessionConfig) (*Session, *testserver.Server) {
	t.Helper()
	server := testserver.New()
	t.Cleanup(server.Close)

	if cfg == nil {
		cfg = &SessionConfig{}
	}
	cfg.BaseURL = server.URL()
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = server.Client()
	}

	s, err := NewSession(&types.Token{AccessToken: "mock_token", TokenType: "bearer"}, cfg)
	require.NoError(t, err)
	return s, server
}

// await starts call and waits for its callback.
func await[T any](t *testing.T, call func(fn func(result.Result[T])) *Operation) result.Result[T] {
	t.Helper()
	results := make(chan result.Result[T], 1)
	op := call(func(r result.Result[T]) { results <- r })
	require.NotNil(t, op, "call was not dispatched")

	select {
	case r := <-results:
		require.NoError(t, op.Wait(context.Background()))
		return r
	case <-time.After(callbackTimeout):
		t.Fatal("callback was not invoked")
		return result.Result[T]{}
	}
}

func getProfile(t *testing.T, s *Session) result.Result[*types.AccountData] {
	t.Helper()
	return await(t, func(fn func(result.Result[*types.AccountData])) *Operation {
		return s.GetProfile(context.Background(), fn)
	})
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		token   *types.Token
		cfg     *SessionConfig
		wantErr string
	}{
		{name: "nil config uses defaults", token: &types.Token{AccessToken: "a"}},
		{name: "nil token", wantErr: "token"},
		{name: "relative base url", token: &types.Token{}, cfg: &SessionConfig{BaseURL: "/api"}, wantErr: "BaseURL"},
		{name: "header injection in user agent", token: &types.Token{}, cfg: &SessionConfig{UserAgent: "a\r\nX-Evil: 1"}, wantErr: "UserAgent"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSession(tc.token, tc.cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Same(t, tc.token, s.Token())
				assert.Equal(t, DefaultBaseURL, s.requester.BaseURL.String())
				assert.Equal(t, DefaultUserAgent, s.requester.UserAgent)
				return
			}
			var cfgErr *pkgerrs.ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tc.wantErr, cfgErr.Field)
		})
	}
}

func TestSession_GetProfile(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, &SessionConfig{UserAgent: "test:graw:1.0"})
	server.SetJSON("/api/v1/me", http.StatusOK, map[string]any{
		"name":          "spez",
		"id":            "1w72",
		"link_karma":    100,
		"comment_karma": 200,
	})

	account, err := getProfile(t, s).Get()
	require.NoError(t, err)
	assert.Equal(t, "spez", account.Name)
	assert.Equal(t, 100, account.LinkKarma)

	req, err := server.LastRequest("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "bearer mock_token", req.Headers.Get("Authorization"))
	assert.Equal(t, "test:graw:1.0", req.Headers.Get("User-Agent"))
}

func TestSession_PipelineFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		response *testserver.Response
		sentinel error
	}{
		{
			name:     "forbidden",
			response: &testserver.Response{Status: http.StatusForbidden, Body: `{"message":"Forbidden","error":403}`},
			sentinel: pkgerrs.ErrHTTPStatus,
		},
		{
			name:     "not json",
			response: &testserver.Response{Status: http.StatusOK, Body: `<html>maintenance</html>`},
			sentinel: pkgerrs.ErrDecoding,
		},
		{
			name:     "wrong shape",
			response: &testserver.Response{Status: http.StatusOK, Body: `{"kind":"Listing","data":{"children":[]}}`},
			sentinel: pkgerrs.ErrShape,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, server := newTestSession(t, nil)
			server.SetResponse("/api/v1/me", tc.response)

			res := getProfile(t, s)
			assert.False(t, res.IsSuccess())
			assert.Nil(t, res.Value())
			assert.ErrorIs(t, res.Err(), tc.sentinel)
		})
	}
}

func TestSession_HTTPStatusErrorCarriesBody(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetResponse("/api/v1/me", &testserver.Response{Status: http.StatusUnauthorized, Body: `{"message":"Unauthorized"}`})

	var statusErr *pkgerrs.HTTPStatusError
	require.True(t, errors.As(getProfile(t, s).Err(), &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Unauthorized")
}

func TestSession_TransportError(t *testing.T) {
	t.Parallel()

	server := testserver.New()
	base := server.URL()
	server.Close()

	s, err := NewSession(&types.Token{AccessToken: "a"}, &SessionConfig{BaseURL: base})
	require.NoError(t, err)

	res := getProfile(t, s)
	assert.ErrorIs(t, res.Err(), pkgerrs.ErrTransport)

	var transportErr *pkgerrs.TransportError
	require.True(t, errors.As(res.Err(), &transportErr))
	assert.Equal(t, EndpointProfile, transportErr.Operation)
	assert.Equal(t, RateLimit{}, s.RateLimit())
}

func TestSession_Cancel(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetResponse("/api/v1/me", &testserver.Response{Status: http.StatusOK, Body: `{"name":"slow"}`, Delay: time.Minute})

	results := make(chan result.Result[*types.AccountData], 1)
	op := s.GetProfile(context.Background(), func(r result.Result[*types.AccountData]) { results <- r })
	time.Sleep(20 * time.Millisecond)
	op.Cancel()

	select {
	case r := <-results:
		assert.ErrorIs(t, r.Err(), pkgerrs.ErrTransport)
		assert.ErrorIs(t, r.Err(), context.Canceled)
	case <-time.After(callbackTimeout):
		t.Fatal("callback was not invoked after cancel")
	}
	<-op.Done()
}

func TestSession_ParentContextCanceled(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := await(t, func(fn func(result.Result[*types.AccountData])) *Operation {
		return s.GetProfile(ctx, fn)
	})
	assert.ErrorIs(t, res.Err(), context.Canceled)
}

func TestSession_Limiter(t *testing.T) {
	t.Parallel()

	limiter := rate.NewLimiter(rate.Every(50*time.Millisecond), 1)
	s, server := newTestSession(t, &SessionConfig{Limiter: limiter})
	server.SetJSON("/api/v1/me", http.StatusOK, map[string]any{"name": "spez"})

	start := time.Now()
	for range 3 {
		require.NoError(t, getProfile(t, s).Err())
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestSession_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s, server := newTestSession(t, &SessionConfig{Registerer: reg})
	server.SetJSON("/api/v1/me", http.StatusOK, map[string]any{"name": "spez"})
	server.SetRateLimit(590, 10, 120)

	require.NoError(t, getProfile(t, s).Err())
	server.SetResponse("/api/v1/me", &testserver.Response{Status: http.StatusInternalServerError})
	require.Error(t, getProfile(t, s).Err())

	// Registering again hands back the collectors the session uses.
	m := metrics.New(reg)
	assert.Equal(t, 590.0, testutil.ToFloat64(m.RateLimitRemaining))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RateLimitUsed))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.RateLimitReset))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(EndpointProfile, metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(EndpointProfile, metrics.OutcomeFailure)))
}

func TestCall_CustomEndpoint(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetJSON("/r/golang/about", http.StatusOK, map[string]any{
		"kind": "t5",
		"data": map[string]any{"display_name": "golang", "subscribers": 250000},
	})

	res := await(t, func(fn func(result.Result[any])) *Operation {
		return Call(context.Background(), s, Request{Endpoint: "about", Path: "/r/golang/about"}, ValueShape, fn)
	})
	require.NoError(t, res.Err())

	sub, ok := res.Value().(*types.SubredditData)
	require.True(t, ok, "got %T", res.Value())
	assert.Equal(t, "golang", sub.DisplayName)
	assert.Equal(t, int64(250000), sub.Subscribers)
}

func TestCall_NilCallback(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetJSON("/api/v1/me", http.StatusOK, map[string]any{"name": "spez"})

	op := s.GetProfile(context.Background(), nil)
	require.NoError(t, op.Wait(context.Background()))
	assert.Equal(t, 1, server.CallCount("/api/v1/me"))
}

func TestSession_SetToken(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetJSON("/api/v1/me", http.StatusOK, map[string]any{"name": "spez"})

	require.NoError(t, getProfile(t, s).Err())
	req, err := server.LastRequest("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, "bearer mock_token", req.Headers.Get("Authorization"))

	fresh := &types.Token{AccessToken: "fresh", TokenType: "bearer"}
	require.NoError(t, s.SetToken(fresh))
	assert.Same(t, fresh, s.Token())

	require.NoError(t, getProfile(t, s).Err())
	req, err = server.LastRequest("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, "bearer fresh", req.Headers.Get("Authorization"))

	var cfgErr *pkgerrs.ConfigError
	require.True(t, errors.As(s.SetToken(nil), &cfgErr))
	assert.Equal(t, "token", cfgErr.Field)
	assert.Same(t, fresh, s.Token())
}

func TestSession_RefreshedTokenFromAuthorizer(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetJSON("/api/v1/me", http.StatusOK, map[string]any{"name": "spez"})
	server.SetResponse(testserver.TokenPath, &testserver.Response{
		Status: http.StatusOK,
		Body:   `{"access_token":"rotated","token_type":"bearer","expires_in":3600,"scope":"identity"}`,
	})
	require.NoError(t, s.SetToken(&types.Token{AccessToken: "old", RefreshToken: "r1"}))

	cfg := &Config{ClientID: "client123", RedirectURI: "myapp://cb", UserAgent: "test:graw:1.0", AuthURL: server.URL()}
	a, err := NewAuthorizer(cfg, nil, nil, nil)
	require.NoError(t, err)

	fresh, err := a.Refresh(context.Background(), s.Token())
	require.NoError(t, err)
	assert.Equal(t, "r1", fresh.RefreshToken)
	require.NoError(t, s.SetToken(fresh))

	require.NoError(t, getProfile(t, s).Err())
	req, err := server.LastRequest("/api/v1/me")
	require.NoError(t, err)
	assert.Equal(t, "bearer rotated", req.Headers.Get("Authorization"))
}
