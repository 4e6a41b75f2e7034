package graw

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/jamesprial/go-reddit-session/internal"
	"github.com/jamesprial/go-reddit-session/internal/metrics"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/jamesprial/go-reddit-session/pkg/validation"
)

const tracerName = "github.com/jamesprial/go-reddit-session"

// RateLimit is a snapshot of the rate-limit counters the server advertised
// on its most recent responses.
type RateLimit = internal.RateLimit

// SessionConfig holds the optional collaborators of a Session. The zero
// value is usable.
type SessionConfig struct {
	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// Logger for structured diagnostics. Defaults to discarding output.
	Logger *slog.Logger

	// BaseURL for the API. Defaults to DefaultBaseURL.
	BaseURL string

	// UserAgent string to identify your application. Defaults to
	// DefaultUserAgent.
	UserAgent string

	// Limiter, when set, is waited on before every request. The session
	// never creates one; the server counters are informational only.
	Limiter *rate.Limiter

	// Registerer, when set, receives the session's Prometheus collectors.
	Registerer prometheus.Registerer
}

// Session issues authenticated calls with one access token.
//
// Every endpoint method returns immediately. The request runs on its own
// goroutine, which updates the rate-limit counters from the response headers,
// runs the response pipeline and then invokes the callback exactly once.
// Callbacks therefore run concurrently with the caller and with each other;
// they must do their own synchronization.
//
// The token is shared by reference and never modified by the Session. Each
// request reads the current token once; SetToken swaps it for later requests
// without disturbing calls already in flight.
type Session struct {
	token     atomic.Pointer[types.Token]
	requester *internal.Requester
	rateLimit internal.RateLimitTracker
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewSession creates a Session for token. cfg may be nil.
//
// Returns a *errors.ConfigError if token is nil or the base URL or user
// agent are unusable.
func NewSession(token *types.Token, cfg *SessionConfig) (*Session, error) {
	if token == nil {
		return nil, &pkgerrs.ConfigError{Field: "token", Message: "token cannot be nil"}
	}
	if cfg == nil {
		cfg = &SessionConfig{}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if err := validation.ValidateUserAgent(userAgent); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	requester, err := internal.NewRequester(httpClient, baseURL, userAgent, cfg.Limiter)
	if err != nil {
		return nil, err
	}

	s := &Session{
		requester: requester,
		metrics:   metrics.New(cfg.Registerer),
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
	}
	s.token.Store(token)
	return s, nil
}

// Token returns the token the session signs requests with.
func (s *Session) Token() *types.Token {
	return s.token.Load()
}

// SetToken replaces the token used by requests dispatched from now on,
// typically with the result of Authorizer.Refresh. The token must not be
// modified after it is handed over.
//
// Returns a *errors.ConfigError if token is nil.
func (s *Session) SetToken(token *types.Token) error {
	if token == nil {
		return &pkgerrs.ConfigError{Field: "token", Message: "token cannot be nil"}
	}
	s.token.Store(token)
	s.logger.Debug("session token replaced")
	return nil
}

// RateLimit returns the latest server-advertised counters. Each counter is
// read atomically; the three may come from different responses.
func (s *Session) RateLimit() RateLimit {
	return s.rateLimit.Snapshot()
}

// Request describes one endpoint call for Call.
type Request struct {
	// Endpoint names the call in spans, logs and metrics.
	Endpoint string
	// Method defaults to GET.
	Method string
	// Path is resolved against the session's base URL.
	Path string
	// Params are URL-encoded into the query string.
	Params map[string]string
}

// Call dispatches req on s and decodes the response with shape, which
// receives the decoded JSON tree. fn is invoked exactly once, on the call's
// goroutine, with the first failure of the pipeline or the shaped value.
//
// Call is how the endpoint methods are built and lets callers add endpoints
// without touching the transport. The shape stages used by the built-in
// endpoints are exported as AccountShape, ListingShape, CommentsPageShape and
// ValueShape.
func Call[T any](ctx context.Context, s *Session, req Request, shape func(any) result.Result[T], fn func(result.Result[T])) *Operation {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	op := newOperation(ctx, req.Endpoint)
	go func() {
		defer op.finish()
		res := execute(op, s, req, shape)
		if fn != nil {
			fn(res)
		}
	}()
	return op
}

// fail reports err through fn without touching the network.
func fail[T any](ctx context.Context, s *Session, endpoint string, err error, fn func(result.Result[T])) *Operation {
	op := newOperation(ctx, endpoint)
	s.logger.Debug("request rejected", "endpoint", endpoint, "op_id", op.ID(), "error", err)
	go func() {
		defer op.finish()
		s.metrics.ObserveRequest(endpoint, err, 0)
		if fn != nil {
			fn(result.Failure[T](err))
		}
	}()
	return op
}

func execute[T any](op *Operation, s *Session, req Request, shape func(any) result.Result[T]) result.Result[T] {
	ctx, span := s.tracer.Start(op.ctx, "graw."+req.Endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.Path),
			attribute.String("graw.operation_id", op.ID()),
		))
	defer span.End()

	start := time.Now()
	res := roundTrip(ctx, op, s, req, span, shape)
	s.metrics.ObserveRequest(req.Endpoint, res.Err(), time.Since(start))

	if err := res.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("request failed", "endpoint", req.Endpoint, "op_id", op.ID(), "error", err)
	}
	return res
}

func roundTrip[T any](ctx context.Context, op *Operation, s *Session, req Request, span trace.Span, shape func(any) result.Result[T]) result.Result[T] {
	httpReq, err := s.requester.NewRequest(ctx, req.Method, req.Path, req.Params, s.token.Load())
	if err != nil {
		return result.Failure[T](err)
	}

	s.logger.Debug("dispatching request", "endpoint", req.Endpoint, "op_id", op.ID(), "path", httpReq.URL.Path)
	body, resp, err := s.requester.Do(httpReq)
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		s.updateRateLimit(resp.Header, op)
	}

	return internal.Run(internal.Outcome{
		Operation: req.Endpoint,
		URL:       httpReq.URL.String(),
		Body:      body,
		Response:  resp,
		Err:       err,
	}, shape)
}

func (s *Session) updateRateLimit(h http.Header, op *Operation) {
	if !s.rateLimit.Update(h) {
		return
	}
	rl := s.rateLimit.Snapshot()
	s.metrics.SetRateLimit(rl.Reset, rl.Used, rl.Remaining)
	s.logger.Debug("rate limit updated",
		"op_id", op.ID(),
		"reset", rl.Reset,
		"used", rl.Used,
		"remaining", rl.Remaining,
	)
}

var shapeParser = internal.NewParser()

// AccountShape types an account object or t2 thing.
func AccountShape(v any) result.Result[*types.AccountData] {
	return shapeParser.AccountStage(v)
}

// ListingShape types a Listing thing.
func ListingShape(v any) result.Result[*types.Listing] {
	return shapeParser.ListingStage(v)
}

// CommentsPageShape types the [link, comments] pair of a comments page.
func CommentsPageShape(v any) result.Result[*types.CommentsPage] {
	return shapeParser.CommentsPageStage(v)
}

// ValueShape types any listing, thing, or array of them.
func ValueShape(v any) result.Result[any] {
	return shapeParser.ValueStage(v)
}
