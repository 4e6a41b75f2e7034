// Package graw is an OAuth2 session client for the reddit API.
//
// # Overview
//
// The package covers the two halves of an installed app's life with the API:
// obtaining a token through the authorization-code flow, and issuing
// authenticated read calls with it. Responses go through a fixed pipeline
// (transport, HTTP status, JSON decoding, domain shape) that stops at the
// first failing stage and reports that stage's error.
//
// # Authorization
//
// An Authorizer issues a challenge URL carrying a random state and accepts
// exactly one redirect echoing it back:
//
//	cfg, err := graw.LoadConfig() // REDDIT_CLIENT_ID, REDDIT_REDIRECT_URI, ...
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	auth, err := graw.NewAuthorizer(cfg, graw.SystemBrowser{}, nil, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := auth.Challenge([]types.Scope{types.ScopeIdentity, types.ScopeRead}); err != nil {
//		log.Fatal(err)
//	}
//
//	// later, when the platform delivers myapp://cb?code=...&state=...
//	err = auth.ReceiveRedirectString(ctx, redirect, func(r result.Result[*types.Token]) {
//		token, err := r.Get()
//		...
//	})
//
// # Sessions
//
// A Session wraps one token. Every endpoint method returns at once with an
// *Operation and delivers its result to a callback on the call's own
// goroutine:
//
//	session, err := graw.NewSession(token, &graw.SessionConfig{Logger: logger})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	op := session.GetProfile(ctx, func(r result.Result[*types.AccountData]) {
//		if err := r.Err(); err != nil {
//			log.Println(err)
//			return
//		}
//		fmt.Println(r.Value().Name)
//	})
//	_ = op.Wait(ctx)
//
// GetArticles and GetList refuse to dispatch without a paginator: they
// return a nil *Operation and never call the callback. Pass
// &types.Paginator{} for the first page.
//
// # Errors
//
// Failures are typed values from pkg/errors and can be matched with
// errors.As or, by category, with errors.Is:
//
//	switch {
//	case errors.Is(err, pkgerrs.ErrTransport):  // no response received
//	case errors.Is(err, pkgerrs.ErrHTTPStatus): // non-2xx response
//	case errors.Is(err, pkgerrs.ErrDecoding):   // body was not JSON
//	case errors.Is(err, pkgerrs.ErrShape):      // JSON of the wrong shape
//	}
//
// Invalid arguments (bad subreddit names, conflicting cursors) arrive through
// the callback as *errors.ConfigError without a request being made.
//
// # Rate Limits
//
// Session.RateLimit reports the x-ratelimit-* counters from the latest
// responses. The session does not throttle on them; set
// SessionConfig.Limiter to pace requests.
//
// # Observability
//
// Sessions log through log/slog, open one OpenTelemetry span per call using
// the global tracer provider, and export request and rate-limit metrics when
// SessionConfig.Registerer is set.
package graw
