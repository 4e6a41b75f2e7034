package graw

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/jamesprial/go-reddit-session/internal"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

// stateSize is the number of random bytes behind an authorization state.
const stateSize = 64

const authorizePath = "api/v1/authorize.compact"

// TokenExchanger redeems an authorization code for a token.
// The internal authenticator implements this interface.
type TokenExchanger interface {
	Exchange(ctx context.Context, code string) (*types.Token, error)
}

// TokenRefresher obtains a new access token with token.RefreshToken and
// updates token in place. The internal authenticator implements this
// interface.
type TokenRefresher interface {
	Refresh(ctx context.Context, token *types.Token) error
}

// Authorizer runs the authorization-code flow: it issues a challenge URL
// carrying a fresh random state, then accepts exactly one redirect that
// echoes that state back.
//
// At most one challenge is outstanding; a new Challenge replaces the state of
// the previous one. An Authorizer is safe for concurrent use.
type Authorizer struct {
	config    *Config
	opener    BrowserOpener
	exchanger TokenExchanger
	refresher TokenRefresher
	logger    *slog.Logger

	// Random is the source for authorization states. Defaults to
	// crypto/rand.Reader.
	Random io.Reader

	mu    sync.Mutex
	state string
}

// NewAuthorizer creates an Authorizer for cfg.
//
// A nil opener leaves the URL unopened (use AuthorizationURL to print it). A
// nil exchanger uses the built-in token endpoint client at cfg.AuthURL, which
// also serves Refresh; a custom exchanger serves Refresh only if it implements
// TokenRefresher. A nil logger discards log output.
//
// Returns an error if cfg fails validation.
func NewAuthorizer(cfg *Config, opener BrowserOpener, exchanger TokenExchanger, logger *slog.Logger) (*Authorizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if exchanger == nil {
		auth, err := internal.NewAuthenticator(
			&http.Client{Timeout: DefaultTimeout},
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.RedirectURI,
			cfg.UserAgent,
			cfg.AuthURL,
			"",
		)
		if err != nil {
			return nil, err
		}
		exchanger = auth
	}
	refresher, _ := exchanger.(TokenRefresher)

	return &Authorizer{
		config:    cfg,
		opener:    opener,
		exchanger: exchanger,
		refresher: refresher,
		logger:    logger,
		Random:    rand.Reader,
	}, nil
}

// Challenge generates a new state, builds the authorization URL for scopes
// and hands it to the opener. A failing opener is logged, not returned.
//
// If the random source fails a *errors.RandomGenerationError is returned and
// the previously stored state is left untouched.
func (a *Authorizer) Challenge(scopes []types.Scope) error {
	u, err := a.AuthorizationURL(scopes)
	if err != nil {
		return err
	}
	if a.opener == nil {
		return nil
	}
	if err := a.opener.Open(u); err != nil {
		a.logger.Warn("failed to open authorization URL", "error", err)
	}
	return nil
}

// ChallengeWithAllScopes is Challenge with every known scope.
func (a *Authorizer) ChallengeWithAllScopes() error {
	return a.Challenge(types.AllScopes())
}

// AuthorizationURL generates and stores a new state and returns the
// authorization URL without opening it.
func (a *Authorizer) AuthorizationURL(scopes []types.Scope) (string, error) {
	state, err := a.newState()
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(scopes))
	for _, s := range scopes {
		names = append(names, s.String())
	}

	q := url.Values{}
	q.Set("client_id", a.config.ClientID)
	q.Set("response_type", "code")
	q.Set("state", state)
	q.Set("redirect_uri", a.config.RedirectURI)
	q.Set("duration", "permanent")
	q.Set("scope", strings.Join(names, ","))

	base := a.config.AuthURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	a.logger.Debug("issued authorization challenge", "scopes", len(names))
	return base + authorizePath + "?" + q.Encode(), nil
}

func (a *Authorizer) newState() (string, error) {
	buf := make([]byte, stateSize)
	if _, err := io.ReadFull(a.Random, buf); err != nil {
		return "", &pkgerrs.RandomGenerationError{Err: err}
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// ReceiveRedirect validates a redirect against the outstanding challenge
// and, when it matches, redeems the code asynchronously. fn is called exactly
// once with the token or the exchange error.
//
// The stored state is consumed by every call, matching or not, so a state
// authorizes at most one redirect. A redirect with the wrong scheme, a
// missing code or a state that differs from the stored one returns
// *errors.AuthorizationStateMismatch and fn is never called.
func (a *Authorizer) ReceiveRedirect(ctx context.Context, u *url.URL, fn func(result.Result[*types.Token])) error {
	a.mu.Lock()
	expected := a.state
	a.state = ""
	a.mu.Unlock()

	if u == nil {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "no redirect URL"}
	}
	if expected == "" {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "no challenge outstanding"}
	}
	if !strings.EqualFold(u.Scheme, a.config.RedirectURIScheme) {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "unexpected redirect scheme " + u.Scheme}
	}

	params, err := internal.DecodeQuery(u.RawQuery)
	if err != nil {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "malformed query"}
	}
	if reason := params["error"]; reason != "" {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "authorization denied: " + reason}
	}
	code := params["code"]
	if code == "" {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "missing code"}
	}
	if params["state"] != expected {
		return &pkgerrs.AuthorizationStateMismatch{Reason: "state does not match"}
	}

	go func() {
		token, err := a.exchanger.Exchange(ctx, code)
		if err != nil {
			a.logger.Warn("token exchange failed", "error", err)
		}
		if fn != nil {
			fn(result.From(token, err))
		}
	}()
	return nil
}

// Refresh redeems token.RefreshToken and returns the new token. token is not
// modified, so a Session signing with it keeps working until SetToken
// installs the result. A refresh response without a refresh token keeps the
// old one.
//
// Returns an *errors.AuthError if token has no refresh token, the exchanger
// cannot refresh, or the token endpoint rejects the grant.
func (a *Authorizer) Refresh(ctx context.Context, token *types.Token) (*types.Token, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, &pkgerrs.AuthError{Message: "token has no refresh token"}
	}
	if a.refresher == nil {
		return nil, &pkgerrs.AuthError{Message: "token exchanger does not support refresh"}
	}

	fresh := *token
	fresh.Scopes = append([]string(nil), token.Scopes...)
	if err := a.refresher.Refresh(ctx, &fresh); err != nil {
		a.logger.Warn("token refresh failed", "error", err)
		return nil, err
	}
	a.logger.Debug("token refreshed", "expiry", fresh.Expiry)
	return &fresh, nil
}

// ReceiveRedirectString parses raw and calls ReceiveRedirect.
func (a *Authorizer) ReceiveRedirectString(ctx context.Context, raw string, fn func(result.Result[*types.Token])) error {
	u, err := url.Parse(raw)
	if err != nil {
		a.mu.Lock()
		a.state = ""
		a.mu.Unlock()
		return &pkgerrs.AuthorizationStateMismatch{Reason: "malformed redirect URL"}
	}
	return a.ReceiveRedirect(ctx, u, fn)
}
