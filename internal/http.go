package internal

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"golang.org/x/time/rate"
)

// Requester builds authenticated requests against the API host and sends
// them exactly once.
type Requester struct {
	client    *http.Client
	BaseURL   *url.URL
	UserAgent string

	// limiter is owned by the caller; nil means requests are never delayed.
	limiter *rate.Limiter
}

// NewRequester returns a Requester rooted at baseURL.
// If a nil httpClient is provided, http.DefaultClient will be used.
func NewRequester(httpClient *http.Client, baseURL, userAgent string, limiter *rate.Limiter) (*Requester, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: err.Error()}
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: "base URL must be absolute"}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	return &Requester{
		client:    httpClient,
		BaseURL:   parsedURL,
		UserAgent: userAgent,
		limiter:   limiter,
	}, nil
}

// NewRequest creates an API request. The path is resolved relative to
// BaseURL even when it starts with a slash, so a base URL with a path prefix
// keeps it. Params are URL-encoded into the query string.
func (r *Requester) NewRequest(ctx context.Context, method, path string, params map[string]string, token *types.Token) (*http.Request, error) {
	u, err := r.BaseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "path", Message: err.Error()}
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, &pkgerrs.ConfigError{Field: "method", Message: err.Error()}
	}

	if token != nil {
		req.Header.Set("Authorization", token.AuthorizationHeader())
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}

	return req, nil
}

// Do sends req once and reads the whole body. The response is returned
// whenever one was received, even if reading its body failed, so callers can
// still inspect its headers.
func (r *Requester) Do(req *http.Request) ([]byte, *http.Response, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(req.Context()); err != nil {
			return nil, nil, err
		}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, err
	}
	return body, resp, nil
}

// EncodeQuery URL-encodes a parameter mapping. Keys are sorted.
func EncodeQuery(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// DecodeQuery parses a query string back into a parameter mapping. When a key
// repeats, the first value wins.
func DecodeQuery(query string) (map[string]string, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	params := make(map[string]string, len(values))
	for k := range values {
		params[k] = values.Get(k)
	}
	return params, nil
}
