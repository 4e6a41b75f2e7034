package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

const defaultTokenEndpointPath = "api/v1/access_token"

// Authenticator redeems authorization codes and refresh tokens at the
// token endpoint.
type Authenticator struct {
	client       *http.Client
	clientID     string
	clientSecret string
	redirectURI  string
	userAgent    string
	BaseURL      *url.URL
	tokenURL     *url.URL
}

// NewAuthenticator creates a new authenticator.
// The tokenPath parameter can be an empty string to use the default token endpoint.
// Installed apps have no secret; clientSecret may be empty.
func NewAuthenticator(httpClient *http.Client, clientID, clientSecret, redirectURI, userAgent, baseURL, tokenPath string) (*Authenticator, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if clientID == "" {
		return nil, &pkgerrs.ConfigError{Field: "ClientID", Message: "client id is required"}
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to parse base URL: %w", err)}
	}
	if !strings.HasSuffix(parsedURL.Path, "/") {
		parsedURL.Path += "/"
	}

	if tokenPath == "" {
		tokenPath = defaultTokenEndpointPath
	}

	resolvedTokenURL, err := parsedURL.Parse(tokenPath)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to parse token endpoint path: %w", err)}
	}

	return &Authenticator{
		client:       httpClient,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		userAgent:    userAgent,
		BaseURL:      parsedURL,
		tokenURL:     resolvedTokenURL,
	}, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
}

// Exchange redeems an authorization code for a token.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*types.Token, error) {
	if code == "" {
		return nil, &pkgerrs.AuthError{Message: "authorization code is empty"}
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", a.redirectURI)

	resp, err := a.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}

	token := &types.Token{}
	applyTokenResponse(token, resp)
	return token, nil
}

// Refresh obtains a new access token using token.RefreshToken and updates
// token in place. The refresh token is kept when the response omits it.
func (a *Authenticator) Refresh(ctx context.Context, token *types.Token) error {
	if token == nil || token.RefreshToken == "" {
		return &pkgerrs.AuthError{Message: "token has no refresh token"}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", token.RefreshToken)

	resp, err := a.requestToken(ctx, form)
	if err != nil {
		return err
	}

	applyTokenResponse(token, resp)
	return nil
}

func applyTokenResponse(token *types.Token, resp *tokenResponse) {
	token.AccessToken = resp.AccessToken
	token.TokenType = resp.TokenType
	if resp.RefreshToken != "" {
		token.RefreshToken = resp.RefreshToken
	}
	token.Scopes = strings.FieldsFunc(resp.Scope, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if resp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	} else {
		token.Expiry = time.Time{}
	}
}

func (a *Authenticator) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to create token request: %w", err)}
	}

	req.SetBasicAuth(a.clientID, a.clientSecret)
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &pkgerrs.AuthError{Err: fmt.Errorf("failed to execute token request: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
		}
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(bodyBytes, &tokenResp); err != nil {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("failed to unmarshal token response: %w", err),
		}
	}

	// The token endpoint reports grant errors with a 200 status.
	if tokenResp.Error != "" {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Message:    tokenResp.Error,
		}
	}

	if tokenResp.AccessToken == "" {
		return nil, &pkgerrs.AuthError{
			StatusCode: resp.StatusCode,
			Body:       string(bodyBytes),
			Err:        fmt.Errorf("access token was empty in response"),
		}
	}

	return &tokenResp, nil
}
