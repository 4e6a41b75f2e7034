package graw

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/validation"
)

const (
	// DefaultBaseURL is the default Reddit API base URL
	DefaultBaseURL = "https://oauth.reddit.com/"
	// DefaultAuthURL is the default Reddit OAuth base URL
	DefaultAuthURL = "https://www.reddit.com/"
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-reddit-session/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
)

// Config holds the registered application's OAuth2 credentials.
// Installed apps have no secret and authenticate with the client id alone.
//
// Example:
//
//	cfg := &graw.Config{
//		ClientID:    "your-client-id",
//		RedirectURI: "myapp://oauth-callback",
//		UserAgent:   "ios:myapp:1.0 by /u/yourusername",
//	}
type Config struct {
	// ClientID identifies the application. Required.
	ClientID string `env:"REDDIT_CLIENT_ID,required"`

	// ClientSecret is empty for installed apps.
	ClientSecret string `env:"REDDIT_CLIENT_SECRET"`

	// RedirectURI is the URI registered for the application. Required.
	RedirectURI string `env:"REDDIT_REDIRECT_URI,required"`

	// RedirectURIScheme is the scheme a redirect must carry to be accepted.
	// Derived from RedirectURI when empty.
	RedirectURIScheme string `env:"REDDIT_REDIRECT_URI_SCHEME"`

	// UserAgent identifies the application to the API.
	// Should follow format: "platform:app-name:version by /u/username"
	UserAgent string `env:"REDDIT_USER_AGENT" envDefault:"go-reddit-session/0.1"`

	// BaseURL for authenticated API calls. Defaults to DefaultBaseURL.
	BaseURL string `env:"REDDIT_BASE_URL" envDefault:"https://oauth.reddit.com/"`

	// AuthURL hosts the authorize page and the token endpoint.
	// Defaults to DefaultAuthURL.
	AuthURL string `env:"REDDIT_AUTH_URL" envDefault:"https://www.reddit.com/"`
}

// LoadConfig reads a Config from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment take precedence over it.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, &pkgerrs.ConfigError{Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults and checks that the required fields are usable.
// It derives RedirectURIScheme from RedirectURI when the scheme is unset.
func (c *Config) Validate() error {
	if c == nil {
		return &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return &pkgerrs.ConfigError{Field: "ClientID", Message: "client id is required"}
	}
	if c.RedirectURI == "" {
		return &pkgerrs.ConfigError{Field: "RedirectURI", Message: "redirect uri is required"}
	}

	redirect, err := url.Parse(c.RedirectURI)
	if err != nil || redirect.Scheme == "" {
		return &pkgerrs.ConfigError{Field: "RedirectURI", Message: "redirect uri must be absolute"}
	}
	if c.RedirectURIScheme == "" {
		c.RedirectURIScheme = redirect.Scheme
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if err := validation.ValidateUserAgent(c.UserAgent); err != nil {
		return err
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.AuthURL == "" {
		c.AuthURL = DefaultAuthURL
	}
	for field, raw := range map[string]string{"BaseURL": c.BaseURL, "AuthURL": c.AuthURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &pkgerrs.ConfigError{Field: field, Message: "must be an absolute URL"}
		}
	}
	return nil
}
