package types

import (
	"strings"
	"time"
)

// Token is an OAuth2 credential issued by the token endpoint. A Session only
// reads it, so a Token must not be modified once a Session uses it;
// Authorizer.Refresh returns a new Token instead.
type Token struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	Scopes       []string
	Expiry       time.Time
}

// Valid reports whether the token has an access token that has not expired.
// A zero Expiry means the expiry is unknown and is treated as valid.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}
	return t.Expiry.IsZero() || time.Now().Before(t.Expiry)
}

// AuthorizationHeader returns the value for the Authorization header.
func (t *Token) AuthorizationHeader() string {
	tokenType := t.TokenType
	if tokenType == "" || strings.EqualFold(tokenType, "bearer") {
		tokenType = "bearer"
	}
	return tokenType + " " + t.AccessToken
}
