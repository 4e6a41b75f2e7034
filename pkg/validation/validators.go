// Package validation checks caller supplied identifiers before they are
// placed into request paths and query strings.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

const (
	// maxPaginationLimit is the largest page the listing endpoints accept.
	maxPaginationLimit = 100
	// maxInfoNames is the most fullnames /api/info resolves in one call.
	maxInfoNames = 100
	// maxUserAgentLength bounds the User-Agent header value.
	maxUserAgentLength = 256
)

// Regular expressions for validating API identifier formats
var (
	// base36Regex matches base36 encoded IDs (0-9, a-z)
	base36Regex = regexp.MustCompile(`^[0-9a-z]+$`)

	// subredditRegex matches valid subreddit names (2-21 chars, alphanumeric + underscore)
	subredditRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{2,21}$`)

	// usernameRegex matches valid usernames (3-20 chars, alphanumeric + underscore + hyphen)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

	// fullnameRegex matches fullname IDs: t[1-6]_[base36_id]
	fullnameRegex = regexp.MustCompile(`^t[1-6]_[0-9a-z]+$`)
)

// IsValidBase36 checks if a string is a valid base36 encoded ID
func IsValidBase36(s string) bool {
	return base36Regex.MatchString(s)
}

// IsValidSubreddit checks if a string is a valid subreddit name
func IsValidSubreddit(s string) bool {
	return subredditRegex.MatchString(s)
}

// IsValidUsername checks if a string is a valid username
func IsValidUsername(s string) bool {
	return usernameRegex.MatchString(s)
}

// IsValidFullname checks if a string is a valid fullname ID
func IsValidFullname(s string) bool {
	return fullnameRegex.MatchString(s)
}

// ValidateSubredditName returns a ConfigError when name cannot be used in a
// /r/<name> path.
func ValidateSubredditName(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: "subreddit name cannot be empty"}
	}
	if !IsValidSubreddit(name) {
		return &pkgerrs.ConfigError{Field: "subreddit", Message: fmt.Sprintf("invalid subreddit name %q", name)}
	}
	return nil
}

// ValidateUsername returns a ConfigError when name cannot be used in a
// /user/<name> path.
func ValidateUsername(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "username", Message: "username cannot be empty"}
	}
	if !IsValidUsername(name) {
		return &pkgerrs.ConfigError{Field: "username", Message: fmt.Sprintf("invalid username %q", name)}
	}
	return nil
}

// ValidateLinkID accepts a bare base36 id or a t3_ fullname.
func ValidateLinkID(id string) error {
	bare := strings.TrimPrefix(id, types.KindLink+"_")
	if !IsValidBase36(bare) {
		return &pkgerrs.ConfigError{Field: "link", Message: fmt.Sprintf("invalid link id %q", id)}
	}
	return nil
}

// ValidatePaginator checks the cursor bundle. A nil paginator is valid.
func ValidatePaginator(p *types.Paginator) error {
	if p == nil {
		return nil
	}
	if p.After != "" && p.Before != "" {
		return &pkgerrs.ConfigError{Field: "paginator", Message: "cannot set both After and Before"}
	}
	if p.Limit < 0 {
		return &pkgerrs.ConfigError{Field: "paginator.Limit", Message: "limit cannot be negative"}
	}
	if p.Limit > maxPaginationLimit {
		return &pkgerrs.ConfigError{Field: "paginator.Limit", Message: fmt.Sprintf("limit cannot exceed %d", maxPaginationLimit)}
	}
	if p.Count < 0 {
		return &pkgerrs.ConfigError{Field: "paginator.Count", Message: "count cannot be negative"}
	}
	for field, cursor := range map[string]string{"paginator.After": p.After, "paginator.Before": p.Before} {
		if cursor != "" && !IsValidFullname(cursor) {
			return &pkgerrs.ConfigError{Field: field, Message: fmt.Sprintf("invalid fullname %q", cursor)}
		}
	}
	return nil
}

// ValidateFullnames checks the names passed to the info endpoint.
func ValidateFullnames(names []string) error {
	if len(names) == 0 {
		return &pkgerrs.ConfigError{Field: "names", Message: "at least one name is required"}
	}
	if len(names) > maxInfoNames {
		return &pkgerrs.ConfigError{Field: "names", Message: fmt.Sprintf("cannot request more than %d names at once (got %d)", maxInfoNames, len(names))}
	}
	for i, name := range names {
		if !IsValidFullname(name) {
			return &pkgerrs.ConfigError{Field: fmt.Sprintf("names[%d]", i), Message: fmt.Sprintf("invalid fullname %q", name)}
		}
	}
	return nil
}

// ValidateUserAgent rejects User-Agent values that could inject headers.
func ValidateUserAgent(ua string) error {
	if ua == "" {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}
	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}
	return nil
}

// ValidateSelector rejects a selector value outside its enumeration, which
// renders as an empty path segment or query value.
func ValidateSelector(field, rendered string) error {
	if rendered == "" {
		return &pkgerrs.ConfigError{Field: field, Message: "unknown selector value"}
	}
	return nil
}
