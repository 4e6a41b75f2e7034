package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Thing kinds used by the API's envelope.
const (
	KindComment   = "t1"
	KindAccount   = "t2"
	KindLink      = "t3"
	KindMessage   = "t4"
	KindSubreddit = "t5"
	KindMore      = "more"
	KindListing   = "Listing"
)

// RedditObject is implemented by every typed object a listing can carry.
type RedditObject interface {
	GetID() string
	GetName() string
}

// ThingData holds the common fields for reddit objects.
type ThingData struct {
	ID   string `json:"id"`   // ID (without prefix)
	Name string `json:"name"` // Full name (e.g., "t3_abc123")
}

// GetID returns the object's ID.
func (td ThingData) GetID() string {
	return td.ID
}

// GetName returns the object's full name.
func (td ThingData) GetName() string {
	return td.Name
}

// Votable is an embeddable struct for things that can be voted on.
type Votable struct {
	Ups   int `json:"ups"`
	Downs int `json:"downs"`
	// Likes indicates the user's vote: true for upvote, false for downvote, null for no vote.
	Likes *bool `json:"likes"`
}

// Created is an embeddable struct for things that have a creation time.
type Created struct {
	Created    float64 `json:"created"`
	CreatedUTC float64 `json:"created_utc"`
}

// Edited represents a field that can be a boolean or a timestamp.
// If IsEdited is true and Timestamp is 0, it was an old edit marked as `true`.
type Edited struct {
	IsEdited  bool
	Timestamp float64
}

// UnmarshalJSON handles the boolean-or-timestamp "edited" field.
func (e *Edited) UnmarshalJSON(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "false", "null":
		e.IsEdited, e.Timestamp = false, 0
		return nil
	case "true":
		e.IsEdited, e.Timestamp = true, 0
		return nil
	}

	var timestamp float64
	if err := json.Unmarshal(data, &timestamp); err != nil {
		return fmt.Errorf("unrecognized type for 'edited' field: %s", data)
	}
	e.IsEdited = true
	e.Timestamp = timestamp
	return nil
}

// Listing is a page of typed objects. Children holds *Post, *Comment,
// *AccountData, *MessageData, *SubredditData or *MoreData values in the
// order the server returned them.
type Listing struct {
	Before   string
	After    string
	Modhash  string
	Children []RedditObject
}

// Posts returns the links in the listing.
func (l *Listing) Posts() []*Post {
	return childrenOf[*Post](l)
}

// Comments returns the top level comments in the listing.
func (l *Listing) Comments() []*Comment {
	return childrenOf[*Comment](l)
}

// Messages returns the private messages in the listing.
func (l *Listing) Messages() []*MessageData {
	return childrenOf[*MessageData](l)
}

// Subreddits returns the subreddits in the listing.
func (l *Listing) Subreddits() []*SubredditData {
	return childrenOf[*SubredditData](l)
}

// MoreIDs collects the ids of truncated children advertised by "more" objects.
func (l *Listing) MoreIDs() []string {
	var ids []string
	for _, more := range childrenOf[*MoreData](l) {
		ids = append(ids, more.Children...)
	}
	return ids
}

// NextPaginator returns the cursor for the page after this one, or nil when
// the server reported no further page.
func (l *Listing) NextPaginator(limit int) *Paginator {
	if l == nil || l.After == "" {
		return nil
	}
	return &Paginator{After: l.After, Limit: limit}
}

// PreviousPaginator returns the cursor for the page before this one, or nil.
func (l *Listing) PreviousPaginator(limit int) *Paginator {
	if l == nil || l.Before == "" {
		return nil
	}
	return &Paginator{Before: l.Before, Limit: limit}
}

func childrenOf[T RedditObject](l *Listing) []T {
	if l == nil {
		return nil
	}
	out := make([]T, 0, len(l.Children))
	for _, child := range l.Children {
		if v, ok := child.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// CommentsPage is the two-listing response of a comments page: the link
// itself followed by its comment tree.
type CommentsPage struct {
	Link     *Post
	Comments *Listing
}

// SubredditData contains the data for a Subreddit.
type SubredditData struct {
	ThingData
	AccountsActive    int     `json:"accounts_active"`
	Description       string  `json:"description"`
	DisplayName       string  `json:"display_name"`
	HeaderImg         *string `json:"header_img"`
	HeaderTitle       *string `json:"header_title"`
	Over18            bool    `json:"over18"`
	PublicDescription string  `json:"public_description"`
	Subscribers       int64   `json:"subscribers"`
	SubmissionType    string  `json:"submission_type"`
	SubredditType     string  `json:"subreddit_type"`
	Title             string  `json:"title"`
	URL               string  `json:"url"`
	UserIsBanned      *bool   `json:"user_is_banned"`
	UserIsModerator   *bool   `json:"user_is_moderator"`
	UserIsSubscriber  *bool   `json:"user_is_subscriber"`
}

// MessageData contains the data for a private Message.
type MessageData struct {
	ThingData
	Created
	Author           string  `json:"author"`
	Body             string  `json:"body"`
	BodyHTML         string  `json:"body_html"`
	Context          string  `json:"context"`
	FirstMessageName *string `json:"first_message_name"`
	LinkTitle        string  `json:"link_title"`
	New              bool    `json:"new"`
	ParentID         *string `json:"parent_id"`
	Subject          string  `json:"subject"`
	Subreddit        *string `json:"subreddit"`
	Dest             string  `json:"dest"`
	WasComment       bool    `json:"was_comment"`
}

// AccountData contains the data for a user Account.
type AccountData struct {
	ThingData
	Created
	CommentKarma     int    `json:"comment_karma"`
	HasMail          *bool  `json:"has_mail"`
	HasModMail       *bool  `json:"has_mod_mail"`
	HasVerifiedEmail *bool  `json:"has_verified_email"`
	InboxCount       int    `json:"inbox_count,omitempty"`
	IsFriend         bool   `json:"is_friend"`
	IsGold           bool   `json:"is_gold"`
	IsMod            bool   `json:"is_mod"`
	LinkKarma        int    `json:"link_karma"`
	Modhash          string `json:"modhash,omitempty"`
	Over18           bool   `json:"over_18"`
}

// MoreData represents a "more" object, used for comment pagination.
type MoreData struct {
	ThingData
	Count    int      `json:"count"`
	ParentID string   `json:"parent_id"`
	Depth    int      `json:"depth"`
	Children []string `json:"children"`
}

// Post represents a link submission.
type Post struct {
	ThingData
	Votable
	Created
	Author        string          `json:"author"`
	Domain        string          `json:"domain"`
	Hidden        bool            `json:"hidden"`
	IsSelf        bool            `json:"is_self"`
	LinkFlairText *string         `json:"link_flair_text"`
	Locked        bool            `json:"locked"`
	Media         json.RawMessage `json:"media"`
	NumComments   int             `json:"num_comments"`
	Over18        bool            `json:"over_18"`
	Permalink     string          `json:"permalink"`
	Saved         bool            `json:"saved"`
	Score         int             `json:"score"`
	SelfText      string          `json:"selftext"`
	Subreddit     string          `json:"subreddit"`
	SubredditID   string          `json:"subreddit_id"`
	Thumbnail     string          `json:"thumbnail"`
	Title         string          `json:"title"`
	URL           string          `json:"url"`
	Edited        Edited          `json:"edited"`
	Distinguished *string         `json:"distinguished"`
	Stickied      bool            `json:"stickied"`
}

// Comment represents a comment. Replies is filled by the parser from the
// nested replies listing; MoreChildrenIDs from "more" objects among them.
type Comment struct {
	ThingData
	Votable
	Created
	Author          string     `json:"author"`
	Body            string     `json:"body"`
	BodyHTML        string     `json:"body_html"`
	Edited          Edited     `json:"edited"`
	Gilded          int        `json:"gilded"`
	LinkID          string     `json:"link_id"`
	ParentID        string     `json:"parent_id"`
	Replies         []*Comment `json:"-"`
	Saved           bool       `json:"saved"`
	Score           int        `json:"score"`
	ScoreHidden     bool       `json:"score_hidden"`
	Subreddit       string     `json:"subreddit"`
	Distinguished   *string    `json:"distinguished"`
	Depth           int        `json:"depth"`
	MoreChildrenIDs []string   `json:"-"`
}
