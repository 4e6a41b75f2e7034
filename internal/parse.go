package internal

import (
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

// Parser turns decoded JSON trees into typed API objects.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// AccountStage is the shape stage of the profile endpoint.
func (p *Parser) AccountStage(v any) result.Result[*types.AccountData] {
	return result.From(p.ParseAccount(v))
}

// ListingStage is the shape stage of every listing endpoint.
func (p *Parser) ListingStage(v any) result.Result[*types.Listing] {
	return result.From(p.ParseListing(v))
}

// CommentsPageStage is the shape stage of comment page endpoints.
func (p *Parser) CommentsPageStage(v any) result.Result[*types.CommentsPage] {
	return result.From(p.ParseCommentsPage(v))
}

// ValueStage types any thing, listing or array of them.
func (p *Parser) ValueStage(v any) result.Result[any] {
	return result.From(p.ParseValue(v))
}

// thing is a {kind, data} object pulled out of a JSON tree.
type thing struct {
	kind string
	data map[string]any
}

func asThing(v any) (thing, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return thing{}, false
	}
	kind, ok := obj["kind"].(string)
	if !ok {
		return thing{}, false
	}
	data, ok := obj["data"].(map[string]any)
	if !ok {
		return thing{}, false
	}
	return thing{kind: kind, data: data}, true
}

// decodeInto re-encodes a subtree and decodes it into out, so the struct tags
// on the types package drive field mapping.
func decodeInto(expected string, v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &pkgerrs.ShapeError{Expected: expected, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &pkgerrs.ShapeError{Expected: expected, Err: err}
	}
	return nil
}

// ParseAccount accepts either a t2 thing or the bare account object the
// profile endpoint returns.
func (p *Parser) ParseAccount(v any) (*types.AccountData, error) {
	data, ok := v.(map[string]any)
	if !ok {
		return nil, &pkgerrs.ShapeError{Expected: types.KindAccount, Message: fmt.Sprintf("got %T", v)}
	}
	if t, isThing := asThing(v); isThing {
		if t.kind != types.KindAccount {
			return nil, &pkgerrs.ShapeError{Expected: types.KindAccount, Message: "got kind " + t.kind}
		}
		data = t.data
	}
	if name, _ := data["name"].(string); name == "" {
		return nil, &pkgerrs.ShapeError{Expected: types.KindAccount, Message: "account has no name"}
	}

	var account types.AccountData
	if err := decodeInto(types.KindAccount, data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ParseListing extracts a typed Listing from a Listing thing. Children of
// unknown kinds, or that fail to decode, are skipped.
func (p *Parser) ParseListing(v any) (*types.Listing, error) {
	t, ok := asThing(v)
	if !ok {
		return nil, &pkgerrs.ShapeError{Expected: types.KindListing, Message: "not a thing"}
	}
	if t.kind != types.KindListing {
		return nil, &pkgerrs.ShapeError{Expected: types.KindListing, Message: "got kind " + t.kind}
	}
	children, ok := t.data["children"].([]any)
	if !ok {
		return nil, &pkgerrs.ShapeError{Expected: types.KindListing, Message: "missing children"}
	}

	listing := &types.Listing{
		Children: make([]types.RedditObject, 0, len(children)),
	}
	listing.Before, _ = t.data["before"].(string)
	listing.After, _ = t.data["after"].(string)
	listing.Modhash, _ = t.data["modhash"].(string)

	for _, child := range children {
		ct, ok := asThing(child)
		if !ok {
			continue
		}
		obj, err := p.parseObject(ct)
		if err != nil {
			continue
		}
		listing.Children = append(listing.Children, obj)
	}
	return listing, nil
}

// ParseCommentsPage handles the [link listing, comment listing] pair. A lone
// comment listing is accepted with a nil Link.
func (p *Parser) ParseCommentsPage(v any) (*types.CommentsPage, error) {
	if _, ok := asThing(v); ok {
		comments, err := p.ParseListing(v)
		if err != nil {
			return nil, err
		}
		return &types.CommentsPage{Comments: comments}, nil
	}

	arr, ok := v.([]any)
	if !ok || len(arr) == 0 {
		return nil, &pkgerrs.ShapeError{Expected: "comments page", Message: "expected a non-empty array"}
	}

	page := &types.CommentsPage{}
	links, err := p.ParseListing(arr[0])
	if err != nil {
		return nil, err
	}
	if posts := links.Posts(); len(posts) > 0 {
		page.Link = posts[0]
	}

	if len(arr) < 2 {
		page.Comments = &types.Listing{}
		return page, nil
	}
	page.Comments, err = p.ParseListing(arr[1])
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ParseValue types whatever the tree holds: a Listing, a single thing, or an
// array of those.
func (p *Parser) ParseValue(v any) (any, error) {
	if arr, ok := v.([]any); ok {
		out := make([]any, 0, len(arr))
		for _, elem := range arr {
			parsed, err := p.ParseValue(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, parsed)
		}
		return out, nil
	}

	t, ok := asThing(v)
	if !ok {
		return nil, &pkgerrs.ShapeError{Expected: "thing", Message: fmt.Sprintf("got %T", v)}
	}
	if t.kind == types.KindListing {
		return p.ParseListing(v)
	}
	return p.parseObject(t)
}

func (p *Parser) parseObject(t thing) (types.RedditObject, error) {
	switch t.kind {
	case types.KindComment:
		return p.parseComment(t)
	case types.KindAccount:
		var account types.AccountData
		return &account, decodeInto(t.kind, t.data, &account)
	case types.KindLink:
		var post types.Post
		return &post, decodeInto(t.kind, t.data, &post)
	case types.KindMessage:
		var message types.MessageData
		return &message, decodeInto(t.kind, t.data, &message)
	case types.KindSubreddit:
		var subreddit types.SubredditData
		return &subreddit, decodeInto(t.kind, t.data, &subreddit)
	case types.KindMore:
		var more types.MoreData
		return &more, decodeInto(t.kind, t.data, &more)
	default:
		return nil, &pkgerrs.ShapeError{Expected: "known kind", Message: "unknown kind: " + t.kind}
	}
}

// parseComment decodes a t1 thing and its nested replies listing. The
// service sends "" for replies when there are none.
func (p *Parser) parseComment(t thing) (*types.Comment, error) {
	var comment types.Comment
	if err := decodeInto(types.KindComment, t.data, &comment); err != nil {
		return nil, err
	}

	if _, ok := asThing(t.data["replies"]); !ok {
		return &comment, nil
	}
	replies, err := p.ParseListing(t.data["replies"])
	if err != nil {
		return &comment, nil
	}
	comment.Replies = replies.Comments()
	comment.MoreChildrenIDs = replies.MoreIDs()
	return &comment, nil
}
