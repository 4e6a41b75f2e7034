package graw

import (
	"context"
	"strings"

	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
	"github.com/jamesprial/go-reddit-session/pkg/validation"
)

// Endpoint names used in spans, logs and metrics.
const (
	EndpointProfile    = "profile"
	EndpointArticles   = "articles"
	EndpointSubreddits = "subreddits"
	EndpointList       = "list"
	EndpointUser       = "user"
	EndpointInfo       = "info"
	EndpointSticky     = "sticky"
	EndpointMessage    = "message"
)

// withPaginator merges the paginator's cursor parameters into params.
func withPaginator(params map[string]string, p *types.Paginator) map[string]string {
	if params == nil {
		params = map[string]string{}
	}
	for k, v := range p.Parameters() {
		params[k] = v
	}
	return params
}

// GetProfile fetches the account of the token's owner.
// Requires the identity scope.
func (s *Session) GetProfile(ctx context.Context, fn func(result.Result[*types.AccountData])) *Operation {
	return Call(ctx, s, Request{Endpoint: EndpointProfile, Path: "/api/v1/me"}, AccountShape, fn)
}

// GetArticles fetches a link and its comment tree, two levels deep, ordered
// by sort. linkID may be a bare id or a t3_ fullname.
//
// Returns nil without calling fn when paginator is nil.
func (s *Session) GetArticles(ctx context.Context, paginator *types.Paginator, linkID string, sort types.CommentSort, fn func(result.Result[*types.CommentsPage])) *Operation {
	if paginator == nil {
		return nil
	}
	if err := validation.ValidateLinkID(linkID); err != nil {
		return fail(ctx, s, EndpointArticles, err, fn)
	}
	if err := validation.ValidatePaginator(paginator); err != nil {
		return fail(ctx, s, EndpointArticles, err, fn)
	}
	if err := validation.ValidateSelector("sort", sort.Param()); err != nil {
		return fail(ctx, s, EndpointArticles, err, fn)
	}

	id := strings.TrimPrefix(linkID, types.KindLink+"_")
	params := withPaginator(map[string]string{
		"sort":  sort.Param(),
		"depth": "2",
	}, paginator)
	return Call(ctx, s, Request{Endpoint: EndpointArticles, Path: "/comments/" + id, Params: params}, CommentsPageShape, fn)
}

// GetSubscribingSubreddits lists the subreddits the user subscribes to.
// A nil paginator requests the first page.
func (s *Session) GetSubscribingSubreddits(ctx context.Context, paginator *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
	return s.GetSubreddits(ctx, types.SubredditsSubscriber, paginator, fn)
}

// GetSubreddits lists a subreddit directory: popular, new, or the user's
// own subscriptions and moderated subreddits.
// A nil paginator requests the first page.
func (s *Session) GetSubreddits(ctx context.Context, where types.SubredditsWhere, paginator *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
	if err := validation.ValidatePaginator(paginator); err != nil {
		return fail(ctx, s, EndpointSubreddits, err, fn)
	}
	if err := validation.ValidateSelector("where", where.Path()); err != nil {
		return fail(ctx, s, EndpointSubreddits, err, fn)
	}
	req := Request{Endpoint: EndpointSubreddits, Path: where.Path(), Params: withPaginator(nil, paginator)}
	return Call(ctx, s, req, ListingShape, fn)
}

// GetList fetches a link listing of the front page, or of subreddit when it
// is not empty.
//
// Returns nil without calling fn when paginator is nil.
func (s *Session) GetList(ctx context.Context, paginator *types.Paginator, sort types.LinkSort, subreddit string, fn func(result.Result[*types.Listing])) *Operation {
	if paginator == nil {
		return nil
	}
	return s.getList(ctx, paginator, sort, nil, subreddit, fn)
}

// GetListWithin is GetList restricted to a time window. The window only
// affects the top and controversial sorts.
//
// Returns nil without calling fn when paginator is nil.
func (s *Session) GetListWithin(ctx context.Context, paginator *types.Paginator, sort types.LinkSort, within types.TimeFilter, subreddit string, fn func(result.Result[*types.Listing])) *Operation {
	if paginator == nil {
		return nil
	}
	return s.getList(ctx, paginator, sort, &within, subreddit, fn)
}

func (s *Session) getList(ctx context.Context, paginator *types.Paginator, sort types.LinkSort, within *types.TimeFilter, subreddit string, fn func(result.Result[*types.Listing])) *Operation {
	if err := validation.ValidatePaginator(paginator); err != nil {
		return fail(ctx, s, EndpointList, err, fn)
	}
	if err := validation.ValidateSelector("sort", sort.Path()); err != nil {
		return fail(ctx, s, EndpointList, err, fn)
	}
	if within != nil {
		if err := validation.ValidateSelector("within", within.Param()); err != nil {
			return fail(ctx, s, EndpointList, err, fn)
		}
	}

	path := sort.Path()
	if subreddit != "" {
		if err := validation.ValidateSubredditName(subreddit); err != nil {
			return fail(ctx, s, EndpointList, err, fn)
		}
		path = "/r/" + subreddit + path
	}

	params := withPaginator(nil, paginator)
	if within != nil {
		params["t"] = within.Param()
	}
	return Call(ctx, s, Request{Endpoint: EndpointList, Path: path, Params: params}, ListingShape, fn)
}

// GetUser lists one part of a user's history, ordered by sort.
// A nil paginator requests the first page.
func (s *Session) GetUser(ctx context.Context, username string, content types.UserContent, sort types.UserSort, paginator *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
	if err := validation.ValidateUsername(username); err != nil {
		return fail(ctx, s, EndpointUser, err, fn)
	}
	if err := validation.ValidatePaginator(paginator); err != nil {
		return fail(ctx, s, EndpointUser, err, fn)
	}
	if err := validation.ValidateSelector("content", content.Path()); err != nil {
		return fail(ctx, s, EndpointUser, err, fn)
	}
	if err := validation.ValidateSelector("sort", sort.Param()); err != nil {
		return fail(ctx, s, EndpointUser, err, fn)
	}

	params := withPaginator(map[string]string{"sort": sort.Param()}, paginator)
	req := Request{Endpoint: EndpointUser, Path: "/user/" + username + content.Path(), Params: params}
	return Call(ctx, s, req, ListingShape, fn)
}

// GetInfo fetches the things named by fullnames such as "t3_abc123" in a
// single listing.
func (s *Session) GetInfo(ctx context.Context, names []string, fn func(result.Result[*types.Listing])) *Operation {
	if err := validation.ValidateFullnames(names); err != nil {
		return fail(ctx, s, EndpointInfo, err, fn)
	}
	params := map[string]string{"id": strings.Join(names, ",")}
	return Call(ctx, s, Request{Endpoint: EndpointInfo, Path: "/api/info", Params: params}, ListingShape, fn)
}

// GetInfoByName is GetInfo for a single fullname.
func (s *Session) GetInfoByName(ctx context.Context, name string, fn func(result.Result[*types.Listing])) *Operation {
	return s.GetInfo(ctx, []string{name}, fn)
}

// GetSticky fetches the stickied link of subreddit with its comments.
func (s *Session) GetSticky(ctx context.Context, subreddit string, fn func(result.Result[*types.CommentsPage])) *Operation {
	if err := validation.ValidateSubredditName(subreddit); err != nil {
		return fail(ctx, s, EndpointSticky, err, fn)
	}
	return Call(ctx, s, Request{Endpoint: EndpointSticky, Path: "/r/" + subreddit + "/sticky"}, CommentsPageShape, fn)
}

// GetMessage lists a private message folder. Requires the privatemessages
// scope. A nil paginator requests the first page.
func (s *Session) GetMessage(ctx context.Context, where types.MessageWhere, paginator *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
	if err := validation.ValidatePaginator(paginator); err != nil {
		return fail(ctx, s, EndpointMessage, err, fn)
	}
	if err := validation.ValidateSelector("where", where.Path()); err != nil {
		return fail(ctx, s, EndpointMessage, err, fn)
	}
	req := Request{Endpoint: EndpointMessage, Path: "/message" + where.Path(), Params: withPaginator(nil, paginator)}
	return Call(ctx, s, req, ListingShape, fn)
}
