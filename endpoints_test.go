package graw

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesprial/go-reddit-session/internal/testserver"
	pkgerrs "github.com/jamesprial/go-reddit-session/pkg/errors"
	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

func linkListing() map[string]any {
	return testserver.Listing("t3_next", "",
		testserver.Thing(types.KindLink, map[string]any{"id": "abc", "name": "t3_abc", "title": "Hello", "score": 10}),
	)
}

func commentsPage() []any {
	return []any{
		testserver.Listing("", "",
			testserver.Thing(types.KindLink, map[string]any{"id": "abc", "name": "t3_abc", "title": "Hello"}),
		),
		testserver.Listing("", "",
			testserver.Thing(types.KindComment, map[string]any{"id": "c1", "name": "t1_c1", "author": "alice", "body": "first", "replies": ""}),
		),
	}
}

// dispatch adapts an endpoint call to a uniform signature for table tests.
type dispatch func(ctx context.Context, s *Session, done func(error)) *Operation

func errOf[T any](done func(error)) func(result.Result[T]) {
	return func(r result.Result[T]) { done(r.Err()) }
}

func TestEndpoints_Requests(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		call    dispatch
		path    string
		fixture any
		query   map[string]string
	}{
		{
			name: "profile",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetProfile(ctx, errOf[*types.AccountData](done))
			},
			path:    "/api/v1/me",
			fixture: map[string]any{"name": "spez"},
			query:   map[string]string{},
		},
		{
			name: "articles by fullname",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetArticles(ctx, &types.Paginator{}, "t3_abc", types.CommentSortTop, errOf[*types.CommentsPage](done))
			},
			path:    "/comments/abc",
			fixture: commentsPage(),
			query:   map[string]string{"sort": "top", "depth": "2"},
		},
		{
			name: "articles with cursor",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetArticles(ctx, &types.Paginator{Limit: 50}, "abc", types.CommentSortNew, errOf[*types.CommentsPage](done))
			},
			path:    "/comments/abc",
			fixture: commentsPage(),
			query:   map[string]string{"sort": "new", "depth": "2", "limit": "50"},
		},
		{
			name: "subscribed subreddits",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetSubscribingSubreddits(ctx, nil, errOf[*types.Listing](done))
			},
			path:    "/subreddits/mine/subscriber",
			fixture: testserver.Listing("", ""),
			query:   map[string]string{},
		},
		{
			name: "popular subreddits",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetSubreddits(ctx, types.SubredditsPopular, &types.Paginator{After: "t5_x", Count: 25}, errOf[*types.Listing](done))
			},
			path:    "/subreddits/popular",
			fixture: testserver.Listing("", ""),
			query:   map[string]string{"after": "t5_x", "count": "25"},
		},
		{
			name: "front page",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetList(ctx, &types.Paginator{}, types.LinkSortHot, "", errOf[*types.Listing](done))
			},
			path:    "/hot",
			fixture: linkListing(),
			query:   map[string]string{},
		},
		{
			name: "subreddit listing",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetList(ctx, &types.Paginator{After: "t3_prev", Limit: 10}, types.LinkSortNew, "golang", errOf[*types.Listing](done))
			},
			path:    "/r/golang/new",
			fixture: linkListing(),
			query:   map[string]string{"after": "t3_prev", "limit": "10"},
		},
		{
			name: "top of the week",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetListWithin(ctx, &types.Paginator{}, types.LinkSortTop, types.TimeFilterWeek, "golang", errOf[*types.Listing](done))
			},
			path:    "/r/golang/top",
			fixture: linkListing(),
			query:   map[string]string{"t": "week"},
		},
		{
			name: "user history",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetUser(ctx, "spez", types.UserContentSubmitted, types.UserSortNew, nil, errOf[*types.Listing](done))
			},
			path:    "/user/spez/submitted",
			fixture: linkListing(),
			query:   map[string]string{"sort": "new"},
		},
		{
			name: "gilded history keeps the service spelling",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetUser(ctx, "spez", types.UserContentGilded, types.UserSortTop, nil, errOf[*types.Listing](done))
			},
			path:    "/user/spez/glided",
			fixture: linkListing(),
			query:   map[string]string{"sort": "top"},
		},
		{
			name: "info",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetInfo(ctx, []string{"t3_abc", "t1_c1"}, errOf[*types.Listing](done))
			},
			path:    "/api/info",
			fixture: linkListing(),
			query:   map[string]string{"id": "t3_abc,t1_c1"},
		},
		{
			name: "info by name",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetInfoByName(ctx, "t3_abc", errOf[*types.Listing](done))
			},
			path:    "/api/info",
			fixture: linkListing(),
			query:   map[string]string{"id": "t3_abc"},
		},
		{
			name: "sticky",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetSticky(ctx, "golang", errOf[*types.CommentsPage](done))
			},
			path:    "/r/golang/sticky",
			fixture: commentsPage(),
			query:   map[string]string{},
		},
		{
			name: "inbox",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetMessage(ctx, types.MessageInbox, nil, errOf[*types.Listing](done))
			},
			path: "/message/inbox",
			fixture: testserver.Listing("", "",
				testserver.Thing(types.KindMessage, map[string]any{"id": "m1", "name": "t4_m1", "subject": "hi"}),
			),
			query: map[string]string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, server := newTestSession(t, nil)
			server.SetJSON(tc.path, http.StatusOK, tc.fixture)

			errs := make(chan error, 1)
			op := tc.call(context.Background(), s, func(err error) { errs <- err })
			require.NotNil(t, op)

			select {
			case err := <-errs:
				require.NoError(t, err)
			case <-time.After(callbackTimeout):
				t.Fatal("callback was not invoked")
			}

			req, err := server.LastRequest(tc.path)
			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, req.Method)

			query := map[string]string{}
			for k := range req.Query {
				query[k] = req.Query.Get(k)
			}
			assert.Equal(t, tc.query, query)
		})
	}
}

func TestEndpoints_Results(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	server.SetJSON("/r/golang/new", http.StatusOK, linkListing())
	server.SetJSON("/comments/abc", http.StatusOK, commentsPage())

	listing, err := await(t, func(fn func(result.Result[*types.Listing])) *Operation {
		return s.GetList(context.Background(), &types.Paginator{}, types.LinkSortNew, "golang", fn)
	}).Get()
	require.NoError(t, err)
	require.Len(t, listing.Posts(), 1)
	assert.Equal(t, "Hello", listing.Posts()[0].Title)
	assert.Equal(t, &types.Paginator{After: "t3_next", Limit: 25}, listing.NextPaginator(25))

	page, err := await(t, func(fn func(result.Result[*types.CommentsPage])) *Operation {
		return s.GetArticles(context.Background(), &types.Paginator{}, "abc", types.CommentSortConfidence, fn)
	}).Get()
	require.NoError(t, err)
	assert.Equal(t, "t3_abc", page.Link.Name)
	require.Len(t, page.Comments.Comments(), 1)
	assert.Equal(t, "alice", page.Comments.Comments()[0].Author)
}

func TestEndpoints_NilPaginatorIsNotDispatched(t *testing.T) {
	t.Parallel()

	s, server := newTestSession(t, nil)
	called := make(chan struct{}, 3)

	ops := []*Operation{
		s.GetArticles(context.Background(), nil, "abc", types.CommentSortTop, func(result.Result[*types.CommentsPage]) { called <- struct{}{} }),
		s.GetList(context.Background(), nil, types.LinkSortHot, "golang", func(result.Result[*types.Listing]) { called <- struct{}{} }),
		s.GetListWithin(context.Background(), nil, types.LinkSortTop, types.TimeFilterDay, "", func(result.Result[*types.Listing]) { called <- struct{}{} }),
	}
	for _, op := range ops {
		assert.Nil(t, op)
		assert.NoError(t, op.Wait(context.Background()))
	}

	select {
	case <-called:
		t.Fatal("callback invoked for an undispatched call")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Zero(t, server.TotalCalls())
}

func TestEndpoints_InvalidArguments(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		call  dispatch
		field string
	}{
		{
			name: "articles bad link",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetArticles(ctx, &types.Paginator{}, "t1_abc", types.CommentSortTop, errOf[*types.CommentsPage](done))
			},
			field: "link",
		},
		{
			name: "articles conflicting cursors",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetArticles(ctx, &types.Paginator{After: "t1_a", Before: "t1_b"}, "abc", types.CommentSortTop, errOf[*types.CommentsPage](done))
			},
			field: "paginator",
		},
		{
			name: "list bad subreddit",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetList(ctx, &types.Paginator{}, types.LinkSortHot, "no spaces", errOf[*types.Listing](done))
			},
			field: "subreddit",
		},
		{
			name: "list negative limit",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetList(ctx, &types.Paginator{Limit: -1}, types.LinkSortHot, "", errOf[*types.Listing](done))
			},
			field: "paginator.Limit",
		},
		{
			name: "user empty name",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetUser(ctx, "", types.UserContentOverview, types.UserSortHot, nil, errOf[*types.Listing](done))
			},
			field: "username",
		},
		{
			name: "info without names",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetInfo(ctx, nil, errOf[*types.Listing](done))
			},
			field: "names",
		},
		{
			name: "sticky path traversal",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetSticky(ctx, "../admin", errOf[*types.CommentsPage](done))
			},
			field: "subreddit",
		},
		{
			name: "subreddits conflicting cursors",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetSubreddits(ctx, types.SubredditsNew, &types.Paginator{After: "t5_a", Before: "t5_b"}, errOf[*types.Listing](done))
			},
			field: "paginator",
		},
		{
			name: "articles unknown sort",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetArticles(ctx, &types.Paginator{}, "abc", types.CommentSort(99), errOf[*types.CommentsPage](done))
			},
			field: "sort",
		},
		{
			name: "subreddits unknown where",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetSubreddits(ctx, types.SubredditsWhere(-1), nil, errOf[*types.Listing](done))
			},
			field: "where",
		},
		{
			name: "list unknown sort",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetList(ctx, &types.Paginator{}, types.LinkSort(42), "golang", errOf[*types.Listing](done))
			},
			field: "sort",
		},
		{
			name: "list unknown time window",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetListWithin(ctx, &types.Paginator{}, types.LinkSortTop, types.TimeFilter(42), "", errOf[*types.Listing](done))
			},
			field: "within",
		},
		{
			name: "user unknown content",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetUser(ctx, "spez", types.UserContent(42), types.UserSortNew, nil, errOf[*types.Listing](done))
			},
			field: "content",
		},
		{
			name: "user unknown sort",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetUser(ctx, "spez", types.UserContentSaved, types.UserSort(42), nil, errOf[*types.Listing](done))
			},
			field: "sort",
		},
		{
			name: "message unknown folder",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetMessage(ctx, types.MessageWhere(7), nil, errOf[*types.Listing](done))
			},
			field: "where",
		},
		{
			name: "message conflicting cursors",
			call: func(ctx context.Context, s *Session, done func(error)) *Operation {
				return s.GetMessage(ctx, types.MessageSent, &types.Paginator{After: "t4_a", Before: "t4_b"}, errOf[*types.Listing](done))
			},
			field: "paginator",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, server := newTestSession(t, nil)
			errs := make(chan error, 1)
			op := tc.call(context.Background(), s, func(err error) { errs <- err })
			require.NotNil(t, op)

			select {
			case err := <-errs:
				var cfgErr *pkgerrs.ConfigError
				require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
				assert.Equal(t, tc.field, cfgErr.Field)
			case <-time.After(callbackTimeout):
				t.Fatal("callback was not invoked")
			}
			<-op.Done()
			assert.Zero(t, server.TotalCalls())
		})
	}
}
