package graw

import (
	"context"
	"errors"

	"github.com/jamesprial/go-reddit-session/pkg/result"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

// ErrIteratorDone is returned by Next when there are no more items.
var ErrIteratorDone = errors.New("no more items available")

// maxPageLimit is the largest page size the API serves.
const maxPageLimit = 100

// PageFunc fetches one listing page with the given cursor. The session's
// listing methods, bound to their other arguments, satisfy it.
type PageFunc func(ctx context.Context, p *types.Paginator, fn func(result.Result[*types.Listing])) *Operation

// ListingIterator walks a listing page by page, following the after cursor
// until the server reports no further page. Each page is fetched
// synchronously; an iterator is not safe for concurrent use.
type ListingIterator struct {
	ctx       context.Context
	fetch     PageFunc
	limit     int
	buffer    []types.RedditObject
	bufferIdx int
	next      *types.Paginator
	seen      int
	hasMore   bool
	err       error
}

// NewListingIterator creates an iterator over the pages fetch returns.
func NewListingIterator(ctx context.Context, fetch PageFunc) *ListingIterator {
	return &ListingIterator{
		ctx:     ctx,
		fetch:   fetch,
		limit:   maxPageLimit,
		next:    &types.Paginator{Limit: maxPageLimit},
		hasMore: true,
	}
}

// NewListIterator iterates a link listing of the front page or of subreddit.
func (s *Session) NewListIterator(ctx context.Context, sort types.LinkSort, subreddit string) *ListingIterator {
	return NewListingIterator(ctx, func(ctx context.Context, p *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
		return s.GetList(ctx, p, sort, subreddit, fn)
	})
}

// NewMessageIterator iterates a private message folder.
func (s *Session) NewMessageIterator(ctx context.Context, where types.MessageWhere) *ListingIterator {
	return NewListingIterator(ctx, func(ctx context.Context, p *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
		return s.GetMessage(ctx, where, p, fn)
	})
}

// NewUserIterator iterates one part of a user's history.
func (s *Session) NewUserIterator(ctx context.Context, username string, content types.UserContent, sort types.UserSort) *ListingIterator {
	return NewListingIterator(ctx, func(ctx context.Context, p *types.Paginator, fn func(result.Result[*types.Listing])) *Operation {
		return s.GetUser(ctx, username, content, sort, p, fn)
	})
}

// WithLimit sets the number of items to fetch per request, clamped to 1..100.
func (it *ListingIterator) WithLimit(limit int) *ListingIterator {
	limit = max(1, min(limit, maxPageLimit))
	it.limit = limit
	if it.next != nil {
		it.next.Limit = limit
	}
	return it
}

// HasNext returns true if there may be more items to iterate through.
func (it *ListingIterator) HasNext() bool {
	if it.err != nil {
		return false
	}
	return it.bufferIdx < len(it.buffer) || it.hasMore
}

// Next returns the next item. It returns ErrIteratorDone after the last
// page, or the error that ended the iteration.
func (it *ListingIterator) Next() (types.RedditObject, error) {
	for {
		if it.err != nil {
			return nil, it.err
		}
		if it.bufferIdx < len(it.buffer) {
			item := it.buffer[it.bufferIdx]
			it.bufferIdx++
			if item == nil {
				continue
			}
			return item, nil
		}
		if !it.hasMore {
			return nil, ErrIteratorDone
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return nil, err
		}
	}
}

func (it *ListingIterator) fetchPage() error {
	page := make(chan result.Result[*types.Listing], 1)
	op := it.fetch(it.ctx, it.next, func(r result.Result[*types.Listing]) {
		page <- r
	})
	if op == nil {
		return errors.New("listing page was not requested")
	}

	var res result.Result[*types.Listing]
	select {
	case res = <-page:
	case <-it.ctx.Done():
		op.Cancel()
		return it.ctx.Err()
	}

	listing, err := res.Get()
	if err != nil {
		return err
	}

	it.buffer = listing.Children
	it.bufferIdx = 0
	it.seen += len(listing.Children)
	it.next = listing.NextPaginator(it.limit)
	if it.next != nil {
		it.next.Count = it.seen
	}
	if it.next == nil || len(listing.Children) == 0 {
		it.hasMore = false
	}
	return nil
}

// Err returns any error encountered during iteration.
func (it *ListingIterator) Err() error {
	return it.err
}

// Reset resets the iterator to start from the first page.
func (it *ListingIterator) Reset() {
	it.buffer = nil
	it.bufferIdx = 0
	it.seen = 0
	it.next = &types.Paginator{Limit: it.limit}
	it.hasMore = true
	it.err = nil
}

// Collect fetches remaining items up to max (all of them when max <= 0).
// Reaching the end of the listing is not an error.
func (it *ListingIterator) Collect(maxItems int) ([]types.RedditObject, error) {
	var items []types.RedditObject
	for maxItems <= 0 || len(items) < maxItems {
		item, err := it.Next()
		if errors.Is(err, ErrIteratorDone) {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CommentIterator provides an iterator for traversing comment trees.
type CommentIterator struct {
	pending []depthComment
	options *TraversalOptions
}

type depthComment struct {
	comment *types.Comment
	depth   int
}

// TraversalOptions provides options for comment tree traversal.
type TraversalOptions struct {
	MaxDepth   int                       // Deepest reply level to descend into (0 = unlimited)
	MinScore   int                       // Minimum score for comments to include
	FilterFunc func(*types.Comment) bool // Custom filter function
	Order      TraversalOrder            // Order of traversal
}

// TraversalOrder defines the order of tree traversal.
type TraversalOrder int

const (
	// DepthFirst traverses the tree depth-first (default).
	DepthFirst TraversalOrder = iota
	// BreadthFirst traverses the tree breadth-first.
	BreadthFirst
)

// NewCommentIterator creates a new iterator for traversing a comment tree.
func NewCommentIterator(comments []*types.Comment, opts *TraversalOptions) *CommentIterator {
	if opts == nil {
		opts = &TraversalOptions{Order: DepthFirst}
	}
	it := &CommentIterator{options: opts}
	it.push(comments, 0)
	return it
}

// push queues comments so that they come out in their original order.
func (it *CommentIterator) push(comments []*types.Comment, depth int) {
	if it.options.Order == BreadthFirst {
		for _, c := range comments {
			it.pending = append(it.pending, depthComment{c, depth})
		}
		return
	}
	for i := len(comments) - 1; i >= 0; i-- {
		it.pending = append(it.pending, depthComment{comments[i], depth})
	}
}

func (it *CommentIterator) pop() depthComment {
	if it.options.Order == BreadthFirst {
		next := it.pending[0]
		it.pending = it.pending[1:]
		return next
	}
	next := it.pending[len(it.pending)-1]
	it.pending = it.pending[:len(it.pending)-1]
	return next
}

// Next returns the next comment that passes the filters, or ErrIteratorDone.
// Replies of a filtered-out comment are still visited.
func (it *CommentIterator) Next() (*types.Comment, error) {
	for len(it.pending) > 0 {
		next := it.pop()
		if next.comment == nil {
			continue
		}
		if it.options.MaxDepth == 0 || next.depth < it.options.MaxDepth {
			it.push(next.comment.Replies, next.depth+1)
		}

		if it.options.MinScore > 0 && next.comment.Score < it.options.MinScore {
			continue
		}
		if it.options.FilterFunc != nil && !it.options.FilterFunc(next.comment) {
			continue
		}
		return next.comment, nil
	}
	return nil, ErrIteratorDone
}

// HasNext reports whether any comments remain to be considered. Next may
// still return ErrIteratorDone if all of them are filtered out.
func (it *CommentIterator) HasNext() bool {
	return len(it.pending) > 0
}
