package internal

import "github.com/jamesprial/go-reddit-session/pkg/types"

// CommentTree walks the comments of a CommentsPage through their Replies.
type CommentTree struct {
	Comments []*types.Comment
}

// NewCommentTree creates a new CommentTree from top level comments.
func NewCommentTree(comments []*types.Comment) *CommentTree {
	return &CommentTree{Comments: comments}
}

// Walk calls fn for every comment, parents before their replies. Returning
// false from fn stops the walk.
func (ct *CommentTree) Walk(fn func(c *types.Comment, depth int) bool) {
	walk(ct.Comments, 0, fn)
}

func walk(comments []*types.Comment, depth int, fn func(*types.Comment, int) bool) bool {
	for _, comment := range comments {
		if comment == nil {
			continue
		}
		if !fn(comment, depth) {
			return false
		}
		if !walk(comment.Replies, depth+1, fn) {
			return false
		}
	}
	return true
}

// Flatten returns all comments in the tree as a flat slice.
func (ct *CommentTree) Flatten() []*types.Comment {
	return ct.Filter(func(*types.Comment) bool { return true })
}

// Filter returns comments that match the given filter function.
func (ct *CommentTree) Filter(filterFunc func(*types.Comment) bool) []*types.Comment {
	var result []*types.Comment
	ct.Walk(func(c *types.Comment, _ int) bool {
		if filterFunc(c) {
			result = append(result, c)
		}
		return true
	})
	return result
}

// Find returns the first comment that matches the given condition.
func (ct *CommentTree) Find(condition func(*types.Comment) bool) *types.Comment {
	var found *types.Comment
	ct.Walk(func(c *types.Comment, _ int) bool {
		if condition(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// GetByID returns a comment by its ID.
func (ct *CommentTree) GetByID(id string) *types.Comment {
	return ct.Find(func(c *types.Comment) bool { return c.ID == id })
}

// GetByAuthor returns all comments by a specific author.
func (ct *CommentTree) GetByAuthor(author string) []*types.Comment {
	return ct.Filter(func(c *types.Comment) bool { return c.Author == author })
}

// GetTopLevel returns only the top-level comments.
func (ct *CommentTree) GetTopLevel() []*types.Comment {
	return ct.Comments
}

// GetDepth returns the number of reply levels below the top level.
func (ct *CommentTree) GetDepth() int {
	maxDepth := 0
	ct.Walk(func(_ *types.Comment, depth int) bool {
		maxDepth = max(maxDepth, depth)
		return true
	})
	return maxDepth
}

// Count returns the total number of comments in the tree.
func (ct *CommentTree) Count() int {
	n := 0
	ct.Walk(func(*types.Comment, int) bool {
		n++
		return true
	})
	return n
}

// MoreIDs collects the truncated reply ids advertised anywhere in the tree.
func (ct *CommentTree) MoreIDs() []string {
	var ids []string
	ct.Walk(func(c *types.Comment, _ int) bool {
		ids = append(ids, c.MoreChildrenIDs...)
		return true
	})
	return ids
}
