package graw

import (
	"github.com/jamesprial/go-reddit-session/internal"
	"github.com/jamesprial/go-reddit-session/pkg/types"
)

// CommentTree provides utility methods for working with comment trees.
type CommentTree interface {
	Flatten() []*types.Comment
	Filter(func(*types.Comment) bool) []*types.Comment
	Find(func(*types.Comment) bool) *types.Comment
	GetByID(string) *types.Comment
	GetByAuthor(string) []*types.Comment
	GetTopLevel() []*types.Comment
	GetDepth() int
	Count() int
	MoreIDs() []string
	Walk(func(c *types.Comment, depth int) bool)
}

// NewCommentTree creates a new CommentTree from a slice of comments.
func NewCommentTree(comments []*types.Comment) CommentTree {
	return internal.NewCommentTree(comments)
}

// CommentTreeOf returns the comment tree of a comments page. A nil page or
// one without comments yields an empty tree.
func CommentTreeOf(page *types.CommentsPage) CommentTree {
	if page == nil || page.Comments == nil {
		return internal.NewCommentTree(nil)
	}
	return internal.NewCommentTree(page.Comments.Comments())
}
