package types

// UserContent selects which part of a user's history to list.
type UserContent int

const (
	UserContentOverview UserContent = iota
	UserContentSubmitted
	UserContentComments
	UserContentLiked
	UserContentDisliked
	UserContentHidden
	UserContentSaved
	UserContentGilded
)

// AllUserContents lists every UserContent value.
func AllUserContents() []UserContent {
	return []UserContent{
		UserContentOverview, UserContentSubmitted, UserContentComments, UserContentLiked,
		UserContentDisliked, UserContentHidden, UserContentSaved, UserContentGilded,
	}
}

// Path returns the path suffix appended to /user/<name>.
func (c UserContent) Path() string {
	switch c {
	case UserContentOverview:
		return "/overview"
	case UserContentSubmitted:
		return "/submitted"
	case UserContentComments:
		return "/comments"
	case UserContentLiked:
		return "/liked"
	case UserContentDisliked:
		return "/disliked"
	case UserContentHidden:
		return "/hidden"
	case UserContentSaved:
		return "/saved"
	case UserContentGilded:
		// The server-facing segment is "glided"; keep it as the service has it.
		return "/glided"
	}
	return ""
}

// UserSort orders a user's content listing.
type UserSort int

const (
	UserSortHot UserSort = iota
	UserSortNew
	UserSortTop
	UserSortControversial
)

// AllUserSorts lists every UserSort value.
func AllUserSorts() []UserSort {
	return []UserSort{UserSortHot, UserSortNew, UserSortTop, UserSortControversial}
}

// Param returns the value of the "sort" query parameter.
func (s UserSort) Param() string {
	switch s {
	case UserSortHot:
		return "hot"
	case UserSortNew:
		return "new"
	case UserSortTop:
		return "top"
	case UserSortControversial:
		return "controversial"
	}
	return ""
}

// LinkSort selects a link listing of the front page or a subreddit.
type LinkSort int

const (
	LinkSortControversial LinkSort = iota
	LinkSortHot
	LinkSortNew
	LinkSortRising
	LinkSortTop
)

// AllLinkSorts lists every LinkSort value.
func AllLinkSorts() []LinkSort {
	return []LinkSort{LinkSortControversial, LinkSortHot, LinkSortNew, LinkSortRising, LinkSortTop}
}

// Path returns the listing path, relative to the front page or /r/<name>.
func (s LinkSort) Path() string {
	switch s {
	case LinkSortControversial:
		return "/controversial"
	case LinkSortHot:
		return "/hot"
	case LinkSortNew:
		return "/new"
	case LinkSortRising:
		return "/rising"
	case LinkSortTop:
		return "/top"
	}
	return ""
}

// CommentSort orders the comment tree of a link.
type CommentSort int

const (
	CommentSortConfidence CommentSort = iota
	CommentSortTop
	CommentSortNew
	CommentSortHot
	CommentSortControversial
	CommentSortOld
	CommentSortRandom
	CommentSortQA
)

// AllCommentSorts lists every CommentSort value.
func AllCommentSorts() []CommentSort {
	return []CommentSort{
		CommentSortConfidence, CommentSortTop, CommentSortNew, CommentSortHot,
		CommentSortControversial, CommentSortOld, CommentSortRandom, CommentSortQA,
	}
}

// Param returns the value of the "sort" query parameter.
func (s CommentSort) Param() string {
	switch s {
	case CommentSortConfidence:
		return "confidence"
	case CommentSortTop:
		return "top"
	case CommentSortNew:
		return "new"
	case CommentSortHot:
		return "hot"
	case CommentSortControversial:
		return "controversial"
	case CommentSortOld:
		return "old"
	case CommentSortRandom:
		return "random"
	case CommentSortQA:
		return "qa"
	}
	return ""
}

// MessageWhere selects a private message folder.
type MessageWhere int

const (
	MessageInbox MessageWhere = iota
	MessageUnread
	MessageSent
)

// AllMessageWheres lists every MessageWhere value.
func AllMessageWheres() []MessageWhere {
	return []MessageWhere{MessageInbox, MessageUnread, MessageSent}
}

// Path returns the folder suffix appended to /message.
func (w MessageWhere) Path() string {
	switch w {
	case MessageInbox:
		return "/inbox"
	case MessageUnread:
		return "/unread"
	case MessageSent:
		return "/sent"
	}
	return ""
}

// SubredditsWhere selects a subreddit directory listing.
type SubredditsWhere int

const (
	SubredditsPopular SubredditsWhere = iota
	SubredditsNew
	SubredditsEmployee
	SubredditsGold
	SubredditsDefault
	SubredditsSubscriber
	SubredditsContributor
	SubredditsModerator
)

// AllSubredditsWheres lists every SubredditsWhere value.
func AllSubredditsWheres() []SubredditsWhere {
	return []SubredditsWhere{
		SubredditsPopular, SubredditsNew, SubredditsEmployee, SubredditsGold,
		SubredditsDefault, SubredditsSubscriber, SubredditsContributor, SubredditsModerator,
	}
}

// Path returns the absolute listing path.
func (w SubredditsWhere) Path() string {
	switch w {
	case SubredditsPopular:
		return "/subreddits/popular"
	case SubredditsNew:
		return "/subreddits/new"
	case SubredditsEmployee:
		return "/subreddits/employee"
	case SubredditsGold:
		return "/subreddits/gold"
	case SubredditsDefault:
		return "/subreddits/default"
	case SubredditsSubscriber:
		return "/subreddits/mine/subscriber"
	case SubredditsContributor:
		return "/subreddits/mine/contributor"
	case SubredditsModerator:
		return "/subreddits/mine/moderator"
	}
	return ""
}

// TimeFilter restricts top and controversial listings to a time window.
type TimeFilter int

const (
	TimeFilterHour TimeFilter = iota
	TimeFilterDay
	TimeFilterWeek
	TimeFilterMonth
	TimeFilterYear
	TimeFilterAll
)

// AllTimeFilters lists every TimeFilter value.
func AllTimeFilters() []TimeFilter {
	return []TimeFilter{TimeFilterHour, TimeFilterDay, TimeFilterWeek, TimeFilterMonth, TimeFilterYear, TimeFilterAll}
}

// Param returns the value of the "t" query parameter.
func (f TimeFilter) Param() string {
	switch f {
	case TimeFilterHour:
		return "hour"
	case TimeFilterDay:
		return "day"
	case TimeFilterWeek:
		return "week"
	case TimeFilterMonth:
		return "month"
	case TimeFilterYear:
		return "year"
	case TimeFilterAll:
		return "all"
	}
	return ""
}

// Scope is an OAuth2 scope requested during authorization.
type Scope int

const (
	ScopeIdentity Scope = iota
	ScopeEdit
	ScopeFlair
	ScopeHistory
	ScopeModConfig
	ScopeModFlair
	ScopeModLog
	ScopeModPosts
	ScopeModWiki
	ScopeMySubreddits
	ScopePrivateMessages
	ScopeRead
	ScopeReport
	ScopeSave
	ScopeSubmit
	ScopeSubscribe
	ScopeVote
	ScopeWikiEdit
	ScopeWikiRead
)

// AllScopes lists every scope in the order the authorization page shows them.
func AllScopes() []Scope {
	return []Scope{
		ScopeIdentity, ScopeEdit, ScopeFlair, ScopeHistory, ScopeModConfig, ScopeModFlair,
		ScopeModLog, ScopeModPosts, ScopeModWiki, ScopeMySubreddits, ScopePrivateMessages,
		ScopeRead, ScopeReport, ScopeSave, ScopeSubmit, ScopeSubscribe, ScopeVote,
		ScopeWikiEdit, ScopeWikiRead,
	}
}

// String returns the scope name sent to the authorization endpoint.
func (s Scope) String() string {
	switch s {
	case ScopeIdentity:
		return "identity"
	case ScopeEdit:
		return "edit"
	case ScopeFlair:
		return "flair"
	case ScopeHistory:
		return "history"
	case ScopeModConfig:
		return "modconfig"
	case ScopeModFlair:
		return "modflair"
	case ScopeModLog:
		return "modlog"
	case ScopeModPosts:
		return "modposts"
	case ScopeModWiki:
		return "modwiki"
	case ScopeMySubreddits:
		return "mysubreddits"
	case ScopePrivateMessages:
		return "privatemessages"
	case ScopeRead:
		return "read"
	case ScopeReport:
		return "report"
	case ScopeSave:
		return "save"
	case ScopeSubmit:
		return "submit"
	case ScopeSubscribe:
		return "subscribe"
	case ScopeVote:
		return "vote"
	case ScopeWikiEdit:
		return "wikiedit"
	case ScopeWikiRead:
		return "wikiread"
	}
	return ""
}
