package types

import "strconv"

// Paginator is the cursor bundle for listing endpoints. The API uses
// fullnames such as "t3_abc123" as cursors. A nil *Paginator means that no
// page is selected.
type Paginator struct {
	// After selects the page following this fullname.
	After string
	// Before selects the page preceding this fullname.
	Before string
	// Limit caps the number of children (the service allows at most 100).
	// Zero leaves the server default.
	Limit int
	// Count is the number of items already seen, used by the service to
	// number the next page.
	Count int
}

// Parameters returns the query parameters for the paginator. A nil
// paginator yields an empty map.
func (p *Paginator) Parameters() map[string]string {
	params := map[string]string{}
	if p == nil {
		return params
	}
	if p.After != "" {
		params["after"] = p.After
	}
	if p.Before != "" {
		params["before"] = p.Before
	}
	if p.Limit > 0 {
		params["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Count > 0 {
		params["count"] = strconv.Itoa(p.Count)
	}
	return params
}

// IsVacant reports whether the paginator selects the first page.
func (p *Paginator) IsVacant() bool {
	return p == nil || (p.After == "" && p.Before == "")
}
