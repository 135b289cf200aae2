package handler

import "github.com/locvowork/performpulse/internal/service"

// BrowseResponse is a browse session snapshot with its id.
type BrowseResponse struct {
	ID string `json:"id"`
	service.BrowseSnapshot
}

// LoadMoreResponse reports whether a page was appended.
type LoadMoreResponse struct {
	Loaded bool `json:"loaded"`
	BrowseResponse
}

// SearchRequest is the body of PUT /browse/:id/search.
type SearchRequest struct {
	Search string `json:"search"`
}

// BookmarkStatus answers GET /employees/:id/bookmark.
type BookmarkStatus struct {
	ID         int  `json:"id"`
	Bookmarked bool `json:"bookmarked"`
}
