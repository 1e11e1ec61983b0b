// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pagination parses paging parameters for list endpoints.

Two styles are supported:

  - Offset pages (page, limit) for administrative lists that show totals.
  - Keyset cursors (after, limit) for append-only streams such as chat
    messages, where clients poll for everything newer than the last id seen.

Malformed values never fail a request; they fall back to the defaults.
*/
package pagination

import (
	"net/http"
	"strconv"
)

// Offset page defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
	DefaultPage  = 1
)

// # Offset Pages

// Params is one offset page.
type Params struct {
	Page  int
	Limit int
}

// Offset returns the SQL OFFSET for the page.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewMeta derives page counts from the total row count.
func NewMeta(params Params, total int) Meta {
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}

	return Meta{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
	}
}

// FromRequest reads "page" and "limit". Limits are clamped to [MaxLimit].
func FromRequest(request *http.Request) Params {
	query := request.URL.Query()

	page := int(parse(query.Get("page"), DefaultPage))
	if page < 1 {
		page = DefaultPage
	}

	return Params{Page: page, Limit: clampLimit(parse(query.Get("limit"), DefaultLimit), DefaultLimit, MaxLimit)}
}

// # Keyset Cursors

// Cursor selects rows with an id strictly greater than After.
type Cursor struct {
	After int64
	Limit int
}

// CursorFromRequest reads "after" and "limit". A negative after starts from
// the beginning; limit falls back to defaultLimit and is clamped to maxLimit.
func CursorFromRequest(request *http.Request, defaultLimit, maxLimit int) Cursor {
	query := request.URL.Query()
	return Cursor{
		After: max(parse(query.Get("after"), 0), 0),
		Limit: clampLimit(parse(query.Get("limit"), int64(defaultLimit)), defaultLimit, maxLimit),
	}
}

// Normalize applies the same bounds as [CursorFromRequest] to a cursor built
// by hand.
func (c Cursor) Normalize(defaultLimit, maxLimit int) Cursor {
	return Cursor{After: max(c.After, 0), Limit: clampLimit(int64(c.Limit), defaultLimit, maxLimit)}
}

func clampLimit(limit int64, fallback, ceiling int) int {
	switch {
	case limit < 1:
		return fallback
	case limit > int64(ceiling):
		return ceiling
	}
	return int(limit)
}

func parse(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return value
}
