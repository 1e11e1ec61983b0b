// Copyright (c) 2026 MeatTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/meattrack/pkg/pagination"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query    string
		expected pagination.Params
	}{
		{"", pagination.Params{Page: 1, Limit: 20}},
		{"?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"?page=-1&limit=0", pagination.Params{Page: 1, Limit: 20}},
		{"?limit=500", pagination.Params{Page: 1, Limit: 100}},
		{"?page=abc", pagination.Params{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		request := httptest.NewRequest(http.MethodGet, "/users"+tt.query, nil)
		assert.Equal(t, tt.expected, pagination.FromRequest(request), tt.query)
	}
}

func TestNewMeta(t *testing.T) {
	params := pagination.Params{Page: 2, Limit: 10}

	assert.Equal(t, 10, params.Offset())
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 10, Total: 21, TotalPages: 3, HasNext: true}, pagination.NewMeta(params, 21))
	assert.False(t, pagination.NewMeta(pagination.Params{Page: 3, Limit: 10}, 21).HasNext)
}

func TestCursorFromRequest(t *testing.T) {
	tests := []struct {
		query    string
		expected pagination.Cursor
	}{
		{"", pagination.Cursor{After: 0, Limit: 50}},
		{"?after=9000000000&limit=10", pagination.Cursor{After: 9000000000, Limit: 10}},
		{"?after=-4", pagination.Cursor{After: 0, Limit: 50}},
		{"?after=x&limit=y", pagination.Cursor{After: 0, Limit: 50}},
		{"?limit=1000", pagination.Cursor{After: 0, Limit: 100}},
		{"?limit=0", pagination.Cursor{After: 0, Limit: 50}},
	}

	for _, tt := range tests {
		request := httptest.NewRequest(http.MethodGet, "/messages"+tt.query, nil)
		assert.Equal(t, tt.expected, pagination.CursorFromRequest(request, 50, 100), tt.query)
	}
}

func TestCursor_Normalize(t *testing.T) {
	assert.Equal(t, pagination.Cursor{After: 0, Limit: 50}, pagination.Cursor{After: -1, Limit: -5}.Normalize(50, 100))
	assert.Equal(t, pagination.Cursor{After: 7, Limit: 100}, pagination.Cursor{After: 7, Limit: 101}.Normalize(50, 100))
}
