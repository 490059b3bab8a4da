package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name                string
		page, limit, total  int
		wantPage, wantLimit int
		wantPages           int
	}{
		{"exact multiple", 1, 10, 30, 1, 10, 3},
		{"partial last page", 2, 10, 25, 2, 10, 3},
		{"single row", 1, 20, 1, 1, 20, 1},
		{"empty result", 1, 20, 0, 1, 20, 0},
		{"clamps zero page", 0, 10, 5, 1, 10, 1},
		{"clamps non-positive limit", 3, -1, 50, 3, 1, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.total)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
			assert.Equal(t, tc.total, p.Total)
			assert.Equal(t, tc.wantPages, p.Pages)
		})
	}
}
