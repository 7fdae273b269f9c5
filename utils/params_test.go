package utils

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		url      string
		wantPage int
		wantLim  int
		wantSkip int64
	}{
		{"/orders", 1, 3, 0},
		{"/orders?page=2&limit=3", 2, 3, 3},
		{"/orders?page=5&limit=10", 5, 10, 40},
		{"/orders?page=0&limit=-2", 1, 3, 0},
		{"/orders?page=abc&limit=xyz", 1, 3, 0},
		{"/orders?limit=9999", 1, 50, 0},
	}
	for _, c := range cases {
		r := httptest.NewRequest("GET", c.url, nil)
		pg := ParsePagination(r, 3, 50)
		if pg.Page != c.wantPage || pg.Limit != c.wantLim || pg.Skip != c.wantSkip {
			t.Errorf("%s: got page=%d limit=%d skip=%d, want %d/%d/%d",
				c.url, pg.Page, pg.Limit, pg.Skip, c.wantPage, c.wantLim, c.wantSkip)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		count int64
		limit int
		want  int64
	}{
		{0, 3, 0},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{10, 3, 4},
		{9, 3, 3},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := TotalPages(c.count, c.limit); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.count, c.limit, got, c.want)
		}
	}
}
