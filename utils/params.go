package utils

import (
	"net/http"
	"strconv"
)

// Pagination carries 1-based page plus the derived skip for MongoDB.
type Pagination struct {
	Page  int
	Limit int
	Skip  int64
}

// ParsePagination reads page/limit query params. Page is 1-based;
// skip = (page-1) * limit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Pagination{
		Page:  page,
		Limit: limit,
		Skip:  int64(page-1) * int64(limit),
	}
}

// TotalPages returns ceil(count/limit).
func TotalPages(count int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (count + int64(limit) - 1) / int64(limit)
}
