package shared

import (
	"net/http"
	"strconv"
	"strings"

	"timekeeper/internal/domain/worktime"
)

type Pagination struct {
	Limit  int
	Offset int
}

func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	limit, offset := defaultLimit, 0
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}
}

// DateRange reads optional from/to query parameters, recording issues for
// malformed or inverted bounds.
func DateRange(r *http.Request, v *Validator) (string, string) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from != "" {
		v.Date("from", from)
	}
	if to != "" {
		v.Date("to", to)
	}
	if from != "" && to != "" && to < from {
		v.Add("to", "must be on or after from")
	}
	return from, to
}

// ParseDate accepts YYYY-MM-DD only.
func ParseDate(value string) (string, bool) {
	day, ok := worktime.ParseDate(strings.TrimSpace(value))
	if !ok {
		return "", false
	}
	return day.Format(worktime.DateLayout), true
}
