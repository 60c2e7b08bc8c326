package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"alumniconnect/internal/domain"
)

// ParseEventFilter reads the event listing filter from the request query
// string. Enum-valued parameters must be valid when present; numeric
// parameters fall back to defaults when missing (normalization happens in
// the service). Returns an error suitable for a 400 response.
func ParseEventFilter(r *http.Request) (*domain.EventFilter, error) {
	q := r.URL.Query()
	filter := &domain.EventFilter{
		Search:      q.Get("search"),
		OrganizerID: q.Get("organizer_id"),
		OrderBy:     q.Get("order_by"),
		Order:       q.Get("order"),
	}

	if s := q.Get("status"); s != "" {
		status := domain.EventStatus(s)
		if !status.IsValid() {
			return nil, fmt.Errorf("unknown status %q", s)
		}
		filter.Status = &status
	}
	if s := q.Get("type"); s != "" {
		typ := domain.EventType(s)
		if !typ.IsValid() {
			return nil, fmt.Errorf("unknown type %q", s)
		}
		filter.Type = &typ
	}
	if s := q.Get("is_online"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("is_online must be a boolean")
		}
		filter.IsOnline = &v
	}
	if s := q.Get("upcoming"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("upcoming must be a boolean")
		}
		filter.Upcoming = v
	}
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 1 {
			filter.Limit = v
		}
	}
	if s := q.Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			filter.Offset = v
		}
	}
	return filter, nil
}
