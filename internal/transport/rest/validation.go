package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loanlook/internal/domain"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func queryInt(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{Field: field, Message: fmt.Sprintf("%s must be an integer", field)}
	}
	return v, nil
}

// queryDate parses an optional YYYY-MM-DD parameter in loc.
func queryDate(r *http.Request, field string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(domain.DateLayout, raw, loc)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)}
	}
	return &t, nil
}

func queryString(r *http.Request, field string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(field))
	if raw == "" {
		return nil
	}
	return &raw
}
