package expiry

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LocalLayout is the value a datetime-local form field submits.
const LocalLayout = "2006-01-02T15:04"

// ErrBadTimestamp is returned for a preparation time in neither accepted form.
var ErrBadTimestamp = errors.New("malformed timestamp")

// ParseTime reads a preparation time as RFC 3339, or as LocalLayout in loc.
// A nil loc means time.Local.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(LocalLayout, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q is not RFC 3339 or YYYY-MM-DDTHH:MM", ErrBadTimestamp, s)
}
