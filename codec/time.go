// Package codec converts the wire forms of graph API scalars that have no
// native JSON type, currently timestamps.
package codec

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// GraphTimeLayout is the default timestamp layout emitted by the graph API,
// e.g. 2012-05-03T20:42:06+0000.
const GraphTimeLayout = "2006-01-02T15:04:05-0700"

// ErrInvalidTime reports text that matches none of the accepted layouts.
var ErrInvalidTime = errors.New("codec: unrecognized timestamp")

var layouts = []string{
	GraphTimeLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime reads a graph API timestamp. Besides the layouts above it accepts
// unix seconds written as digits, which several webhook payloads use.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTime
	}
	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, ErrInvalidTime
		}
		return UnixTime(n), nil
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTime
}

// FormatTime renders t in GraphTimeLayout, normalized to UTC.
func FormatTime(t time.Time) string { return t.UTC().Format(GraphTimeLayout) }

// UnixTime converts unix seconds to a UTC time. Values above 1e11 are taken as
// milliseconds.
func UnixTime(n int64) time.Time {
	if n > 1e11 || n < -1e11 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

func isDigits(s string) bool {
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
