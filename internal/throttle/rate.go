// Package throttle implements fixed-window request limits.
package throttle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Rate is a number of requests allowed per period, written "100/day".
type Rate struct {
	Limit  int64
	Period time.Duration
}

// ParseRate accepts "<n>/<unit>" where unit starts with s, m, h or d.
func ParseRate(s string) (Rate, error) {
	num, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Rate{}, fmt.Errorf("invalid rate %q", s)
	}
	limit, err := strconv.ParseInt(num, 10, 64)
	if err != nil || limit <= 0 {
		return Rate{}, fmt.Errorf("invalid rate limit %q", num)
	}
	if unit == "" {
		return Rate{}, fmt.Errorf("invalid rate period in %q", s)
	}

	var period time.Duration
	switch unit[0] {
	case 's':
		period = time.Second
	case 'm':
		period = time.Minute
	case 'h':
		period = time.Hour
	case 'd':
		period = 24 * time.Hour
	default:
		return Rate{}, fmt.Errorf("invalid rate period %q", unit)
	}
	return Rate{Limit: limit, Period: period}, nil
}

func MustParseRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rate) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Period)
}
