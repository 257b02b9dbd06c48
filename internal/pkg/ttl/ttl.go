// Package ttl parses human token-lifetime strings from configuration.
// It accepts everything time.ParseDuration does plus whole-number day and
// week suffixes ("7d", "2w"), which are the common way to express refresh
// token lifetimes.
package ttl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a lifetime string to a duration.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("ttl: empty duration")
	}

	unit := time.Duration(0)
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "w"):
		unit = 7 * 24 * time.Hour
	}
	if unit > 0 {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("ttl: invalid duration %q", s)
		}
		return time.Duration(n) * unit, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("ttl: invalid duration %q", s)
	}
	return d, nil
}
