package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"memebot/internal/core/domain"
)

var intervalPattern = regexp.MustCompile(`^(\d+)\s*([a-z]+)$`)

var intervalUnits = map[string]time.Duration{
	"sec":     time.Second,
	"secs":    time.Second,
	"second":  time.Second,
	"seconds": time.Second,
	"min":     time.Minute,
	"mins":    time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
}

// ParseInterval converts user input like "5 min" or "45sec" into a duration.
func ParseInterval(text string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(text))

	m := intervalPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidInterval, text)
	}

	unit, ok := intervalUnits[m[2]]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", domain.ErrInvalidInterval, m[2])
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidInterval, text)
	}

	if n > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("%w: %q is too large", domain.ErrInvalidInterval, text)
	}

	return time.Duration(n) * unit, nil
}

// FormatInterval renders a duration the way users type it.
func FormatInterval(d time.Duration) string {
	seconds := int64(d / time.Second)

	switch {
	case seconds < 60:
		return fmt.Sprintf("%d sec", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%d min", seconds/60)
	default:
		return fmt.Sprintf("%d hours %d min", seconds/3600, (seconds%3600)/60)
	}
}
