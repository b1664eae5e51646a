package downtime

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)

const maxDurationMinutes = math.MaxInt64 / int64(time.Minute)

// ParseDuration reads "[Nh][Nm]" such as "2h", "45m" or "1h 30m".
// Spaces and case are ignored; the total must be positive.
func ParseDuration(raw string) (time.Duration, error) {
	text := strings.ToLower(strings.Join(strings.Fields(raw), ""))
	m := durationPattern.FindStringSubmatch(text)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	var hours, minutes int64
	var err error
	if m[1] != "" {
		if hours, err = strconv.ParseInt(m[1], 10, 64); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
	}
	if m[2] != "" {
		if minutes, err = strconv.ParseInt(m[2], 10, 64); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
	}
	if hours > maxDurationMinutes/60 || minutes > maxDurationMinutes-hours*60 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	total := hours*60 + minutes
	if total <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	return time.Duration(total) * time.Minute, nil
}
