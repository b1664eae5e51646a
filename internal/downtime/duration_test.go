package downtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"2h":      2 * time.Hour,
		"45m":     45 * time.Minute,
		"1h30m":   90 * time.Minute,
		" 1H 30M": 90 * time.Minute,
		"0h5m":    5 * time.Minute,
	}
	for raw, want := range cases {
		got, err := ParseDuration(raw)
		if assert.NoError(t, err, raw) {
			assert.Equal(t, want, got, raw)
		}
	}
}

func TestParseDurationRejects(t *testing.T) {
	for _, raw := range []string{"", "0m", "30m2h", "1d", "h", "2.5h", "99999999999999999999h"} {
		_, err := ParseDuration(raw)
		assert.ErrorIs(t, err, ErrInvalidDuration, raw)
	}
}
