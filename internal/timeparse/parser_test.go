package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedParser(now time.Time) *Parser {
	return NewParser(WithClock(func() time.Time { return now }))
}

func TestParseFullDate(t *testing.T) {
	p := fixedParser(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	res, err := p.Parse("2026-02-15 21:00", UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC), res.UTC)
	assert.False(t, res.TimeOnly)
}

func TestParseInfersCurrentYear(t *testing.T) {
	p := fixedParser(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	res, err := p.Parse("2/15 9:00 PM", UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC), res.UTC)
	assert.False(t, res.TimeOnly)
}

func TestParseTimeOnlyUsesTodayInZone(t *testing.T) {
	// 03:00 UTC on Jan 10 is still Jan 9 in New York.
	p := fixedParser(time.Date(2026, 1, 10, 3, 0, 0, 0, time.UTC))
	ny := Zone{Name: "EST", Location: time.FixedZone("EST", -5*3600)}

	res, err := p.Parse("11:00 PM", ny)
	require.NoError(t, err)
	assert.True(t, res.TimeOnly)
	assert.Equal(t, 9, res.Local.Day())
	assert.Equal(t, time.Date(2026, 1, 10, 4, 0, 0, 0, time.UTC), res.UTC)
}

func TestParseAcceptedShapes(t *testing.T) {
	p := fixedParser(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	cases := map[string]time.Time{
		"2026-02-15 9:30 PM":  time.Date(2026, 2, 15, 21, 30, 0, 0, time.UTC),
		"2026-2-5 9 pm":       time.Date(2026, 2, 5, 21, 0, 0, 0, time.UTC),
		"2/15/2026 21:00":     time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC),
		"02/15/2026 9:00 AM":  time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC),
		"2/15/26 9 PM":        time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC),
		"2/15/26 21:00":       time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC),
		"12/31 23:59":         time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC),
		"9:48PM":              time.Date(2026, 3, 1, 21, 48, 0, 0, time.UTC),
		"4pm":                 time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC),
		"21.15":               time.Date(2026, 3, 1, 21, 15, 0, 0, time.UTC),
		"2/12:2:15 PM":        time.Date(2026, 2, 12, 14, 15, 0, 0, time.UTC),
		"2/12 - 2:15pm":       time.Date(2026, 2, 12, 14, 15, 0, 0, time.UTC),
		"２／１５ ９：００ ＰＭ":       time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC),
		"2∕15 9:00 PM":   time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC),
		"  2/15,   9:00  PM ": time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC),
		"12 AM":               time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		res, err := p.Parse(input, UTC)
		if assert.NoError(t, err, input) {
			assert.Equal(t, want, res.UTC, input)
		}
	}
}

func TestParseAppliesZone(t *testing.T) {
	p := fixedParser(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	tokyo, err := NewResolver(nil).Resolve("Asia/Tokyo")
	require.NoError(t, err)

	res, err := p.Parse("2026-02-15 21:00", tokyo)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC), res.UTC)
	assert.Equal(t, 21, res.Local.Hour())
}

func TestParseRejects(t *testing.T) {
	p := fixedParser(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	for _, input := range []string{"", "tomorrow", "25:00", "13 PM", "2/30 9:00 PM", "2/29 9:00 PM", "9:7 PM"} {
		_, err := p.Parse(input, UTC)
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, input)
	}
}

func TestParseLeapDayInLeapYear(t *testing.T) {
	p := fixedParser(time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC))
	res, err := p.Parse("2/29 9:00 PM", UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2028, 2, 29, 21, 0, 0, 0, time.UTC), res.UTC)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "9:48 PM", Normalize("9:48pm"))
	assert.Equal(t, "2/15 9:00 PM", Normalize("2/15  9.00pm"))
	assert.Equal(t, "2/12 2:15 PM", Normalize("2/12:2:15 PM"))
	assert.Equal(t, "noon", Normalize(" noon "))
}
