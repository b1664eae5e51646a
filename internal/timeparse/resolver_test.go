package timeparse

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offsetOf(t *testing.T, z Zone, at time.Time) int {
	t.Helper()
	_, off := at.In(z.Location).Zone()
	return off
}

var winter = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func TestResolveEmptyIsUTC(t *testing.T) {
	r := NewResolver(nil)
	for _, label := range []string{"", "   "} {
		z, err := r.Resolve(label)
		require.NoError(t, err)
		assert.Equal(t, "UTC", z.Name)
		assert.Equal(t, time.UTC, z.Location)
	}
}

func TestResolveExplicitOffsets(t *testing.T) {
	r := NewResolver(nil)
	cases := map[string]int{
		"GMT+5":      5 * 3600,
		"utc-3":      -3 * 3600,
		"UTC+05:30":  5*3600 + 30*60,
		"GMT -0930":  -(9*3600 + 30*60),
		"UTC + 0":    0,
		"gmt+23:59":  23*3600 + 59*60,
	}
	for label, want := range cases {
		z, err := r.Resolve(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, offsetOf(t, z, winter), label)
	}
}

func TestResolveRejectsOutOfRangeOffset(t *testing.T) {
	r := NewResolver(nil)
	_, err := r.Resolve("UTC+24")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
	_, err = r.Resolve("GMT+5:75")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestResolveShortcutUsesRegion(t *testing.T) {
	r := NewResolver(nil)
	z, err := r.Resolve("est")
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", z.Name)
	assert.Equal(t, -5*3600, offsetOf(t, z, winter))
	// Region zones keep daylight saving rules.
	assert.Equal(t, -4*3600, offsetOf(t, z, time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)))
}

func TestResolveRegionVerbatim(t *testing.T) {
	r := NewResolver(nil)
	z, err := r.Resolve(" Asia/Tokyo ")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", z.Name)
	assert.Equal(t, 9*3600, offsetOf(t, z, winter))
}

func TestResolveFallsBackWithoutRegionDatabase(t *testing.T) {
	missing := func(name string) (*time.Location, error) {
		return nil, errors.New("no zoneinfo")
	}
	r := NewResolver(missing)

	z, err := r.Resolve("EST")
	require.NoError(t, err)
	assert.Equal(t, -5*3600, offsetOf(t, z, winter))

	z, err = r.Resolve("bst")
	require.NoError(t, err)
	assert.Equal(t, 3600, offsetOf(t, z, winter))

	_, err = r.Resolve("Asia/Tokyo")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestResolveUnknown(t *testing.T) {
	r := NewResolver(nil)
	for _, label := range []string{"Mars/Olympus", "XYZ", "Local"} {
		_, err := r.Resolve(label)
		assert.ErrorIs(t, err, ErrInvalidTimezone, label)
	}
}

func TestSuggest(t *testing.T) {
	r := NewResolver(nil)
	assert.Len(t, r.Suggest(""), len(commonTimezones))
	assert.Equal(t, []string{"America/New_York"}, r.Suggest("new_y"))
	assert.Contains(t, r.Suggest("asia"), "Asia/Kolkata")
	assert.Empty(t, r.Suggest("nowhere"))
}
