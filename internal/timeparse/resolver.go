package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidTimezone   = errors.New("invalid timezone")
	ErrInvalidTimeFormat = errors.New("invalid time format")
)

// MaxSuggestions is the most autocomplete choices a chat platform accepts.
const MaxSuggestions = 25

// Zone is a resolved timezone label.
type Zone struct {
	Name     string
	Location *time.Location
}

// UTC is the zone used for an empty label.
var UTC = Zone{Name: "UTC", Location: time.UTC}

// Strategy resolves a trimmed label, reporting false when it does not apply.
type Strategy func(label string) (Zone, bool)

// LocationLoader loads a region zone by name. time.LoadLocation in production.
type LocationLoader func(name string) (*time.Location, error)

// shortcuts maps common abbreviations to the region that observes them.
var shortcuts = map[string]string{
	"EST": "America/New_York",
	"EDT": "America/New_York",
	"CST": "America/Chicago",
	"CDT": "America/Chicago",
	"MST": "America/Denver",
	"MDT": "America/Denver",
	"PST": "America/Los_Angeles",
	"PDT": "America/Los_Angeles",
	"GMT": "Europe/London",
	"BST": "Europe/London",
	"CET": "Europe/Paris",
	"UTC": "UTC",
}

// abbreviationOffsets are fixed hour offsets used when no region database is available.
var abbreviationOffsets = map[string]int{
	"EST": -5,
	"EDT": -4,
	"CST": -6,
	"CDT": -5,
	"MST": -7,
	"MDT": -6,
	"PST": -8,
	"PDT": -7,
	"GMT": 0,
	"BST": 1,
	"CET": 1,
	"UTC": 0,
}

// commonTimezones feeds autocomplete.
var commonTimezones = []string{
	"UTC",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Europe/London",
	"Europe/Paris",
	"Asia/Tokyo",
	"Australia/Sydney",
	"Pacific/Auckland",
	"America/Sao_Paulo",
	"America/Mexico_City",
	"America/Phoenix",
	"America/Anchorage",
	"Pacific/Honolulu",
	"Asia/Kolkata",
	"Asia/Seoul",
	"Asia/Singapore",
	"Asia/Dubai",
	"Africa/Johannesburg",
	"EST",
	"CST",
	"MST",
	"PST",
}

var offsetPattern = regexp.MustCompile(`(?i)^(GMT|UTC)\s*([+-])\s*(\d{1,2})(?::?(\d{2}))?$`)

// Resolver turns free-form timezone labels into zones by trying its
// strategies in order.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the standard chain: empty label, explicit offset,
// region database, abbreviation table. A nil loader means time.LoadLocation.
func NewResolver(load LocationLoader) *Resolver {
	if load == nil {
		load = time.LoadLocation
	}
	return &Resolver{strategies: []Strategy{
		emptyLabel,
		explicitOffset,
		regionName(load),
		abbreviation,
	}}
}

// Resolve returns the zone for label or ErrInvalidTimezone.
func (r *Resolver) Resolve(label string) (Zone, error) {
	label = strings.TrimSpace(label)
	for _, s := range r.strategies {
		if z, ok := s(label); ok {
			return z, nil
		}
	}
	return Zone{}, fmt.Errorf("%w: %q", ErrInvalidTimezone, label)
}

// Suggest returns common timezone names containing prefix, case-insensitively.
func (r *Resolver) Suggest(prefix string) []string {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	out := make([]string, 0, MaxSuggestions)
	for _, name := range commonTimezones {
		if needle == "" || strings.Contains(strings.ToLower(name), needle) {
			out = append(out, name)
		}
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func emptyLabel(label string) (Zone, bool) {
	if label == "" {
		return UTC, true
	}
	return Zone{}, false
}

func explicitOffset(label string) (Zone, bool) {
	m := offsetPattern.FindStringSubmatch(label)
	if m == nil {
		return Zone{}, false
	}
	hours, _ := strconv.Atoi(m[3])
	minutes := 0
	if m[4] != "" {
		minutes, _ = strconv.Atoi(m[4])
	}
	if hours > 23 || minutes > 59 {
		return Zone{}, false
	}
	offset := hours*3600 + minutes*60
	if m[2] == "-" {
		offset = -offset
	}
	name := fmt.Sprintf("%s%s%02d:%02d", strings.ToUpper(m[1]), m[2], hours, minutes)
	return Zone{Name: name, Location: time.FixedZone(name, offset)}, true
}

func regionName(load LocationLoader) Strategy {
	return func(label string) (Zone, bool) {
		name := canonicalName(label)
		// "Local" would silently pick the host zone.
		if name == "" || strings.EqualFold(name, "local") {
			return Zone{}, false
		}
		loc, err := load(name)
		if err != nil {
			return Zone{}, false
		}
		return Zone{Name: name, Location: loc}, true
	}
}

func abbreviation(label string) (Zone, bool) {
	for _, candidate := range []string{strings.ToUpper(label), strings.ToUpper(canonicalName(label))} {
		if hours, ok := abbreviationOffsets[candidate]; ok {
			return Zone{Name: candidate, Location: time.FixedZone(candidate, hours*3600)}, true
		}
	}
	return Zone{}, false
}

func canonicalName(label string) string {
	if name, ok := shortcuts[strings.ToUpper(label)]; ok {
		return name
	}
	return label
}
