package events

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrUnknownCategory = errors.New("unknown event category")

// Category is a display style shared by events of one kind.
type Category struct {
	Tag         string
	Emoji       string
	DisplayName string
	Color       int
}

var categories = []Category{
	{Tag: "resonance", Emoji: "✨", DisplayName: "Resonance Banners", Color: 0xB48CFF},
	{Tag: "quest", Emoji: "📜", DisplayName: "Quests", Color: 0x7EC8E3},
	{Tag: "task", Emoji: "🧩", DisplayName: "Event Tasks", Color: 0x9BE7A0},
	{Tag: "checkin", Emoji: "📅", DisplayName: "Check-in Events", Color: 0xFFD580},
	{Tag: "doublerewards", Emoji: "💎", DisplayName: "Double Rewards", Color: 0xFF9F68},
	{Tag: "web", Emoji: "🌐", DisplayName: "Web Events", Color: 0x8AB4F8},
	{Tag: "store", Emoji: "🛍️", DisplayName: "Store Offers", Color: 0xFFADD8},
	{Tag: "recurring", Emoji: "🔁", DisplayName: "Recurring Events", Color: 0xC0C0C0},
}

// LookupCategory returns the category with the given tag.
func LookupCategory(tag string) (Category, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, c := range categories {
		if c.Tag == tag {
			return c, true
		}
	}
	return Category{}, false
}

// Categories returns every category in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// Event is one entry of the catalogue file.
type Event struct {
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Start       string   `yaml:"start"`
	End         string   `yaml:"end"`
	Description string   `yaml:"description,omitempty"`
	Rewards     []string `yaml:"rewards,omitempty"`
	Link        string   `yaml:"link,omitempty"`

	start, end time.Time
}

// StartTime and EndTime are valid after the catalogue is loaded.
func (e Event) StartTime() time.Time { return e.start }
func (e Event) EndTime() time.Time   { return e.end }

// Catalogue is the static list of announced events.
type Catalogue struct {
	Events []Event `yaml:"events"`
}

// Load reads a catalogue file. An empty path yields an empty catalogue.
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return &Catalogue{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event catalogue: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalogue YAML.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode event catalogue: %w", err)
	}
	for i := range c.Events {
		e := &c.Events[i]
		cat, ok := LookupCategory(e.Category)
		if !ok {
			return nil, fmt.Errorf("event %q: %w %q", e.Name, ErrUnknownCategory, e.Category)
		}
		e.Category = cat.Tag
		var err error
		if e.start, err = time.Parse(time.RFC3339, e.Start); err != nil {
			return nil, fmt.Errorf("event %q: parse start: %w", e.Name, err)
		}
		if e.end, err = time.Parse(time.RFC3339, e.End); err != nil {
			return nil, fmt.Errorf("event %q: parse end: %w", e.Name, err)
		}
		if !e.end.After(e.start) {
			return nil, fmt.Errorf("event %q: end must be after start", e.Name)
		}
	}
	return &c, nil
}

// Event statuses.
const (
	StatusStartingSoon = "Starting Soon"
	StatusUpcoming     = "Upcoming"
	StatusEndingSoon   = "Ending Soon"
	StatusActive       = "Active"
)

const (
	startingSoonWindow = 24 * time.Hour
	endingSoonWindow   = 48 * time.Hour
)

// Entry is an event as shown on a board.
type Entry struct {
	Event
	Status string
}

// Board is the rendered content of an event panel.
type Board struct {
	Category Category
	Entries  []Entry
}

// Board lists the category's events that have not ended, soonest first.
func (c *Catalogue) Board(category string, now time.Time) (Board, error) {
	cat, ok := LookupCategory(category)
	if !ok {
		return Board{}, fmt.Errorf("%w %q", ErrUnknownCategory, category)
	}
	b := Board{Category: cat}
	for _, e := range c.Events {
		if e.Category != cat.Tag || !now.Before(e.end) {
			continue
		}
		b.Entries = append(b.Entries, Entry{Event: e, Status: statusAt(e, now)})
	}
	sort.SliceStable(b.Entries, func(i, j int) bool {
		return b.Entries[i].start.Before(b.Entries[j].start)
	})
	return b, nil
}

func statusAt(e Event, now time.Time) string {
	if now.Before(e.start) {
		if e.start.Sub(now) <= startingSoonWindow {
			return StatusStartingSoon
		}
		return StatusUpcoming
	}
	if e.end.Sub(now) <= endingSoonWindow {
		return StatusEndingSoon
	}
	return StatusActive
}
