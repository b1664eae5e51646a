package models

import "time"

// Panel platforms.
const (
	PlatformDiscord  = "discord"
	PlatformTelegram = "telegram"
)

// DefaultTitle is used when a window is scheduled without a title.
const DefaultTitle = "Scheduled Maintenance"

// DowntimeWindow is the current maintenance window of one guild.
// Start and End are UTC epoch seconds; both are set or both are nil.
type DowntimeWindow struct {
	Start *int64  `json:"start" db:"start_at"`
	End   *int64  `json:"end" db:"end_at"`
	Title *string `json:"title" db:"title"`
}

// NewWindow builds a populated window from two instants.
func NewWindow(start, end time.Time, title string) DowntimeWindow {
	s, e := start.Unix(), end.Unix()
	return DowntimeWindow{Start: &s, End: &e, Title: &title}
}

// Active reports whether both instants are set.
func (w DowntimeWindow) Active() bool {
	return w.Start != nil && w.End != nil
}

// StartTime returns the start instant. Only meaningful when Start is set.
func (w DowntimeWindow) StartTime() time.Time {
	if w.Start == nil {
		return time.Time{}
	}
	return time.Unix(*w.Start, 0).UTC()
}

// EndTime returns the end instant. Only meaningful when End is set.
func (w DowntimeWindow) EndTime() time.Time {
	if w.End == nil {
		return time.Time{}
	}
	return time.Unix(*w.End, 0).UTC()
}

// TitleOr returns the title, or fallback when none is stored.
func (w DowntimeWindow) TitleOr(fallback string) string {
	if w.Title == nil || *w.Title == "" {
		return fallback
	}
	return *w.Title
}

// PanelRecord points at a posted status panel.
type PanelRecord struct {
	GuildID   int64  `json:"guild_id" db:"guild_id"`
	ChannelID int64  `json:"channel_id" db:"channel_id"`
	MessageID int64  `json:"message_id" db:"message_id"`
	Platform  string `json:"platform,omitempty" db:"platform"` // empty means discord
}

// PlatformOrDefault returns the record's platform, defaulting to discord.
func (p PanelRecord) PlatformOrDefault() string {
	if p.Platform == "" {
		return PlatformDiscord
	}
	return p.Platform
}

// EventPanelRecord points at a posted event board for one category.
type EventPanelRecord struct {
	PanelRecord
	EventCategory string `json:"event_category" db:"event_category"`
}

// Snapshot is the whole durable state of the bot.
type Snapshot struct {
	Downtime    map[int64]DowntimeWindow `json:"downtime"`
	Panels      []PanelRecord            `json:"panels"`
	EventPanels []EventPanelRecord       `json:"event_panels"`
}

// NewSnapshot returns an empty snapshot with non-nil collections.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Downtime:    make(map[int64]DowntimeWindow),
		Panels:      []PanelRecord{},
		EventPanels: []EventPanelRecord{},
	}
}
