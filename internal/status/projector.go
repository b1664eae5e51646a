package status

import (
	"fmt"
	"strings"
	"time"

	"downtime-panel-bot/internal/models"
)

// State is the display state of a guild.
type State int

const (
	NoSchedule State = iota
	Upcoming
	InMaintenance
	Online
)

func (s State) String() string {
	switch s {
	case Upcoming:
		return "upcoming"
	case InMaintenance:
		return "maintenance"
	case Online:
		return "online"
	default:
		return "none"
	}
}

// Headings.
const (
	HeadingNone        = "Server Status"
	HeadingOnline      = "ONLINE"
	HeadingMaintenance = "MAINTENANCE"
)

// Style renders instants for a particular surface.
type Style interface {
	Relative(t time.Time) string
	Absolute(t time.Time) string
}

// PlainStyle renders instants as UTC text.
type PlainStyle struct{}

func (PlainStyle) Relative(t time.Time) string {
	return "at " + t.UTC().Format("Jan 2, 15:04 UTC")
}

func (PlainStyle) Absolute(t time.Time) string {
	return t.UTC().Format("Mon Jan 2 2006, 15:04 UTC")
}

// Projection is everything a panel needs to show a window.
type Projection struct {
	State     State
	Heading   string
	Title     string
	Start     time.Time
	End       time.Time
	Remaining time.Duration // until End; zero when not applicable
	Short     string
	Detail    string
}

// Project maps a window and an instant to what should be displayed.
// It has no side effects. A nil style means PlainStyle.
func Project(w models.DowntimeWindow, now time.Time, style Style) Projection {
	if style == nil {
		style = PlainStyle{}
	}
	if w.Start == nil || w.End == nil {
		msg := "No maintenance scheduled."
		return Projection{State: NoSchedule, Heading: HeadingNone, Short: msg, Detail: msg}
	}

	start, end := w.StartTime(), w.EndTime()
	title := w.TitleOr(models.DefaultTitle)
	p := Projection{Title: title, Start: start, End: end}

	switch {
	case now.Before(start):
		p.State = Upcoming
		p.Heading = HeadingOnline
		p.Remaining = end.Sub(now)
		p.Short = "Maintenance scheduled " + style.Relative(start)
		p.Detail = strings.Join([]string{
			"Upcoming Maintenance: " + title,
			"",
			"Game back online in: " + FormatRemaining(p.Remaining),
			"Downtime begins " + style.Relative(start),
			"Start: " + style.Absolute(start),
			"End: " + style.Absolute(end),
		}, "\n")
	case now.Before(end):
		p.State = InMaintenance
		p.Heading = HeadingMaintenance
		p.Remaining = end.Sub(now)
		p.Short = "Back online " + style.Relative(end)
		p.Detail = strings.Join([]string{
			title,
			"",
			"Game back online in: " + FormatRemaining(p.Remaining),
			"Maintenance ends " + style.Absolute(end),
		}, "\n")
	default:
		p.State = Online
		p.Heading = HeadingOnline
		p.Short = "All systems operational"
		p.Detail = "Maintenance complete!"
	}
	return p
}

// FormatRemaining renders d as "H hour(s) M minute(s)". Hours appear only
// when nonzero; minutes appear when hours is zero or minutes is nonzero.
func FormatRemaining(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return "0 minutes"
	}
	total := secs / 60
	hours, minutes := total/60, total%60

	var parts []string
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	return strings.Join(parts, " ")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
