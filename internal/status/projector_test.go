package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"downtime-panel-bot/internal/models"
)

var (
	start = time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 2, 15, 23, 30, 0, 0, time.UTC)
)

type markupStyle struct{}

func (markupStyle) Relative(t time.Time) string { return "R" + t.Format("15:04") }
func (markupStyle) Absolute(t time.Time) string { return "F" + t.Format("15:04") }

func TestProjectNoSchedule(t *testing.T) {
	p := Project(models.DowntimeWindow{}, start, nil)
	assert.Equal(t, NoSchedule, p.State)
	assert.Equal(t, HeadingNone, p.Heading)
	assert.Equal(t, "No maintenance scheduled.", p.Short)
}

func TestProjectStates(t *testing.T) {
	w := models.NewWindow(start, end, "Patch 2.1")

	up := Project(w, start.Add(-time.Hour), markupStyle{})
	assert.Equal(t, Upcoming, up.State)
	assert.Equal(t, HeadingOnline, up.Heading)
	assert.Equal(t, 3*time.Hour+30*time.Minute, up.Remaining)
	assert.Equal(t, "Maintenance scheduled R21:00", up.Short)
	assert.Contains(t, up.Detail, "Upcoming Maintenance: Patch 2.1")
	assert.Contains(t, up.Detail, "Game back online in: 3 hours 30 minutes")
	assert.Contains(t, up.Detail, "Start: F21:00")
	assert.Contains(t, up.Detail, "End: F23:30")

	in := Project(w, start.Add(90*time.Minute), markupStyle{})
	assert.Equal(t, InMaintenance, in.State)
	assert.Equal(t, HeadingMaintenance, in.Heading)
	assert.Equal(t, "Back online R23:30", in.Short)
	assert.Contains(t, in.Detail, "Game back online in: 1 hour")

	assert.Equal(t, InMaintenance, Project(w, start, nil).State)

	done := Project(w, end, nil)
	assert.Equal(t, Online, done.State)
	assert.Equal(t, "All systems operational", done.Short)
	assert.Equal(t, "Maintenance complete!", done.Detail)
	assert.Zero(t, done.Remaining)
}

func TestProjectIsPure(t *testing.T) {
	w := models.NewWindow(start, end, "x")
	now := start.Add(time.Minute)
	assert.Equal(t, Project(w, now, nil), Project(w, now, nil))
	assert.Equal(t, models.NewWindow(start, end, "x"), w)
}

func TestProjectDefaultTitle(t *testing.T) {
	s, e := start.Unix(), end.Unix()
	p := Project(models.DowntimeWindow{Start: &s, End: &e}, start, nil)
	assert.Equal(t, models.DefaultTitle, p.Title)
}

func TestFormatRemaining(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Minute:                        "0 minutes",
		0:                                   "0 minutes",
		30 * time.Second:                    "0 minutes",
		90 * time.Second:                    "1 minute",
		2 * time.Minute:                     "2 minutes",
		3661 * time.Second:                  "1 hour 1 minute",
		7200 * time.Second:                  "2 hours",
		time.Hour:                           "1 hour",
		26*time.Hour + 15*time.Minute:       "26 hours 15 minutes",
	}
	for d, want := range cases {
		assert.Equal(t, want, FormatRemaining(d), d.String())
	}
}
