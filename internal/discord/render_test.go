package discord

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
	"downtime-panel-bot/internal/timeparse"
)

var (
	start = time.Date(2026, 2, 15, 21, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC)
)

func project(now time.Time) status.Projection {
	return status.Project(models.NewWindow(start, end, "Patch 2.1"), now, Style{})
}

func TestStyle(t *testing.T) {
	var st Style
	assert.Equal(t, fmt.Sprintf("<t:%d:R>", start.Unix()), st.Relative(start))
	assert.Equal(t, fmt.Sprintf("<t:%d:f>", start.Unix()), st.Absolute(start))
}

func TestStatusEmbedPanel(t *testing.T) {
	e := statusEmbed(project(start.Add(-time.Hour)), false)
	assert.Equal(t, "💕 ONLINE", e.Title)
	assert.Equal(t, fmt.Sprintf("Maintenance scheduled <t:%d:R>", start.Unix()), e.Description)
	assert.Equal(t, colorOnline, e.Color)
	require.NotNil(t, e.Footer)
	assert.Equal(t, footerPanel, e.Footer.Text)

	e = statusEmbed(project(start.Add(time.Hour)), false)
	assert.Equal(t, "💝 MAINTENANCE", e.Title)
	assert.Equal(t, colorMaintenance, e.Color)
	assert.Equal(t, fmt.Sprintf("Back online <t:%d:R>", end.Unix()), e.Description)

	e = statusEmbed(project(end), false)
	assert.Equal(t, "All systems operational", e.Description)
}

func TestStatusEmbedDetail(t *testing.T) {
	e := statusEmbed(project(start.Add(-time.Hour)), true)
	assert.Contains(t, e.Description, "**Upcoming Maintenance:** Patch 2.1")
	assert.Contains(t, e.Description, "Game back online in: **3 hours**")
	assert.Contains(t, e.Description, fmt.Sprintf("Start: <t:%d:f>", start.Unix()))
	assert.Equal(t, footerDetail, e.Footer.Text)

	e = statusEmbed(project(start.Add(90*time.Minute)), true)
	assert.Contains(t, e.Description, "**Patch 2.1**")
	assert.Contains(t, e.Description, "Game back online in: **30 minutes**")

	e = statusEmbed(project(end.Add(time.Minute)), true)
	assert.Equal(t, "Maintenance complete!", e.Description)

	e = statusEmbed(status.Project(models.DowntimeWindow{}, start, Style{}), true)
	assert.Equal(t, "💕 Server Status", e.Title)
	assert.Equal(t, "No maintenance scheduled.", e.Description)
	assert.Nil(t, e.Footer)
}

func TestBoardEmbed(t *testing.T) {
	cat, ok := events.LookupCategory("quest")
	require.True(t, ok)

	empty := boardEmbed(events.Board{Category: cat})
	assert.Contains(t, empty.Description, "No active or upcoming quests")

	cata, err := events.Parse([]byte(`
events:
  - name: Lantern Hunt
    category: quest
    start: 2026-02-10T00:00:00Z
    end: 2026-02-20T00:00:00Z
    rewards: [Diamonds, Card]
    link: https://wiki.example/lantern
  - name: Star Chase
    category: quest
    start: 2026-02-16T12:00:00Z
    end: 2026-03-01T00:00:00Z
`))
	require.NoError(t, err)
	board, err := cata.Board("quest", start)
	require.NoError(t, err)

	e := boardEmbed(board)
	assert.Equal(t, cat.Emoji+" "+cat.DisplayName, e.Title)
	assert.Equal(t, cat.Color, e.Color)
	parts := strings.Split(e.Description, "──────────────────────")
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "🟢 Active: Lantern Hunt")
	assert.Contains(t, parts[0], "**Rewards:** Diamonds, Card")
	assert.Contains(t, parts[0], "[Wiki Guide](https://wiki.example/lantern)")
	assert.Contains(t, parts[1], "🟡 Starting Soon: Star Chase")
	assert.Contains(t, parts[1], "Starts: ")
	assert.Contains(t, parts[1], "**Rewards:** N/A")

	overview := overviewEmbed([]events.Board{board})
	assert.Contains(t, overview.Description, "**"+cat.Emoji+" "+cat.DisplayName+"**")
	assert.Contains(t, overview.Description, "Lantern Hunt • Ends <t:")
	assert.Equal(t, msgNoEventsAll, overviewEmbed(nil).Description)
}

func TestPanelMessage(t *testing.T) {
	p := project(start.Add(-time.Hour))
	embeds, components := panelMessage(panels.Content{Status: &p})
	require.Len(t, embeds, 1)
	assert.Len(t, components, 1)

	cat, _ := events.LookupCategory("store")
	embeds, components = panelMessage(panels.Content{Events: &events.Board{Category: cat}})
	require.Len(t, embeds, 1)
	assert.Empty(t, components)

	embeds, _ = panelMessage(panels.Content{})
	assert.Nil(t, embeds)
}

func TestErrorReply(t *testing.T) {
	msg, ok := errorReply(fmt.Errorf("%w: %q", timeparse.ErrInvalidTimezone, "Mars"), "Mars")
	require.True(t, ok)
	assert.Contains(t, msg, "**Invalid timezone**")
	assert.Contains(t, msg, "**Your input:** `Mars`")

	msg, ok = errorReply(timeparse.ErrInvalidTimeFormat, "UTC", field{"Start", "soon"}, field{"End", "later"})
	require.True(t, ok)
	assert.Contains(t, msg, "• `4pm`")
	assert.Contains(t, msg, "Start: `soon`\nEnd: `later`")

	msg, ok = errorReply(&downtime.RangeError{Start: end, End: start}, "UTC")
	require.True(t, ok)
	assert.Contains(t, msg, fmt.Sprintf("Start: <t:%d:f>", end.Unix()))

	msg, ok = errorReply(downtime.ErrInvalidDuration, "", field{"New End", "+2x"})
	require.True(t, ok)
	assert.Contains(t, msg, "`+2x`")

	msg, ok = errorReply(downtime.ErrNoActiveWindow, "")
	require.True(t, ok)
	assert.Equal(t, msgNoActiveWindow, msg)

	_, ok = errorReply(fmt.Errorf("boom"), "")
	assert.False(t, ok)
}

func TestHasRole(t *testing.T) {
	assert.True(t, hasRole([]string{"member", "Downtime"}, "downtime"))
	assert.False(t, hasRole([]string{"member"}, "downtime"))
	assert.False(t, hasRole(nil, "downtime"))
}

func TestCommandsCoverModeratorSet(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range commands() {
		names[c.Name] = true
	}
	for name := range moderatorCommands {
		assert.True(t, names[name], name)
	}
	assert.True(t, names[cmdStatus])
	assert.True(t, names[cmdEvents])
}
