package events

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
events:
  - name: Bubble Season
    category: Quest
    start: 2026-03-01T10:00:00Z
    end: 2026-03-20T10:00:00Z
    rewards: [Diamonds x60]
  - name: Starry Banner
    category: resonance
    start: "2026-03-10T10:00:00Z"
    end: "2026-03-25T10:00:00Z"
  - name: Fishing Trial
    category: quest
    start: 2026-03-05T08:00:00Z
    end: 2026-03-06T08:00:00Z
  - name: Old Quest
    category: quest
    start: 2026-01-01T00:00:00Z
    end: 2026-01-10T00:00:00Z
`

func TestParseAndBoard(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, c.Events, 4)

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	b, err := c.Board("quest", now)
	require.NoError(t, err)
	assert.Equal(t, "Quests", b.Category.DisplayName)
	require.Len(t, b.Entries, 2)
	assert.Equal(t, "Bubble Season", b.Entries[0].Name)
	assert.Equal(t, StatusActive, b.Entries[0].Status)
	assert.Equal(t, "Fishing Trial", b.Entries[1].Name)
	assert.Equal(t, StatusStartingSoon, b.Entries[1].Status)

	b, err = c.Board("resonance", now)
	require.NoError(t, err)
	require.Len(t, b.Entries, 1)
	assert.Equal(t, StatusUpcoming, b.Entries[0].Status)

	b, err = c.Board("quest", time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, b.Entries, 1)
	assert.Equal(t, StatusEndingSoon, b.Entries[0].Status)
}

func TestBoardUnknownCategory(t *testing.T) {
	_, err := (&Catalogue{}).Board("raids", time.Now())
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseRejectsBadEvents(t *testing.T) {
	_, err := Parse([]byte("events:\n  - name: x\n    category: raids\n    start: 2026-01-01T00:00:00Z\n    end: 2026-01-02T00:00:00Z\n"))
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = Parse([]byte("events:\n  - name: x\n    category: web\n    start: tomorrow\n    end: 2026-01-02T00:00:00Z\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("events:\n  - name: x\n    category: web\n    start: 2026-01-02T00:00:00Z\n    end: 2026-01-01T00:00:00Z\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, c.Events)

	path := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	c, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Events, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
