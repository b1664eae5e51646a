package downtime

import (
	"maps"

	"downtime-panel-bot/internal/models"
)

// Store holds the current maintenance window of every guild.
// It is not safe for concurrent use; callers serialise access.
type Store struct {
	windows map[int64]models.DowntimeWindow
}

func NewStore() *Store {
	return &Store{windows: make(map[int64]models.DowntimeWindow)}
}

// Get returns the guild's window, creating an empty one on first access.
func (s *Store) Get(guildID int64) models.DowntimeWindow {
	w, ok := s.windows[guildID]
	if !ok {
		s.windows[guildID] = w
	}
	return w
}

// Set replaces the guild's window.
func (s *Store) Set(guildID int64, w models.DowntimeWindow) {
	s.windows[guildID] = w
}

// Clear resets the guild's window to empty.
func (s *Store) Clear(guildID int64) {
	s.windows[guildID] = models.DowntimeWindow{}
}

// Snapshot copies all windows for persistence.
func (s *Store) Snapshot() map[int64]models.DowntimeWindow {
	return maps.Clone(s.windows)
}

// Restore replaces the store content with loaded windows.
func (s *Store) Restore(windows map[int64]models.DowntimeWindow) {
	s.windows = make(map[int64]models.DowntimeWindow, len(windows))
	maps.Copy(s.windows, windows)
}
