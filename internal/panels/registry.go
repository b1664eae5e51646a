package panels

import (
	"downtime-panel-bot/internal/models"
)

// AllGuilds selects every guild in a synchronization scope.
const AllGuilds int64 = 0

// Registry is the list of posted panels. It is not safe for concurrent
// use; callers serialise access.
type Registry struct {
	panels []models.PanelRecord
	events []models.EventPanelRecord
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a status panel.
func (r *Registry) Register(rec models.PanelRecord) {
	r.panels = append(r.panels, rec)
}

// RegisterEvent appends an event panel.
func (r *Registry) RegisterEvent(rec models.EventPanelRecord) {
	r.events = append(r.events, rec)
}

// Panels returns a copy of the status panels.
func (r *Registry) Panels() []models.PanelRecord {
	return append([]models.PanelRecord{}, r.panels...)
}

// EventPanels returns a copy of the event panels.
func (r *Registry) EventPanels() []models.EventPanelRecord {
	return append([]models.EventPanelRecord{}, r.events...)
}

// Restore replaces the registry content with loaded records.
func (r *Registry) Restore(panels []models.PanelRecord, events []models.EventPanelRecord) {
	r.panels = append([]models.PanelRecord{}, panels...)
	r.events = append([]models.EventPanelRecord{}, events...)
}

// Count returns how many panels of both kinds a guild has.
func (r *Registry) Count(guildID int64) int {
	n := 0
	for _, p := range r.panels {
		if inScope(p.GuildID, guildID) {
			n++
		}
	}
	for _, p := range r.events {
		if inScope(p.GuildID, guildID) {
			n++
		}
	}
	return n
}

func (r *Registry) removePanels(stale map[int]bool) {
	r.panels = without(r.panels, stale)
}

func (r *Registry) removeEvents(stale map[int]bool) {
	r.events = without(r.events, stale)
}

func without[T any](items []T, drop map[int]bool) []T {
	kept := make([]T, 0, len(items)-len(drop))
	for i, item := range items {
		if !drop[i] {
			kept = append(kept, item)
		}
	}
	return kept
}

func inScope(recordGuild, scope int64) bool {
	return scope == AllGuilds || recordGuild == scope
}
