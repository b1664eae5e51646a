package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"downtime-panel-bot/internal/models"
)

// Codec converts snapshots to and from the JSON state document, accepting
// the older single-guild layouts on decode.
type Codec struct {
	LegacyGuildID int64
	Log           *zap.Logger
}

type rawState struct {
	Downtime    json.RawMessage   `json:"downtime"`
	Panels      []json.RawMessage `json:"panels"`
	EventPanels []json.RawMessage `json:"event_panels"`

	// Single-guild layout kept the window at the top level.
	Start *int64  `json:"start"`
	End   *int64  `json:"end"`
	Title *string `json:"title"`
}

type rawPanel struct {
	GuildID       *int64 `json:"guild_id"`
	ChannelID     *int64 `json:"channel_id"`
	MessageID     *int64 `json:"message_id"`
	Platform      string `json:"platform"`
	EventCategory string `json:"event_category"`
	EventType     string `json:"event_type"`
}

// Encode renders the state document.
func (c Codec) Encode(snap *models.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a state document. Malformed entries are skipped.
func (c Codec) Decode(data []byte) (*models.Snapshot, error) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	snap := models.NewSnapshot()

	if windows, ok := c.decodeWindows(raw.Downtime); ok {
		snap.Downtime = windows
	} else if raw.Start != nil || raw.End != nil || raw.Title != nil {
		if c.LegacyGuildID != 0 {
			snap.Downtime[c.LegacyGuildID] = models.DowntimeWindow{Start: raw.Start, End: raw.End, Title: raw.Title}
			c.log().Info("migrated single-guild downtime", zap.Int64("guild", c.LegacyGuildID))
		} else {
			c.log().Warn("legacy downtime data ignored: no single guild target found")
		}
	}

	for _, item := range raw.Panels {
		if rec, ok := c.decodePanel(item); ok {
			snap.Panels = append(snap.Panels, rec.PanelRecord)
		}
	}
	for _, item := range raw.EventPanels {
		if rec, ok := c.decodePanel(item); ok {
			snap.EventPanels = append(snap.EventPanels, rec)
		}
	}
	return snap, nil
}

func (c Codec) decodeWindows(data json.RawMessage) (map[int64]models.DowntimeWindow, bool) {
	var entries map[string]json.RawMessage
	if len(data) == 0 || json.Unmarshal(data, &entries) != nil || entries == nil {
		return nil, false
	}
	windows := make(map[int64]models.DowntimeWindow, len(entries))
	for key, value := range entries {
		guildID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		var w models.DowntimeWindow
		if err := json.Unmarshal(value, &w); err != nil {
			continue
		}
		windows[guildID] = w
	}
	return windows, true
}

func (c Codec) decodePanel(data json.RawMessage) (models.EventPanelRecord, bool) {
	var p rawPanel
	if err := json.Unmarshal(data, &p); err != nil || p.ChannelID == nil || p.MessageID == nil {
		return models.EventPanelRecord{}, false
	}
	rec := models.EventPanelRecord{
		PanelRecord: models.PanelRecord{
			ChannelID: *p.ChannelID,
			MessageID: *p.MessageID,
			Platform:  p.Platform,
		},
		EventCategory: p.EventCategory,
	}
	if rec.EventCategory == "" {
		rec.EventCategory = p.EventType
	}
	switch {
	case p.GuildID != nil:
		rec.GuildID = *p.GuildID
	case c.LegacyGuildID != 0:
		rec.GuildID = c.LegacyGuildID
	default:
		c.log().Warn("legacy panel ignored: no single guild target found",
			zap.Int64("channel", rec.ChannelID), zap.Int64("message", rec.MessageID))
		return models.EventPanelRecord{}, false
	}
	return rec, true
}

func (c Codec) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}
