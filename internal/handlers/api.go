package handlers

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/status"
)

// Service is the read side of the maintenance service.
type Service interface {
	Status(guildID int64, style status.Style) status.Projection
	Boards() []events.Board
}

type Handlers struct {
	Svc Service
	Log *zap.Logger

	// In-memory response cache for /api/events.
	eventsCache   []byte
	eventsCacheAt time.Time
	eventsCacheMu sync.RWMutex
}

const (
	// EventsCacheTTL is how long to cache the event board response.
	EventsCacheTTL = 15 * time.Second
	// EventsCacheMaxAgeSec is the Cache-Control max-age header value.
	EventsCacheMaxAgeSec = 15
)

// Register mounts every route on app.
func (h *Handlers) Register(app *fiber.App) {
	app.Get("/healthz", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")
	api.Get("/guilds/:guild/status", h.GetStatus)
	api.Get("/events", h.GetEvents)
}

// Health handles GET /healthz.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetStatus returns the projection of one guild's window.
func (h *Handlers) GetStatus(c *fiber.Ctx) error {
	guildID, err := strconv.ParseInt(c.Params("guild"), 10, 64)
	if err != nil || guildID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid guild id"})
	}

	p := h.Svc.Status(guildID, status.PlainStyle{})
	resp := fiber.Map{
		"guild_id": guildID,
		"state":    p.State.String(),
		"heading":  p.Heading,
		"summary":  p.Short,
		"detail":   p.Detail,
	}
	if p.State != status.NoSchedule {
		resp["title"] = p.Title
		resp["start"] = p.Start.Unix()
		resp["end"] = p.End.Unix()
	}
	if p.Remaining > 0 {
		resp["remaining_sec"] = int64(p.Remaining / time.Second)
		resp["remaining"] = status.FormatRemaining(p.Remaining)
	}
	return c.JSON(resp)
}

// GetEvents returns every non-empty event board. The response is cached
// server-side because boards only change as time passes.
func (h *Handlers) GetEvents(c *fiber.Ctx) error {
	h.eventsCacheMu.RLock()
	if h.eventsCache != nil && time.Since(h.eventsCacheAt) < EventsCacheTTL {
		data := h.eventsCache
		h.eventsCacheMu.RUnlock()
		return sendCached(c, data)
	}
	h.eventsCacheMu.RUnlock()

	h.eventsCacheMu.Lock()
	defer h.eventsCacheMu.Unlock()

	// Double-check after acquiring write lock.
	if h.eventsCache != nil && time.Since(h.eventsCacheAt) < EventsCacheTTL {
		return sendCached(c, h.eventsCache)
	}

	boards := h.Svc.Boards()
	result := make([]fiber.Map, 0, len(boards))
	for _, b := range boards {
		entries := make([]fiber.Map, 0, len(b.Entries))
		for _, e := range b.Entries {
			entries = append(entries, fiber.Map{
				"name":    e.Name,
				"status":  e.Status,
				"start":   e.StartTime().Unix(),
				"end":     e.EndTime().Unix(),
				"rewards": e.Rewards,
				"link":    e.Link,
			})
		}
		result = append(result, fiber.Map{
			"category": b.Category.Tag,
			"name":     b.Category.DisplayName,
			"events":   entries,
		})
	}

	data, err := json.Marshal(result)
	if err != nil {
		h.Log.Error("marshal events", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "marshal error"})
	}

	h.eventsCache = data
	h.eventsCacheAt = time.Now()
	return sendCached(c, data)
}

func sendCached(c *fiber.Ctx, data []byte) error {
	c.Set("Content-Type", "application/json")
	c.Set("Cache-Control", "public, max-age="+strconv.Itoa(EventsCacheMaxAgeSec))
	return c.Send(data)
}
