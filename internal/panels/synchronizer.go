package panels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/metrics"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/status"
)

// WindowSource returns the current window of a guild.
type WindowSource interface {
	Window(guildID int64) models.DowntimeWindow
}

// BoardSource renders the event board of a category.
type BoardSource interface {
	Board(category string, now time.Time) (events.Board, error)
}

// PersistFunc writes the current state.
type PersistFunc func(ctx context.Context) error

// Report summarises one synchronization pass.
type Report struct {
	Refreshed   int
	Pruned      int
	Skipped     int
	Interrupted bool // ctx ended mid-pass; nothing was pruned
	PersistErr  error
}

// Synchronizer re-renders registered panels and prunes the ones that no
// longer resolve.
type Synchronizer struct {
	registry *Registry
	surfaces map[string]Surface
	windows  WindowSource
	boards   BoardSource
	persist  PersistFunc
	now      func() time.Time
	log      *zap.Logger
}

// Config wires a Synchronizer.
type Config struct {
	Registry *Registry
	Windows  WindowSource
	Boards   BoardSource
	Persist  PersistFunc
	Now      func() time.Time
	Log      *zap.Logger
}

func NewSynchronizer(cfg Config) *Synchronizer {
	s := &Synchronizer{
		registry: cfg.Registry,
		surfaces: make(map[string]Surface),
		windows:  cfg.Windows,
		boards:   cfg.Boards,
		persist:  cfg.Persist,
		now:      cfg.Now,
		log:      cfg.Log,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.persist == nil {
		s.persist = func(context.Context) error { return nil }
	}
	return s
}

// AddSurface connects a platform. Panels of platforms without a surface are
// skipped, not pruned.
func (s *Synchronizer) AddSurface(platform string, surface Surface) {
	s.surfaces[platform] = surface
}

// Surface returns the connected surface for platform.
func (s *Synchronizer) Surface(platform string) (Surface, bool) {
	sf, ok := s.surfaces[platform]
	return sf, ok
}

// Synchronize refreshes every status panel of guildID, or of all guilds.
func (s *Synchronizer) Synchronize(ctx context.Context, guildID int64) Report {
	defer observe(metrics.KindStatus, time.Now())
	now := s.now()
	records := s.registry.panels

	stale, report := s.pass(ctx, metrics.KindStatus, len(records), func(i int) (models.PanelRecord, bool) {
		return records[i], inScope(records[i].GuildID, guildID)
	}, func(i int, style status.Style) (Content, error) {
		p := status.Project(s.windows.Window(records[i].GuildID), now, style)
		return Content{Status: &p}, nil
	})

	if len(stale) > 0 {
		s.registry.removePanels(stale)
		report.PersistErr = s.flush(ctx, metrics.KindStatus, len(stale))
	}
	return report
}

// SynchronizeEvents refreshes every event panel of guildID, or of all guilds.
func (s *Synchronizer) SynchronizeEvents(ctx context.Context, guildID int64) Report {
	defer observe(metrics.KindEvents, time.Now())
	now := s.now()
	records := s.registry.events

	stale, report := s.pass(ctx, metrics.KindEvents, len(records), func(i int) (models.PanelRecord, bool) {
		return records[i].PanelRecord, inScope(records[i].GuildID, guildID)
	}, func(i int, _ status.Style) (Content, error) {
		if s.boards == nil {
			return Content{}, fmt.Errorf("no event catalogue")
		}
		b, err := s.boards.Board(records[i].EventCategory, now)
		if err != nil {
			return Content{}, err
		}
		return Content{Events: &b}, nil
	})

	if len(stale) > 0 {
		s.registry.removeEvents(stale)
		report.PersistErr = s.flush(ctx, metrics.KindEvents, len(stale))
	}
	return report
}

// pass visits n records and returns the indexes of stale ones. A panel only
// becomes stale on an answer from the platform: timeouts and cancellation
// never prune, and a pass whose ctx ends returns no stale records at all.
func (s *Synchronizer) pass(
	ctx context.Context,
	kind string,
	n int,
	record func(i int) (models.PanelRecord, bool),
	render func(i int, style status.Style) (Content, error),
) (map[int]bool, Report) {
	stale := make(map[int]bool)
	var report Report

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		rec, ok := record(i)
		if !ok {
			continue
		}
		surface, ok := s.surfaces[rec.PlatformOrDefault()]
		if !ok {
			report.Skipped++
			continue
		}
		content, err := render(i, surface.Style())
		if err != nil {
			s.log.Warn("panel render failed",
				zap.String("kind", kind), zap.Int64("guild", rec.GuildID),
				zap.Int64("message", rec.MessageID), zap.Error(err))
			report.Skipped++
			continue
		}
		if err := refresh(ctx, surface, rec, content); err != nil {
			if ctx.Err() != nil {
				report.Interrupted = true
				break
			}
			if isTimeout(err) {
				s.log.Warn("panel refresh timed out",
					zap.String("kind", kind), zap.Int64("guild", rec.GuildID),
					zap.Int64("message", rec.MessageID), zap.Error(err))
				report.Skipped++
				continue
			}
			s.log.Info("panel stale",
				zap.String("kind", kind), zap.Int64("guild", rec.GuildID),
				zap.Int64("channel", rec.ChannelID), zap.Int64("message", rec.MessageID), zap.Error(err))
			stale[i] = true
			continue
		}
		report.Refreshed++
	}

	if report.Interrupted {
		s.log.Warn("panel pass interrupted, pruning deferred",
			zap.String("kind", kind), zap.Int("stale", len(stale)), zap.Error(ctx.Err()))
		stale = map[int]bool{}
	}
	report.Pruned = len(stale)
	metrics.PanelsRefreshed.WithLabelValues(kind).Add(float64(report.Refreshed))
	metrics.PanelsPruned.WithLabelValues(kind).Add(float64(report.Pruned))
	metrics.PanelsSkipped.WithLabelValues(kind).Add(float64(report.Skipped))
	return stale, report
}

func refresh(ctx context.Context, surface Surface, rec models.PanelRecord, content Content) error {
	ch, err := surface.ResolveChannel(ctx, rec.ChannelID)
	if err != nil {
		return fmt.Errorf("%w: resolve channel: %w", ErrPanelUnreachable, err)
	}
	msg, err := ch.FetchMessage(ctx, rec.MessageID)
	if err != nil {
		return fmt.Errorf("%w: fetch message: %w", ErrPanelUnreachable, err)
	}
	if err := msg.Edit(ctx, content); err != nil {
		return fmt.Errorf("%w: edit message: %w", ErrPanelUnreachable, err)
	}
	return nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func (s *Synchronizer) flush(ctx context.Context, kind string, pruned int) error {
	s.log.Info("pruned stale panels", zap.String("kind", kind), zap.Int("count", pruned))
	return s.persist(ctx)
}

func observe(kind string, started time.Time) {
	metrics.SyncDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}
