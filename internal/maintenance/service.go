// Package maintenance is the single entry point for every state change.
// Each operation holds one lock from mutation through persistence,
// notification and panel synchronization.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/metrics"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/status"
	"downtime-panel-bot/internal/storage"
)

// DefaultOpTimeout bounds the persistence and panel I/O of one operation.
// It starts once the operation holds the lock.
const DefaultOpTimeout = 30 * time.Second

// Change actions.
const (
	ActionSet    = "set"
	ActionExtend = "extend"
	ActionClear  = "clear"
)

// Change describes one applied downtime mutation.
type Change struct {
	GuildID int64
	Action  string
	Window  models.DowntimeWindow
	At      time.Time
}

// Notifier announces applied changes to other processes.
type Notifier interface {
	DowntimeChanged(ctx context.Context, c Change) error
}

type Config struct {
	Scheduler *downtime.Scheduler
	Store     *downtime.Store
	Persister storage.Persister
	Catalogue *events.Catalogue // nil disables event panels
	Notifier  Notifier          // nil disables notifications
	OpTimeout time.Duration     // zero means DefaultOpTimeout
	Now       func() time.Time
	Log       *zap.Logger
}

type Service struct {
	mu        sync.Mutex
	scheduler *downtime.Scheduler
	store     *downtime.Store
	registry  *panels.Registry
	sync      *panels.Synchronizer
	persister storage.Persister
	catalogue *events.Catalogue
	notifier  Notifier
	opTimeout time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func New(cfg Config) *Service {
	s := &Service{
		scheduler: cfg.Scheduler,
		store:     cfg.Store,
		registry:  panels.NewRegistry(),
		persister: cfg.Persister,
		catalogue: cfg.Catalogue,
		notifier:  cfg.Notifier,
		opTimeout: cfg.OpTimeout,
		now:       cfg.Now,
		log:       cfg.Log,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.opTimeout <= 0 {
		s.opTimeout = DefaultOpTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	sc := panels.Config{
		Registry: s.registry,
		Windows:  s.scheduler,
		Persist:  s.persist,
		Now:      s.now,
		Log:      s.log.Named("sync"),
	}
	if s.catalogue != nil {
		sc.Boards = s.catalogue
	}
	s.sync = panels.NewSynchronizer(sc)
	return s
}

// AddSurface connects a platform's panels.
func (s *Service) AddSurface(platform string, surface panels.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sync.AddSurface(platform, surface)
}

// Load replaces the in-memory state with the persisted one.
func (s *Service) Load(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Restore(snap.Downtime)
	s.registry.Restore(snap.Panels, snap.EventPanels)
	s.log.Info("state loaded",
		zap.Int("guilds", len(snap.Downtime)),
		zap.Int("panels", len(snap.Panels)),
		zap.Int("event_panels", len(snap.EventPanels)))
	return nil
}

// Snapshot copies the current state.
func (s *Service) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// SetDowntime schedules the guild's window, persists it and refreshes the
// guild's panels.
func (s *Service) SetDowntime(ctx context.Context, guildID int64, startRaw, endRaw, tzRaw, title string) (downtime.Applied, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied, err := s.scheduler.ApplyWindow(guildID, startRaw, endRaw, tzRaw, title)
	if err != nil {
		return downtime.Applied{}, err
	}
	s.log.Info("downtime set",
		zap.Int64("guild", guildID),
		zap.Time("start", applied.Start),
		zap.Time("end", applied.End),
		zap.String("zone", applied.Zone.Name),
		zap.Bool("rolled_over", applied.RolledOver))
	s.commit(ctx, guildID, ActionSet, applied.Window)
	return applied, nil
}

// ExtendDowntime moves the end of the guild's active window.
func (s *Service) ExtendDowntime(ctx context.Context, guildID int64, newEndRaw, tzRaw string) (downtime.Extended, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ext, err := s.scheduler.ExtendWindow(guildID, newEndRaw, tzRaw)
	if err != nil {
		return downtime.Extended{}, err
	}
	s.log.Info("downtime extended",
		zap.Int64("guild", guildID),
		zap.Time("previous_end", ext.PreviousEnd),
		zap.Time("end", ext.End),
		zap.Duration("added", ext.Added))
	s.commit(ctx, guildID, ActionExtend, ext.Window)
	return ext, nil
}

// ClearDowntime removes the guild's window.
func (s *Service) ClearDowntime(ctx context.Context, guildID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.ClearWindow(guildID)
	s.log.Info("downtime cleared", zap.Int64("guild", guildID))
	s.commit(ctx, guildID, ActionClear, models.DowntimeWindow{})
}

// commit runs the steps that follow every mutation, in order.
func (s *Service) commit(ctx context.Context, guildID int64, action string, w models.DowntimeWindow) {
	ctx, cancel := s.detach(ctx)
	defer cancel()

	metrics.Mutations.WithLabelValues(action).Inc()
	_ = s.persist(ctx)

	if s.notifier != nil {
		c := Change{GuildID: guildID, Action: action, Window: w, At: s.now()}
		if err := s.notifier.DowntimeChanged(ctx, c); err != nil {
			s.log.Warn("change notification failed", zap.Int64("guild", guildID), zap.Error(err))
		}
	}
	s.sync.Synchronize(ctx, guildID)
}

// Status projects the guild's window at the current instant.
func (s *Service) Status(guildID int64, style status.Style) status.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return status.Project(s.scheduler.Window(guildID), s.now(), style)
}

// Board returns the current event board of a category.
func (s *Service) Board(category string) (events.Board, error) {
	if s.catalogue == nil {
		return events.Board{}, fmt.Errorf("%w %q", events.ErrUnknownCategory, category)
	}
	return s.catalogue.Board(category, s.now())
}

// Boards returns the boards of every category that has events left.
func (s *Service) Boards() []events.Board {
	if s.catalogue == nil {
		return nil
	}
	var boards []events.Board
	now := s.now()
	for _, c := range events.Categories() {
		b, err := s.catalogue.Board(c.Tag, now)
		if err == nil && len(b.Entries) > 0 {
			boards = append(boards, b)
		}
	}
	return boards
}

// RegisterPanel records a posted status panel and persists it.
func (s *Service) RegisterPanel(ctx context.Context, rec models.PanelRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Register(rec)
	s.log.Info("panel registered",
		zap.String("platform", rec.PlatformOrDefault()),
		zap.Int64("guild", rec.GuildID),
		zap.Int64("channel", rec.ChannelID),
		zap.Int64("message", rec.MessageID))
	ctx, cancel := s.detach(ctx)
	defer cancel()
	_ = s.persist(ctx)
}

// RegisterEventPanel records a posted event board and persists it.
func (s *Service) RegisterEventPanel(ctx context.Context, rec models.EventPanelRecord) error {
	cat, ok := events.LookupCategory(rec.EventCategory)
	if !ok {
		return fmt.Errorf("%w %q", events.ErrUnknownCategory, rec.EventCategory)
	}
	rec.EventCategory = cat.Tag

	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.RegisterEvent(rec)
	s.log.Info("event panel registered",
		zap.String("category", rec.EventCategory),
		zap.Int64("guild", rec.GuildID),
		zap.Int64("message", rec.MessageID))
	ctx, cancel := s.detach(ctx)
	defer cancel()
	_ = s.persist(ctx)
	return nil
}

// PanelCount returns how many panels a guild has, or all guilds for
// panels.AllGuilds.
func (s *Service) PanelCount(guildID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Count(guildID)
}

// Refresh re-renders the status panels of a guild, or of panels.AllGuilds.
func (s *Service) Refresh(ctx context.Context, guildID int64) panels.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.detach(ctx)
	defer cancel()
	return s.sync.Synchronize(ctx, guildID)
}

// RefreshEvents re-renders the event panels of a guild, or of panels.AllGuilds.
func (s *Service) RefreshEvents(ctx context.Context, guildID int64) panels.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := s.detach(ctx)
	defer cancel()
	return s.sync.SynchronizeEvents(ctx, guildID)
}

// StartRefresher refreshes every panel once, then on each interval tick,
// until ctx is done. It blocks. A non-positive interval refreshes once.
func (s *Service) StartRefresher(ctx context.Context, interval time.Duration) {
	s.refreshAll(ctx)
	if interval <= 0 {
		return
	}
	s.log.Info("refresher started", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("refresher stopped")
			return
		case <-ticker.C:
			s.refreshAll(ctx)
		}
	}
}

// refreshAll keeps the refresher's ctx so shutdown interrupts the pass.
func (s *Service) refreshAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sync.Synchronize(ctx, panels.AllGuilds)
	ev := s.sync.SynchronizeEvents(ctx, panels.AllGuilds)
	s.log.Debug("panels refreshed",
		zap.Int("status_refreshed", st.Refreshed), zap.Int("status_pruned", st.Pruned),
		zap.Int("events_refreshed", ev.Refreshed), zap.Int("events_pruned", ev.Pruned))
}

// detach drops the caller's deadline, which may have run down while waiting
// for the lock, and starts the operation's own.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
}

// persist writes the state. Failures are logged and counted; the caller
// keeps serving from memory.
func (s *Service) persist(ctx context.Context) error {
	if err := s.persister.Save(ctx, s.snapshot()); err != nil {
		metrics.PersistenceFailures.Inc()
		s.log.Error("persist state failed", zap.Error(err))
		return fmt.Errorf("%w: %v", storage.ErrPersistence, err)
	}
	return nil
}

func (s *Service) snapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.Downtime = s.store.Snapshot()
	snap.Panels = s.registry.Panels()
	snap.EventPanels = s.registry.EventPanels()
	return snap
}
