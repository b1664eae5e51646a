package maintenance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/events"
	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/panels"
	"downtime-panel-bot/internal/panels/mock"
	"downtime-panel-bot/internal/status"
	"downtime-panel-bot/internal/timeparse"
)

const guild = int64(555555555)

// memoryPersister keeps the last saved snapshot and records call order.
type memoryPersister struct {
	mu      sync.Mutex
	saved   *models.Snapshot
	saves   int
	saveErr error
	trace   *[]string
}

func (p *memoryPersister) Load(context.Context) (*models.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saved == nil {
		return models.NewSnapshot(), nil
	}
	return p.saved, nil
}

func (p *memoryPersister) Save(_ context.Context, snap *models.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trace != nil {
		*p.trace = append(*p.trace, "save")
	}
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.saved = snap
	return nil
}

func (p *memoryPersister) Close() error { return nil }

type recordingNotifier struct{ changes []Change }

func (n *recordingNotifier) DowntimeChanged(_ context.Context, c Change) error {
	n.changes = append(n.changes, c)
	return nil
}

type fixture struct {
	svc       *Service
	persister *memoryPersister
	surface   *mock.Surface
	notifier  *recordingNotifier
	trace     []string
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{notifier: &recordingNotifier{}}
	f.persister = &memoryPersister{trace: &f.trace}
	f.surface = mock.NewSurface()
	f.surface.OnEdit = func(_, _ int64) { f.trace = append(f.trace, "edit") }

	clock := func() time.Time { return now }
	resolver := timeparse.NewResolver(nil)
	parser := timeparse.NewParser(timeparse.WithClock(clock))
	store := downtime.NewStore()
	f.svc = New(Config{
		Scheduler: downtime.NewScheduler(store, resolver, parser),
		Store:     store,
		Persister: f.persister,
		Catalogue: &events.Catalogue{},
		Notifier:  f.notifier,
		Now:       clock,
		Log:       zap.NewNop(),
	})
	f.svc.AddSurface(models.PlatformDiscord, f.surface)
	return f
}

func (f *fixture) postPanel(channelID, messageID int64) *mock.Message {
	msg := f.surface.AddMessage(channelID, messageID)
	f.svc.RegisterPanel(context.Background(), models.PanelRecord{GuildID: guild, ChannelID: channelID, MessageID: messageID})
	return msg
}

func TestSetDowntimePersistsBeforeEditing(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	msg := f.postPanel(10, 100)
	f.trace = nil

	_, err := f.svc.SetDowntime(context.Background(), guild, "2026-02-15 21:00", "2026-02-15 23:00", "UTC", "Patch")
	require.NoError(t, err)

	assert.Equal(t, []string{"save", "edit"}, f.trace)
	require.NotNil(t, msg.Last().Status)
	assert.Equal(t, status.Upcoming, msg.Last().Status.State)

	require.Len(t, f.notifier.changes, 1)
	assert.Equal(t, ActionSet, f.notifier.changes[0].Action)
	assert.Equal(t, guild, f.notifier.changes[0].GuildID)

	saved := f.persister.saved.Downtime[guild]
	require.True(t, saved.Active())
	assert.Equal(t, "Patch", *saved.Title)
}

func TestInvalidInputWritesNothing(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	saves := f.persister.saves

	_, err := f.svc.SetDowntime(context.Background(), guild, "2026-02-15 23:00", "2026-02-15 21:00", "UTC", "")
	assert.ErrorIs(t, err, downtime.ErrInvalidRange)
	assert.Equal(t, saves, f.persister.saves)
	assert.Empty(t, f.notifier.changes)
	assert.Equal(t, status.NoSchedule, f.svc.Status(guild, nil).State)
}

func TestPersistenceFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	msg := f.postPanel(10, 100)
	f.persister.saveErr = errors.New("disk full")

	_, err := f.svc.SetDowntime(context.Background(), guild, "2026-02-15 21:00", "2026-02-15 23:00", "UTC", "")
	require.NoError(t, err)
	assert.Equal(t, status.Upcoming, f.svc.Status(guild, nil).State)
	assert.Equal(t, status.Upcoming, msg.Last().Status.State)
}

func TestExtendAndClear(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 15, 22, 0, 0, 0, time.UTC))
	ctx := context.Background()
	msg := f.postPanel(10, 100)

	_, err := f.svc.ExtendDowntime(ctx, guild, "+1h", "")
	assert.ErrorIs(t, err, downtime.ErrNoActiveWindow)

	_, err = f.svc.SetDowntime(ctx, guild, "2026-02-15 21:00", "2026-02-15 23:00", "UTC", "")
	require.NoError(t, err)
	assert.Equal(t, status.InMaintenance, msg.Last().Status.State)

	ext, err := f.svc.ExtendDowntime(ctx, guild, "+1h30m", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 16, 0, 30, 0, 0, time.UTC), ext.End)
	assert.Equal(t, time.Date(2026, 2, 15, 23, 0, 0, 0, time.UTC), ext.PreviousEnd)

	f.svc.ClearDowntime(ctx, guild)
	assert.Equal(t, status.NoSchedule, msg.Last().Status.State)

	actions := make([]string, 0, len(f.notifier.changes))
	for _, c := range f.notifier.changes {
		actions = append(actions, c.Action)
	}
	assert.Equal(t, []string{ActionSet, ActionExtend, ActionClear}, actions)
}

func TestMutationOnlyTouchesOwnGuild(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	mine := f.postPanel(10, 100)
	other := f.surface.AddMessage(20, 200)
	f.svc.RegisterPanel(ctx, models.PanelRecord{GuildID: 777777, ChannelID: 20, MessageID: 200})

	_, err := f.svc.SetDowntime(ctx, guild, "2026-02-15 21:00", "2026-02-15 23:00", "UTC", "")
	require.NoError(t, err)
	assert.Len(t, mine.Edits, 1)
	assert.Empty(t, other.Edits)

	report := f.svc.Refresh(ctx, panels.AllGuilds)
	assert.Equal(t, 2, report.Refreshed)
}

func TestLoadRestoresState(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()
	f.postPanel(10, 100)
	_, err := f.svc.SetDowntime(ctx, guild, "2026-02-15 21:00", "2026-02-15 23:00", "UTC", "")
	require.NoError(t, err)

	g := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	g.persister.saved = f.persister.saved
	require.NoError(t, g.svc.Load(ctx))
	assert.Equal(t, 1, g.svc.PanelCount(guild))
	assert.Equal(t, status.Upcoming, g.svc.Status(guild, nil).State)
}

func TestRegisterEventPanelRejectsUnknownCategory(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	err := f.svc.RegisterEventPanel(context.Background(), models.EventPanelRecord{
		PanelRecord:   models.PanelRecord{GuildID: guild, ChannelID: 1, MessageID: 2},
		EventCategory: "raid",
	})
	assert.ErrorIs(t, err, events.ErrUnknownCategory)
	assert.Zero(t, f.svc.PanelCount(guild))

	err = f.svc.RegisterEventPanel(context.Background(), models.EventPanelRecord{
		PanelRecord:   models.PanelRecord{GuildID: guild, ChannelID: 1, MessageID: 2},
		EventCategory: "Quest",
	})
	require.NoError(t, err)
	assert.Equal(t, "quest", f.svc.Snapshot().EventPanels[0].EventCategory)
}

func TestStartRefresherStopsOnCancel(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	msg := f.postPanel(10, 100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.svc.StartRefresher(ctx, time.Hour)
		close(done)
	}()
	require.Eventually(t, func() bool { return msg.Last().Status != nil }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestMutationOutlivesCallerDeadline(t *testing.T) {
	f := newFixture(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	msg := f.postPanel(10, 100)

	// The caller's budget ran out while the command waited for the lock.
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.svc.SetDowntime(ctx, guild, "2026-02-15 21:00", "2026-02-15 23:00", "UTC", "Patch")
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.PanelCount(guild))
	require.NotNil(t, msg.Last().Status)
	assert.Equal(t, status.Upcoming, msg.Last().Status.State)
	require.NotNil(t, f.persister.saved)
	assert.Len(t, f.persister.saved.Panels, 1)
}
