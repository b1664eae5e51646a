package wizard

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"downtime-panel-bot/internal/downtime"
	"downtime-panel-bot/internal/timeparse"
)

type schedulerApplier struct {
	scheduler *downtime.Scheduler
	calls     int
}

func (a *schedulerApplier) SetDowntime(_ context.Context, guildID int64, start, end, tz, title string) (downtime.Applied, error) {
	a.calls++
	return a.scheduler.ApplyWindow(guildID, start, end, tz, title)
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func setup() (*Manager, *downtime.Store, *schedulerApplier, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	resolver := timeparse.NewResolver(nil)
	parser := timeparse.NewParser(timeparse.WithClock(c.Now))
	store := downtime.NewStore()
	applier := &schedulerApplier{scheduler: downtime.NewScheduler(store, resolver, parser)}
	m := New(Config{Resolver: resolver, Parser: parser, Applier: applier, StepTimeout: time.Minute, Now: c.Now})
	return m, store, applier, c
}

var key = Key{GuildID: 123456789, UserID: 42}

func TestWizardCompletes(t *testing.T) {
	m, store, applier, _ := setup()
	ctx := context.Background()

	assert.Equal(t, StepTimezone, m.Begin(key).Next)

	r, err := m.Answer(ctx, key, "EST")
	require.NoError(t, err)
	assert.Equal(t, StepStart, r.Next)

	r, err = m.Answer(ctx, key, "3/2 9pm")
	require.NoError(t, err)
	assert.Equal(t, StepEnd, r.Next)

	r, err = m.Answer(ctx, key, "3/2 11pm")
	require.NoError(t, err)
	assert.Equal(t, StepTitle, r.Next)
	assert.Equal(t, 0, applier.calls)
	assert.False(t, store.Get(key.GuildID).Active())

	r, err = m.Answer(ctx, key, "skip")
	require.NoError(t, err)
	assert.True(t, r.Done)
	assert.Equal(t, 1, applier.calls)
	assert.False(t, m.Active(key))

	w := store.Get(key.GuildID)
	require.True(t, w.Active())
	assert.Equal(t, time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC), w.StartTime())
	assert.Equal(t, "Scheduled Maintenance", *w.Title)
}

func TestWizardRejectsBadAnswerAndStaysOnStep(t *testing.T) {
	m, _, _, _ := setup()
	ctx := context.Background()
	m.Begin(key)

	r, err := m.Answer(ctx, key, "Mars/Olympus")
	assert.ErrorIs(t, err, timeparse.ErrInvalidTimezone)
	assert.Equal(t, StepTimezone, r.Next)

	_, err = m.Answer(ctx, key, "UTC")
	require.NoError(t, err)

	r, err = m.Answer(ctx, key, "tomorrow-ish")
	assert.ErrorIs(t, err, timeparse.ErrInvalidTimeFormat)
	assert.Equal(t, StepStart, r.Next)
	assert.True(t, m.Active(key))
}

func TestWizardCancelWritesNothing(t *testing.T) {
	m, store, applier, _ := setup()
	ctx := context.Background()
	m.Begin(key)
	_, err := m.Answer(ctx, key, "UTC")
	require.NoError(t, err)

	r, err := m.Answer(ctx, key, "Cancel")
	require.NoError(t, err)
	assert.True(t, r.Cancelled)
	assert.Equal(t, 0, applier.calls)
	assert.False(t, store.Get(key.GuildID).Active())

	_, err = m.Answer(ctx, key, "10:00")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestWizardTimeoutWritesNothing(t *testing.T) {
	m, store, applier, c := setup()
	ctx := context.Background()
	m.Begin(key)
	_, err := m.Answer(ctx, key, "UTC")
	require.NoError(t, err)

	c.t = c.t.Add(59 * time.Second)
	_, err = m.Answer(ctx, key, "10:00")
	require.NoError(t, err)

	c.t = c.t.Add(61 * time.Second)
	_, err = m.Answer(ctx, key, "11:00")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, applier.calls)
	assert.False(t, store.Get(key.GuildID).Active())
}

func TestWizardExpire(t *testing.T) {
	m, _, _, c := setup()
	other := Key{GuildID: key.GuildID, UserID: 7}
	m.Begin(key)
	c.t = c.t.Add(30 * time.Second)
	m.Begin(other)

	c.t = c.t.Add(45 * time.Second)
	assert.Equal(t, []Key{key}, m.Expire())
	assert.False(t, m.Active(key))
	assert.True(t, m.Active(other))
}

func TestWizardRangeErrorReturnsToEnd(t *testing.T) {
	m, store, _, _ := setup()
	ctx := context.Background()
	m.Begin(key)
	for _, answer := range []string{"UTC", "3/5 10:00", "3/4 10:00"} {
		_, err := m.Answer(ctx, key, answer)
		require.NoError(t, err)
	}

	r, err := m.Answer(ctx, key, "Patch")
	assert.ErrorIs(t, err, downtime.ErrInvalidRange)
	assert.Equal(t, StepEnd, r.Next)
	assert.False(t, store.Get(key.GuildID).Active())

	_, err = m.Answer(ctx, key, "3/5 12:00")
	require.NoError(t, err)
	r, err = m.Answer(ctx, key, "Patch")
	require.NoError(t, err)
	assert.True(t, r.Done)
	assert.Equal(t, "Patch", *store.Get(key.GuildID).Title)
}
