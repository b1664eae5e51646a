package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"downtime-panel-bot/internal/models"
)

// PostgresStore keeps the state in relational tables. Every Save replaces
// the content of all tables in one transaction.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &PostgresStore{Pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the schema if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	sql := `
	CREATE TABLE IF NOT EXISTS downtime_windows (
		guild_id   BIGINT PRIMARY KEY,
		start_at   BIGINT,
		end_at     BIGINT,
		title      TEXT
	);

	CREATE TABLE IF NOT EXISTS panels (
		id          BIGSERIAL PRIMARY KEY,
		guild_id    BIGINT NOT NULL,
		channel_id  BIGINT NOT NULL,
		message_id  BIGINT NOT NULL,
		platform    TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS event_panels (
		id              BIGSERIAL PRIMARY KEY,
		guild_id        BIGINT NOT NULL,
		channel_id      BIGINT NOT NULL,
		message_id      BIGINT NOT NULL,
		platform        TEXT NOT NULL DEFAULT '',
		event_category  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_panels_guild ON panels(guild_id);
	CREATE INDEX IF NOT EXISTS idx_event_panels_guild ON event_panels(guild_id);
	`
	if _, err := s.Pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := models.NewSnapshot()

	rows, err := s.Pool.Query(ctx, `SELECT guild_id, start_at, end_at, title FROM downtime_windows`)
	if err != nil {
		return nil, fmt.Errorf("%w: query windows: %v", ErrPersistence, err)
	}
	for rows.Next() {
		var guildID int64
		var w models.DowntimeWindow
		if err := rows.Scan(&guildID, &w.Start, &w.End, &w.Title); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan window: %v", ErrPersistence, err)
		}
		snap.Downtime[guildID] = w
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read windows: %v", ErrPersistence, err)
	}

	rows, err = s.Pool.Query(ctx, `SELECT guild_id, channel_id, message_id, platform FROM panels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query panels: %v", ErrPersistence, err)
	}
	for rows.Next() {
		var p models.PanelRecord
		if err := rows.Scan(&p.GuildID, &p.ChannelID, &p.MessageID, &p.Platform); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan panel: %v", ErrPersistence, err)
		}
		snap.Panels = append(snap.Panels, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read panels: %v", ErrPersistence, err)
	}

	rows, err = s.Pool.Query(ctx, `SELECT guild_id, channel_id, message_id, platform, event_category FROM event_panels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query event panels: %v", ErrPersistence, err)
	}
	defer rows.Close()
	for rows.Next() {
		var p models.EventPanelRecord
		if err := rows.Scan(&p.GuildID, &p.ChannelID, &p.MessageID, &p.Platform, &p.EventCategory); err != nil {
			return nil, fmt.Errorf("%w: scan event panel: %v", ErrPersistence, err)
		}
		snap.EventPanels = append(snap.EventPanels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read event panels: %v", ErrPersistence, err)
	}
	return snap, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE downtime_windows, panels, event_panels`); err != nil {
		return fmt.Errorf("%w: truncate: %v", ErrPersistence, err)
	}

	windows := make([][]any, 0, len(snap.Downtime))
	for guildID, w := range snap.Downtime {
		windows = append(windows, []any{guildID, w.Start, w.End, w.Title})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"downtime_windows"},
		[]string{"guild_id", "start_at", "end_at", "title"}, pgx.CopyFromRows(windows)); err != nil {
		return fmt.Errorf("%w: copy windows: %v", ErrPersistence, err)
	}

	panelRows := make([][]any, 0, len(snap.Panels))
	for _, p := range snap.Panels {
		panelRows = append(panelRows, []any{p.GuildID, p.ChannelID, p.MessageID, p.Platform})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"panels"},
		[]string{"guild_id", "channel_id", "message_id", "platform"}, pgx.CopyFromRows(panelRows)); err != nil {
		return fmt.Errorf("%w: copy panels: %v", ErrPersistence, err)
	}

	eventRows := make([][]any, 0, len(snap.EventPanels))
	for _, p := range snap.EventPanels {
		eventRows = append(eventRows, []any{p.GuildID, p.ChannelID, p.MessageID, p.Platform, p.EventCategory})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"event_panels"},
		[]string{"guild_id", "channel_id", "message_id", "platform", "event_category"}, pgx.CopyFromRows(eventRows)); err != nil {
		return fmt.Errorf("%w: copy event panels: %v", ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}
