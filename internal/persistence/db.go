package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/gaia/internal/engine"
	"github.com/talgya/gaia/internal/snapshot"
)

// DB is a SQLite-backed Store. Boards and logs are kept as zstd JSON blobs.
type DB struct {
	conn *sqlx.DB
}

var _ Store = (*DB)(nil)

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		cursor INTEGER NOT NULL,
		civs INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		start_blob BLOB NOT NULL,
		state_blob BLOB NOT NULL,
		history_blob BLOB NOT NULL,
		rules TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		civ INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_game ON events(game_id, step);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return err
	}

	// Databases created before rules were recorded lack the column.
	var n int
	if err := db.conn.Get(&n, `SELECT COUNT(*) FROM pragma_table_info('games') WHERE name = 'rules'`); err != nil {
		return err
	}
	if n == 0 {
		if _, err := db.conn.Exec(`ALTER TABLE games ADD COLUMN rules TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add rules column: %w", err)
		}
	}
	return nil
}

type gameRow struct {
	ID        string `db:"id"`
	Version   int    `db:"version"`
	Seed      int64  `db:"seed"`
	Cursor    int    `db:"cursor"`
	Civs      int    `db:"civs"`
	Alive     int    `db:"alive"`
	Start     []byte `db:"start_blob"`
	State     []byte `db:"state_blob"`
	History   []byte `db:"history_blob"`
	Rules     string `db:"rules"`
	UpdatedAt int64  `db:"updated_at"`
}

func packGame(d snapshot.GameDoc) ([]byte, error) {
	raw, err := snapshot.EncodeGame(d)
	if err != nil {
		return nil, err
	}
	return snapshot.Compress(raw)
}

func unpackGame(b []byte) (snapshot.GameDoc, error) {
	raw, err := snapshot.Decompress(b)
	if err != nil {
		return snapshot.GameDoc{}, err
	}
	return snapshot.DecodeGame(raw)
}

// SaveGame writes f, replacing any earlier save of the same game.
func (db *DB) SaveGame(ctx context.Context, f snapshot.File) error {
	if err := checkID(f.Header.GameID); err != nil {
		return err
	}
	row := gameRow{
		ID:        f.Header.GameID,
		Version:   f.Header.Version,
		Seed:      f.Header.Seed,
		Cursor:    f.Header.Cursor,
		Civs:      len(f.Game.Civs),
		Alive:     aliveCount(f.Game),
		UpdatedAt: time.Now().Unix(),
	}
	var err error
	if row.Start, err = packGame(f.Start); err != nil {
		return fmt.Errorf("pack start: %w", err)
	}
	if row.State, err = packGame(f.Game); err != nil {
		return fmt.Errorf("pack game: %w", err)
	}
	raw, err := snapshot.EncodeHistory(f.History)
	if err != nil {
		return fmt.Errorf("pack history: %w", err)
	}
	rules, err := snapshot.EncodeRules(f.Header.Rules)
	if err != nil {
		return fmt.Errorf("pack rules: %w", err)
	}
	row.Rules = string(rules)
	if row.History, err = snapshot.Compress(raw); err != nil {
		return fmt.Errorf("pack history: %w", err)
	}

	_, err = db.conn.NamedExecContext(ctx, `INSERT OR REPLACE INTO games
		(id, version, seed, cursor, civs, alive, start_blob, state_blob, history_blob, rules, updated_at)
		VALUES (:id, :version, :seed, :cursor, :civs, :alive, :start_blob, :state_blob, :history_blob, :rules, :updated_at)`,
		row)
	if err != nil {
		return fmt.Errorf("save game %s: %w", row.ID, err)
	}
	slog.Debug("game saved", "id", row.ID, "cursor", row.Cursor, "bytes", len(row.Start)+len(row.State)+len(row.History))
	return nil
}

// LoadGame reads the save of game id.
func (db *DB) LoadGame(ctx context.Context, id string) (snapshot.File, error) {
	var f snapshot.File
	if err := checkID(id); err != nil {
		return f, err
	}
	var row gameRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM games WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return f, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return f, err
	}

	f.Header = snapshot.Header{Version: row.Version, GameID: row.ID, Seed: row.Seed, Cursor: row.Cursor}
	if f.Header.Version != snapshot.Version {
		return f, fmt.Errorf("%w: unsupported version %d", snapshot.ErrMalformed, f.Header.Version)
	}
	if f.Header.Rules, err = snapshot.DecodeRules([]byte(row.Rules)); err != nil {
		return f, fmt.Errorf("load %s: %w", id, err)
	}
	if f.Start, err = unpackGame(row.Start); err != nil {
		return f, fmt.Errorf("load %s start: %w", id, err)
	}
	if f.Game, err = unpackGame(row.State); err != nil {
		return f, fmt.Errorf("load %s game: %w", id, err)
	}
	raw, err := snapshot.Decompress(row.History)
	if err != nil {
		return f, fmt.Errorf("load %s history: %w", id, err)
	}
	if f.History, err = snapshot.DecodeHistory(raw); err != nil {
		return f, fmt.Errorf("load %s history: %w", id, err)
	}
	return f, nil
}

// ListGames returns every saved game, most recent first.
func (db *DB) ListGames(ctx context.Context) ([]GameInfo, error) {
	var rows []struct {
		ID        string `db:"id"`
		Cursor    int    `db:"cursor"`
		Civs      int    `db:"civs"`
		Alive     int    `db:"alive"`
		Size      int64  `db:"size"`
		UpdatedAt int64  `db:"updated_at"`
	}
	err := db.conn.SelectContext(ctx, &rows, `SELECT id, cursor, civs, alive,
		length(start_blob) + length(state_blob) + length(history_blob) AS size, updated_at
		FROM games ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	infos := make([]GameInfo, len(rows))
	for i, r := range rows {
		infos[i] = GameInfo{
			ID:      r.ID,
			Cursor:  r.Cursor,
			Civs:    r.Civs,
			Alive:   r.Alive,
			Size:    r.Size,
			Updated: time.Unix(r.UpdatedAt, 0),
		}
	}
	return infos, nil
}

// SaveEvents replaces the stored event log of a game.
func (db *DB) SaveEvents(ctx context.Context, gameID string, events []engine.Event) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events WHERE game_id = ?", gameID); err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO events (game_id, step, civ, description, category) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, gameID, e.Step, e.Civ, e.Description, e.Category); err != nil {
			return fmt.Errorf("insert event at step %d: %w", e.Step, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events of a game, newest first.
func (db *DB) RecentEvents(ctx context.Context, gameID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.SelectContext(ctx, &events,
		"SELECT step, civ, description, category FROM events WHERE game_id = ? ORDER BY id DESC LIMIT ?",
		gameID, limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
