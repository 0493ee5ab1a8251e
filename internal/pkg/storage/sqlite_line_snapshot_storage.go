package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Vodeneev/propline/internal/pkg/config"
)

var _ LineSnapshotStorage = (*SQLiteLineSnapshotStorage)(nil)

// SQLiteLineSnapshotStorage keeps line snapshots in a local SQLite file, for
// single-host deployments without Postgres. Times are stored as unix nanos.
type SQLiteLineSnapshotStorage struct {
	db *sql.DB
}

func NewSQLiteLineSnapshotStorage(cfg *config.SQLiteConfig) (*SQLiteLineSnapshotStorage, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one writer; also keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := &SQLiteLineSnapshotStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("SQLite line snapshot storage initialized successfully", "path", cfg.Path)
	return s, nil
}

func (s *SQLiteLineSnapshotStorage) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS prop_line_snapshots (
		player TEXT NOT NULL,
		prop_type TEXT NOT NULL,
		source TEXT NOT NULL,
		league TEXT NOT NULL DEFAULT '',
		line REAL NOT NULL,
		start_time INTEGER,
		recorded_at INTEGER NOT NULL,
		PRIMARY KEY (player, prop_type, source)
	);
	CREATE INDEX IF NOT EXISTS idx_prop_line_snapshots_start_time ON prop_line_snapshots(start_time);
	`)
	return err
}

func (s *SQLiteLineSnapshotStorage) StoreLineSnapshot(ctx context.Context, snap LineSnapshot) error {
	var start sql.NullInt64
	if !snap.StartTime.IsZero() {
		start = sql.NullInt64{Int64: snap.StartTime.UnixNano(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO prop_line_snapshots (player, prop_type, source, league, line, start_time, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (player, prop_type, source) DO UPDATE SET
		league = excluded.league,
		line = excluded.line,
		start_time = excluded.start_time,
		recorded_at = excluded.recorded_at
	`,
		strings.ToLower(snap.Player), snap.PropType, strings.ToLower(snap.Source),
		snap.League, snap.Line, start, snap.RecordedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to store line snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteLineSnapshotStorage) GetLastLineSnapshot(ctx context.Context, player, propType, source string) (LineSnapshot, bool, error) {
	var snap LineSnapshot
	var start sql.NullInt64
	var recorded int64
	err := s.db.QueryRowContext(ctx, `
	SELECT player, prop_type, source, league, line, start_time, recorded_at FROM prop_line_snapshots
	WHERE player = ? AND prop_type = ? AND source = ?
	`, strings.ToLower(player), propType, strings.ToLower(source)).
		Scan(&snap.Player, &snap.PropType, &snap.Source, &snap.League, &snap.Line, &start, &recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return LineSnapshot{}, false, nil
	}
	if err != nil {
		return LineSnapshot{}, false, fmt.Errorf("failed to get last line snapshot: %w", err)
	}
	if start.Valid {
		snap.StartTime = time.Unix(0, start.Int64).UTC()
	}
	snap.RecordedAt = time.Unix(0, recorded).UTC()
	return snap, true, nil
}

func (s *SQLiteLineSnapshotStorage) CleanStartedGames(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM prop_line_snapshots WHERE start_time IS NOT NULL AND start_time < ?`, now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to clean prop_line_snapshots: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		slog.Info("Cleaned prop_line_snapshots for started games", "rows_deleted", rows)
	}
	return rows, nil
}

func (s *SQLiteLineSnapshotStorage) Close() error {
	return s.db.Close()
}
