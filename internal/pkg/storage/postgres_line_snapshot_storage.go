package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/Vodeneev/propline/internal/pkg/config"
)

var _ LineSnapshotStorage = (*PostgresLineSnapshotStorage)(nil)

// PostgresLineSnapshotStorage stores prop line snapshots for line movement detection.
type PostgresLineSnapshotStorage struct {
	db *sql.DB
}

// NewPostgresLineSnapshotStorage opens the connection and creates the table if needed.
func NewPostgresLineSnapshotStorage(cfg *config.PostgresConfig) (*PostgresLineSnapshotStorage, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", normalizeDSN(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresLineSnapshotStorage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL line snapshot storage initialized successfully")
	return s, nil
}

// normalizeDSN adds sslmode=disable to URL DSNs that don't set it; lib/pq defaults to require.
func normalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return dsn
	}
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&sslmode=disable"
	}
	return dsn + "?sslmode=disable"
}

func (s *PostgresLineSnapshotStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS prop_line_snapshots (
		id SERIAL PRIMARY KEY,
		player VARCHAR(200) NOT NULL,
		prop_type VARCHAR(100) NOT NULL,
		source VARCHAR(100) NOT NULL,
		league VARCHAR(20) NOT NULL DEFAULT '',
		line DECIMAL(10, 2) NOT NULL,
		start_time TIMESTAMP,
		recorded_at TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(player, prop_type, source)
	);

	CREATE INDEX IF NOT EXISTS idx_prop_line_snapshots_start_time ON prop_line_snapshots(start_time);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// StoreLineSnapshot keeps one row per (player, prop_type, source), updated on each call.
func (s *PostgresLineSnapshotStorage) StoreLineSnapshot(ctx context.Context, snap LineSnapshot) error {
	query := `
	INSERT INTO prop_line_snapshots (
		player, prop_type, source, league, line, start_time, recorded_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (player, prop_type, source) DO UPDATE SET
		league = EXCLUDED.league,
		line = EXCLUDED.line,
		start_time = EXCLUDED.start_time,
		recorded_at = EXCLUDED.recorded_at
	`
	var start sql.NullTime
	if !snap.StartTime.IsZero() {
		start = sql.NullTime{Time: snap.StartTime, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		strings.ToLower(snap.Player), snap.PropType, strings.ToLower(snap.Source),
		snap.League, snap.Line, start, snap.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store line snapshot: %w", err)
	}
	return nil
}

func (s *PostgresLineSnapshotStorage) GetLastLineSnapshot(ctx context.Context, player, propType, source string) (LineSnapshot, bool, error) {
	query := `
	SELECT player, prop_type, source, league, line, start_time, recorded_at FROM prop_line_snapshots
	WHERE player = $1 AND prop_type = $2 AND source = $3
	`
	var snap LineSnapshot
	var start sql.NullTime
	err := s.db.QueryRowContext(ctx, query, strings.ToLower(player), propType, strings.ToLower(source)).
		Scan(&snap.Player, &snap.PropType, &snap.Source, &snap.League, &snap.Line, &start, &snap.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LineSnapshot{}, false, nil
	}
	if err != nil {
		return LineSnapshot{}, false, fmt.Errorf("failed to get last line snapshot: %w", err)
	}
	if start.Valid {
		snap.StartTime = start.Time
	}
	return snap, true, nil
}

func (s *PostgresLineSnapshotStorage) CleanStartedGames(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prop_line_snapshots WHERE start_time IS NOT NULL AND start_time < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean prop_line_snapshots: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		slog.Info("Cleaned prop_line_snapshots for started games", "rows_deleted", rows)
	}
	return rows, nil
}

func (s *PostgresLineSnapshotStorage) Close() error {
	return s.db.Close()
}
