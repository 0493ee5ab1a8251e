package storage

import (
	"log/slog"

	"github.com/Vodeneev/propline/internal/pkg/config"
)

// Open picks the snapshot backend: Postgres when a DSN is set, then SQLite
// when a path is set, otherwise memory.
func Open(cfg *config.Config) (LineSnapshotStorage, error) {
	switch {
	case cfg.Postgres.DSN != "":
		pg, err := NewPostgresLineSnapshotStorage(&cfg.Postgres)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case cfg.SQLite.Path != "":
		lite, err := NewSQLiteLineSnapshotStorage(&cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return lite, nil
	}
	slog.Info("No snapshot database configured, line snapshots kept in memory")
	return NewMemoryLineSnapshotStorage(), nil
}
