package storage

import (
	"context"
	"time"
)

// LineSnapshot is the last recorded line for one (player, prop type, source).
type LineSnapshot struct {
	Player     string
	PropType   string
	Source     string
	League     string
	Line       float64
	StartTime  time.Time
	RecordedAt time.Time
}

// LineSnapshotStorage keeps one row per prop key for line movement detection.
type LineSnapshotStorage interface {
	// StoreLineSnapshot upserts the current line for the snapshot's key.
	StoreLineSnapshot(ctx context.Context, snap LineSnapshot) error

	// GetLastLineSnapshot returns the stored snapshot, or ok=false when the key was never seen.
	GetLastLineSnapshot(ctx context.Context, player, propType, source string) (snap LineSnapshot, ok bool, err error)

	// CleanStartedGames deletes snapshots for games that have already kicked off.
	CleanStartedGames(ctx context.Context, now time.Time) (int64, error)

	Close() error
}
