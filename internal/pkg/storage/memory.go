package storage

import (
	"context"
	"strings"
	"sync"
	"time"
)

var _ LineSnapshotStorage = (*MemoryLineSnapshotStorage)(nil)

// MemoryLineSnapshotStorage is used when no postgres DSN is configured.
type MemoryLineSnapshotStorage struct {
	mu    sync.RWMutex
	snaps map[string]LineSnapshot
}

func NewMemoryLineSnapshotStorage() *MemoryLineSnapshotStorage {
	return &MemoryLineSnapshotStorage{snaps: make(map[string]LineSnapshot)}
}

func snapshotKey(player, propType, source string) string {
	return strings.ToLower(player) + "|" + propType + "|" + strings.ToLower(source)
}

func (s *MemoryLineSnapshotStorage) StoreLineSnapshot(ctx context.Context, snap LineSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snapshotKey(snap.Player, snap.PropType, snap.Source)] = snap
	return nil
}

func (s *MemoryLineSnapshotStorage) GetLastLineSnapshot(ctx context.Context, player, propType, source string) (LineSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[snapshotKey(player, propType, source)]
	return snap, ok, nil
}

func (s *MemoryLineSnapshotStorage) CleanStartedGames(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, snap := range s.snaps {
		if !snap.StartTime.IsZero() && snap.StartTime.Before(now) {
			delete(s.snaps, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryLineSnapshotStorage) Close() error { return nil }
