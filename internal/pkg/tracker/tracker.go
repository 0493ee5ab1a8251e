// Package tracker compares each parse cycle's props with the last stored
// snapshot and raises an alert when a line moves far enough.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/notify"
	"github.com/Vodeneev/propline/internal/pkg/storage"
)

type Tracker struct {
	storage  storage.LineSnapshotStorage
	notifier notify.Notifier
	minMove  float64
	now      func() time.Time
}

func New(st storage.LineSnapshotStorage, n notify.Notifier, minMove float64) *Tracker {
	if n == nil {
		n = notify.LogNotifier{}
	}
	return &Tracker{storage: st, notifier: n, minMove: minMove, now: time.Now}
}

// Observe records props and returns the movements that crossed the threshold.
// A prop seen for the first time is stored without an alert.
func (t *Tracker) Observe(ctx context.Context, props []models.Prop) ([]notify.LineMovement, error) {
	cycleID := uuid.NewString()
	now := t.now()

	var moves []notify.LineMovement
	for _, p := range props {
		if ctx.Err() != nil {
			return moves, ctx.Err()
		}
		prev, ok, err := t.storage.GetLastLineSnapshot(ctx, p.Player, p.PropType, p.Source)
		if err != nil {
			return moves, fmt.Errorf("load snapshot for %s: %w", p.Key(), err)
		}

		if ok && p.Line != prev.Line && math.Abs(p.Line-prev.Line) >= t.minMove {
			lm := notify.LineMovement{
				CycleID:    cycleID,
				Player:     p.Player,
				PropType:   p.PropType,
				Market:     p.Market,
				Source:     p.Source,
				League:     p.League,
				Previous:   prev.Line,
				Current:    p.Line,
				StartTime:  p.StartTime,
				DetectedAt: now,
			}
			moves = append(moves, lm)
			if err := t.notifier.NotifyLineMovement(ctx, lm); err != nil {
				slog.Warn("Failed to queue line movement alert", "player", p.Player, "error", err)
			}
		}

		err = t.storage.StoreLineSnapshot(ctx, storage.LineSnapshot{
			Player:     p.Player,
			PropType:   p.PropType,
			Source:     p.Source,
			League:     p.League,
			Line:       p.Line,
			StartTime:  p.StartTime,
			RecordedAt: now,
		})
		if err != nil {
			return moves, fmt.Errorf("store snapshot for %s: %w", p.Key(), err)
		}
	}

	if len(moves) > 0 {
		slog.Info("Line movements detected", "cycle_id", cycleID, "count", len(moves), "props", len(props))
	}
	return moves, nil
}

// Cleanup drops snapshots of games that already started.
func (t *Tracker) Cleanup(ctx context.Context) error {
	_, err := t.storage.CleanStartedGames(ctx, t.now())
	return err
}

func (t *Tracker) Close() error {
	t.notifier.Stop()
	return t.storage.Close()
}
