package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/notify"
	"github.com/Vodeneev/propline/internal/pkg/storage"
)

type recordingNotifier struct {
	mu    sync.Mutex
	moves []notify.LineMovement
}

func (r *recordingNotifier) NotifyLineMovement(ctx context.Context, lm notify.LineMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, lm)
	return nil
}

func (r *recordingNotifier) Stop() {}

func prop(player string, line float64) models.Prop {
	return models.Prop{
		Player:   player,
		PropType: "player_pass_yds",
		Market:   "Passing Yards",
		Source:   "draftkings",
		League:   "NFL",
		Line:     line,
	}
}

func TestTracker_Observe(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	tr := New(storage.NewMemoryLineSnapshotStorage(), n, 1.0)
	tr.now = func() time.Time { return time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC) }

	moves, err := tr.Observe(ctx, []models.Prop{prop("Josh Allen", 245.5), prop("Joe Burrow", 260.5)})
	require.NoError(t, err)
	require.Empty(t, moves, "first sighting never alerts")

	moves, err = tr.Observe(ctx, []models.Prop{prop("Josh Allen", 246.0), prop("Joe Burrow", 255.5)})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.Equal(t, "Joe Burrow", moves[0].Player)
	require.Equal(t, 260.5, moves[0].Previous)
	require.Equal(t, 255.5, moves[0].Current)
	require.NotEmpty(t, moves[0].CycleID)
	require.Len(t, n.moves, 1)

	// the 0.5 move on Allen was stored, so a further 0.5 is measured from 246.0
	moves, err = tr.Observe(ctx, []models.Prop{prop("Josh Allen", 247.0)})
	require.NoError(t, err)
	require.Len(t, moves, 1)
	require.Equal(t, 246.0, moves[0].Previous)
}

func TestTracker_ZeroThresholdIgnoresUnchanged(t *testing.T) {
	tr := New(storage.NewMemoryLineSnapshotStorage(), &recordingNotifier{}, 0)
	ctx := context.Background()

	_, err := tr.Observe(ctx, []models.Prop{prop("Josh Allen", 245.5)})
	require.NoError(t, err)
	moves, err := tr.Observe(ctx, []models.Prop{prop("Josh Allen", 245.5)})
	require.NoError(t, err)
	require.Empty(t, moves)
}

func TestTracker_Cleanup(t *testing.T) {
	st := storage.NewMemoryLineSnapshotStorage()
	tr := New(st, nil, 1)
	now := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }

	p := prop("Josh Allen", 245.5)
	p.StartTime = now.Add(-time.Minute)
	_, err := tr.Observe(context.Background(), []models.Prop{p})
	require.NoError(t, err)

	require.NoError(t, tr.Cleanup(context.Background()))
	_, ok, err := st.GetLastLineSnapshot(context.Background(), p.Player, p.PropType, p.Source)
	require.NoError(t, err)
	require.False(t, ok)
}
