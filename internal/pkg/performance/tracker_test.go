package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTracker_GetMetrics(t *testing.T) {
	tr := NewTracker()
	tr.RecordParserRun("rotowire", 2*time.Second, nil)
	tr.RecordParserRun("rotowire", 4*time.Second, errors.New("status 403"))
	tr.RecordParserRun("draftkings", time.Second, nil)
	tr.RecordCycle(10*time.Second, 42)

	m := tr.GetMetrics()
	require.Equal(t, 1, m.Overall.TotalCycles)
	require.Equal(t, "10s", m.Overall.AvgCycleDuration)
	require.Equal(t, 42, m.Overall.LastCycleProps)

	require.Len(t, m.Parsers, 2)
	require.Equal(t, "draftkings", m.Parsers[0].Name)

	rw := m.Parsers[1]
	require.Equal(t, 2, rw.Runs)
	require.Equal(t, 1, rw.Failures)
	require.InDelta(t, 50.0, rw.SuccessRate, 0.001)
	require.Equal(t, "3s", rw.AvgDuration)
	require.Equal(t, "status 403", rw.LastError)
}

func TestTracker_ErrorClearedOnSuccess(t *testing.T) {
	tr := NewTracker()
	tr.RecordParserRun("rotowire", time.Second, errors.New("timeout"))
	tr.RecordParserRun("rotowire", time.Second, nil)
	require.Empty(t, tr.GetMetrics().Parsers[0].LastError)

	tr.Reset()
	require.Empty(t, tr.GetMetrics().Parsers)
}
