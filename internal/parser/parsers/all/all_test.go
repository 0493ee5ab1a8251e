package all

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/propline/internal/parser/parsers"
	"github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
)

func TestRegistered(t *testing.T) {
	require.Equal(t, []string{"draftkings", "rotowire"}, parsers.AvailableNames())
}

func TestBuild(t *testing.T) {
	cfg := config.Default()
	cfg.Parser.EnabledParsers = []string{"RotoWire", "draftkings", "rotowire"}

	ps, err := parsers.Build(cfg)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	require.Equal(t, "rotowire", ps[0].GetName())
	for _, p := range ps {
		_, ok := p.(interfaces.PlayerLookup)
		require.True(t, ok, "%s should support player lookup", p.GetName())
	}

	cfg.Parser.EnabledParsers = []string{"fanduel"}
	_, err = parsers.Build(cfg)
	require.ErrorContains(t, err, "unknown parser")
}
