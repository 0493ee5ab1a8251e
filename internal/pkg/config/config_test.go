package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/propline/internal/pkg/extract"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	t.Setenv("SPORTSBOOK_PRIORITY", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("ENABLE_DK_FALLBACK", "")
	os.Unsetenv("ENABLE_DK_FALLBACK")

	p := writeFile(t, "config.yaml", `
health:
  port: 8081
parser:
  interval: 90s
  leagues: [NFL]
  draftkings:
    event_groups:
      NFL: "1"
extract:
  sportsbook_priority: [" FanDuel ", "", "mgm"]
gatherer:
  enable_dk_fallback: true
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Health.Port)
	require.Equal(t, 90*time.Second, cfg.Parser.Interval)
	require.Equal(t, []string{"NFL"}, cfg.Parser.Leagues)
	require.Equal(t, map[string]string{"NFL": "1"}, cfg.Parser.DraftKings.EventGroups)
	require.Equal(t, 1002, cfg.Parser.DraftKings.Categories["player_receiving_yards"])
	require.Equal(t, extract.Priority{"fanduel", "mgm"}, cfg.Priority())
	require.True(t, cfg.Gatherer.EnableDKFallback)
	require.Equal(t, 30*time.Second, cfg.Parser.Timeout)
	require.Equal(t, 4*time.Minute, cfg.Parser.CycleTimeout)
}

func TestLoad_CycleTimeoutOutlastsRequests(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.yaml", "parser:\n  timeout: 2m\n  cycle_timeout: 1m\n"))
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, cfg.Parser.Timeout)
	require.Equal(t, 6*time.Minute, cfg.Parser.CycleTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPORTSBOOK_PRIORITY", "caesars,draftkings")
	t.Setenv("ENABLE_DK_FALLBACK", "no")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	p := writeFile(t, "config.yaml", "gatherer:\n  enable_dk_fallback: true\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, extract.Priority{"caesars", "draftkings"}, cfg.Priority())
	require.False(t, cfg.Gatherer.EnableDKFallback)
	require.Equal(t, int64(-100123), cfg.Tracker.TelegramChatID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "health: [1, 2"))
	require.Error(t, err)

	t.Setenv("TELEGRAM_CHAT_ID", "chat")
	_, err = Load(writeFile(t, "ok.yaml", "{}"))
	require.Error(t, err)
}

func TestDefaultPriority(t *testing.T) {
	cfg := Default()
	require.Equal(t, extract.DefaultPriority, cfg.Priority())

	// callers may append without touching the package default
	p := cfg.Priority()
	p[0] = "changed"
	require.Equal(t, "draftkings", extract.DefaultPriority[0])
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("PROPLINE_TEST_VALUE", "")
	os.Unsetenv("PROPLINE_TEST_VALUE")

	p := writeFile(t, ".env", "PROPLINE_TEST_VALUE=from-file\n")
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env"), p))
	require.Equal(t, "from-file", os.Getenv("PROPLINE_TEST_VALUE"))
}

func TestLoad_LocalOverride(t *testing.T) {
	t.Setenv("SPORTSBOOK_PRIORITY", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	dir := t.TempDir()
	base := filepath.Join(dir, "production.yaml")
	require.NoError(t, os.WriteFile(base, []byte(`
health:
  port: 8081
parser:
  interval: 90s
  leagues: [NFL, CFB]
`), 0o600))
	require.NoError(t, os.WriteFile(LocalPath(base), []byte(`
health:
  port: 9000
parser:
  leagues: [CFB]
`), 0o600))

	cfg, err := Load(base)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Health.Port)
	require.Equal(t, 90*time.Second, cfg.Parser.Interval)
	require.Equal(t, []string{"CFB"}, cfg.Parser.Leagues)
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("configs", "production.local.yaml"), LocalPath(filepath.Join("configs", "production.yaml")))
}
