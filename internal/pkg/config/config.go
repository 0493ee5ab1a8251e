package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Vodeneev/propline/internal/pkg/extract"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Health   HealthConfig   `yaml:"health"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Extract  ExtractConfig  `yaml:"extract"`
	Parser   ParserConfig   `yaml:"parser"`
	Gatherer GathererConfig `yaml:"gatherer"`
	Tracker  TrackerConfig  `yaml:"tracker"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text (default) or json
}

type HealthConfig struct {
	Port                int           `yaml:"port"`
	ReadHeaderTimeout   time.Duration `yaml:"read_header_timeout"`
	AsyncParsingTimeout time.Duration `yaml:"async_parsing_timeout"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"` // used when postgres.dsn is empty
}

type ExtractConfig struct {
	// Sportsbook prefixes in order of preference; SPORTSBOOK_PRIORITY overrides it
	SportsbookPriority []string `yaml:"sportsbook_priority"`
}

type ParserConfig struct {
	EnabledParsers []string          `yaml:"enabled_parsers"`
	Interval       time.Duration     `yaml:"interval"`
	Timeout        time.Duration     `yaml:"timeout"`       // per HTTP request
	CycleTimeout   time.Duration     `yaml:"cycle_timeout"` // whole scrape cycle, all parsers
	UserAgent      string            `yaml:"user_agent"`
	Headers        map[string]string `yaml:"headers"`
	Leagues        []string          `yaml:"leagues"`    // NFL, CFB
	PropTypes      []string          `yaml:"prop_types"` // player_passing_yards, ...
	DraftKings     DraftKingsConfig  `yaml:"draftkings"`
	Rotowire       RotowireConfig    `yaml:"rotowire"`

	// CloudflareBypass wraps the HTTP transport with browser-like TLS settings
	CloudflareBypass bool `yaml:"cloudflare_bypass"`
}

type DraftKingsConfig struct {
	BaseURL     string            `yaml:"base_url"`     // API root, .../api/v5
	PageURLs    []string          `yaml:"page_urls"`    // pages scanned for embedded JSON
	EventGroups map[string]string `yaml:"event_groups"` // league -> event group id
	Categories  map[string]int    `yaml:"categories"`   // prop type -> offer category id
}

type RotowireConfig struct {
	PageURLs []string `yaml:"page_urls"`
}

type GathererConfig struct {
	EnableDKFallback bool `yaml:"enable_dk_fallback"`
}

type TrackerConfig struct {
	Enabled          bool    `yaml:"enabled"`
	MinMove          float64 `yaml:"min_move"` // absolute line change worth an alert
	TelegramBotToken string  `yaml:"telegram_bot_token"`
	TelegramChatID   int64   `yaml:"telegram_chat_id"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := mergeLocal(&config, LocalPath(configPath)); err != nil {
		return nil, err
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return &config, nil
}

// LocalPath returns the per-host override file for a config path:
// configs/production.yaml -> configs/production.local.yaml
func LocalPath(configPath string) string {
	ext := filepath.Ext(configPath)
	return strings.TrimSuffix(configPath, ext) + ".local" + ext
}

// mergeLocal overlays non-zero fields of the local file, if present.
func mergeLocal(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read local config: %w", err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("failed to parse local config: %w", err)
	}
	if err := mergo.Merge(config, override, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge local config: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE files into the process environment. Missing
// files are skipped; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Priority returns the sportsbook priority threaded into every extraction.
func (c *Config) Priority() extract.Priority {
	p := extract.Priority(c.Extract.SportsbookPriority).Normalize()
	if len(p) == 0 {
		return append(extract.Priority(nil), extract.DefaultPriority...)
	}
	return p
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SPORTSBOOK_PRIORITY"); strings.TrimSpace(v) != "" {
		c.Extract.SportsbookPriority = extract.ParsePriority(v)
	}
	if v, ok := os.LookupEnv("ENABLE_DK_FALLBACK"); ok {
		c.Gatherer.EnableDKFallback = parseFlag(v)
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Tracker.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		c.Tracker.TelegramChatID = id
	}
	return nil
}

// ApplyEnv applies environment overrides to a config that was not read with
// Load (for example Default()).
func (c *Config) ApplyEnv() error {
	return c.applyEnv()
}

func parseFlag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Health.Port <= 0 {
		c.Health.Port = 8080
	}
	if c.Health.ReadHeaderTimeout <= 0 {
		c.Health.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Health.AsyncParsingTimeout <= 0 {
		c.Health.AsyncParsingTimeout = 60 * time.Second
	}
	if c.Parser.Interval <= 0 {
		c.Parser.Interval = 5 * time.Minute
	}
	if c.Parser.Timeout <= 0 {
		c.Parser.Timeout = 30 * time.Second
	}
	if c.Parser.CycleTimeout <= 0 {
		c.Parser.CycleTimeout = 4 * time.Minute
	}
	// a cycle must outlast at least one full request with its retries
	if floor := 3 * c.Parser.Timeout; c.Parser.CycleTimeout < floor {
		c.Parser.CycleTimeout = floor
	}
	if c.Parser.UserAgent == "" {
		c.Parser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	}
	if len(c.Parser.EnabledParsers) == 0 {
		c.Parser.EnabledParsers = []string{"rotowire", "draftkings"}
	}
	if len(c.Parser.Leagues) == 0 {
		c.Parser.Leagues = []string{"NFL", "CFB"}
	}
	if len(c.Parser.PropTypes) == 0 {
		c.Parser.PropTypes = []string{"player_passing_yards", "player_rushing_yards", "player_receiving_yards"}
	}

	dk := &c.Parser.DraftKings
	if dk.BaseURL == "" {
		dk.BaseURL = "https://sportsbook.draftkings.com/sites/US-NJ-SB/api/v5"
	}
	if len(dk.PageURLs) == 0 {
		dk.PageURLs = []string{"https://sportsbook.draftkings.com/", "https://sportsbook.draftkings.com/odds"}
	}
	if len(dk.EventGroups) == 0 {
		dk.EventGroups = map[string]string{"NFL": "88808", "CFB": "87637"}
	}
	if len(dk.Categories) == 0 {
		dk.Categories = map[string]int{
			"player_passing_yards":   1000,
			"player_rushing_yards":   1001,
			"player_receiving_yards": 1002,
		}
	}

	if len(c.Parser.Rotowire.PageURLs) == 0 {
		c.Parser.Rotowire.PageURLs = []string{
			"https://www.rotowire.com/betting/nfl/player-props.php",
			"https://www.rotowire.com/betting/college-football/player-props.php",
		}
	}

	if c.Tracker.MinMove <= 0 {
		c.Tracker.MinMove = 0.5
	}
}
