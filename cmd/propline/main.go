package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Vodeneev/propline/internal/gatherer"
	"github.com/Vodeneev/propline/internal/parser/parsers"
	pkgconfig "github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/health"
	"github.com/Vodeneev/propline/internal/pkg/health/handlers"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/logging"
	"github.com/Vodeneev/propline/internal/pkg/notify"
	"github.com/Vodeneev/propline/internal/pkg/parserutil"
	"github.com/Vodeneev/propline/internal/pkg/performance"
	"github.com/Vodeneev/propline/internal/pkg/storage"
	"github.com/Vodeneev/propline/internal/pkg/tracker"

	// Register all supported parsers via init().
	_ "github.com/Vodeneev/propline/internal/parser/parsers/all"
)

const (
	defaultConfigPath = "configs/production.yaml"
	serviceName       = "propline"
)

type config struct {
	configPath string
	envFile    string
	runFor     time.Duration
	parser     string // Override enabled_parsers from config (e.g. "rotowire")
}

func main() {
	if err := run(); err != nil {
		slog.Error("propline failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	if err := pkgconfig.LoadDotEnv(cfg.envFile); err != nil {
		return err
	}

	appConfig, err := loadConfig(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := logging.SetupLogger(&appConfig.Logging, serviceName); err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
	}
	slog.Info("Config loaded", "path", cfg.configPath, "priority", strings.Join(appConfig.Priority(), ","))

	if cfg.parser != "" {
		appConfig.Parser.EnabledParsers = []string{cfg.parser}
	}
	ps, err := parsers.Build(appConfig)
	if err != nil {
		return err
	}
	if len(ps) == 0 {
		return fmt.Errorf("no parsers selected to run (parser.enabled_parsers=%v)", appConfig.Parser.EnabledParsers)
	}
	printSelectedParsers(ps)

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	health.RegisterParsers(ps)
	wireHandlers(appConfig)

	var tr *tracker.Tracker
	if appConfig.Tracker.Enabled {
		tr, err = newTracker(appConfig)
		if err != nil {
			return err
		}
		defer tr.Close()
	}

	addr, err := health.AddrFor(appConfig.Health.Port)
	if err != nil {
		return err
	}
	if err := health.Run(ctx, addr, serviceName, appConfig.Health.ReadHeaderTimeout); err != nil {
		return err
	}

	slog.Info("Starting parsers...")
	runParsers(ctx, ps, appConfig, tr)

	for _, p := range ps {
		if err := p.Stop(); err != nil {
			slog.Warn("Parser stop failed", "parser", p.GetName(), "error", err)
		}
	}
	performance.GetTracker().PrintSummary()
	slog.Info("propline stopped gracefully")
	return nil
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&cfg.envFile, "env-file", ".env", "Optional KEY=VALUE file loaded before the config")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until SIGINT/SIGTERM")
	flag.StringVar(&cfg.parser, "parser", "", "Override enabled_parsers: specify parser name (e.g. 'rotowire'). Empty = use config")
	flag.Parse()
	return cfg
}

// loadConfig falls back to built-in defaults when the default config file is absent.
func loadConfig(path string) (*pkgconfig.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == defaultConfigPath {
		slog.Warn("Config file not found, using defaults", "path", path)
		c := pkgconfig.Default()
		return c, c.ApplyEnv()
	}
	return pkgconfig.Load(path)
}

func wireHandlers(appConfig *pkgconfig.Config) {
	handlers.SetPriorityFunc(appConfig.Priority)
	handlers.SetAsyncParseTimeout(appConfig.Health.AsyncParsingTimeout)

	g := gatherer.New(
		lookupFor(appConfig, "rotowire"),
		lookupFor(appConfig, "draftkings"),
		appConfig.Gatherer.EnableDKFallback,
		health.GetProps,
	)
	handlers.SetLookupFunc(g.Gather)
}

// lookupFor reuses the running parser when it is enabled and builds a
// standalone one otherwise, so lookups work regardless of enabled_parsers.
func lookupFor(appConfig *pkgconfig.Config, name string) interfaces.PlayerLookup {
	if l, ok := health.LookupParser(name); ok {
		return l
	}
	f, ok := parsers.FactoryByName(name)
	if !ok {
		return nil
	}
	l, _ := f(appConfig).(interfaces.PlayerLookup)
	return l
}

func newTracker(appConfig *pkgconfig.Config) (*tracker.Tracker, error) {
	st, err := storage.Open(appConfig)
	if err != nil {
		return nil, err
	}

	var n notify.Notifier = notify.LogNotifier{}
	if appConfig.Tracker.TelegramBotToken != "" && appConfig.Tracker.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(appConfig.Tracker.TelegramBotToken, appConfig.Tracker.TelegramChatID)
		if err != nil {
			slog.Error("Telegram notifier disabled", "error", err)
		} else {
			n = tg
		}
	}
	return tracker.New(st, n, appConfig.Tracker.MinMove), nil
}

func printSelectedParsers(ps []interfaces.Parser) {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.GetName())
	}
	slog.Info("Using parsers", "parsers", strings.Join(names, ", "))
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
		}
	}()
}

// runParsers runs one cycle right away, then one per parser.interval until ctx ends.
func runParsers(ctx context.Context, ps []interfaces.Parser, appConfig *pkgconfig.Config, tr *tracker.Tracker) {
	interval := appConfig.Parser.Interval
	slog.Info("Starting periodic parsing", "interval", interval)

	runCycle(ctx, ps, appConfig, tr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping periodic parsing...")
			return
		case <-ticker.C:
			runCycle(ctx, ps, appConfig, tr)
		}
	}
}

// runCycle bounds the whole cycle by parser.cycle_timeout; parser.timeout
// only limits single HTTP requests inside it.
func runCycle(ctx context.Context, ps []interfaces.Parser, appConfig *pkgconfig.Config, tr *tracker.Tracker) {
	parseCtx, cancel := context.WithTimeout(ctx, appConfig.Parser.CycleTimeout)
	defer cancel()

	start := time.Now()
	health.ClearProps()

	opts := parserutil.AsyncRunOptions()
	opts.WaitForCompletion = true
	opts.OnError = func(p interfaces.Parser, err error) {
		slog.Error("Periodic parsing failed", "parser", p.GetName(), "error", err)
	}
	metrics := performance.GetTracker()
	opts.OnDone = func(p interfaces.Parser, took time.Duration, err error) {
		metrics.RecordParserRun(p.GetName(), took, err)
	}
	_ = parserutil.RunParsers(parseCtx, ps, func(ctx context.Context, p interfaces.Parser) error {
		return p.ParseOnce(ctx)
	}, opts)

	props := health.GetProps("", "")
	metrics.RecordCycle(time.Since(start), len(props))
	slog.Info("Parse cycle finished", "props", len(props), "duration", time.Since(start))

	if tr == nil || ctx.Err() != nil {
		return
	}
	if _, err := tr.Observe(ctx, props); err != nil {
		slog.Error("Line tracking failed", "error", err)
	}
	if err := tr.Cleanup(ctx); err != nil {
		slog.Warn("Snapshot cleanup failed", "error", err)
	}
}
