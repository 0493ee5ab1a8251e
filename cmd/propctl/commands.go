package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/Vodeneev/propline/internal/gatherer"
	"github.com/Vodeneev/propline/internal/parser/parsers"
	"github.com/Vodeneev/propline/internal/parser/parsers/draftkings"
	"github.com/Vodeneev/propline/internal/parser/parsers/rotowire"
	pkgconfig "github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/extract"
	"github.com/Vodeneev/propline/internal/pkg/logging"
	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/report"
)

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "propctl",
		Usage:     "inspect sportsbook prop lines from the command line",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"CONFIG_PATH"}, Usage: "config file; built-in defaults when empty"},
			&cli.StringFlag{Name: "log-level", Value: "warn"},
		},
		Before: func(c *cli.Context) error {
			_, err := logging.SetupLogger(&pkgconfig.LoggingConfig{Level: c.String("log-level")}, "propctl")
			return err
		},
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "extract a category line from a JSON candidate",
				ArgsUsage: "[file|-]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Aliases: []string{"k"}, Required: true, Usage: "e.g. passing, rushing, receiving"},
					&cli.StringFlag{Name: "priority", Usage: "comma-separated sportsbook prefixes, overrides config"},
				},
				Action: extractAction,
			},
			{
				Name:  "scan",
				Usage: "fetch props for leagues and prop types and print them as a table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Value: "draftkings", Usage: "draftkings or rotowire"},
					&cli.StringSliceFlag{Name: "league", Usage: "NFL, CFB (default from config)"},
					&cli.StringSliceFlag{Name: "prop-type", Usage: "e.g. player_passing_yards (default from config)"},
					&cli.BoolFlag{Name: "json", Usage: "print rows as JSON"},
				},
				Action: scanAction,
			},
			{
				Name:  "lookup",
				Usage: "look one player's line up across sources",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "player", Aliases: []string{"p"}, Required: true},
					&cli.StringFlag{Name: "prop-type", Aliases: []string{"t"}, Required: true},
					&cli.BoolFlag{Name: "dk-fallback", EnvVars: []string{"ENABLE_DK_FALLBACK"}, Usage: "ask DraftKings when Rotowire has no line"},
				},
				Action: lookupAction,
			},
		},
	}
}

func loadConfig(c *cli.Context) (*pkgconfig.Config, error) {
	if path := c.String("config"); path != "" {
		return pkgconfig.Load(path)
	}
	cfg := pkgconfig.Default()
	return cfg, cfg.ApplyEnv()
}

func extractAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var data []byte
	switch name := c.Args().First(); name {
	case "", "-":
		data, err = io.ReadAll(os.Stdin)
	default:
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("read candidate: %w", err)
	}

	candidate, err := extract.DecodeLenient(data)
	if err != nil {
		return err
	}

	priority := cfg.Priority()
	if c.IsSet("priority") {
		priority = extract.ParsePriority(c.String("priority"))
	}

	v, ok := extract.Extract(candidate, c.String("category"), priority)
	if !ok {
		return fmt.Errorf("category %q: %w", c.String("category"), models.ErrNoOddsData)
	}
	_, err = fmt.Fprintln(c.App.Writer, strconv.FormatFloat(v, 'f', -1, 64))
	return err
}

func scanAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("league") {
		cfg.Parser.Leagues = c.StringSlice("league")
	}
	if c.IsSet("prop-type") {
		cfg.Parser.PropTypes = c.StringSlice("prop-type")
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.Parser.Timeout*2)
	defer cancel()

	var props []models.Prop
	switch c.String("source") {
	case "draftkings":
		dk := draftkings.NewParser(cfg)
		for _, league := range cfg.Parser.Leagues {
			for _, pt := range cfg.Parser.PropTypes {
				found, err := dk.FetchProps(ctx, league, pt)
				if err != nil {
					return err
				}
				props = append(props, found...)
			}
		}
	case "rotowire":
		rw := rotowire.NewParser(cfg)
		client := parsers.NewHTTPClient(&cfg.Parser)
		for _, url := range cfg.Parser.Rotowire.PageURLs {
			html, err := parsers.FetchPage(ctx, client, url)
			if err != nil {
				return err
			}
			props = append(props, rw.PropsFromPage(html, rotowire.LeagueForURL(url))...)
		}
	default:
		return fmt.Errorf("unknown source %q", c.String("source"))
	}

	rows := report.Rows(props)
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	report.RenderTable(c.App.Writer, rows)
	return nil
}

func lookupAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("dk-fallback") {
		cfg.Gatherer.EnableDKFallback = c.Bool("dk-fallback")
	}

	g := gatherer.New(rotowire.NewParser(cfg), draftkings.NewParser(cfg), cfg.Gatherer.EnableDKFallback, nil)
	data, err := g.Gather(c.Context, models.LookupRequest{
		Player:   c.String("player"),
		PropType: c.String("prop-type"),
	})
	if data != nil {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(data); encErr != nil {
			return encErr
		}
	}
	return err
}
