package rotowire

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Vodeneev/propline/internal/parser/parsers"
	"github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/extract"
	"github.com/Vodeneev/propline/internal/pkg/health"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/pagescan"
)

const parserName = "rotowire"

var runOnceMu sync.Mutex

func init() {
	parsers.Register(parserName, func(cfg *config.Config) interfaces.Parser { return NewParser(cfg) })
}

var _ interfaces.PlayerLookup = (*Parser)(nil)

// Parser reads the player-props pages, which embed one "data: [...]" array of
// player objects per market table.
type Parser struct {
	cfg      *config.Config
	client   *resty.Client
	pages    *parsers.PageLookup
	priority extract.Priority
	now      func() time.Time
}

func NewParser(cfg *config.Config) *Parser {
	client := parsers.NewHTTPClient(&cfg.Parser)
	return &Parser{
		cfg:    cfg,
		client: client,
		pages: &parsers.PageLookup{
			Source:   parserName,
			Client:   client,
			URLs:     cfg.Parser.Rotowire.PageURLs,
			Priority: cfg.Priority(),
		},
		priority: cfg.Priority(),
		now:      time.Now,
	}
}

// LeagueForURL maps a props page to its league label.
func LeagueForURL(url string) string {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "college-football"), strings.Contains(u, "cfb"):
		return "CFB"
	case strings.Contains(u, "nfl"):
		return "NFL"
	}
	return ""
}

// PropsFromPage turns every named player object on a page into one prop per
// configured prop type that has a line of its own.
func (p *Parser) PropsFromPage(html, league string) []models.Prop {
	now := p.now()
	var out []models.Prop
	for _, blob := range pagescan.Blobs(html, pagescan.Options{}) {
		for _, cand := range extract.Candidates(blob) {
			name := extract.CandidateName(cand)
			if name == "" {
				continue
			}
			for _, propType := range p.cfg.Parser.PropTypes {
				line, ok := extract.OwnLine(cand, models.PropIdentifier(propType), p.priority)
				if !ok {
					continue
				}
				out = append(out, models.Prop{
					Player:    name,
					Position:  firstString(cand, "position", "pos"),
					Team:      firstString(cand, "team", "teamAbbr", "team_abbrev", "team_name"),
					Opponent:  firstString(cand, "opp", "opponent", "opponent_abbrev", "opponent_name"),
					League:    league,
					Market:    models.MarketTitle(propType),
					PropType:  propType,
					Line:      line,
					Source:    parserName,
					StartTime: parseGameTime(firstString(cand, "gameDate", "gameTime", "start_time")),
					UpdatedAt: now,
				})
			}
		}
	}
	return out
}

func firstString(m extract.Mapping, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(m.GetString(k)); s != "" {
			return s
		}
	}
	return ""
}

func parseGameTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (p *Parser) runOnce(ctx context.Context) error {
	runOnceMu.Lock()
	defer runOnceMu.Unlock()
	start := time.Now()
	var total int
	var lastErr error
	defer func() {
		slog.Info("Rotowire: parse cycle finished", "props", total, "duration", time.Since(start))
	}()

	for _, url := range p.cfg.Parser.Rotowire.PageURLs {
		if ctx.Err() != nil {
			return nil
		}
		html, err := parsers.FetchPage(ctx, p.client, url)
		if err != nil {
			slog.Warn("Rotowire: page fetch failed", "url", url, "error", err)
			lastErr = err
			continue
		}
		props := p.PropsFromPage(html, LeagueForURL(url))
		if len(props) > 0 {
			health.AddProps(props)
			total += len(props)
		}
	}
	if total == 0 && lastErr != nil {
		return fmt.Errorf("rotowire: %w", lastErr)
	}
	return nil
}

func (p *Parser) Start(ctx context.Context) error {
	slog.Info("Starting Rotowire parser (background mode)...")
	if err := p.runOnce(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (p *Parser) ParseOnce(ctx context.Context) error {
	return p.runOnce(ctx)
}

func (p *Parser) Stop() error {
	return nil
}

func (p *Parser) GetName() string {
	return parserName
}

// LookupPlayer tries the NFL page first, then college football.
func (p *Parser) LookupPlayer(ctx context.Context, player, propType string) (*models.OddsData, error) {
	return p.pages.LookupPlayer(ctx, player, propType)
}
