package draftkings

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Vodeneev/propline/internal/parser/parsers"
	"github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/health"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/pagescan"
)

const parserName = "draftkings"

var runOnceMu sync.Mutex

func init() {
	parsers.Register(parserName, func(cfg *config.Config) interfaces.Parser { return NewParser(cfg) })
}

var _ interfaces.PlayerLookup = (*Parser)(nil)

type Parser struct {
	cfg    *config.Config
	client *Client
	pages  *parsers.PageLookup
	now    func() time.Time
}

func NewParser(cfg *config.Config) *Parser {
	dk := &cfg.Parser.DraftKings
	return &Parser{
		cfg:    cfg,
		client: NewClient(dk.BaseURL, parsers.NewHTTPClient(&cfg.Parser)),
		pages: &parsers.PageLookup{
			Source:   parserName,
			Client:   parsers.NewHTTPClient(&cfg.Parser),
			URLs:     dk.PageURLs,
			Priority: cfg.Priority(),
			// DraftKings inlines its state as large objects; short blobs are config noise
			Scan: pagescan.Options{MinLength: 100},
		},
		now: time.Now,
	}
}

func (p *Parser) eventGroupID(league string) (string, bool) {
	for k, v := range p.cfg.Parser.DraftKings.EventGroups {
		if strings.EqualFold(k, strings.TrimSpace(league)) {
			return v, true
		}
	}
	return "", false
}

// FetchProps walks category -> subcategories -> offers for one league and
// prop type. Unknown leagues and prop types yield no props.
func (p *Parser) FetchProps(ctx context.Context, league, propType string) ([]models.Prop, error) {
	groupID, ok := p.eventGroupID(league)
	if !ok {
		slog.Warn("DraftKings: no event group for league", "league", league)
		return nil, nil
	}
	categoryID, ok := p.cfg.Parser.DraftKings.Categories[propType]
	if !ok {
		slog.Warn("DraftKings: no category for prop type", "prop_type", propType)
		return nil, nil
	}

	group, err := p.client.GetCategory(ctx, groupID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("GetCategory %s/%d: %w", groupID, categoryID, err)
	}

	var subIDs []int64
	for _, cat := range group.OfferCategories {
		for _, sub := range cat.OfferSubcategoryDescriptors {
			subIDs = append(subIDs, sub.SubcategoryID)
		}
	}
	if len(subIDs) == 0 {
		slog.Info("DraftKings: no subcategories, market may be empty", "league", league, "prop_type", propType)
		return nil, nil
	}

	var props []models.Prop
	for _, subID := range subIDs {
		if err := ctx.Err(); err != nil {
			return props, err
		}
		sub, err := p.client.GetSubcategory(ctx, groupID, categoryID, subID)
		if err != nil {
			return props, fmt.Errorf("GetSubcategory %d: %w", subID, err)
		}
		props = append(props, groupToProps(sub, league, propType, p.now())...)
	}
	return props, nil
}

// groupToProps keeps markets whose first outcome names a participant; the
// first outcome is Over, the second Under.
func groupToProps(g *eventGroup, league, propType string, now time.Time) []models.Prop {
	events := make(map[int64]event, len(g.Events))
	for _, ev := range g.Events {
		events[ev.EventID] = ev
	}

	var out []models.Prop
	for _, cat := range g.OfferCategories {
		for _, desc := range cat.OfferSubcategoryDescriptors {
			if desc.OfferSubcategory == nil {
				continue
			}
			marketName := desc.Name
			if marketName == "" {
				marketName = desc.OfferSubcategory.Name
			}
			if marketName == "" {
				marketName = models.MarketTitle(propType)
			}
			for _, offer := range desc.OfferSubcategory.Offers {
				for _, m := range offer {
					if len(m.Outcomes) == 0 || m.Outcomes[0].Participant == "" || m.Outcomes[0].Line == nil {
						continue
					}
					over := m.Outcomes[0]
					prop := models.Prop{
						Player:    over.Participant,
						League:    strings.ToUpper(league),
						Market:    marketName,
						PropType:  propType,
						Line:      *over.Line,
						OverOdds:  parseAmerican(over.OddsAmerican),
						Source:    parserName,
						StartTime: parseStart(m.StartDate),
						UpdatedAt: now,
					}
					if len(m.Outcomes) > 1 {
						prop.UnderOdds = parseAmerican(m.Outcomes[1].OddsAmerican)
					}
					if ev, ok := events[m.EventID]; ok && prop.StartTime.IsZero() {
						prop.StartTime = parseStart(ev.StartDate)
					}
					out = append(out, prop)
				}
			}
		}
	}
	return out
}

// parseAmerican reads "+105", "-110" and the typographic minus DraftKings uses.
func parseAmerican(s string) *int {
	s = strings.TrimSpace(strings.ReplaceAll(s, "−", "-"))
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func parseStart(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func (p *Parser) runOnce(ctx context.Context) error {
	runOnceMu.Lock()
	defer runOnceMu.Unlock()
	start := time.Now()
	var total, failed int
	var lastErr error
	defer func() {
		slog.Info("DraftKings: parse cycle finished", "props", total, "failed_requests", failed, "duration", time.Since(start))
	}()

	for _, league := range p.cfg.Parser.Leagues {
		for _, propType := range p.cfg.Parser.PropTypes {
			if ctx.Err() != nil {
				return nil
			}
			props, err := p.FetchProps(ctx, league, propType)
			if err != nil {
				slog.Warn("DraftKings: FetchProps failed", "league", league, "prop_type", propType, "error", err)
				failed++
				lastErr = err
			}
			if len(props) > 0 {
				health.AddProps(props)
				total += len(props)
			}
		}
	}
	if total == 0 && lastErr != nil {
		return fmt.Errorf("draftkings: all requests failed: %w", lastErr)
	}
	return nil
}

func (p *Parser) Start(ctx context.Context) error {
	slog.Info("Starting DraftKings parser (background mode)...")
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

// LookupPlayer scans the sportsbook pages' embedded JSON for one player.
func (p *Parser) LookupPlayer(ctx context.Context, player, propType string) (*models.OddsData, error) {
	return p.pages.LookupPlayer(ctx, player, propType)
}
