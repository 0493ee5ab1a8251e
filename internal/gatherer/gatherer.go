// Package gatherer answers single-player line queries by asking the sources
// in a fixed order.
package gatherer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vodeneev/propline/internal/pkg/extract"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
)

// PropsFunc returns stored props for a player; used only to describe the player.
type PropsFunc func(league, player string) []models.Prop

type Gatherer struct {
	rotowire         interfaces.PlayerLookup
	draftkings       interfaces.PlayerLookup
	enableDKFallback bool
	props            PropsFunc
}

// New builds a gatherer. Either lookup may be nil when that parser is disabled.
func New(rotowire, draftkings interfaces.PlayerLookup, enableDKFallback bool, props PropsFunc) *Gatherer {
	return &Gatherer{
		rotowire:         rotowire,
		draftkings:       draftkings,
		enableDKFallback: enableDKFallback,
		props:            props,
	}
}

func (g *Gatherer) sources() []interfaces.PlayerLookup {
	var out []interfaces.PlayerLookup
	if g.rotowire != nil {
		out = append(out, g.rotowire)
	}
	// DraftKings pages are slow and flaky, only asked when explicitly enabled
	if g.enableDKFallback && g.draftkings != nil {
		out = append(out, g.draftkings)
	}
	return out
}

// Gather looks the player's line up in Rotowire, then DraftKings when the
// fallback is enabled. A query nobody could answer returns the partial
// result together with models.ErrNoOddsData.
func (g *Gatherer) Gather(ctx context.Context, req models.LookupRequest) (*models.GatheredData, error) {
	req.Player = strings.TrimSpace(req.Player)
	req.PropType = strings.TrimSpace(req.PropType)
	if req.Player == "" || req.PropType == "" {
		return nil, fmt.Errorf("player and prop type are required")
	}

	out := &models.GatheredData{
		Request: req,
		Player:  g.playerInfo(req.Player),
	}

	var errs []error
	noData := false
	for _, src := range g.sources() {
		data, err := src.LookupPlayer(ctx, req.Player, req.PropType)
		switch {
		case err == nil && data != nil:
			if data.Source == "" {
				data.Source = src.GetName()
			}
			out.OddsData = data
			slog.Info("Gathered line", "player", req.Player, "prop_type", req.PropType, "source", data.Source, "line", data.PropLine)
			return out, nil
		case err == nil, errors.Is(err, models.ErrNoOddsData):
			noData = true
		default:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("Lookup failed", "source", src.GetName(), "player", req.Player, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.GetName(), err))
		}
	}

	if len(errs) > 0 && !noData {
		return nil, errors.Join(errs...)
	}
	out.Message = fmt.Sprintf("could not find a %s line for %s", req.PropType, req.Player)
	return out, models.ErrNoOddsData
}

func (g *Gatherer) playerInfo(player string) models.PlayerInfo {
	info := models.PlayerInfo{Name: player}
	if g.props == nil {
		return info
	}
	parts := strings.Fields(player)
	for _, p := range g.props("", parts[len(parts)-1]) {
		if !extract.NameMatches(p.Player, player) {
			continue
		}
		info.Name = p.Player
		info.Position = p.Position
		info.Team = p.Team
		info.Opponent = p.Opponent
		info.League = p.League
		info.StartTime = p.StartTime
		if info.Team != "" {
			break
		}
	}
	return info
}
