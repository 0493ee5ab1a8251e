// Package report turns stored props into the compact rows shown by the
// dashboard and the CLI.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Vodeneev/propline/internal/pkg/models"
)

const notAvailable = "N/A"

// Row is one dashboard line.
type Row struct {
	Player          string `json:"player"`
	Position        string `json:"position"`
	Team            string `json:"team"`
	Opponent        string `json:"opponent"`
	Datetime        string `json:"datetime"`
	Market          string `json:"market"`
	PredictionScore int    `json:"prediction_score"` // predictions are not computed for scanned props
	Rotowire        string `json:"rotowire"`
	HitRate         string `json:"hit_rate"`
	League          string `json:"league"`
}

// Rows maps props to rows, keeping their order.
func Rows(props []models.Prop) []Row {
	rows := make([]Row, 0, len(props))
	for _, p := range props {
		rows = append(rows, FromProp(p))
	}
	return rows
}

func FromProp(p models.Prop) Row {
	market := p.Market
	if market == "" && p.PropType != "" {
		market = models.MarketTitle(p.PropType)
	}
	if market == "" {
		market = notAvailable
	} else {
		market = fmt.Sprintf("%s (%s)", market, strconv.FormatFloat(p.Line, 'f', -1, 64))
	}

	return Row{
		Player:   orNA(p.Player),
		Position: orNA(p.Position),
		Team:     orNA(p.Team),
		Opponent: orNA(p.Opponent),
		Datetime: FormatDatetime(p.StartTime),
		Market:   market,
		Rotowire: notAvailable,
		HitRate:  notAvailable,
		League:   orNA(p.League),
	}
}

// FormatDatetime renders kick-off as "Sun 09/07 01:00 PM".
func FormatDatetime(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format("Mon 01/02 03:04 PM")
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

// RenderTable writes rows as a rounded text table.
func RenderTable(w io.Writer, rows []Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Player", "Pos", "Team", "Opp", "Kick-off", "Market", "League"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.Player, r.Position, r.Team, r.Opponent, r.Datetime, r.Market, r.League})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("%d props", len(rows)), ""})
	t.SetStyle(table.StyleRounded)
	t.Render()
}
