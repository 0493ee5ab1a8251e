package models

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// ErrNoOddsData is returned when no source carried a line for the query.
var ErrNoOddsData = errors.New("no odds data available for this query")

// Prop is one player proposition line from one source
type Prop struct {
	Player    string    `json:"player"`
	Position  string    `json:"position,omitempty"`
	Team      string    `json:"team,omitempty"`
	Opponent  string    `json:"opponent,omitempty"`
	League    string    `json:"league,omitempty"`    // "NFL", "CFB"
	Market    string    `json:"market"`              // market name as the source labels it
	PropType  string    `json:"prop_type"`           // "player_receiving_yards"
	Line      float64   `json:"line"`
	OverOdds  *int      `json:"over_odds,omitempty"` // American odds
	UnderOdds *int      `json:"under_odds,omitempty"`
	Source    string    `json:"source"`              // parser that produced the line
	StartTime time.Time `json:"start_time,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key identifies a prop line across scrape cycles: same player, same prop
// type, same source.
func (p Prop) Key() string {
	return strings.ToLower(strings.TrimSpace(p.Player)) + "|" + p.PropType + "|" + strings.ToLower(p.Source)
}

// OddsData is the line found for a single lookup
type OddsData struct {
	PropLine  float64 `json:"prop_line"`
	OverOdds  *int    `json:"over_odds,omitempty"`
	UnderOdds *int    `json:"under_odds,omitempty"`
	Source    string  `json:"source"`
}

// LookupRequest asks for one player's line in one market
type LookupRequest struct {
	Game     string `json:"game,omitempty"`
	Player   string `json:"player"`
	PropType string `json:"prop_type"`
}

// PlayerInfo is whatever the sources told us about the player
type PlayerInfo struct {
	Name      string    `json:"name"`
	Position  string    `json:"position,omitempty"`
	Team      string    `json:"team,omitempty"`
	Opponent  string    `json:"opponent,omitempty"`
	League    string    `json:"league,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
}

// GatheredData is the result of a lookup across all sources
type GatheredData struct {
	Request  LookupRequest `json:"request"`
	OddsData *OddsData     `json:"odds_data,omitempty"`
	Player   PlayerInfo    `json:"player"`
	Message  string        `json:"message,omitempty"`
}

// PropIdentifier returns the category token of a prop type:
// "player_passing_yards" -> "passing". Types without underscores are returned
// as they are.
func PropIdentifier(propType string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(propType)), "_")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return parts[0]
}

// MarketTitle turns "player_passing_yards" into "Player Passing Yards".
func MarketTitle(propType string) string {
	words := strings.FieldsFunc(propType, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
