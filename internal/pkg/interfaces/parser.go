package interfaces

import (
	"context"

	"github.com/Vodeneev/propline/internal/pkg/models"
)

// Parser interface for sportsbook prop sources
type Parser interface {
	// Start starts the parser (may run in background or just wait for context)
	Start(ctx context.Context) error

	// Stop stops the parser
	Stop() error

	// GetName returns the parser name
	GetName() string

	// ParseOnce triggers a single parsing run (on-demand parsing)
	ParseOnce(ctx context.Context) error
}

// PlayerLookup is implemented by parsers that can answer a single-player
// query without a full scrape.
type PlayerLookup interface {
	Parser

	// LookupPlayer returns the player's line for propType, or
	// models.ErrNoOddsData when the source has none.
	LookupPlayer(ctx context.Context, player, propType string) (*models.OddsData, error)
}
