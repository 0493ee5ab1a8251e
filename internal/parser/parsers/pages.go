package parsers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/Vodeneev/propline/internal/pkg/extract"
	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/pagescan"
)

// FetchPage returns the body of an HTML page.
func FetchPage(ctx context.Context, client *resty.Client, url string) (string, error) {
	res, err := client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,*/*;q=0.8").
		Get(url)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	if res.IsError() {
		return "", &StatusError{URL: url, Code: res.StatusCode()}
	}
	return res.String(), nil
}

// PageLookup scans pages in order for a player's embedded line.
type PageLookup struct {
	Source   string
	Client   *resty.Client
	URLs     []string
	Priority extract.Priority
	Scan     pagescan.Options
}

// LookupPlayer returns the first line found for player on any page.
// models.ErrNoOddsData means the pages loaded but none carried the player;
// when every page failed to load the last fetch error is returned instead.
func (l *PageLookup) LookupPlayer(ctx context.Context, player, propType string) (*models.OddsData, error) {
	category := models.PropIdentifier(propType)
	var lastErr error
	loaded := 0

	for _, url := range l.URLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		html, err := FetchPage(ctx, l.Client, url)
		if err != nil {
			slog.Warn("Page fetch failed", "source", l.Source, "url", url, "error", err)
			lastErr = err
			continue
		}
		loaded++

		blobs := pagescan.Blobs(html, l.Scan)
		slog.Debug("Scanned page", "source", l.Source, "url", url, "blobs", len(blobs))
		for _, blob := range blobs {
			if line, ok := extract.FindPlayerLine(blob, player, category, l.Priority); ok {
				slog.Info("Player line found", "source", l.Source, "player", player, "prop_type", propType, "line", line)
				return &models.OddsData{PropLine: line, Source: l.Source}, nil
			}
		}
	}

	if loaded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s: %s %s: %w", l.Source, player, propType, models.ErrNoOddsData)
}

