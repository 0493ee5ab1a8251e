package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/models"
	"github.com/Vodeneev/propline/internal/pkg/parserutil"
	"github.com/Vodeneev/propline/internal/pkg/report"
)

// GetPropsFunc returns stored props filtered by league and player
type GetPropsFunc func(league, player string) []models.Prop

var getPropsFunc GetPropsFunc

// SetGetPropsFunc sets the function to get props
func SetGetPropsFunc(fn GetPropsFunc) {
	getPropsFunc = fn
}

var asyncParseTimeout = 60 * time.Second

// SetAsyncParseTimeout sets how long a refresh triggered by /props may run.
func SetAsyncParseTimeout(d time.Duration) {
	if d > 0 {
		asyncParseTimeout = d
	}
}

// triggerParsingAsync runs every parser in the background with its own
// timeout so the run outlives the HTTP request.
func triggerParsingAsync() {
	if getParsersFunc == nil {
		return
	}
	parsers := getParsersFunc()
	if len(parsers) == 0 {
		return
	}

	parseCtx, cancel := context.WithTimeout(context.Background(), asyncParseTimeout)

	opts := parserutil.AsyncRunOptions()
	opts.OnError = func(p interfaces.Parser, err error) {
		slog.Error("On-demand parsing failed", "parser", p.GetName(), "error", err)
	}
	opts.OnComplete = cancel

	_ = parserutil.RunParsers(parseCtx, parsers, func(ctx context.Context, p interfaces.Parser) error {
		return p.ParseOnce(ctx)
	}, opts)
}

func queryProps(r *http.Request) []models.Prop {
	q := r.URL.Query()
	if q.Get("refresh") != "" {
		// cached data is returned now; fresh lines show up on the next request
		triggerParsingAsync()
	}
	if getPropsFunc == nil {
		return []models.Prop{}
	}
	return getPropsFunc(q.Get("league"), q.Get("player"))
}

// HandleProps handles /props?league=&player=&refresh=
func HandleProps(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	props := queryProps(r)
	duration := time.Since(start)

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Query-Duration", duration.String())
	w.Header().Set("X-Props-Count", fmt.Sprintf("%d", len(props)))
	w.Header().Set("X-Source", "memory")

	writeJSON(w, http.StatusOK, map[string]any{
		"props": props,
		"meta": map[string]any{
			"count":    len(props),
			"duration": duration.String(),
			"source":   "memory",
		},
	})
}

// HandleRows handles /rows: same filters as /props, dashboard row shape.
func HandleRows(w http.ResponseWriter, r *http.Request) {
	rows := report.Rows(queryProps(r))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}
