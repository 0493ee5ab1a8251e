package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Vodeneev/propline/internal/pkg/interfaces"
	"github.com/Vodeneev/propline/internal/pkg/parserutil"
	"github.com/Vodeneev/propline/internal/pkg/performance"
)

var getParsersFunc func() []interfaces.Parser

func SetGetParsersFunc(fn func() []interfaces.Parser) {
	getParsersFunc = fn
}

type parseResult struct {
	Parser   string `json:"parser"`
	Duration string `json:"duration"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// HandleParse runs one parser (?parser=rotowire) or all of them and waits
// for the results. GET or POST.
func HandleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var parsers []interfaces.Parser
	if getParsersFunc != nil {
		parsers = getParsersFunc()
	}
	if len(parsers) == 0 {
		writeError(w, http.StatusInternalServerError, "no parsers registered")
		return
	}

	target := parsers
	if name := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("parser"))); name != "" {
		target = nil
		for _, p := range parsers {
			if strings.EqualFold(p.GetName(), name) {
				target = []interfaces.Parser{p}
				break
			}
		}
		if len(target) == 0 {
			writeError(w, http.StatusNotFound, fmt.Sprintf("parser '%s' not found", name))
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), asyncParseTimeout)
	defer cancel()

	metrics := performance.GetTracker()
	opts := parserutil.AsyncRunOptions()
	opts.WaitForCompletion = true
	opts.OnDone = func(p interfaces.Parser, took time.Duration, err error) {
		metrics.RecordParserRun(p.GetName(), took, err)
	}
	opts.OnError = func(p interfaces.Parser, err error) {
		slog.Error("Manual parse failed", "parser", p.GetName(), "error", err)
	}

	slog.Info("Manual parse triggered", "parsers", len(target))
	runs := parserutil.RunParsers(ctx, target, func(ctx context.Context, p interfaces.Parser) error {
		return p.ParseOnce(ctx)
	}, opts)

	results := make([]parseResult, 0, len(runs))
	for _, run := range runs {
		res := parseResult{Parser: run.Parser, Duration: run.Took.String(), Success: run.Err == nil}
		if run.Err != nil {
			res.Error = run.Err.Error()
		}
		results = append(results, res)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
