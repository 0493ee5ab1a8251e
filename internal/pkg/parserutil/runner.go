package parserutil

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Vodeneev/propline/internal/pkg/interfaces"
)

// ParserFunc runs one parser.
type ParserFunc func(ctx context.Context, p interfaces.Parser) error

// RunOptions configures a RunParsers call.
type RunOptions struct {
	// PerParserTimeout bounds each parser separately; 0 means only ctx applies.
	PerParserTimeout time.Duration
	// OnDone is called after every parser with its run time and result,
	// including cancelled runs.
	OnDone func(p interfaces.Parser, took time.Duration, err error)
	// OnError is called for failures while ctx is still live. Nil logs them.
	OnError func(p interfaces.Parser, err error)
	// OnComplete is called once after every parser has returned.
	OnComplete func()
	// WaitForCompletion blocks until all parsers finish. Otherwise RunParsers
	// returns at once and ctx must outlive the run.
	WaitForCompletion bool
}

// AsyncRunOptions returns options for a fire-and-forget run.
func AsyncRunOptions() RunOptions {
	return RunOptions{}
}

// Result is one parser's outcome.
type Result struct {
	Parser string
	Took   time.Duration
	Err    error
}

// RunParsers runs all parsers in parallel. With WaitForCompletion it returns
// the per-parser results in input order; async runs return nil.
func RunParsers(ctx context.Context, parsers []interfaces.Parser, run ParserFunc, opts RunOptions) []Result {
	onError := opts.OnError
	if onError == nil {
		onError = func(p interfaces.Parser, err error) {
			slog.Error("Parser failed", "parser", p.GetName(), "error", err)
		}
	}

	results := make([]Result, len(parsers))
	var wg sync.WaitGroup
	for i, p := range parsers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			pctx := ctx
			if opts.PerParserTimeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(ctx, opts.PerParserTimeout)
				defer cancel()
			}

			start := time.Now()
			err := run(pctx, p)
			took := time.Since(start)
			results[i] = Result{Parser: p.GetName(), Took: took, Err: err}

			if opts.OnDone != nil {
				opts.OnDone(p, took, err)
			}
			if err != nil && ctx.Err() == nil {
				onError(p, err)
			}
		}()
	}

	finish := func() {
		wg.Wait()
		if opts.OnComplete != nil {
			opts.OnComplete()
		}
	}
	if !opts.WaitForCompletion {
		go finish()
		return nil
	}
	finish()
	return results
}
