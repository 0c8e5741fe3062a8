// Package pipeline runs one analysis request end to end:
// resolve → fetch snapshot → build prompt → generate → format.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"SignalSG/internal/calculator"
	"SignalSG/internal/collector"
	"SignalSG/internal/model"
	"SignalSG/internal/narrative"
	"SignalSG/internal/notifier"
	"SignalSG/internal/resolver"
)

// Options tune the optional parts of a run.
type Options struct {
	Currencies     []string // primary first; empty uses the fetcher default
	IncludeHistory bool
	HistoryDays    int
}

// Pipeline holds the collaborators of an analysis. It has no mutable state
// and is safe for concurrent use.
type Pipeline struct {
	Resolver  resolver.Resolver
	Fetcher   collector.Fetcher
	Template  narrative.Template
	Generator narrative.Generator
	Formatter *notifier.Formatter
	Options   Options
}

// New creates a pipeline.
func New(r resolver.Resolver, f collector.Fetcher, tpl narrative.Template, g narrative.Generator, fm *notifier.Formatter, opts Options) *Pipeline {
	return &Pipeline{
		Resolver:  r,
		Fetcher:   f,
		Template:  tpl,
		Generator: g,
		Formatter: fm,
		Options:   opts,
	}
}

// Run executes every stage once, stopping at the first failure.
func (p *Pipeline) Run(ctx context.Context, ticker string) (res model.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			zerolog.Ctx(ctx).Error().Str("ticker", ticker).Interface("panic", r).Msg("analysis panicked")
			res = model.Failed(&model.AnalysisError{
				Kind:   model.KindUnexpected,
				Ticker: ticker,
				Err:    fmt.Errorf("panic: %v", r),
			})
		}
	}()

	assetID, err := p.Resolver.Resolve(ctx, ticker)
	if err != nil {
		return p.fail(ctx, ticker, classifyResolve(err), err)
	}
	logger := zerolog.Ctx(ctx).With().Str("ticker", ticker).Str("asset_id", assetID).Logger()
	logger.Debug().Msg("ticker resolved")

	snap, err := p.Fetcher.FetchSnapshot(ctx, assetID, p.Options.Currencies...)
	if err != nil {
		return p.fail(ctx, ticker, classifyFetch(err), err)
	}

	var history *model.HistoryStats
	if p.Options.IncludeHistory {
		history = p.history(ctx, assetID)
	}

	prompt := p.Template.BuildPrompt(ticker, *snap, assetID, history)
	text, err := p.Generator.Generate(ctx, prompt)
	if err != nil {
		return p.fail(ctx, ticker, classifyGenerate(err), err)
	}
	if text == "" {
		return p.fail(ctx, ticker, model.KindGeneration, narrative.ErrEmptyResponse)
	}

	logger.Info().Msg("analysis generated")
	return model.Succeeded(model.Analysis{
		Ticker:    ticker,
		AssetID:   assetID,
		Snapshot:  *snap,
		Narrative: text,
	})
}

// Reply runs the pipeline and renders the message to show the user.
func (p *Pipeline) Reply(ctx context.Context, ticker string) string {
	return p.Formatter.Format(p.Run(ctx, ticker))
}

func (p *Pipeline) history(ctx context.Context, assetID string) *model.HistoryStats {
	points, err := p.Fetcher.FetchHistory(ctx, assetID, p.Options.HistoryDays)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("asset_id", assetID).Msg("price history unavailable")
		return nil
	}
	r, ok := calculator.Summarize(p.Options.HistoryDays, points)
	if !ok {
		return nil
	}
	return &r
}

func (p *Pipeline) fail(ctx context.Context, ticker string, kind model.ErrorKind, err error) model.AnalysisResult {
	logger := zerolog.Ctx(ctx)
	ev := logger.Warn()
	if kind == model.KindUnexpected {
		ev = logger.Error()
	}
	ev.Err(err).Str("ticker", ticker).Str("kind", kind.String()).Msg("analysis failed")
	return model.Failed(&model.AnalysisError{Kind: kind, Ticker: ticker, Err: err})
}

func classifyResolve(err error) model.ErrorKind {
	if errors.Is(err, resolver.ErrNotFound) {
		return model.KindResolution
	}
	return model.KindUnexpected
}

func classifyFetch(err error) model.ErrorKind {
	var fe *collector.FetchError
	if errors.As(err, &fe) {
		return model.KindFetch
	}
	return model.KindUnexpected
}

func classifyGenerate(err error) model.ErrorKind {
	var ge *narrative.GenerationError
	if errors.As(err, &ge) {
		return model.KindGeneration
	}
	return model.KindUnexpected
}
