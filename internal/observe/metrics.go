// Package observe holds the server's OpenTelemetry metric instruments and
// the Prometheus-backed provider that exposes them on /metrics.
//
// Tests should build a Metrics with NewMetrics and their own MeterProvider.
package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/robalobadob/wordsearch/internal/game"
)

const meterName = "github.com/robalobadob/wordsearch"

// Metrics holds every instrument the puzzle server records.
// Each is tagged with a "difficulty" attribute.
type Metrics struct {
	PuzzlesStarted   metric.Int64Counter
	PuzzlesCompleted metric.Int64Counter
	WordsFound       metric.Int64Counter

	// WordsDropped counts catalog words the generator could not place.
	WordsDropped metric.Int64Counter

	ActivePuzzles metric.Int64UpDownCounter

	// CompletionSeconds is the elapsed play time of completed puzzles.
	CompletionSeconds metric.Float64Histogram
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	var err error

	if m.PuzzlesStarted, err = meter.Int64Counter("wordsearch.puzzles.started",
		metric.WithDescription("Puzzle instances generated."),
	); err != nil {
		return nil, err
	}
	if m.PuzzlesCompleted, err = meter.Int64Counter("wordsearch.puzzles.completed",
		metric.WithDescription("Puzzle instances with every word found."),
	); err != nil {
		return nil, err
	}
	if m.WordsFound, err = meter.Int64Counter("wordsearch.words.found",
		metric.WithDescription("Successful word selections."),
	); err != nil {
		return nil, err
	}
	if m.WordsDropped, err = meter.Int64Counter("wordsearch.words.dropped",
		metric.WithDescription("Catalog words dropped after exhausting placement attempts."),
	); err != nil {
		return nil, err
	}
	if m.ActivePuzzles, err = meter.Int64UpDownCounter("wordsearch.puzzles.active",
		metric.WithDescription("Puzzles currently registered."),
	); err != nil {
		return nil, err
	}
	if m.CompletionSeconds, err = meter.Float64Histogram("wordsearch.puzzle.completion",
		metric.WithDescription("Elapsed seconds at completion."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(30, 60, 120, 180, 240, 300, 600),
	); err != nil {
		return nil, err
	}
	return m, nil
}

func difficultyAttr(d game.Difficulty) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("difficulty", string(d)))
}

// RecordStart records a new instance and the words it lost.
func (m *Metrics) RecordStart(ctx context.Context, s game.Session) {
	opt := difficultyAttr(s.Difficulty)
	m.PuzzlesStarted.Add(ctx, 1, opt)
	if s.Dropped > 0 {
		m.WordsDropped.Add(ctx, int64(s.Dropped), opt)
	}
}

// RecordWord records one found word.
func (m *Metrics) RecordWord(ctx context.Context, d game.Difficulty) {
	m.WordsFound.Add(ctx, 1, difficultyAttr(d))
}

// RecordComplete records a finished instance.
func (m *Metrics) RecordComplete(ctx context.Context, res game.Result) {
	opt := difficultyAttr(res.Difficulty)
	m.PuzzlesCompleted.Add(ctx, 1, opt)
	m.CompletionSeconds.Record(ctx, float64(res.ElapsedSeconds), opt)
}

// PuzzleOpened and PuzzleClosed track the registry size.
func (m *Metrics) PuzzleOpened(ctx context.Context) { m.ActivePuzzles.Add(ctx, 1) }

func (m *Metrics) PuzzleClosed(ctx context.Context) { m.ActivePuzzles.Add(ctx, -1) }
