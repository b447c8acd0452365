// Package pipeline drives one batch scoring run from model load to
// result handoff.
//
// The run is sequential and all-or-nothing: the first error at any stage
// aborts the batch, nothing is retried, and no partial result table is
// emitted. Retry and backoff belong to the external caller that invokes
// the batch per run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hackgenix/fraudscore/internal/dataset"
	"github.com/hackgenix/fraudscore/internal/idgen"
	"github.com/hackgenix/fraudscore/internal/logging"
	"github.com/hackgenix/fraudscore/internal/metrics"
	"github.com/hackgenix/fraudscore/internal/model"
	"github.com/hackgenix/fraudscore/internal/retry"
	"github.com/hackgenix/fraudscore/internal/scoring"
	"github.com/hackgenix/fraudscore/internal/traces"
)

// Report summarizes a completed batch run.
type Report struct {
	BatchID  string
	Rows     int
	Flagged  int
	High     int
	Medium   int
	Low      int
	Duration time.Duration
}

// Runner executes batch scoring runs. One Runner handles one batch;
// nothing is shared across runs beyond the configuration it was built with.
type Runner struct {
	modelPath  string
	inputPath  string
	outputPath string
	store      scoring.Store
}

// Option configures the runner
type Option func(*Runner)

// WithStore records a batch audit row after each successful run.
func WithStore(store scoring.Store) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// NewRunner creates a batch runner. All paths are explicit parameters:
// where the artifact, input table, and output table live is the caller's
// concern, never a constant of the pipeline.
func NewRunner(modelPath, inputPath, outputPath string, opts ...Option) *Runner {
	r := &Runner{
		modelPath:  modelPath,
		inputPath:  inputPath,
		outputPath: outputPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scores one batch to completion. Stage order is fixed: the model is
// loaded before the input table is touched, so a bad artifact fails the
// run without any input I/O.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	batchID := idgen.WithPrefix("batch_")
	ctx = logging.WithBatchID(ctx, batchID)
	log := logging.L(ctx)
	start := time.Now()

	ctx, span := traces.StartSpan(ctx, "pipeline.run",
		traces.BatchID(batchID), traces.ModelPath(r.modelPath))
	defer span.End()

	m, err := model.Load(r.modelPath)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	log.Info("model loaded", "path", r.modelPath, "features", m.InputWidth(), "layers", len(m.Layers))

	records, err := dataset.ReadRecords(r.inputPath)
	if err != nil {
		return nil, r.fail(ctx, err)
	}
	log.Info("input table loaded", "path", r.inputPath, "rows", len(records))

	results, err := scoring.NewScorer(m).Score(records)
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	if err := dataset.WriteResults(r.outputPath, results); err != nil {
		return nil, r.fail(ctx, err)
	}

	took := time.Since(start)
	batch := scoring.Summarize(batchID, r.inputPath, results, took)

	if r.store != nil {
		err := retry.Do(ctx, 3, 200*time.Millisecond, func() error {
			return r.store.RecordBatch(ctx, batch)
		})
		if err != nil {
			// Audit trail is best-effort; the result table is already published.
			log.Warn("failed to record batch audit row", "error", err)
		}
	}

	observe(batch)
	span.SetAttributes(traces.RowCount(batch.RowCount), traces.FlaggedCount(batch.FlaggedCount))
	log.Info("batch scored",
		"rows", batch.RowCount,
		"flagged", batch.FlaggedCount,
		"high", batch.HighCount,
		"medium", batch.MediumCount,
		"low", batch.LowCount,
		"took", took,
	)

	return &Report{
		BatchID:  batchID,
		Rows:     batch.RowCount,
		Flagged:  batch.FlaggedCount,
		High:     batch.HighCount,
		Medium:   batch.MediumCount,
		Low:      batch.LowCount,
		Duration: took,
	}, nil
}

// fail records the failed outcome and passes the error through unchanged
// so callers can branch on its kind with errors.Is.
func (r *Runner) fail(ctx context.Context, err error) error {
	metrics.BatchesTotal.WithLabelValues("failure").Inc()
	logging.L(ctx).Error("batch aborted", "error", err)
	return fmt.Errorf("score batch: %w", err)
}

func observe(batch *scoring.Batch) {
	metrics.BatchesTotal.WithLabelValues("success").Inc()
	metrics.BatchDuration.Observe(float64(batch.DurationMS) / 1000.0)
	metrics.RowsScoredTotal.WithLabelValues(string(scoring.RiskHigh)).Add(float64(batch.HighCount))
	metrics.RowsScoredTotal.WithLabelValues(string(scoring.RiskMedium)).Add(float64(batch.MediumCount))
	metrics.RowsScoredTotal.WithLabelValues(string(scoring.RiskLow)).Add(float64(batch.LowCount))
	metrics.RowsFlaggedTotal.Add(float64(batch.FlaggedCount))
}
