// Package scoring maps model probabilities to fraud decisions and
// assembles the per-transaction result table.
//
// Two independent policy knobs derive from one probability:
//
//   - fraud_flag: binary review trigger, cut at 0.5
//   - risk_level: three-way triage bucket, cut at 0.4 and 0.7
//
// The flag and the level are decoupled: a transaction at p=0.45 is
// flag=0 but MEDIUM, one at p=0.55 is flag=1 and still MEDIUM.
// Downstream review queues rely on that distinction; do not collapse the
// thresholds into a single ladder.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackgenix/fraudscore/internal/pagination"
)

// ErrLengthMismatch indicates the result-assembly inputs disagree on row
// count. In a correct pipeline this only fires if an upstream stage broke
// its row-order contract.
var ErrLengthMismatch = errors.New("result input length mismatch")

// RiskLevel is the three-way triage bucket for a scored transaction.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Decision thresholds. The flag threshold and the level thresholds are
// independent policy constants; exact equality falls to the lower bucket.
const (
	FlagThreshold   = 0.5
	MediumThreshold = 0.4
	HighThreshold   = 0.7
)

// ReasonModelPrediction tags results produced by the ML path, so
// downstream consumers can tell them apart from rule-based or manual
// classifications in the review system.
const ReasonModelPrediction = "ML model prediction"

// Classify maps a probability to a binary fraud flag and a risk level.
// Pure function; strict > comparisons throughout.
func Classify(prob float64) (flag int, level RiskLevel) {
	if prob > FlagThreshold {
		flag = 1
	}
	switch {
	case prob > HighThreshold:
		level = RiskHigh
	case prob > MediumThreshold:
		level = RiskMedium
	default:
		level = RiskLow
	}
	return flag, level
}

// Result is one scored transaction. Created once per run, immutable
// after creation; result order matches input record order.
type Result struct {
	TransactionID string    `json:"transactionId"`
	Probability   float64   `json:"mlPredProb"`
	FraudFlag     int       `json:"fraudFlag"`
	RiskLevel     RiskLevel `json:"riskLevel"`
	Reason        string    `json:"reason"`
}

// BuildResults assembles aligned id/probability/flag/level sequences into
// the result table. All four must have equal length; correspondence is by
// position, not by key lookup.
func BuildResults(ids []string, probs []float64, flags []int, levels []RiskLevel) ([]Result, error) {
	n := len(ids)
	if len(probs) != n || len(flags) != n || len(levels) != n {
		return nil, fmt.Errorf("%w: ids=%d probs=%d flags=%d levels=%d",
			ErrLengthMismatch, n, len(probs), len(flags), len(levels))
	}

	results := make([]Result, n)
	for i := range ids {
		results[i] = Result{
			TransactionID: ids[i],
			Probability:   probs[i],
			FraudFlag:     flags[i],
			RiskLevel:     levels[i],
			Reason:        ReasonModelPrediction,
		}
	}
	return results, nil
}

// Batch is the audit record of one scored batch.
type Batch struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	RowCount     int       `json:"rowCount"`
	FlaggedCount int       `json:"flaggedCount"`
	HighCount    int       `json:"highCount"`
	MediumCount  int       `json:"mediumCount"`
	LowCount     int       `json:"lowCount"`
	DurationMS   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summarize builds the audit record for a completed batch.
func Summarize(id, source string, results []Result, took time.Duration) *Batch {
	b := &Batch{
		ID:         id,
		Source:     source,
		RowCount:   len(results),
		DurationMS: took.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	for _, r := range results {
		if r.FraudFlag == 1 {
			b.FlaggedCount++
		}
		switch r.RiskLevel {
		case RiskHigh:
			b.HighCount++
		case RiskMedium:
			b.MediumCount++
		default:
			b.LowCount++
		}
	}
	return b
}

// Store persists batch audit records for the review workflow.
type Store interface {
	RecordBatch(ctx context.Context, batch *Batch) error
	ListBatches(ctx context.Context, limit int, before *pagination.Cursor) ([]*Batch, error)
}
