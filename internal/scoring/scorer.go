package scoring

import (
	"github.com/hackgenix/fraudscore/internal/features"
	"github.com/hackgenix/fraudscore/internal/model"
)

// Scorer binds a loaded model to its feature schema and scores record
// sets end-to-end: extract, predict, classify, build. The model is
// loaded once and shared across every batch the Scorer sees.
type Scorer struct {
	model  *model.Model
	schema features.Schema
}

// NewScorer creates a scorer around a loaded model. The schema comes
// from the artifact itself so matrix column order always matches the
// order the model was trained with.
func NewScorer(m *model.Model) *Scorer {
	return &Scorer{
		model:  m,
		schema: features.Schema(m.Features),
	}
}

// Schema returns the feature schema the scorer extracts against.
func (s *Scorer) Schema() features.Schema {
	return s.schema
}

// Score runs the full scoring sequence over a record set. Output order
// matches input order; the first error aborts with no partial results.
func (s *Scorer) Score(records []features.Record) ([]Result, error) {
	matrix, err := features.Extract(records, s.schema)
	if err != nil {
		return nil, err
	}

	probs, err := s.model.Predict(matrix)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(records))
	flags := make([]int, len(probs))
	levels := make([]RiskLevel, len(probs))
	for i, p := range probs {
		ids[i] = records[i].ID
		flags[i], levels[i] = Classify(p)
	}

	return BuildResults(ids, probs, flags, levels)
}
