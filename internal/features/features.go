// Package features turns raw transaction records into the ordered numeric
// matrix the classifier expects.
//
// The column order of the matrix is a contract with the model: it must
// match the order the model was trained with, so the schema travels with
// the model artifact rather than being derived from the input table.
// Missing or non-numeric feature values are normalized to 0, a deliberate,
// auditable substitution policy, not an error.
package features

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrSchemaFieldMissing indicates the input is missing a required
// identifier field. Feature values may default; the identity key may not.
var ErrSchemaFieldMissing = errors.New("required field missing")

// IDField is the identifier column every input record must carry.
const IDField = "Transaction_ID"

// DefaultValue replaces absent, empty, or non-numeric feature values.
const DefaultValue = 0.0

// Record is one input transaction: its identifier plus the raw string
// values of its feature fields, keyed by column name. Records are
// read-only inputs to the pipeline.
type Record struct {
	ID     string
	Fields map[string]string
}

// Schema is the ordered list of feature names a model instance expects.
type Schema []string

// DefaultSchema returns the nine feature columns the fraud MLP was
// trained on, in training order.
func DefaultSchema() Schema {
	return Schema{
		"Amount",
		"Hour_of_Day",
		"Is_Night_Transaction",
		"Is_High_Amount",
		"Amount_Log",
		"Category_Risk_Score",
		"Is_Foreign",
		"Category_Encoded",
		"Payment_Method_Encoded",
	}
}

// Extract builds the feature matrix for a record set: one row per record
// in input order, one column per schema field in schema order. Values
// that are absent, empty, or fail to parse as numbers become DefaultValue.
// A record without a Transaction_ID fails the whole batch.
func Extract(records []Record, schema Schema) ([][]float64, error) {
	matrix := make([][]float64, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.ID) == "" {
			return nil, fmt.Errorf("%w: record %d has no %s", ErrSchemaFieldMissing, i, IDField)
		}
		row := make([]float64, len(schema))
		for j, name := range schema {
			row[j] = numericOrDefault(rec.Fields[name])
		}
		matrix[i] = row
	}
	return matrix, nil
}

// numericOrDefault parses a raw cell value, applying the substitution
// policy for anything that is not a clean number.
func numericOrDefault(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "NA" || s == "NaN" {
		return DefaultValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return DefaultValue
	}
	return v
}
