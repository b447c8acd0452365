// Package dataset reads the transaction input table and writes the
// scored result table. Both are plain CSV with a header row, matching
// what the feature pipeline upstream and the review tooling downstream
// exchange.
package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hackgenix/fraudscore/internal/features"
	"github.com/hackgenix/fraudscore/internal/scoring"
)

// ResultHeader is the column layout of the output table.
var ResultHeader = []string{"Transaction_ID", "ml_pred_prob", "fraud_flag", "risk_level", "reason"}

// ReadRecords loads the input table from a CSV file, preserving file
// row order. The header must contain a Transaction_ID column; feature
// columns may be absent or sparse (values default during extraction).
func ReadRecords(path string) ([]features.Record, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open input table: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseRecords(f)
}

// ParseRecords reads CSV records from r. Rows shorter than the header
// are tolerated; extra cells beyond the header are ignored.
func ParseRecords(r io.Reader) ([]features.Record, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1 // tolerate ragged rows, extraction defaults the gaps

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: input table has no header row", features.ErrSchemaFieldMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("read input header: %w", err)
	}

	idCol := -1
	for i, name := range header {
		if name == features.IDField {
			idCol = i
			break
		}
	}
	if idCol == -1 {
		return nil, fmt.Errorf("%w: input table has no %s column", features.ErrSchemaFieldMissing, features.IDField)
	}

	var records []features.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read input row %d: %w", len(records)+1, err)
		}

		rec := features.Record{Fields: make(map[string]string, len(header))}
		for i, name := range header {
			if i >= len(row) {
				break
			}
			if i == idCol {
				rec.ID = row[i]
				continue
			}
			rec.Fields[name] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteResults writes the result table to path, rows in result order.
// The file is written to a temp sibling and renamed into place so a
// failed run never leaves a partial output table behind.
func WriteResults(path string, results []scoring.Result) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create output table: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = writeResultRows(tmp, results); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output table: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish output table: %w", err)
	}
	return nil
}

func writeResultRows(w io.Writer, results []scoring.Result) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ResultHeader); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.TransactionID,
			strconv.FormatFloat(r.Probability, 'f', -1, 64),
			strconv.Itoa(r.FraudFlag),
			string(r.RiskLevel),
			r.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write output row for %s: %w", r.TransactionID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush output table: %w", err)
	}
	return nil
}
