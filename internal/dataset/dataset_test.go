package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hackgenix/fraudscore/internal/features"
	"github.com/hackgenix/fraudscore/internal/scoring"
)

func TestParseRecords_PreservesRowOrder(t *testing.T) {
	input := strings.Join([]string{
		"Transaction_ID,Amount,Is_Foreign",
		"tx3,10.5,1",
		"tx1,2,0",
		"tx2,0.25,1",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}

	wantIDs := []string{"tx3", "tx1", "tx2"}
	if len(records) != len(wantIDs) {
		t.Fatalf("got %d records, want %d", len(records), len(wantIDs))
	}
	for i, id := range wantIDs {
		if records[i].ID != id {
			t.Errorf("record %d ID = %s, want %s", i, records[i].ID, id)
		}
	}
	if records[0].Fields["Amount"] != "10.5" {
		t.Errorf("first record Amount = %q", records[0].Fields["Amount"])
	}
}

func TestParseRecords_MissingIDColumn(t *testing.T) {
	input := "Amount,Is_Foreign\n10.5,1\n"

	_, err := ParseRecords(strings.NewReader(input))
	if !errors.Is(err, features.ErrSchemaFieldMissing) {
		t.Errorf("expected ErrSchemaFieldMissing, got %v", err)
	}
}

func TestParseRecords_EmptyInput(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(""))
	if !errors.Is(err, features.ErrSchemaFieldMissing) {
		t.Errorf("expected ErrSchemaFieldMissing for headerless input, got %v", err)
	}
}

func TestParseRecords_RaggedRowsTolerated(t *testing.T) {
	input := strings.Join([]string{
		"Transaction_ID,Amount,Is_Foreign",
		"tx1,5", // short row: Is_Foreign absent, defaults during extraction
		"tx2,6,1",
	}, "\n")

	records, err := ParseRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseRecords failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if _, ok := records[0].Fields["Is_Foreign"]; ok {
		t.Error("short row should not carry a value for the missing column")
	}
}

func TestWriteResults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	results := []scoring.Result{
		{TransactionID: "tx1", Probability: 0.2, FraudFlag: 0, RiskLevel: scoring.RiskLow, Reason: scoring.ReasonModelPrediction},
		{TransactionID: "tx2", Probability: 0.8, FraudFlag: 1, RiskLevel: scoring.RiskHigh, Reason: scoring.ReasonModelPrediction},
	}

	if err := WriteResults(path, results); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "Transaction_ID,ml_pred_prob,fraud_flag,risk_level,reason" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "tx1,0.2,0,LOW,ML model prediction" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "tx2,0.8,1,HIGH,ML model prediction" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteResults_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	if err := WriteResults(path, nil); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "out.csv" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("unexpected directory contents: %v", names)
	}
}
