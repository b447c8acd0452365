package features

import (
	"errors"
	"reflect"
	"testing"
)

func TestExtract_OrderPreserved(t *testing.T) {
	schema := Schema{"a", "b"}
	records := []Record{
		{ID: "tx1", Fields: map[string]string{"a": "1", "b": "2"}},
		{ID: "tx2", Fields: map[string]string{"a": "3", "b": "4"}},
		{ID: "tx3", Fields: map[string]string{"a": "5", "b": "6"}},
	}

	matrix, err := Extract(records, schema)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	want := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	if !reflect.DeepEqual(matrix, want) {
		t.Errorf("matrix = %v, want %v", matrix, want)
	}
}

func TestExtract_MissingValueEqualsExplicitZero(t *testing.T) {
	schema := Schema{"a", "b"}

	missing, err := Extract([]Record{
		{ID: "tx1", Fields: map[string]string{"a": "7"}},
	}, schema)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	explicit, err := Extract([]Record{
		{ID: "tx1", Fields: map[string]string{"a": "7", "b": "0"}},
	}, schema)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !reflect.DeepEqual(missing, explicit) {
		t.Errorf("missing value row %v differs from explicit zero row %v", missing[0], explicit[0])
	}
}

func TestExtract_NonNumericDefaults(t *testing.T) {
	schema := Schema{"a"}
	for _, raw := range []string{"", "NA", "NaN", "nan", "abc", "+Inf", "  "} {
		matrix, err := Extract([]Record{
			{ID: "tx1", Fields: map[string]string{"a": raw}},
		}, schema)
		if err != nil {
			t.Fatalf("Extract(%q) failed: %v", raw, err)
		}
		if matrix[0][0] != DefaultValue {
			t.Errorf("Extract(%q) = %v, want %v", raw, matrix[0][0], DefaultValue)
		}
	}
}

func TestExtract_SchemaOrderDefinesColumns(t *testing.T) {
	records := []Record{
		{ID: "tx1", Fields: map[string]string{"a": "1", "b": "2"}},
	}

	ab, err := Extract(records, Schema{"a", "b"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	ba, err := Extract(records, Schema{"b", "a"})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if ab[0][0] != 1 || ab[0][1] != 2 {
		t.Errorf("schema [a b] row = %v", ab[0])
	}
	if ba[0][0] != 2 || ba[0][1] != 1 {
		t.Errorf("schema [b a] row = %v", ba[0])
	}
}

func TestExtract_MissingID(t *testing.T) {
	_, err := Extract([]Record{
		{ID: "  ", Fields: map[string]string{"a": "1"}},
	}, Schema{"a"})
	if !errors.Is(err, ErrSchemaFieldMissing) {
		t.Errorf("expected ErrSchemaFieldMissing for blank ID, got %v", err)
	}
}

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()
	if len(schema) != 9 {
		t.Fatalf("default schema has %d columns, want 9", len(schema))
	}
	if schema[0] != "Amount" || schema[8] != "Payment_Method_Encoded" {
		t.Errorf("unexpected schema ordering: %v", schema)
	}
}
