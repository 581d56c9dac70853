package dataset

import (
	"errors"
	"strings"
	"testing"
)

func testSchema() Schema {
	return Schema{
		Features:     []string{"decisions_made", "sleep_hours", "task_switches"},
		LabelColumn:  "fatigue_label",
		LabelClasses: []string{"high", "low", "moderate"},
	}
}

func TestReadCSV(t *testing.T) {
	input := "decisions_made,sleep_hours,task_switches,fatigue_label\n" +
		"40,6,12,high\n" +
		"10,8,2,low\n" +
		"25,7,6,moderate\n"

	table, err := ReadCSV(strings.NewReader(input), "test.csv", testSchema())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("expected 3 observations, got %d", table.Len())
	}
	labels := table.Labels()
	if labels == nil {
		t.Fatal("expected labels")
	}
	// high=0, low=1, moderate=2
	want := []int{0, 1, 2}
	for i, label := range labels {
		if label != want[i] {
			t.Fatalf("row %d: expected label %d, got %d", i, want[i], label)
		}
	}
	if value, ok := table.Observations[0].Value(&table.Schema, "sleep_hours"); !ok || value != 6 {
		t.Fatalf("unexpected sleep_hours value: %v %v", value, ok)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	input := "decisions_made,sleep_hours,fatigue_label\n40,6,high\n"

	_, err := ReadCSV(strings.NewReader(input), "test.csv", testSchema())
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if formatErr.Column != "task_switches" {
		t.Fatalf("unexpected column in error: %q", formatErr.Column)
	}
}

func TestReadCSVNonNumericValue(t *testing.T) {
	input := "decisions_made,sleep_hours,task_switches,fatigue_label\n" +
		"40,lots,12,high\n"

	_, err := ReadCSV(strings.NewReader(input), "test.csv", testSchema())
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if formatErr.Row != 1 || formatErr.Column != "sleep_hours" {
		t.Fatalf("unexpected error location: row=%d column=%q", formatErr.Row, formatErr.Column)
	}
}

func TestReadCSVUnknownLabel(t *testing.T) {
	input := "decisions_made,sleep_hours,task_switches,fatigue_label\n" +
		"40,6,12,exhausted\n"

	_, err := ReadCSV(strings.NewReader(input), "test.csv", testSchema())
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestReadCSVCategoricalFeature(t *testing.T) {
	schema := DefaultSchema()
	input := "hours_awake,decisions_made,task_switches,avg_decision_time,sleep_hours," +
		"time_of_day,caffeine_cups,stress_level,error_rate,cognitive_load," +
		"decision_fatigue_score,fatigue_level,recommendation\n" +
		"8,30,10,2.5,7,Morning,1,3,0.1,3,30,Low,continue\n"

	table, err := ReadCSV(strings.NewReader(input), "test.csv", schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value, _ := table.Observations[0].Value(&table.Schema, "time_of_day"); value != 2 {
		t.Fatalf("expected morning to encode as 2, got %v", value)
	}
	if value, _ := table.Observations[0].Value(&table.Schema, "fatigue_level"); value != 1 {
		t.Fatalf("expected low to encode as 1, got %v", value)
	}
}

func TestReadCSVEmptyFile(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), "test.csv", testSchema())
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestAlphabeticalEncoding(t *testing.T) {
	encoding := AlphabeticalEncoding([]string{"Moderate", "low", "HIGH", "low"})
	if len(encoding) != 3 {
		t.Fatalf("expected 3 classes, got %d", len(encoding))
	}
	if encoding["high"] != 0 || encoding["low"] != 1 || encoding["moderate"] != 2 {
		t.Fatalf("unexpected encoding: %v", encoding)
	}
}

func TestSchemaValidate(t *testing.T) {
	schema := testSchema()
	schema.Features = append(schema.Features, "decisions_made")
	if err := schema.Validate(); err == nil {
		t.Fatal("expected error for duplicate feature column")
	}

	schema = testSchema()
	schema.LabelColumn = "decisions_made"
	if err := schema.Validate(); err == nil {
		t.Fatal("expected error for label column that is also a feature")
	}
}

func TestEncodeRow(t *testing.T) {
	schema := DefaultSchema()
	row := map[string]interface{}{
		"hours_awake":            8.0,
		"decisions_made":         30.0,
		"task_switches":          10.0,
		"avg_decision_time":      2.5,
		"sleep_hours":            7.0,
		"time_of_day":            "evening",
		"caffeine_cups":          1.0,
		"stress_level":           3.0,
		"error_rate":             0.1,
		"cognitive_load":         3.0,
		"decision_fatigue_score": 30.0,
		"fatigue_level":          "Low",
	}

	vector, err := EncodeRow(&schema, row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vector) != len(schema.Features) {
		t.Fatalf("expected %d values, got %d", len(schema.Features), len(vector))
	}
	if vector[schema.FeatureIndex("time_of_day")] != 1 {
		t.Fatalf("expected evening to encode as 1")
	}

	delete(row, "sleep_hours")
	if _, err := EncodeRow(&schema, row); err == nil {
		t.Fatal("expected error for missing column")
	}
}
