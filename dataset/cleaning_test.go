package dataset

import "testing"

func cleaningTable() *Table {
	schema := Schema{Features: []string{"sleep_hours", "stress_level"}}
	return &Table{
		Schema: schema,
		Observations: []Observation{
			{Values: []float64{7, 3}},
			{Values: []float64{7, 3}},  // duplicate
			{Values: []float64{99, 3}}, // sleep_hours out of range
			{Values: []float64{6, 8}},
		},
	}
}

func TestCleanerRejectsBadRows(t *testing.T) {
	cleaner := NewCleaner()
	cleaned, issues := cleaner.Clean(cleaningTable())

	if cleaned.Len() != 2 {
		t.Fatalf("expected 2 clean rows, got %d", cleaned.Len())
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}

	stats := cleaner.GetStats()
	if stats.TotalProcessed != 4 || stats.Passed != 2 || stats.Rejected != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Issues["range_validation"] != 1 || stats.Issues["duplicate_detection"] != 1 {
		t.Fatalf("unexpected issue counts: %v", stats.Issues)
	}
}

func TestOutlierDetectionRule(t *testing.T) {
	schema := Schema{Features: []string{"decision_fatigue_score"}}
	table := &Table{Schema: schema}
	for i := 0; i < 20; i++ {
		table.Observations = append(table.Observations, Observation{Values: []float64{50}})
	}
	table.Observations = append(table.Observations, Observation{Values: []float64{95}})

	rule := NewOutlierDetectionRule()
	rule.Fit(table)

	if err := rule.Apply(&schema, table.Observations[0]); err != nil {
		t.Fatalf("unexpected error for normal row: %v", err)
	}
	if err := rule.Apply(&schema, table.Observations[20]); err == nil {
		t.Fatal("expected error for outlier row")
	}
}

func TestCleanerKeepsIssueHistory(t *testing.T) {
	cleaner := NewCleaner()
	cleaner.Clean(cleaningTable())

	issues := cleaner.GetIssues(1)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
}
