package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FormatError reports a malformed dataset file: a missing required column,
// a non-numeric value in a numeric column, or an unknown category value.
type FormatError struct {
	Path   string
	Row    int // 1-based data row, 0 for header-level problems
	Column string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Row == 0 {
		if e.Column != "" {
			return fmt.Sprintf("%s: column %q: %s", e.Path, e.Column, e.Reason)
		}
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: row %d, column %q: %s", e.Path, e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: row %d: %s", e.Path, e.Row, e.Reason)
}

// Observation is one loaded row: encoded feature values in schema order
// plus the optional label class index. Immutable once loaded.
type Observation struct {
	Values   []float64
	Label    int
	HasLabel bool
}

func (o Observation) Value(schema *Schema, name string) (float64, bool) {
	idx := schema.FeatureIndex(name)
	if idx < 0 || idx >= len(o.Values) {
		return 0, false
	}
	return o.Values[idx], true
}

// Table holds the loaded observations together with their schema.
type Table struct {
	Schema       Schema
	Observations []Observation
}

func (t *Table) Len() int {
	return len(t.Observations)
}

func (t *Table) Vectors() [][]float64 {
	vectors := make([][]float64, len(t.Observations))
	for i, obs := range t.Observations {
		vectors[i] = append([]float64(nil), obs.Values...)
	}
	return vectors
}

func (t *Table) Labels() []int {
	if len(t.Observations) == 0 || !t.Observations[0].HasLabel {
		return nil
	}
	labels := make([]int, len(t.Observations))
	for i, obs := range t.Observations {
		labels[i] = obs.Label
	}
	return labels
}

// LoadCSV reads a delimited dataset file into a Table. The header row must
// contain every schema feature column and, when configured, the label
// column. Any malformed row fails the whole load with a *FormatError.
func LoadCSV(path string, schema Schema) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadCSV(file, path, schema)
}

func ReadCSV(r io.Reader, name string, schema Schema) (*Table, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &FormatError{Path: name, Reason: "empty file"}
	}
	if err != nil {
		return nil, &FormatError{Path: name, Reason: err.Error()}
	}

	columns := make(map[string]int, len(header))
	for i, column := range header {
		columns[strings.ToLower(strings.TrimSpace(column))] = i
	}

	required := append([]string(nil), schema.Features...)
	if schema.LabelColumn != "" {
		required = append(required, schema.LabelColumn)
	}
	for _, column := range required {
		if _, ok := columns[column]; !ok {
			return nil, &FormatError{Path: name, Column: column, Reason: "required column missing"}
		}
	}

	table := &Table{Schema: schema}
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &FormatError{Path: name, Row: row, Reason: err.Error()}
		}

		obs := Observation{Values: make([]float64, len(schema.Features))}
		for i, column := range schema.Features {
			raw := record[columns[column]]
			if schema.IsCategorical(column) {
				value, ok := schema.EncodeValue(column, raw)
				if !ok {
					return nil, &FormatError{Path: name, Row: row, Column: column,
						Reason: fmt.Sprintf("unknown category %q", raw)}
				}
				obs.Values[i] = value
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, &FormatError{Path: name, Row: row, Column: column,
					Reason: fmt.Sprintf("non-numeric value %q", raw)}
			}
			obs.Values[i] = value
		}

		if schema.LabelColumn != "" {
			raw := record[columns[schema.LabelColumn]]
			label, ok := schema.LabelIndex(raw)
			if !ok {
				return nil, &FormatError{Path: name, Row: row, Column: schema.LabelColumn,
					Reason: fmt.Sprintf("unknown label %q", raw)}
			}
			obs.Label = label
			obs.HasLabel = true
		}

		table.Observations = append(table.Observations, obs)
	}

	return table, nil
}
