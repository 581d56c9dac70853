package dataset

import (
	"fmt"
	"strconv"
)

// EncodeRow converts one observation given as a column→value map (JSON
// body or form input) into a feature vector in schema order. Categorical
// columns accept either the category name or its numeric code.
func EncodeRow(schema *Schema, row map[string]interface{}) ([]float64, error) {
	vector := make([]float64, len(schema.Features))
	for i, column := range schema.Features {
		raw, ok := row[column]
		if !ok {
			return nil, &FormatError{Path: "input", Column: column, Reason: "required column missing"}
		}
		value, err := encodeCell(schema, column, raw)
		if err != nil {
			return nil, err
		}
		vector[i] = value
	}
	return vector, nil
}

func encodeCell(schema *Schema, column string, raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		if schema.IsCategorical(column) {
			value, ok := schema.EncodeValue(column, v)
			if !ok {
				return 0, &FormatError{Path: "input", Column: column,
					Reason: fmt.Sprintf("unknown category %q", v)}
			}
			return value, nil
		}
		value, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, &FormatError{Path: "input", Column: column,
				Reason: fmt.Sprintf("non-numeric value %q", v)}
		}
		return value, nil
	default:
		return 0, &FormatError{Path: "input", Column: column,
			Reason: fmt.Sprintf("unsupported value type %T", raw)}
	}
}
