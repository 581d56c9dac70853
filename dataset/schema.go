package dataset

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Schema describes the column layout of a behavioral dataset: the ordered
// feature columns fed to the model, categorical encodings for non-numeric
// columns, and the label column with its ordered class names.
type Schema struct {
	Features     []string                  `yaml:"features" json:"features"`
	Encodings    map[string]map[string]int `yaml:"encodings,omitempty" json:"encodings,omitempty"`
	LabelColumn  string                    `yaml:"label_column" json:"label_column"`
	LabelClasses []string                  `yaml:"label_classes" json:"label_classes"`
}

func (s *Schema) Validate() error {
	if len(s.Features) == 0 {
		return errors.New("schema has no feature columns")
	}
	seen := make(map[string]bool, len(s.Features))
	for _, name := range s.Features {
		if name == "" {
			return errors.New("schema has empty feature column name")
		}
		if seen[name] {
			return fmt.Errorf("duplicate feature column %q", name)
		}
		seen[name] = true
	}
	if s.LabelColumn != "" {
		if seen[s.LabelColumn] {
			return fmt.Errorf("label column %q is also a feature column", s.LabelColumn)
		}
		if len(s.LabelClasses) < 2 {
			return fmt.Errorf("label column %q needs at least 2 classes", s.LabelColumn)
		}
	}
	for column := range s.Encodings {
		if !seen[column] {
			return fmt.Errorf("encoding refers to unknown column %q", column)
		}
	}
	return nil
}

func (s *Schema) FeatureIndex(name string) int {
	for i, feature := range s.Features {
		if feature == name {
			return i
		}
	}
	return -1
}

// EncodeValue converts one raw cell into its numeric form. Categorical
// columns go through the configured encoding map; everything else must
// parse as a float.
func (s *Schema) EncodeValue(column, raw string) (float64, bool) {
	if mapping, ok := s.Encodings[column]; ok {
		code, ok := mapping[normalizeCategory(raw)]
		return float64(code), ok
	}
	return 0, false
}

func (s *Schema) IsCategorical(column string) bool {
	_, ok := s.Encodings[column]
	return ok
}

// Categories returns a categorical column's values ordered by code.
func (s *Schema) Categories(column string) []string {
	mapping, ok := s.Encodings[column]
	if !ok {
		return nil
	}
	categories := make([]string, 0, len(mapping))
	for name := range mapping {
		categories = append(categories, name)
	}
	sort.Slice(categories, func(a, b int) bool {
		return mapping[categories[a]] < mapping[categories[b]]
	})
	return categories
}

func (s *Schema) LabelIndex(raw string) (int, bool) {
	name := normalizeCategory(raw)
	for i, class := range s.LabelClasses {
		if class == name {
			return i, true
		}
	}
	return 0, false
}

func (s *Schema) LabelName(index int) string {
	if index < 0 || index >= len(s.LabelClasses) {
		return fmt.Sprintf("class_%d", index)
	}
	return s.LabelClasses[index]
}

// AlphabeticalEncoding assigns codes to category values in sorted order,
// matching the behaviour of a standard label encoder.
func AlphabeticalEncoding(values []string) map[string]int {
	normalized := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		name := normalizeCategory(value)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		normalized = append(normalized, name)
	}
	sort.Strings(normalized)
	encoding := make(map[string]int, len(normalized))
	for i, name := range normalized {
		encoding[name] = i
	}
	return encoding
}

func normalizeCategory(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
}
