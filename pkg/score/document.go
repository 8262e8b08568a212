package score

import (
	"bytes"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Document is the serialized form of a coefficient table. Coefficients are
// a sequence so the declared order survives a round trip.
type Document struct {
	Name         string        `json:"name,omitempty" yaml:"name,omitempty"`
	Intercept    *float64      `json:"intercept" yaml:"intercept"`
	Coefficients []Coefficient `json:"coefficients" yaml:"coefficients"`
}

// Document returns the serializable form of t.
func (t *Table) Document() *Document {
	i := t.intercept
	return &Document{
		Name:         t.name,
		Intercept:    &i,
		Coefficients: slices.Clone(t.features),
	}
}

// ParseTable decodes a YAML or JSON coefficient document. Two shapes are
// accepted: a Document, or a flat mapping of feature to weight that includes
// an intercept key, e.g.
//
//	median_income: 39259.57
//	intercept: -2247165.77
//
// In the flat form the declared order is the document order. name is used
// when the document does not carry one.
func ParseTable(name string, b []byte) (*Table, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, configErrorf("coefficient document is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, &ConfigurationError{Reason: "parsing coefficient document", Err: err}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, configErrorf("coefficient document is empty")
	}

	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, configErrorf("coefficient document must be a mapping")
	}

	if hasKey(m, "coefficients") {
		var d Document
		if err := m.Decode(&d); err != nil {
			return nil, &ConfigurationError{Reason: "decoding coefficient document", Err: err}
		}
		if d.Name == "" {
			d.Name = name
		}
		return d.Table()
	}

	entries := make([]Coefficient, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i], m.Content[i+1]
		var w float64
		if err := v.Decode(&w); err != nil {
			return nil, &ConfigurationError{
				Reason: fmt.Sprintf("coefficient %q (line %d)", k.Value, v.Line),
				Err:    err,
			}
		}
		entries = append(entries, Coefficient{Feature: k.Value, Weight: w})
	}
	return NewTable(name, entries)
}

// Table validates the document and builds a table from it. The intercept
// is appended after the declared coefficients.
func (d *Document) Table() (*Table, error) {
	entries := slices.Clone(d.Coefficients)
	if d.Intercept != nil {
		entries = append(entries, Coefficient{Feature: InterceptKey, Weight: *d.Intercept})
	}
	return NewTable(d.Name, entries)
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}
