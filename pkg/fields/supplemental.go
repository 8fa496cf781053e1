package fields

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// SupplementalField is a field the metadata endpoint does not list.
type SupplementalField struct {
	ID   string
	Type string
}

// Supplemental is an ordered catalog of supplemental fields.
//
// On disk it is a YAML mapping from raw field ID to BambooHR type tag; the
// mapping order is kept.
type Supplemental []SupplementalField

//go:embed supplemental_fields.yaml
var bundledSupplemental []byte

// BundledSupplemental returns the catalog shipped with the tap.
func BundledSupplemental() (Supplemental, error) {
	return ParseSupplemental(bundledSupplemental)
}

// ParseSupplemental decodes a YAML supplemental field catalog. An empty
// document yields an empty, non-nil catalog.
func ParseSupplemental(data []byte) (Supplemental, error) {
	s := Supplemental{}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse supplemental fields: %w", err)
	}
	return s, nil
}

// SupplementalFromMap builds a catalog from a map, ordered by ID.
func SupplementalFromMap(m map[string]string) Supplemental {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s := make(Supplemental, 0, len(ids))
	for _, id := range ids {
		s = append(s, SupplementalField{ID: id, Type: m[id]})
	}
	return s
}

// UnmarshalYAML reads a mapping node pair by pair so document order survives.
func (s *Supplemental) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: supplemental fields must be a mapping of field id to type", node.Line)
	}

	out := make(Supplemental, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: expected scalar field id and type", key.Line)
		}
		out = append(out, SupplementalField{ID: key.Value, Type: value.Value})
	}
	*s = out
	return nil
}
