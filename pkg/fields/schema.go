package fields

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// MetaField is one entry of a BambooHR field-metadata listing. ID is the raw
// identifier (an integer or a string depending on the endpoint).
type MetaField struct {
	ID    any    `mapstructure:"id" json:"id"`
	Name  string `mapstructure:"name" json:"name"`
	Alias string `mapstructure:"alias" json:"alias,omitempty"`
	Type  string `mapstructure:"type" json:"type"`
}

// Identifier returns the identifier the field is known by: its alias when it
// has one, otherwise its ID.
func (f MetaField) Identifier() (Identifier, error) {
	if f.Alias != "" {
		return AliasID(f.Alias), nil
	}
	return ParseIdentifier(f.ID)
}

// Descriptor describes one field of a schema.
type Descriptor struct {
	Name     CanonicalName
	Type     SemanticType
	Label    string
	Required bool
}

// ChangeHistoryFields are the technical fields every change-history table
// stream carries ahead of its discovered fields.
var ChangeHistoryFields = []Descriptor{
	{Name: "id", Type: TypeString, Label: "Row ID", Required: true},
	{Name: "rowSequence", Type: TypeNumber, Label: "Row sequence number", Required: true},
	{Name: "lastChanged", Type: TypeDateTime, Label: "Last changed", Required: true},
}

// Schema is an ordered list of field descriptors.
type Schema struct {
	fields []Descriptor
}

// NewSchema returns a schema holding the given descriptors in order.
func NewSchema(descriptors ...Descriptor) Schema {
	fields := make([]Descriptor, len(descriptors))
	copy(fields, descriptors)
	return Schema{fields: fields}
}

// Fields returns a copy of the descriptors in order.
func (s Schema) Fields() []Descriptor {
	fields := make([]Descriptor, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// Len returns the number of descriptors.
func (s Schema) Len() int {
	return len(s.fields)
}

// Names returns the descriptor names as a set.
func (s Schema) Names() FieldSet {
	set := make(FieldSet, len(s.fields))
	for _, f := range s.fields {
		set[f.Name] = struct{}{}
	}
	return set
}

// Lookup returns the descriptor for name. When a name appears more than once
// the last descriptor wins.
func (s Schema) Lookup(name CanonicalName) (Descriptor, bool) {
	for i := len(s.fields) - 1; i >= 0; i-- {
		if s.fields[i].Name == name {
			return s.fields[i], true
		}
	}
	return Descriptor{}, false
}

// Select returns a schema with only the descriptors whose names are in keep,
// in their original order. Required descriptors are always kept.
func (s Schema) Select(keep FieldSet) Schema {
	var fields []Descriptor
	for _, f := range s.fields {
		if f.Required || keep.Has(f.Name) {
			fields = append(fields, f)
		}
	}
	return Schema{fields: fields}
}

// TemporalFields returns the names of date and datetime fields.
func (s Schema) TemporalFields() FieldSet {
	set := make(FieldSet)
	for _, f := range s.fields {
		if f.Type.IsTemporal() {
			set[f.Name] = struct{}{}
		}
	}
	return set
}

// BooleanFields returns the names of boolean fields.
func (s Schema) BooleanFields() FieldSet {
	set := make(FieldSet)
	for _, f := range s.fields {
		if f.Type == TypeBoolean {
			set[f.Name] = struct{}{}
		}
	}
	return set
}

// Builder assembles schemas from BambooHR field metadata.
type Builder struct {
	Mapper TypeMapper
	Logger hclog.Logger
}

// NewBuilder returns a builder that types fields with mapper.
func NewBuilder(mapper TypeMapper, logger hclog.Logger) *Builder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Builder{
		Mapper: mapper,
		Logger: logger.Named("schema"),
	}
}

// Build merges reserved descriptors, primary metadata fields and the
// supplemental catalog, in that order. A name that is already present is
// appended again rather than replaced.
func (b *Builder) Build(primary []MetaField, supplemental Supplemental, reserved ...Descriptor) Schema {
	mapper := b.Mapper
	if mapper == nil {
		mapper = BroadTypes
	}
	logger := b.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	seen := make(map[CanonicalName]bool, len(reserved)+len(primary)+len(supplemental))
	fields := make([]Descriptor, 0, len(reserved)+len(primary)+len(supplemental))
	add := func(d Descriptor, source string) {
		if seen[d.Name] {
			logger.Warn("duplicate field name in schema", "field", d.Name, "source", source)
		}
		seen[d.Name] = true
		fields = append(fields, d)
	}

	for _, d := range reserved {
		add(d, "reserved")
	}

	for _, mf := range primary {
		id, err := mf.Identifier()
		if err != nil {
			logger.Warn("skipping metadata field", "name", mf.Name, "error", err)
			continue
		}
		add(Descriptor{
			Name:  id.Canonical(),
			Type:  mapper.Map(mf.Type),
			Label: mf.Name,
		}, "metadata")
	}

	for _, sf := range supplemental {
		name, err := Canonicalize(sf.ID)
		if err != nil {
			logger.Warn("skipping supplemental field", "id", sf.ID, "error", err)
			continue
		}
		add(Descriptor{
			Name: name,
			Type: mapper.Map(sf.Type),
		}, "supplemental")
	}

	return Schema{fields: fields}
}

// Property is the JSON schema of a single field.
type Property struct {
	Type   []string `json:"type"`
	Format string   `json:"format,omitempty"`
}

// property renders a descriptor as a JSON schema property.
func (d Descriptor) property() Property {
	var p Property
	switch d.Type {
	case TypeBoolean:
		p.Type = []string{"boolean"}
	case TypeNumber:
		p.Type = []string{"number"}
	case TypeDate:
		p.Type, p.Format = []string{"string"}, "date"
	case TypeDateTime:
		p.Type, p.Format = []string{"string"}, "date-time"
	case TypeEmail:
		p.Type, p.Format = []string{"string"}, "email"
	default:
		p.Type = []string{"string"}
	}
	if !d.Required {
		p.Type = append(p.Type, "null")
	}
	return p
}

// JSONSchema renders the schema as an object schema whose properties keep
// the descriptor order.
func (s Schema) JSONSchema() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	var required []string
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(string(f.Name))
		prop, _ := json.Marshal(f.property())
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(prop)
		if f.Required {
			required = append(required, string(f.Name))
		}
	}
	buf.WriteByte('}')
	if len(required) > 0 {
		req, _ := json.Marshal(required)
		fmt.Fprintf(&buf, `,"required":%s`, req)
	}
	buf.WriteByte('}')
	return json.RawMessage(buf.Bytes())
}
