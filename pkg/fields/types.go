package fields

// SemanticType is the data type a field is emitted with.
type SemanticType string

const (
	TypeString   SemanticType = "string"
	TypeBoolean  SemanticType = "boolean"
	TypeNumber   SemanticType = "number"
	TypeDate     SemanticType = "date"
	TypeDateTime SemanticType = "datetime"
	TypeEmail    SemanticType = "email"
)

// IsTemporal reports whether values of this type are dates or timestamps.
func (t SemanticType) IsTemporal() bool {
	return t == TypeDate || t == TypeDateTime
}

// TypeMapper maps a BambooHR field type tag to a semantic type. Lookups are
// case-sensitive and unknown tags map to TypeString.
type TypeMapper interface {
	Name() string
	Map(vendorType string) SemanticType
}

// tableMapper is a TypeMapper backed by a fixed lookup table.
type tableMapper struct {
	name   string
	lookup map[string]SemanticType
}

func (m tableMapper) Name() string {
	return m.name
}

func (m tableMapper) Map(vendorType string) SemanticType {
	if t, ok := m.lookup[vendorType]; ok {
		return t
	}
	return TypeString
}

// BroadTypes covers every documented BambooHR field type
// (https://documentation.bamboohr.com/docs/field-types). It types
// directory-style resources.
var BroadTypes TypeMapper = tableMapper{
	name: "broad",
	lookup: map[string]SemanticType{
		"date":            TypeDate,
		"text":            TypeString,
		"ssn":             TypeString,
		"phone":           TypeString,
		"gender":          TypeString,
		"currency":        TypeNumber,
		"checkbox":        TypeBoolean,
		"state":           TypeString,
		"marital_status":  TypeString,
		"status":          TypeString,
		"pay_type":        TypeString,
		"employee":        TypeString,
		"timestamp":       TypeDateTime,
		"textarea":        TypeString,
		"list":            TypeString,
		"email":           TypeEmail,
		"bool":            TypeBoolean,
		"employee_access": TypeString,
	},
}

// NarrowTypes only distinguishes booleans, timestamps and dates. It types
// custom reports and tables, where currency and checkbox values come back as
// plain strings.
var NarrowTypes TypeMapper = tableMapper{
	name: "narrow",
	lookup: map[string]SemanticType{
		"bool":      TypeBoolean,
		"timestamp": TypeDateTime,
		"date":      TypeDate,
	},
}
