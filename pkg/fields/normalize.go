package fields

// Record is one row as decoded from an API response.
type Record map[string]any

// zeroDate is what BambooHR returns for an unset date.
const zeroDate = "0000-00-00"

// Normalizer cleans up raw records before they are emitted.
type Normalizer struct {
	Temporal FieldSet
	Boolean  FieldSet
}

// NewNormalizer derives the field membership sets from a schema.
func NewNormalizer(s Schema) Normalizer {
	return Normalizer{
		Temporal: s.TemporalFields(),
		Boolean:  s.BooleanFields(),
	}
}

// Normalize returns a copy of rec where blank or zero dates are nil and the
// strings "true" and "false" in boolean fields are real booleans. Any other
// value is copied unchanged.
func (n Normalizer) Normalize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		name := CanonicalName(k)
		switch {
		case n.Temporal.Has(name):
			if s, ok := v.(string); ok && (s == "" || s == zeroDate) {
				v = nil
			}
		case n.Boolean.Has(name):
			if s, ok := v.(string); ok {
				switch s {
				case "true":
					v = true
				case "false":
					v = false
				}
			}
		}
		out[k] = v
	}
	return out
}

// CanonicalKeys returns a copy of rec with every key replaced by its
// canonical name, so that a report column keyed "4047" matches the schema
// field "4047.0".
func CanonicalKeys(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		name, err := Canonicalize(k)
		if err != nil {
			out[k] = v
			continue
		}
		out[string(name)] = v
	}
	return out
}
