package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is matched by every IdentifierTypeError.
var ErrInvalidIdentifier = errors.New("field identifier must be an integer or a string")

// IdentifierTypeError is returned when a raw field identifier is neither an
// integer nor a string.
type IdentifierTypeError struct {
	Value any
}

func (e *IdentifierTypeError) Error() string {
	return fmt.Sprintf("invalid field identifier %v (%T): %v", e.Value, e.Value, ErrInvalidIdentifier)
}

func (e *IdentifierTypeError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

// CanonicalName is the single unambiguous form of a field identifier used
// across schemas, report requests and report responses.
type CanonicalName string

func (n CanonicalName) String() string {
	return string(n)
}

type identifierKind int

const (
	kindNumeric identifierKind = iota + 1
	kindAlias
)

// Identifier is a field identifier as BambooHR hands it out: either a numeric
// field ID or a stable alias name. The zero value is not valid; build one with
// NumericID, AliasID or ParseIdentifier.
type Identifier struct {
	kind  identifierKind
	num   int64
	alias string
}

// NumericID returns the identifier for a numeric BambooHR field ID.
func NumericID(id int64) Identifier {
	return Identifier{kind: kindNumeric, num: id}
}

// AliasID returns the identifier for a field alias. Strings that are really
// integers should go through ParseIdentifier instead.
func AliasID(alias string) Identifier {
	return Identifier{kind: kindAlias, alias: alias}
}

// ParseIdentifier converts a raw identifier into an Identifier. Integers of
// any width, json.Number values holding integers and strings are accepted;
// a string that parses fully as an integer becomes a numeric identifier.
func ParseIdentifier(v any) (Identifier, error) {
	switch id := v.(type) {
	case int:
		return NumericID(int64(id)), nil
	case int8:
		return NumericID(int64(id)), nil
	case int16:
		return NumericID(int64(id)), nil
	case int32:
		return NumericID(int64(id)), nil
	case int64:
		return NumericID(id), nil
	case uint8:
		return NumericID(int64(id)), nil
	case uint16:
		return NumericID(int64(id)), nil
	case uint32:
		return NumericID(int64(id)), nil
	case uint:
		if uint64(id) > 1<<63-1 {
			return Identifier{}, &IdentifierTypeError{Value: v}
		}
		return NumericID(int64(id)), nil
	case uint64:
		if id > 1<<63-1 {
			return Identifier{}, &IdentifierTypeError{Value: v}
		}
		return NumericID(int64(id)), nil
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return Identifier{}, &IdentifierTypeError{Value: v}
		}
		return NumericID(n), nil
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64); err == nil {
			return NumericID(n), nil
		}
		return AliasID(id), nil
	case CanonicalName:
		return ParseIdentifier(string(id))
	default:
		return Identifier{}, &IdentifierTypeError{Value: v}
	}
}

// IsNumeric reports whether the identifier is a numeric field ID.
func (i Identifier) IsNumeric() bool {
	return i.kind == kindNumeric
}

// Canonical returns the canonical name: numeric IDs are rendered with exactly
// one decimal digit ("123.0"), aliases are returned unchanged.
func (i Identifier) Canonical() CanonicalName {
	if i.kind == kindNumeric {
		return CanonicalName(strconv.FormatInt(i.num, 10) + ".0")
	}
	return CanonicalName(i.alias)
}

func (i Identifier) String() string {
	return string(i.Canonical())
}

// Canonicalize converts a raw identifier straight into its canonical name.
func Canonicalize(v any) (CanonicalName, error) {
	id, err := ParseIdentifier(v)
	if err != nil {
		return "", err
	}
	return id.Canonical(), nil
}

// MustCanonicalize is like Canonicalize but panics on invalid input. It is
// meant for compile-time constant identifiers.
func MustCanonicalize(v any) CanonicalName {
	name, err := Canonicalize(v)
	if err != nil {
		panic(err)
	}
	return name
}
