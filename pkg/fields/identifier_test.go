package fields

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  CanonicalName
	}{
		{name: "int", input: 123, want: "123.0"},
		{name: "int64", input: int64(4047), want: "4047.0"},
		{name: "uint16", input: uint16(7), want: "7.0"},
		{name: "numeric string", input: "123", want: "123.0"},
		{name: "numeric string with spaces", input: " 123 ", want: "123.0"},
		{name: "negative numeric string", input: "-5", want: "-5.0"},
		{name: "json number", input: json.Number("4047"), want: "4047.0"},
		{name: "already canonical", input: "123.0", want: "123.0"},
		{name: "alias", input: "jobTitle", want: "jobTitle"},
		{name: "empty string", input: "", want: ""},
		{name: "canonical name value", input: CanonicalName("99"), want: "99.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_Equivalence(t *testing.T) {
	a, err := Canonicalize(123)
	require.NoError(t, err)
	b, err := Canonicalize("123")
	require.NoError(t, err)
	c, err := Canonicalize("123.0")
	require.NoError(t, err)

	assert.Equal(t, CanonicalName("123.0"), a)
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []any{0, 1, 123, -42, "7", "firstName", "123.0", "4047", "custom field", ""}

	for _, input := range inputs {
		once, err := Canonicalize(input)
		require.NoError(t, err)

		twice, err := Canonicalize(string(once))
		require.NoError(t, err)

		assert.Equal(t, once, twice, "input %v", input)
	}
}

func TestCanonicalize_InvalidInput(t *testing.T) {
	inputs := []any{3.14, float64(123), nil, true, []string{"id"}, json.Number("1.5")}

	for _, input := range inputs {
		_, err := Canonicalize(input)
		require.Error(t, err, "input %v", input)
		assert.ErrorIs(t, err, ErrInvalidIdentifier)

		var typeErr *IdentifierTypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, input, typeErr.Value)
	}
}

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier("4047")
	require.NoError(t, err)
	assert.True(t, id.IsNumeric())
	assert.Equal(t, "4047.0", id.String())

	id, err = ParseIdentifier("hireDate")
	require.NoError(t, err)
	assert.False(t, id.IsNumeric())
	assert.Equal(t, CanonicalName("hireDate"), id.Canonical())
}

func TestMustCanonicalize_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCanonicalize(1.5) })
	assert.Equal(t, CanonicalName("1.0"), MustCanonicalize(1))
}
