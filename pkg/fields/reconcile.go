package fields

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// FieldSet is a set of canonical field names.
type FieldSet map[CanonicalName]struct{}

// NewFieldSet canonicalizes every raw identifier and collects the results.
func NewFieldSet(ids ...any) (FieldSet, error) {
	set := make(FieldSet, len(ids))
	for _, id := range ids {
		name, err := Canonicalize(id)
		if err != nil {
			return nil, err
		}
		set[name] = struct{}{}
	}
	return set, nil
}

// FieldSetOf builds a set from raw string identifiers, which always
// canonicalize.
func FieldSetOf(ids ...string) FieldSet {
	set := make(FieldSet, len(ids))
	for _, id := range ids {
		set[MustCanonicalize(id)] = struct{}{}
	}
	return set
}

// Has reports whether name is in the set.
func (s FieldSet) Has(name CanonicalName) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s FieldSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Intersect returns the names present in both sets.
func (s FieldSet) Intersect(other FieldSet) FieldSet {
	out := make(FieldSet)
	for name := range s {
		if other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// Difference returns the names in s that are not in other.
func (s FieldSet) Difference(other FieldSet) FieldSet {
	out := make(FieldSet)
	for name := range s {
		if !other.Has(name) {
			out[name] = struct{}{}
		}
	}
	return out
}

// MismatchPolicy decides what happens when a report does not return the
// fields that were requested.
type MismatchPolicy string

const (
	// MismatchFail aborts the stream with a FieldMismatchError.
	MismatchFail MismatchPolicy = "fail"
	// MismatchIgnore carries on with the fields the API returned.
	MismatchIgnore MismatchPolicy = "ignore"
)

// ParseMismatchPolicy validates a configured policy. An empty value means
// MismatchFail.
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(s) {
	case "", MismatchFail:
		return MismatchFail, nil
	case MismatchIgnore:
		return MismatchIgnore, nil
	default:
		return "", fmt.Errorf("invalid field mismatch policy %q (must be %q or %q)", s, MismatchFail, MismatchIgnore)
	}
}

// MismatchReport is the outcome of comparing requested and returned fields.
type MismatchReport struct {
	Matching   FieldSet
	Missing    FieldSet
	Unexpected FieldSet
}

// Mismatched reports whether the requested and returned sets differ.
func (r MismatchReport) Mismatched() bool {
	return len(r.Missing) > 0 || len(r.Unexpected) > 0
}

// ErrFieldMismatch is matched by every FieldMismatchError.
var ErrFieldMismatch = errors.New("report fields do not match the requested fields")

// FieldMismatchError is returned under MismatchFail when the API returned a
// different field set than the one requested.
type FieldMismatchError struct {
	Report MismatchReport
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf(
		"%v; matching fields: %s; requested but not returned: %s; returned but not requested: %s. "+
			"Fix the report field list or set field_mismatch = \"ignore\"",
		ErrFieldMismatch,
		formatFieldSet(e.Report.Matching),
		formatFieldSet(e.Report.Missing),
		formatFieldSet(e.Report.Unexpected),
	)
}

func (e *FieldMismatchError) Is(target error) bool {
	return target == ErrFieldMismatch
}

func formatFieldSet(s FieldSet) string {
	if len(s) == 0 {
		return "N/A"
	}
	return strings.Join(s.Sorted(), ", ")
}

// Reconcile compares the requested field set with the one the API returned.
// Both sets must already hold canonical names. Under MismatchFail any
// difference is returned as a *FieldMismatchError; under MismatchIgnore the
// report is returned with a nil error.
func Reconcile(requested, returned FieldSet, policy MismatchPolicy) (MismatchReport, error) {
	report := MismatchReport{
		Matching:   requested.Intersect(returned),
		Missing:    requested.Difference(returned),
		Unexpected: returned.Difference(requested),
	}

	if report.Mismatched() && policy != MismatchIgnore {
		return report, &FieldMismatchError{Report: report}
	}
	return report, nil
}

// LogMismatch writes an ignored mismatch to logger.
func LogMismatch(logger hclog.Logger, report MismatchReport) {
	if logger == nil || !report.Mismatched() {
		return
	}
	logger.Warn("report fields differ from requested fields",
		"matching", formatFieldSet(report.Matching),
		"missing", formatFieldSet(report.Missing),
		"unexpected", formatFieldSet(report.Unexpected),
	)
}
