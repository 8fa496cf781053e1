// Package fields normalizes BambooHR field identifiers and field values.
//
// BambooHR refers to the same field in several ways: a numeric ID that may
// arrive as an integer (4047) or as a string ("4047"), or a stable alias
// ("firstName"). Everything in this package works on the canonical form
// produced by Canonicalize, where numeric IDs are rendered as "4047.0" and
// aliases pass through unchanged, so schemas, report requests and report
// responses can be compared directly.
//
// # Components
//
//   - Identifier / Canonicalize: the boundary type for raw identifiers.
//   - TypeMapper: BroadTypes for directory resources, NarrowTypes for custom
//     reports and tables.
//   - Builder: merges metadata fields and the supplemental catalog into an
//     ordered Schema.
//   - Reconcile: compares requested and returned report fields under a
//     MismatchPolicy.
//   - Normalizer: turns zero dates into nulls and "true"/"false" into
//     booleans.
package fields
