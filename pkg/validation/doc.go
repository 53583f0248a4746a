// Package validation evaluates a field definition against a candidate value.
// The same Evaluate call backs live, per-keystroke validation and the
// whole-form check that gates saving, so both always agree.
//
// Rules run in a fixed order and stop at the first failure: required,
// empty-optional bypass, named validator, pattern, then numeric or length
// bounds. Failures are values (Result), never Go errors.
package validation
