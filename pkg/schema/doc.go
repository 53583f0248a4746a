// Package schema defines the declarative settings schema: pages made of
// sections, sections made of typed field definitions, and the action buttons
// attached to pages or to the whole form. A Schema is decoded from JSON or
// YAML, checked for structural problems, and then treated as immutable for
// the lifetime of an editing session.
//
// Field kinds and named validators are closed enumerations. Unknown field
// types fall back to text inputs and unknown validator names impose no
// constraint, matching the fail-open policy used for invalid patterns.
package schema
