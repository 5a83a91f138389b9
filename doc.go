// Package schemagen generates random values that conform to a declarative
// schema, for test fixtures, mocks and fuzz-style inputs.
//
// It provides:
//
// - A closed set of schema nodes (Integer, Number, String, Boolean, Array, Object)
// - A Generator with an injectable Rand so output can be made reproducible
// - A typed error taxonomy (InvalidSchemaError, UnsupportedTypeError, ConstraintError)
// - Validate, which checks a value against a schema and reports Issues
//
// Design policy:
// - Keep the generator and schema model in the root package; decoding schema
//   documents lives under jsonschema/, the CLI under cmd/schemagen.
// - Generation is pure: no I/O, no shared mutable state beyond the Rand.
//
// Typical usage:
//
//	s, _, err := jsonschema.Parse(doc, jsonschema.Options{})
//	g := schemagen.New(schemagen.WithSeed(42))
//	v, err := g.Generate(s)
//	err = schemagen.Validate(s, v) // nil
package schemagen
