package schemagen

import "reflect"

// Kind identifies a schema node variant.
type Kind int

const (
	KindInteger Kind = iota
	KindNumber
	KindString
	KindBoolean
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindInteger: "integer",
	KindNumber:  "number",
	KindString:  "string",
	KindBoolean: "boolean",
	KindArray:   "array",
	KindObject:  "object",
}

// String returns the JSON Schema type name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind maps a JSON Schema type name to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Schema is a node of the schema tree. The set of implementations is closed:
// Integer, Number, String, Boolean, Array and Object.
type Schema interface {
	Kind() Kind
	schemaNode()
}

// Integer describes whole numbers. Nil bounds fall back to the safe integer
// range.
type Integer struct {
	Minimum          *int64
	Maximum          *int64
	ExclusiveMinimum *int64
	ExclusiveMaximum *int64
}

func (*Integer) Kind() Kind  { return KindInteger }
func (*Integer) schemaNode() {}

// Number describes floating point values drawn from [min, max).
type Number struct {
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
}

func (*Number) Kind() Kind  { return KindNumber }
func (*Number) schemaNode() {}

// String describes strings. A non-nil Enum takes precedence over lengths.
type String struct {
	MinLength *int
	MaxLength *int
	Enum      []string
}

func (*String) Kind() Kind  { return KindString }
func (*String) schemaNode() {}

// Boolean describes true/false.
type Boolean struct{}

func (*Boolean) Kind() Kind  { return KindBoolean }
func (*Boolean) schemaNode() {}

// Array describes a sequence of Items.
type Array struct {
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	Items       Schema
}

func (*Array) Kind() Kind  { return KindArray }
func (*Array) schemaNode() {}

// Object describes a mapping from field name to value. Properties keep their
// declaration order.
type Object struct {
	Properties []Property
	Required   []string
}

func (*Object) Kind() Kind  { return KindObject }
func (*Object) schemaNode() {}

// Property binds a field name to its schema.
type Property struct {
	Name   string
	Schema Schema
}

// Property returns the schema declared for name.
func (o *Object) Property(name string) (Schema, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p.Schema, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in Required.
func (o *Object) IsRequired(name string) bool {
	for _, r := range o.Required {
		if r == name {
			return true
		}
	}
	return false
}

// isNil reports whether s is nil or a nil node pointer.
func isNil(s Schema) bool {
	if s == nil {
		return true
	}
	rv := reflect.ValueOf(s)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// Ptr returns a pointer to v. Handy for optional constraint fields.
func Ptr[T any](v T) *T { return &v }
