package schemagen

import (
	"math"
	"reflect"
	"sort"
	"unicode/utf8"
)

// numberLike matches json.Number from encoding/json and go-json.
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// Validate checks v against s and returns Issues describing every violation,
// or nil when v conforms. Schema errors (nil nodes, contradictory bounds) are
// returned as-is.
func Validate(s Schema, v any) error {
	var iss Issues
	if err := validate(s, v, path{}, &iss); err != nil {
		return err
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func validate(s Schema, v any, p path, iss *Issues) error {
	if isNil(s) {
		return &InvalidSchemaError{Path: p.Pointer(), Reason: "schema is nil"}
	}
	switch t := s.(type) {
	case *Boolean:
		if _, ok := v.(bool); !ok {
			*iss = append(*iss, issueAt(p, CodeInvalidType, "expected", "boolean"))
		}
	case *Integer:
		n, ok := asInt(v)
		if !ok {
			*iss = append(*iss, issueAt(p, CodeInvalidType, "expected", "integer"))
			return nil
		}
		lo, hi, err := IntegerBounds(t)
		if err != nil {
			return withPath(err, p)
		}
		if n < lo {
			*iss = append(*iss, issueAt(p, CodeTooSmall, "min", lo, "got", n))
		}
		if n > hi {
			*iss = append(*iss, issueAt(p, CodeTooBig, "max", hi, "got", n))
		}
	case *Number:
		f, ok := asFloat(v)
		if !ok {
			*iss = append(*iss, issueAt(p, CodeInvalidType, "expected", "number"))
			return nil
		}
		lo, hi, err := NumberBounds(t)
		if err != nil {
			return withPath(err, p)
		}
		if f < lo {
			*iss = append(*iss, issueAt(p, CodeTooSmall, "min", lo, "got", f))
		}
		if f > hi || (f == hi && lo != hi) {
			*iss = append(*iss, issueAt(p, CodeTooBig, "max", hi, "got", f))
		}
	case *String:
		str, ok := v.(string)
		if !ok {
			*iss = append(*iss, issueAt(p, CodeInvalidType, "expected", "string"))
			return nil
		}
		if t.Enum != nil {
			for _, e := range t.Enum {
				if e == str {
					return nil
				}
			}
			*iss = append(*iss, issueAt(p, CodeInvalidEnum, "got", str))
			return nil
		}
		lo, hi, err := lengthBounds(t.MinLength, t.MaxLength, DefaultMinLength, DefaultMaxLength, "minLength", "maxLength")
		if err != nil {
			return withPath(err, p)
		}
		n := utf8.RuneCountInString(str)
		if n < lo {
			*iss = append(*iss, issueAt(p, CodeTooShort, "min", lo, "got", n))
		}
		if n > hi {
			*iss = append(*iss, issueAt(p, CodeTooLong, "max", hi, "got", n))
		}
	case *Array:
		arr, ok := v.([]any)
		if !ok {
			*iss = append(*iss, issueAt(p, CodeInvalidType, "expected", "array"))
			return nil
		}
		if t.Items == nil {
			return constraintf(p, "items", "array schema must define items")
		}
		lo, hi, err := lengthBounds(t.MinItems, t.MaxItems, DefaultMinItems, DefaultMaxItems, "minItems", "maxItems")
		if err != nil {
			return withPath(err, p)
		}
		if len(arr) < lo {
			*iss = append(*iss, issueAt(p, CodeTooShort, "min", lo, "got", len(arr)))
		}
		if len(arr) > hi {
			*iss = append(*iss, issueAt(p, CodeTooLong, "max", hi, "got", len(arr)))
		}
		for i, el := range arr {
			if t.UniqueItems && containsValue(arr[:i], el) {
				*iss = append(*iss, issueAt(p.Index(i), CodeUniqueness))
			}
			if err := validate(t.Items, el, p.Index(i), iss); err != nil {
				return err
			}
		}
	case *Object:
		obj, ok := v.(map[string]any)
		if !ok {
			*iss = append(*iss, issueAt(p, CodeInvalidType, "expected", "object"))
			return nil
		}
		for _, prop := range t.Properties {
			fv, present := obj[prop.Name]
			if !present {
				if t.IsRequired(prop.Name) {
					*iss = append(*iss, issueAt(p.Field(prop.Name), CodeRequired))
				}
				continue
			}
			if err := validate(prop.Schema, fv, p.Field(prop.Name), iss); err != nil {
				return err
			}
		}
		var unknown []string
		for k := range obj {
			if _, declared := t.Property(k); !declared {
				unknown = append(unknown, k)
			}
		}
		sort.Strings(unknown)
		for _, k := range unknown {
			*iss = append(*iss, issueAt(p.Field(k), CodeUnknownKey))
		}
	}
	return nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case numberLike:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u), true
		}
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case numberLike:
		f, err := n.Float64()
		return f, err == nil
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}
