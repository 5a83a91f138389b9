package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/reoring/schemagen"
	eng "github.com/reoring/schemagen/internal/engine"
	"github.com/reoring/schemagen/source/gojson"
)

// keywords outside the supported vocabulary that are reported, not honored.
var unsupportedKeywords = []string{"$ref", "allOf", "anyOf", "oneOf", "not", "pattern", "format", "multipleOf", "additionalProperties"}

// Parse decodes a JSON schema document and compiles it into a schema tree.
// Property order follows the document.
func Parse(data []byte, opts Options) (schemagen.Schema, Diag, error) {
	d := &simpleDiag{}
	src := eng.WrapWithEnforcement(gojson.NewBytes(data), eng.EnforceOptions{
		RejectDuplicates: !opts.AllowDuplicateKeys,
		MaxDepth:         opts.maxDepth(),
	})
	root, err := eng.DecodeOrdered(src)
	if err != nil {
		return nil, d, decodeError(err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return nil, d, &schemagen.InvalidSchemaError{Path: "/", Reason: "unexpected data after schema document"}
	}
	s, err := compile(root, "", d)
	return s, d, err
}

// FromAny compiles an already-decoded schema, typically a map[string]any from
// encoding/json or yaml. Keys of plain maps carry no order, so properties are
// compiled in sorted name order.
func FromAny(v any, opts Options) (schemagen.Schema, Diag, error) {
	d := &simpleDiag{}
	if v == nil {
		return nil, d, &schemagen.InvalidSchemaError{Path: "/", Reason: "schema is missing"}
	}
	root, err := fromAny(v, "", 0, opts.maxDepth())
	if err != nil {
		return nil, d, err
	}
	s, err := compile(root, "", d)
	return s, d, err
}

func decodeError(err error) error {
	var ie *eng.IssueError
	if errors.As(err, &ie) {
		return &schemagen.InvalidSchemaError{Path: ie.Path, Reason: ie.Message}
	}
	return &schemagen.InvalidSchemaError{Path: "/", Reason: "malformed JSON: " + err.Error()}
}

// fromAny converts a generic decoded value into the ordered engine tree.
func fromAny(v any, p string, depth, maxDepth int) (any, error) {
	switch t := v.(type) {
	case map[string]any, map[any]any, []any:
		if maxDepth > 0 && depth >= maxDepth {
			return nil, &schemagen.InvalidSchemaError{Path: pointer(p), Reason: "max depth " + strconv.Itoa(maxDepth) + " exceeded"}
		}
	case json.Number:
		return t, nil
	case float64:
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(t), 'g', -1, 32)), nil
	case int:
		return json.Number(strconv.Itoa(t)), nil
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(t, 10)), nil
	default:
		return v, nil
	}
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		return orderedFrom(keys, func(k string) any { return t[k] }, p, depth, maxDepth)
	case map[any]any:
		keys := make([]string, 0, len(t))
		byName := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			keys = append(keys, ks)
			byName[ks] = vv
		}
		return orderedFrom(keys, func(k string) any { return byName[k] }, p, depth, maxDepth)
	default:
		arr := v.([]any)
		out := make([]any, len(arr))
		for i := range arr {
			c, err := fromAny(arr[i], p+"/"+strconv.Itoa(i), depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}
}

func orderedFrom(keys []string, get func(string) any, p string, depth, maxDepth int) (any, error) {
	sort.Strings(keys)
	obj := &eng.Object{Members: make([]eng.Member, 0, len(keys))}
	for _, k := range keys {
		c, err := fromAny(get(k), join(p, k), depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, eng.Member{Key: k, Value: c})
	}
	return obj, nil
}

// compile turns one ordered document node into a schema node.
func compile(node any, p string, d *simpleDiag) (schemagen.Schema, error) {
	obj, ok := node.(*eng.Object)
	if !ok {
		return nil, &schemagen.InvalidSchemaError{Path: pointer(p), Reason: "expected object, got " + typeName(node)}
	}
	for _, kw := range unsupportedKeywords {
		if _, ok := obj.Get(kw); ok {
			d.warnf("%s: keyword %q is not supported and was ignored", pointer(p), kw)
		}
	}
	raw, ok := obj.Get("type")
	if !ok {
		return nil, &schemagen.UnsupportedTypeError{Path: pointer(p)}
	}
	name, isString := raw.(string)
	if !isString {
		return nil, &schemagen.UnsupportedTypeError{Path: pointer(p), Type: fmt.Sprint(raw)}
	}
	kind, ok := schemagen.ParseKind(name)
	if !ok {
		return nil, &schemagen.UnsupportedTypeError{Path: pointer(p), Type: name}
	}
	if _, ok := obj.Get("enum"); ok && kind != schemagen.KindString {
		d.warnf("%s: enum is only honored for strings; ignored for %s", pointer(p), kind)
	}
	c := &compiler{obj: obj, p: p, d: d}
	switch kind {
	case schemagen.KindInteger:
		return c.integerSchema()
	case schemagen.KindNumber:
		return c.numberSchema()
	case schemagen.KindString:
		return c.stringSchema()
	case schemagen.KindBoolean:
		return &schemagen.Boolean{}, nil
	case schemagen.KindArray:
		return c.arraySchema()
	default:
		return c.objectSchema()
	}
}

type compiler struct {
	obj *eng.Object
	p   string
	d   *simpleDiag
}

func (c *compiler) invalid(kw, reason string) error {
	return &schemagen.InvalidSchemaError{Path: pointer(join(c.p, kw)), Reason: reason}
}

// numeric reads a numeric keyword. The bool result is false when absent.
func (c *compiler) numeric(kw string) (json.Number, bool, error) {
	raw, ok := c.obj.Get(kw)
	if !ok {
		return "", false, nil
	}
	n, ok := raw.(json.Number)
	if !ok {
		return "", false, c.invalid(kw, "expected number, got "+typeName(raw))
	}
	return n, true, nil
}

// draft4Exclusive reports a boolean exclusiveMinimum/exclusiveMaximum.
func (c *compiler) draft4Exclusive(kw string) (bool, bool) {
	raw, ok := c.obj.Get(kw)
	if !ok {
		return false, false
	}
	b, ok := raw.(bool)
	return b, ok
}

func (c *compiler) integerSchema() (schemagen.Schema, error) {
	s := &schemagen.Integer{}
	// Inclusive bounds round inward; exclusive bounds round outward so the
	// same integers stay excluded.
	for _, b := range []struct {
		kw      string
		dst     **int64
		roundUp bool
	}{
		{"minimum", &s.Minimum, true},
		{"maximum", &s.Maximum, false},
		{"exclusiveMinimum", &s.ExclusiveMinimum, false},
		{"exclusiveMaximum", &s.ExclusiveMaximum, true},
	} {
		if _, isBool := c.draft4Exclusive(b.kw); isBool {
			continue
		}
		n, ok, err := c.numeric(b.kw)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := intBound(n, b.roundUp)
		if err != nil {
			return nil, c.invalid(b.kw, err.Error())
		}
		*b.dst = &v
	}
	// Draft-4 boolean exclusive flags turn the inclusive bound exclusive.
	if ex, _ := c.draft4Exclusive("exclusiveMinimum"); ex && s.Minimum != nil {
		n, _, _ := c.numeric("minimum")
		v, _ := intBound(n, false)
		s.ExclusiveMinimum, s.Minimum = &v, nil
	}
	if ex, _ := c.draft4Exclusive("exclusiveMaximum"); ex && s.Maximum != nil {
		n, _, _ := c.numeric("maximum")
		v, _ := intBound(n, true)
		s.ExclusiveMaximum, s.Maximum = &v, nil
	}
	return s, nil
}

func intBound(n json.Number, roundUp bool) (int64, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", string(n))
	}
	if roundUp {
		f = math.Ceil(f)
	} else {
		f = math.Floor(f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("bound %s is outside the int64 range", string(n))
	}
	return int64(f), nil
}

func (c *compiler) numberSchema() (schemagen.Schema, error) {
	s := &schemagen.Number{}
	for _, b := range []struct {
		kw  string
		dst **float64
	}{
		{"minimum", &s.Minimum},
		{"maximum", &s.Maximum},
		{"exclusiveMinimum", &s.ExclusiveMinimum},
		{"exclusiveMaximum", &s.ExclusiveMaximum},
	} {
		if _, isBool := c.draft4Exclusive(b.kw); isBool {
			continue
		}
		n, ok, err := c.numeric(b.kw)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		f, err := n.Float64()
		if err != nil {
			return nil, c.invalid(b.kw, fmt.Sprintf("invalid number %q", string(n)))
		}
		*b.dst = &f
	}
	if ex, _ := c.draft4Exclusive("exclusiveMinimum"); ex && s.Minimum != nil {
		s.ExclusiveMinimum, s.Minimum = s.Minimum, nil
	}
	if ex, _ := c.draft4Exclusive("exclusiveMaximum"); ex && s.Maximum != nil {
		s.ExclusiveMaximum, s.Maximum = s.Maximum, nil
	}
	return s, nil
}

// count reads a length/cardinality keyword. Negative values are kept so the
// generator reports them as constraint errors.
func (c *compiler) count(kw string) (*int, error) {
	n, ok, err := c.numeric(kw)
	if err != nil || !ok {
		return nil, err
	}
	i, err := n.Int64()
	if err != nil || i > math.MaxInt32 || i < math.MinInt32 {
		return nil, c.invalid(kw, "expected an integer count, got "+string(n))
	}
	v := int(i)
	return &v, nil
}

func (c *compiler) stringSchema() (schemagen.Schema, error) {
	s := &schemagen.String{}
	var err error
	if s.MinLength, err = c.count("minLength"); err != nil {
		return nil, err
	}
	if s.MaxLength, err = c.count("maxLength"); err != nil {
		return nil, err
	}
	raw, ok := c.obj.Get("enum")
	if !ok {
		return s, nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, c.invalid("enum", "expected array, got "+typeName(raw))
	}
	s.Enum = make([]string, 0, len(arr))
	for i, e := range arr {
		str, ok := e.(string)
		if !ok {
			return nil, &schemagen.InvalidSchemaError{Path: pointer(join(c.p, "enum") + "/" + strconv.Itoa(i)), Reason: "expected string, got " + typeName(e)}
		}
		s.Enum = append(s.Enum, str)
	}
	return s, nil
}

func (c *compiler) arraySchema() (schemagen.Schema, error) {
	s := &schemagen.Array{}
	var err error
	if s.MinItems, err = c.count("minItems"); err != nil {
		return nil, err
	}
	if s.MaxItems, err = c.count("maxItems"); err != nil {
		return nil, err
	}
	if raw, ok := c.obj.Get("uniqueItems"); ok {
		b, isBool := raw.(bool)
		if !isBool {
			return nil, c.invalid("uniqueItems", "expected boolean, got "+typeName(raw))
		}
		s.UniqueItems = b
	}
	raw, ok := c.obj.Get("items")
	if !ok {
		// Left nil: generation reports the missing items as a constraint error.
		c.d.warnf("%s: array schema has no items", pointer(c.p))
		return s, nil
	}
	if _, isTuple := raw.([]any); isTuple {
		return nil, c.invalid("items", "tuple-form items are not supported")
	}
	if s.Items, err = compile(raw, join(c.p, "items"), c.d); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *compiler) objectSchema() (schemagen.Schema, error) {
	s := &schemagen.Object{}
	if raw, ok := c.obj.Get("properties"); ok {
		props, isObj := raw.(*eng.Object)
		if !isObj {
			return nil, c.invalid("properties", "expected object, got "+typeName(raw))
		}
		base := join(c.p, "properties")
		for _, m := range props.Members {
			ps, err := compile(m.Value, join(base, m.Key), c.d)
			if err != nil {
				return nil, err
			}
			s.Properties = append(s.Properties, schemagen.Property{Name: m.Key, Schema: ps})
		}
	}
	if raw, ok := c.obj.Get("required"); ok {
		arr, isArr := raw.([]any)
		if !isArr {
			return nil, c.invalid("required", "expected array, got "+typeName(raw))
		}
		for i, r := range arr {
			name, isStr := r.(string)
			if !isStr {
				return nil, &schemagen.InvalidSchemaError{Path: pointer(join(c.p, "required") + "/" + strconv.Itoa(i)), Reason: "expected string, got " + typeName(r)}
			}
			if _, declared := s.Property(name); !declared {
				c.d.warnf("%s: required property %q is not declared in properties", pointer(c.p), name)
			}
			s.Required = append(s.Required, name)
		}
	}
	return s, nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *eng.Object, map[string]any, map[any]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func join(base, token string) string { return base + "/" + pointerEscaper.Replace(token) }

func pointer(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
