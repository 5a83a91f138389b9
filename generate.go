package schemagen

import (
	"context"
	"math"
	"reflect"
)

// Defaults applied when a schema leaves a bound unset.
const (
	// MaxSafeInteger is the largest integer a float64 (and so any JSON
	// consumer) represents exactly.
	MaxSafeInteger int64 = 1<<53 - 1
	MinSafeInteger int64 = -MaxSafeInteger

	DefaultMinLength = 1
	DefaultMaxLength = 20
	DefaultMinItems  = 1
	DefaultMaxItems  = 10

	DefaultMaxUniqueAttempts   = 1000
	DefaultOptionalProbability = 0.5

	// DefaultMaxCount caps generated string lengths and array sizes.
	DefaultMaxCount = 1 << 16
)

// Number defaults span the positive float64 range. They are wide rather than
// meaningful; schemas that care should set minimum and maximum.
const (
	DefaultNumberMinimum = math.SmallestNonzeroFloat64
	DefaultNumberMaximum = math.MaxFloat64
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces random values conforming to a Schema. A Generator is
// safe for concurrent use when its Rand is.
type Generator struct {
	rand                Rand
	maxUniqueAttempts   int
	optionalProbability float64
	maxCount            int
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the randomness source.
func WithRand(r Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rand = r
		}
	}
}

// WithSeed uses a seeded PCG source, making output reproducible. The source is
// locked so the Generator stays safe to share.
func WithSeed(seed uint64) Option {
	return func(g *Generator) { g.rand = NewLockedRand(NewRand(seed)) }
}

// WithMaxUniqueAttempts bounds how many consecutive duplicates a uniqueItems
// array tolerates before failing with a ConstraintError.
func WithMaxUniqueAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxUniqueAttempts = n
		}
	}
}

// WithOptionalProbability sets the chance that a non-required property is
// generated. Values outside [0, 1] are ignored.
func WithOptionalProbability(p float64) Option {
	return func(g *Generator) {
		if p >= 0 && p <= 1 {
			g.optionalProbability = p
		}
	}
}

// WithMaxCount caps generated string lengths and array sizes. An upper bound
// above the cap is lowered to it; a lower bound above the cap fails with a
// ConstraintError.
func WithMaxCount(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxCount = n
		}
	}
}

// New returns a Generator. Without WithRand or WithSeed it draws from the
// global math/rand/v2 source.
func New(opts ...Option) *Generator {
	g := &Generator{
		rand:                globalRand{},
		maxUniqueAttempts:   DefaultMaxUniqueAttempts,
		optionalProbability: DefaultOptionalProbability,
		maxCount:            DefaultMaxCount,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

var defaultGenerator = New()

// Generate produces a value for s using the default Generator.
func Generate(s Schema) (any, error) { return defaultGenerator.Generate(s) }

// Generate produces a value for s. The result is one of int64, float64,
// string, bool, []any or map[string]any. On error no value is returned.
func (g *Generator) Generate(s Schema) (any, error) {
	return g.generate(s, path{})
}

// GenerateN produces n values for s, stopping early when ctx is done.
func (g *Generator) GenerateN(ctx context.Context, s Schema, n int) ([]any, error) {
	out := make([]any, 0, max(n, 0))
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := g.generate(s, path{})
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (g *Generator) generate(s Schema, p path) (any, error) {
	if isNil(s) {
		return nil, &InvalidSchemaError{Path: p.Pointer(), Reason: "schema is nil"}
	}
	switch t := s.(type) {
	case *Boolean:
		return g.rand.IntN(2) == 1, nil
	case *Integer:
		return g.integer(t, p)
	case *Number:
		return g.number(t, p)
	case *String:
		return g.string(t, p)
	case *Array:
		return g.array(t, p)
	case *Object:
		return g.object(t, p)
	default:
		return nil, &UnsupportedTypeError{Path: p.Pointer(), Type: s.Kind().String()}
	}
}

func (g *Generator) integer(s *Integer, p path) (int64, error) {
	lo, hi, err := IntegerBounds(s)
	if err != nil {
		return 0, withPath(err, p)
	}
	return g.intRange(lo, hi), nil
}

// intRange draws uniformly from [lo, hi]; lo must not exceed hi.
func (g *Generator) intRange(lo, hi int64) int64 {
	span := uint64(hi) - uint64(lo)
	switch {
	case span == math.MaxUint64:
		return int64(g.rand.Uint64())
	case span < math.MaxInt64:
		return lo + g.rand.Int64N(int64(span)+1)
	}
	// span+1 exceeds MaxInt64: reject draws outside the range. Each draw is
	// accepted with probability above one half.
	for {
		if v := g.rand.Uint64(); v <= span {
			return int64(uint64(lo) + v)
		}
	}
}

// count draws a length in [lo, hi] limited by maxCount.
func (g *Generator) count(lo, hi int, minKw string, p path) (int, error) {
	if lo > g.maxCount {
		return 0, constraintf(p, minKw, "%d exceeds the generation limit %d", lo, g.maxCount)
	}
	return int(g.intRange(int64(lo), int64(min(hi, g.maxCount)))), nil
}

// IntegerBounds resolves the inclusive range an Integer schema allows.
// An absent bound defaults to the safe integer range but never contradicts a
// bound that is present.
func IntegerBounds(s *Integer) (lo, hi int64, err error) {
	lo, hi = MinSafeInteger, MaxSafeInteger
	hasLo, hasHi := false, false
	if s.Minimum != nil {
		lo, hasLo = *s.Minimum, true
	}
	if s.ExclusiveMinimum != nil {
		if *s.ExclusiveMinimum == math.MaxInt64 {
			return 0, 0, &ConstraintError{Keyword: "exclusiveMinimum", Reason: "no integer above the exclusive minimum"}
		}
		if e := *s.ExclusiveMinimum + 1; !hasLo || e > lo {
			lo = e
		}
		hasLo = true
	}
	if s.Maximum != nil {
		hi, hasHi = *s.Maximum, true
	}
	if s.ExclusiveMaximum != nil {
		if *s.ExclusiveMaximum == math.MinInt64 {
			return 0, 0, &ConstraintError{Keyword: "exclusiveMaximum", Reason: "no integer below the exclusive maximum"}
		}
		if e := *s.ExclusiveMaximum - 1; !hasHi || e < hi {
			hi = e
		}
		hasHi = true
	}
	switch {
	case hasLo && !hasHi && lo > hi:
		hi = lo
	case hasHi && !hasLo && hi < lo:
		lo = hi
	}
	if lo > hi {
		return 0, 0, &ConstraintError{Keyword: "minimum", Reason: "minimum is greater than maximum"}
	}
	return lo, hi, nil
}

func (g *Generator) number(s *Number, p path) (float64, error) {
	lo, hi, err := NumberBounds(s)
	if err != nil {
		return 0, withPath(err, p)
	}
	if lo == hi {
		return lo, nil
	}
	r := g.rand.Float64()
	v := lo + r*(hi-lo)
	if math.IsInf(hi-lo, 0) {
		// hi-lo overflowed; interpolate without forming the difference.
		v = lo*(1-r) + hi*r
	}
	if v < lo {
		v = lo
	}
	if v >= hi {
		v = math.Max(math.Nextafter(hi, math.Inf(-1)), lo)
	}
	return v, nil
}

// NumberBounds resolves the half-open range [lo, hi) a Number schema allows.
// When lo == hi the range degenerates to the single value lo; this happens only
// when the upper bound is an inclusive maximum.
func NumberBounds(s *Number) (lo, hi float64, err error) {
	for _, b := range []struct {
		kw string
		v  *float64
	}{
		{"minimum", s.Minimum},
		{"maximum", s.Maximum},
		{"exclusiveMinimum", s.ExclusiveMinimum},
		{"exclusiveMaximum", s.ExclusiveMaximum},
	} {
		if b.v != nil && (math.IsNaN(*b.v) || math.IsInf(*b.v, 0)) {
			return 0, 0, &ConstraintError{Keyword: b.kw, Reason: "bound must be finite"}
		}
	}
	lo, hi = DefaultNumberMinimum, DefaultNumberMaximum
	hasLo, hasHi := false, false
	if s.Minimum != nil {
		lo, hasLo = *s.Minimum, true
	}
	if s.ExclusiveMinimum != nil {
		if e := math.Nextafter(*s.ExclusiveMinimum, math.Inf(1)); !hasLo || e > lo {
			lo = e
		}
		hasLo = true
	}
	hiExclusive := false
	if s.Maximum != nil {
		hi, hasHi = *s.Maximum, true
	}
	if s.ExclusiveMaximum != nil {
		if e := *s.ExclusiveMaximum; !hasHi || e <= hi {
			hi, hiExclusive = e, true
		}
		hasHi = true
	}
	switch {
	case hasLo && !hasHi && lo > hi:
		hi = lo
	case hasHi && !hasLo && hi <= lo:
		lo = -math.MaxFloat64
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, 0, &ConstraintError{Keyword: "minimum", Reason: "minimum is greater than maximum"}
	}
	if hiExclusive && lo >= hi {
		return 0, 0, &ConstraintError{Keyword: "exclusiveMaximum", Reason: "no number below the exclusive maximum satisfies the lower bound"}
	}
	if lo > hi {
		return 0, 0, &ConstraintError{Keyword: "minimum", Reason: "minimum is greater than maximum"}
	}
	return lo, hi, nil
}

func (g *Generator) string(s *String, p path) (string, error) {
	if s.Enum != nil {
		if len(s.Enum) == 0 {
			return "", constraintf(p, "enum", "enum must not be empty")
		}
		return s.Enum[g.rand.IntN(len(s.Enum))], nil
	}
	lo, hi, err := lengthBounds(s.MinLength, s.MaxLength, DefaultMinLength, DefaultMaxLength, "minLength", "maxLength")
	if err != nil {
		return "", withPath(err, p)
	}
	n, err := g.count(lo, hi, "minLength", p)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[g.rand.IntN(len(alphabet))]
	}
	return string(b), nil
}

func (g *Generator) array(s *Array, p path) ([]any, error) {
	if s.Items == nil {
		return nil, constraintf(p, "items", "array schema must define items")
	}
	lo, hi, err := lengthBounds(s.MinItems, s.MaxItems, DefaultMinItems, DefaultMaxItems, "minItems", "maxItems")
	if err != nil {
		return nil, withPath(err, p)
	}
	n, err := g.count(lo, hi, "minItems", p)
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, min(n, 1024))
	itemPath := p.Field("items")
	for len(out) < n {
		ok, err := retry(g.maxUniqueAttempts, func() (bool, error) {
			v, err := g.generate(s.Items, itemPath)
			if err != nil {
				return false, err
			}
			if s.UniqueItems && containsValue(out, v) {
				return false, nil
			}
			out = append(out, v)
			return true, nil
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, constraintf(p, "uniqueItems", "no new unique item after %d attempts (have %d of %d)", g.maxUniqueAttempts, len(out), n)
		}
	}
	return out, nil
}

func (g *Generator) object(s *Object, p path) (map[string]any, error) {
	out := make(map[string]any, len(s.Properties))
	props := p.Field("properties")
	for _, prop := range s.Properties {
		if !s.IsRequired(prop.Name) && g.rand.Float64() >= g.optionalProbability {
			continue
		}
		v, err := g.generate(prop.Schema, props.Field(prop.Name))
		if err != nil {
			return nil, err
		}
		out[prop.Name] = v
	}
	return out, nil
}

// lengthBounds resolves an inclusive [lo, hi] count range for strings and
// arrays. An absent bound never contradicts a present one.
func lengthBounds(minP, maxP *int, defMin, defMax int, minKw, maxKw string) (int, int, error) {
	lo, hi := defMin, defMax
	if minP != nil {
		if *minP < 0 {
			return 0, 0, &ConstraintError{Keyword: minKw, Reason: "must not be negative"}
		}
		lo = *minP
		if maxP == nil && lo > hi {
			hi = lo
		}
	}
	if maxP != nil {
		if *maxP < 0 {
			return 0, 0, &ConstraintError{Keyword: maxKw, Reason: "must not be negative"}
		}
		hi = *maxP
		if minP == nil && lo > hi {
			lo = hi
		}
	}
	if lo > hi {
		return 0, 0, &ConstraintError{Keyword: minKw, Reason: minKw + " is greater than " + maxKw}
	}
	return lo, hi, nil
}

// containsValue reports whether v deep-equals an element of vs.
func containsValue(vs []any, v any) bool {
	for _, x := range vs {
		if reflect.DeepEqual(x, v) {
			return true
		}
	}
	return false
}

// withPath stamps the node pointer onto a ConstraintError built without one.
func withPath(err error, p path) error {
	if ce, ok := err.(*ConstraintError); ok && ce.Path == "" {
		ce.Path = p.Pointer()
	}
	return err
}
