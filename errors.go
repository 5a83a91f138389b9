package schemagen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/schemagen/i18n"
)

// Sentinels matched by errors.Is against the typed schema errors below.
var (
	ErrInvalidSchema   = errors.New("schemagen: invalid schema")
	ErrUnsupportedType = errors.New("schemagen: unsupported type")
	ErrConstraint      = errors.New("schemagen: constraint error")
)

// InvalidSchemaError reports a schema argument that is missing or is not a
// structured object.
type InvalidSchemaError struct {
	Path   string // JSON Pointer of the offending node.
	Reason string
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("invalid schema at %s: %s", e.Path, e.Reason)
}

func (e *InvalidSchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// UnsupportedTypeError reports a type keyword that is absent or not one of the
// six recognized kinds.
type UnsupportedTypeError struct {
	Path string
	Type string // Raw value of the type keyword; empty when absent.
}

func (e *UnsupportedTypeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("unsupported schema type at %s: type is missing", e.Path)
	}
	return fmt.Sprintf("unsupported schema type at %s: %q", e.Path, e.Type)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// ConstraintError reports a missing structural field or constraints that
// cannot be satisfied.
type ConstraintError struct {
	Path    string
	Keyword string // e.g. "items", "minimum", "uniqueItems".
	Reason  string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint %q at %s: %s", e.Keyword, e.Path, e.Reason)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

func constraintf(p path, keyword, format string, a ...any) error {
	return &ConstraintError{Path: p.Pointer(), Keyword: keyword, Reason: fmt.Sprintf(format, a...)}
}

// Issue codes reported by Validate.
const (
	CodeInvalidType = "invalid_type"
	CodeRequired    = "required"
	CodeUnknownKey  = "unknown_key"
	CodeTooSmall    = "too_small"
	CodeTooBig      = "too_big"
	CodeTooShort    = "too_short"
	CodeTooLong     = "too_long"
	CodeInvalidEnum = "invalid_enum"
	CodeUniqueness  = "uniqueness"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42}).
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. too_small at /age
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func issueAt(p path, code string, kv ...any) Issue {
	m := map[string]any{}
	data := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		k := fmt.Sprint(kv[i])
		m[k] = kv[i+1]
		data[k] = fmt.Sprint(kv[i+1])
	}
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, data), Params: m}
}
