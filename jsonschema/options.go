package jsonschema

import "fmt"

// DefaultMaxDepth bounds document nesting when Options.MaxDepth is zero.
const DefaultMaxDepth = 64

// Options controls schema document import.
type Options struct {
	// MaxDepth limits container nesting of the document. Zero selects
	// DefaultMaxDepth; a negative value disables the check.
	MaxDepth int
	// AllowDuplicateKeys accepts repeated keys in a JSON/YAML object; the
	// last occurrence wins. By default duplicates are rejected.
	AllowDuplicateKeys bool
}

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	}
	return o.MaxDepth
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
