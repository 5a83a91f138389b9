package schemagen

import (
	"strconv"
	"strings"
)

// path builds JSON Pointer paths while walking the schema or a value.
// Appends copy, so sibling branches never share backing arrays.
type path struct {
	parts []string
}

func (p path) Field(name string) path {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return path{parts: append(append([]string{}, p.parts...), esc)}
}

func (p path) Index(i int) path {
	return path{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p path) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}
