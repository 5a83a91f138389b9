package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reoring/schemagen"
	eng "github.com/reoring/schemagen/internal/engine"
)

// ParseYAML compiles the first document of a YAML stream. Mapping order is
// kept, so properties are generated in the order they are written.
func ParseYAML(data []byte, opts Options) (schemagen.Schema, Diag, error) {
	d := &simpleDiag{}
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, d, &schemagen.InvalidSchemaError{Path: "/", Reason: "empty YAML document"}
		}
		return nil, d, &schemagen.InvalidSchemaError{Path: "/", Reason: "malformed YAML: " + err.Error()}
	}
	y := &yamlConverter{
		maxDepth: opts.maxDepth(),
		allowDup: opts.AllowDuplicateKeys,
		active:   make(map[*yaml.Node]bool),
	}
	y.aliasBudget = max(aliasExpansionFloor, aliasExpansionFactor*countNodes(&root))
	tree, err := y.convert(&root, "", 0)
	if err != nil {
		return nil, d, err
	}
	s, err := compile(tree, "", d)
	return s, d, err
}

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

func (e *DuplicateKeyError) Unwrap() error { return schemagen.ErrInvalidSchema }

// Alias expansion may add at most aliasExpansionFactor times the nodes written
// in the document, and never less than aliasExpansionFloor.
const (
	aliasExpansionFactor = 10
	aliasExpansionFloor  = 10000
)

type yamlConverter struct {
	maxDepth int
	allowDup bool

	active      map[*yaml.Node]bool // containers on the current walk
	aliasDepth  int
	expanded    int
	aliasBudget int
}

// convert maps a yaml.Node onto the ordered engine tree. Numbers become
// json.Number so JSON and YAML documents compile identically.
func (y *yamlConverter) convert(n *yaml.Node, p string, depth int) (any, error) {
	if y.aliasDepth > 0 {
		y.expanded++
		if y.expanded > y.aliasBudget {
			return nil, &schemagen.InvalidSchemaError{Path: pointer(p), Reason: "document contains excessive aliasing"}
		}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return y.convert(n.Content[0], p, depth)
	case yaml.AliasNode:
		if y.active[n.Alias] {
			return nil, &schemagen.InvalidSchemaError{Path: pointer(p), Reason: fmt.Sprintf("anchor %q value contains itself", n.Value)}
		}
		y.aliasDepth++
		v, err := y.convert(n.Alias, p, depth)
		y.aliasDepth--
		return v, err
	case yaml.MappingNode, yaml.SequenceNode:
		if y.maxDepth > 0 && depth >= y.maxDepth {
			return nil, &schemagen.InvalidSchemaError{Path: pointer(p), Reason: "max depth " + strconv.Itoa(y.maxDepth) + " exceeded"}
		}
	default:
		return scalar(n), nil
	}
	y.active[n] = true
	defer delete(y.active, n)
	if n.Kind == yaml.SequenceNode {
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := y.convert(c, p+"/"+strconv.Itoa(i), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	}
	obj := &eng.Object{Members: make([]eng.Member, 0, len(n.Content)/2)}
	first := make(map[string][2]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := k.Value
		if pos, dup := first[key]; dup {
			if !y.allowDup {
				return nil, &DuplicateKeyError{Key: key, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			obj.Members = removeMember(obj.Members, key)
		}
		first[key] = [2]int{k.Line, k.Column}
		val, err := y.convert(v, join(p, key), depth+1)
		if err != nil {
			return nil, err
		}
		obj.Members = append(obj.Members, eng.Member{Key: key, Value: val})
	}
	return obj, nil
}

// countNodes counts the nodes written in the document, without following
// aliases.
func countNodes(n *yaml.Node) int {
	c := 1
	for _, ch := range n.Content {
		c += countNodes(ch)
	}
	return c
}

func removeMember(ms []eng.Member, key string) []eng.Member {
	out := ms[:0]
	for _, m := range ms {
		if m.Key != key {
			out = append(out, m)
		}
	}
	return out
}

func scalar(n *yaml.Node) any {
	switch n.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return b
		}
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return json.Number(strconv.FormatInt(i, 10))
		}
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil {
			return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
		}
	}
	return n.Value
}
