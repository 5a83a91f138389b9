package jsonschema_test

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/jsonschema"
)

func TestParseYAML_TodosFixture(t *testing.T) {
	data, err := os.ReadFile("../testdata/todos.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	s, _, err := jsonschema.ParseYAML(data, jsonschema.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	arr, ok := s.(*schemagen.Array)
	if !ok {
		t.Fatalf("expected *Array, got %T", s)
	}
	if *arr.MinItems != 2 || *arr.MaxItems != 4 {
		t.Fatalf("items bounds: %d..%d", *arr.MinItems, *arr.MaxItems)
	}
	item := arr.Items.(*schemagen.Object)
	if got := strings.Join(propertyNames(item), ","); got != "title,completed" {
		t.Fatalf("property order: %s", got)
	}

	g := schemagen.New(schemagen.WithSeed(3))
	for i := 0; i < 100; i++ {
		v, err := g.Generate(s)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if err := schemagen.Validate(s, v); err != nil {
			t.Fatalf("generated value does not validate: %v", err)
		}
	}
}

func TestParseYAML_MatchesJSON(t *testing.T) {
	y := []byte("type: number\nminimum: 0.5\nexclusiveMaximum: 2\n")
	s, _, err := jsonschema.ParseYAML(y, jsonschema.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n := s.(*schemagen.Number)
	if *n.Minimum != 0.5 || *n.ExclusiveMaximum != 2 {
		t.Fatalf("unexpected bounds: %+v", n)
	}
}

func TestParseYAML_DuplicateKey(t *testing.T) {
	y := []byte("type: object\nproperties:\n  a:\n    type: string\n  a:\n    type: boolean\n")
	_, _, err := jsonschema.ParseYAML(y, jsonschema.Options{})
	var de *jsonschema.DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateKeyError, got %T %v", err, err)
	}
	if de.Key != "a" || de.FirstLine != 3 || de.Line != 5 {
		t.Fatalf("unexpected positions: %+v", de)
	}
	if !errors.Is(err, schemagen.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema")
	}

	s, _, err := jsonschema.ParseYAML(y, jsonschema.Options{AllowDuplicateKeys: true})
	if err != nil {
		t.Fatalf("duplicates allowed: %v", err)
	}
	if p, _ := s.(*schemagen.Object).Property("a"); p.Kind() != schemagen.KindBoolean {
		t.Fatalf("last occurrence should win, got %s", p.Kind())
	}
}

func TestParseYAML_Anchors(t *testing.T) {
	y := []byte("type: object\nproperties:\n  a: &flag\n    type: boolean\n  b: *flag\n")
	s, _, err := jsonschema.ParseYAML(y, jsonschema.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	b, ok := s.(*schemagen.Object).Property("b")
	if !ok || b.Kind() != schemagen.KindBoolean {
		t.Fatalf("alias not resolved: %v", b)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	for _, y := range []string{"", "type: [unclosed\n", "- type: string\n"} {
		if _, _, err := jsonschema.ParseYAML([]byte(y), jsonschema.Options{}); !errors.Is(err, schemagen.ErrInvalidSchema) {
			t.Fatalf("%q: expected ErrInvalidSchema, got %v", y, err)
		}
	}
}

func TestParseYAML_RecursiveAlias(t *testing.T) {
	y := []byte("type: object\nproperties: &p\n  a:\n    type: object\n    properties: *p\n")
	_, _, err := jsonschema.ParseYAML(y, jsonschema.Options{MaxDepth: -1})
	if !errors.Is(err, schemagen.ErrInvalidSchema) || !strings.Contains(err.Error(), "contains itself") {
		t.Fatalf("expected self-referencing anchor error, got %v", err)
	}
}

func TestParseYAML_ExcessiveAliasing(t *testing.T) {
	var b strings.Builder
	b.WriteString("x0: &a0 {type: boolean}\n")
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&b, "x%d: &a%d [", i, i)
		for j := 0; j < 10; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "*a%d", i-1)
		}
		b.WriteString("]\n")
	}
	b.WriteString("type: object\n")
	_, _, err := jsonschema.ParseYAML([]byte(b.String()), jsonschema.Options{MaxDepth: -1})
	if !errors.Is(err, schemagen.ErrInvalidSchema) || !strings.Contains(err.Error(), "excessive aliasing") {
		t.Fatalf("expected excessive aliasing error, got %v", err)
	}
}
