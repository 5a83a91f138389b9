package schemagen_test

import (
	"testing"

	"github.com/reoring/schemagen"
)

func TestKind_RoundTrip(t *testing.T) {
	for _, name := range []string{"integer", "number", "string", "boolean", "array", "object"} {
		k, ok := schemagen.ParseKind(name)
		if !ok {
			t.Fatalf("ParseKind(%q) failed", name)
		}
		if k.String() != name {
			t.Fatalf("kind %d prints as %q, want %q", k, k.String(), name)
		}
	}
	if _, ok := schemagen.ParseKind("null"); ok {
		t.Fatalf("null must not be a kind")
	}
	if got := schemagen.Kind(99).String(); got != "unknown" {
		t.Fatalf("got %q", got)
	}
}

func TestObject_Lookup(t *testing.T) {
	o := &schemagen.Object{
		Properties: []schemagen.Property{{Name: "a", Schema: &schemagen.Boolean{}}},
		Required:   []string{"a", "b"},
	}
	if s, ok := o.Property("a"); !ok || s.Kind() != schemagen.KindBoolean {
		t.Fatalf("expected boolean property a")
	}
	if _, ok := o.Property("b"); ok {
		t.Fatalf("b is not declared")
	}
	if !o.IsRequired("b") || o.IsRequired("c") {
		t.Fatalf("IsRequired mismatch")
	}
}
