package jsonschema_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/schemagen"
	"github.com/reoring/schemagen/jsonschema"
)

func TestExport_ReparsesToSameTree(t *testing.T) {
	in := &schemagen.Object{
		Properties: []schemagen.Property{
			{Name: "id", Schema: &schemagen.Integer{Minimum: schemagen.Ptr[int64](1), ExclusiveMaximum: schemagen.Ptr[int64](100)}},
			{Name: "ratio", Schema: &schemagen.Number{Maximum: schemagen.Ptr(0.5)}},
			{Name: "tags", Schema: &schemagen.Array{Items: &schemagen.String{Enum: []string{"a", "b"}}, MaxItems: schemagen.Ptr(2), UniqueItems: true}},
		},
		Required: []string{"id"},
	}
	b, err := json.Marshal(jsonschema.Export(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, _, err := jsonschema.Parse(b, jsonschema.Options{})
	if err != nil {
		t.Fatalf("reparse %s: %v", b, err)
	}
	// Exported properties are a map, so the document lists them by name.
	if diff := cmp.Diff(schemagen.Schema(in), out); diff != "" {
		t.Fatalf("round trip changed the schema (-want +got):\n%s", diff)
	}
}

func TestExport_Nil(t *testing.T) {
	if jsonschema.Export(nil) != nil {
		t.Fatalf("expected nil export")
	}
	var a *schemagen.Array
	if jsonschema.Export(a) != nil {
		t.Fatalf("expected nil export for typed nil")
	}
}
