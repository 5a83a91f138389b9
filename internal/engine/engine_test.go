package engine_test

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	eng "github.com/reoring/schemagen/internal/engine"
)

// sliceSource replays a fixed token list.
type sliceSource struct {
	toks []eng.Token
	i    int
}

func (s *sliceSource) NextToken() (eng.Token, error) {
	if s.i >= len(s.toks) {
		return eng.Token{}, io.EOF
	}
	t := s.toks[s.i]
	s.i++
	return t, nil
}

func (s *sliceSource) Location() int64 { return int64(s.i) }

func begin() eng.Token          { return eng.Token{Kind: eng.KindBeginObject} }
func end() eng.Token            { return eng.Token{Kind: eng.KindEndObject} }
func beginArr() eng.Token       { return eng.Token{Kind: eng.KindBeginArray} }
func endArr() eng.Token         { return eng.Token{Kind: eng.KindEndArray} }
func key(k string) eng.Token    { return eng.Token{Kind: eng.KindKey, String: k} }
func str(v string) eng.Token    { return eng.Token{Kind: eng.KindString, String: v} }
func number(n string) eng.Token { return eng.Token{Kind: eng.KindNumber, Number: n} }

// {"b":1,"a":[true,null,"x"],"b":2}
func sample() []eng.Token {
	return []eng.Token{
		begin(),
		key("b"), number("1"),
		key("a"), beginArr(), {Kind: eng.KindBool, Bool: true}, {Kind: eng.KindNull}, str("x"), endArr(),
		key("b"), number("2"),
		end(),
	}
}

func TestDecodeOrdered_KeepsOrderAndLastDuplicate(t *testing.T) {
	v, err := eng.DecodeOrdered(&sliceSource{toks: sample()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(*eng.Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", v)
	}
	if len(obj.Members) != 2 || obj.Members[0].Key != "a" || obj.Members[1].Key != "b" {
		t.Fatalf("unexpected members: %+v", obj.Members)
	}
	if b, _ := obj.Get("b"); b != json.Number("2") {
		t.Fatalf("expected last b to win, got %v", b)
	}
	a, _ := obj.Get("a")
	if diff := cmp.Diff([]any{true, nil, "x"}, a); diff != "" {
		t.Fatalf("unexpected array (-want +got):\n%s", diff)
	}
}

func TestDecodeAny_Maps(t *testing.T) {
	v, err := eng.DecodeAny(&sliceSource{toks: sample()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{"a": []any{true, nil, "x"}, "b": json.Number("2")}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}
}

func TestDecode_Truncated(t *testing.T) {
	_, err := eng.DecodeOrdered(&sliceSource{toks: []eng.Token{begin(), key("a")}})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestEnforcement_DuplicateKeyPath(t *testing.T) {
	// [{"a":1,"a":2}]
	toks := []eng.Token{beginArr(), begin(), key("a"), number("1"), key("a"), number("2"), end(), endArr()}
	src := eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{RejectDuplicates: true})
	_, err := eng.DecodeOrdered(src)
	var ie *eng.IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "duplicate_key" || ie.Path != "/0/a" {
		t.Fatalf("unexpected issue: %+v", ie)
	}

	src = eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{})
	if _, err := eng.DecodeOrdered(src); err != nil {
		t.Fatalf("duplicates allowed: %v", err)
	}
}

func TestEnforcement_MaxDepth(t *testing.T) {
	// {"a":{"b":{"c":"x"}}}
	toks := []eng.Token{begin(), key("a"), begin(), key("b"), begin(), key("c"), str("x"), end(), end(), end()}
	src := eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{MaxDepth: 2})
	_, err := eng.DecodeOrdered(src)
	var ie *eng.IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	if ie.Code != "max_depth" || ie.Path != "/a/b" {
		t.Fatalf("unexpected issue: %+v", ie)
	}

	src = eng.WrapWithEnforcement(&sliceSource{toks: toks}, eng.EnforceOptions{MaxDepth: 3})
	if _, err := eng.DecodeOrdered(src); err != nil {
		t.Fatalf("depth 3 allowed: %v", err)
	}
}
