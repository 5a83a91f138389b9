package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Enforcement wrapper for TokenSource applying duplicate key and max depth
// checks in a streaming fashion.

// EnforceOptions controls runtime enforcement behavior.
type EnforceOptions struct {
	// RejectDuplicates fails on a key repeated within one object.
	RejectDuplicates bool
	// MaxDepth limits container nesting; zero disables the check.
	MaxDepth int
}

// IssueError reports an enforcement failure at a JSON Pointer path.
type IssueError struct {
	Code    string // "duplicate_key" or "max_depth"
	Path    string
	Message string
}

func (e *IssueError) Error() string { return fmt.Sprintf("%s at %s: %s", e.Code, e.Path, e.Message) }

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind       containerKind
	keys       map[string]struct{}
	path       string
	nextIndex  int
	pendingKey string
}

// WrapWithEnforcement returns a TokenSource that enforces the duplicate key
// policy and maximum nesting depth.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		f := frame{kind: kindArray, path: e.valuePath()}
		if tok.Kind == KindBeginObject {
			f.kind, f.keys = kindObject, make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, &IssueError{Code: "max_depth", Path: normalizeIssuePath(f.path), Message: "max depth " + strconv.Itoa(e.opt.MaxDepth) + " exceeded"}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.RejectDuplicates {
				return Token{}, &IssueError{Code: "duplicate_key", Path: normalizeIssuePath(joinJSONPointer(top.path, tok.String)), Message: "key '" + tok.String + "' duplicated"}
			}
			top.keys[tok.String] = struct{}{}
			top.pendingKey = tok.String
		}
	default:
		e.valuePath()
	}
	return tok, nil
}

// valuePath returns the pointer of the value about to be read and advances
// the enclosing container.
func (e *enforcingTokenSource) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.kind == kindArray {
		p := joinJSONPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return joinJSONPointer(top.path, top.pendingKey)
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}
