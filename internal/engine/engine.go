package engine

import (
	"encoding/json"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Object is a decoded JSON object that keeps member order.
type Object struct {
	Members []Member
}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value any
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	for _, m := range o.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// set appends key, dropping an earlier member with the same key so the last
// occurrence wins.
func (o *Object) set(key string, v any) {
	for i, m := range o.Members {
		if m.Key == key {
			o.Members = append(o.Members[:i], o.Members[i+1:]...)
			break
		}
	}
	o.Members = append(o.Members, Member{Key: key, Value: v})
}

// DecodeOrdered builds a value tree from src. Objects decode to *Object,
// arrays to []any, numbers to json.Number.
func DecodeOrdered(src TokenSource) (any, error) {
	return decode(src, true)
}

// DecodeAny builds a value tree from src with objects as map[string]any and
// numbers as json.Number.
func DecodeAny(src TokenSource) (any, error) {
	return decode(src, false)
}

func decode(src TokenSource, ordered bool) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok, ordered)
}

func decodeValue(src TokenSource, tok Token, ordered bool) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, ordered)
	case KindBeginArray:
		return decodeArray(src, ordered)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource, ordered bool) (any, error) {
	obj := &Object{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			break
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt, ordered)
		if err != nil {
			return nil, err
		}
		obj.set(tok.String, v)
	}
	if ordered {
		return obj, nil
	}
	m := make(map[string]any, len(obj.Members))
	for _, mem := range obj.Members {
		m[mem.Key] = mem.Value
	}
	return m, nil
}

func decodeArray(src TokenSource, ordered bool) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok, ordered)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
