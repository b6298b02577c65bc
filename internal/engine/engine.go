package engine

import (
	"errors"
	"io"

	"github.com/reoring/graphmap/node"
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

// ErrTrailingData reports input left over after the top-level value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// ErrEmpty reports input without any value.
var ErrEmpty = errors.New("empty input")

// DecodeValue builds a node.Value tree from the token source. Object keys keep
// their first-seen position; a repeated key replaces the earlier value.
func DecodeValue(src TokenSource) (node.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return node.Value{}, ErrEmpty
		}
		return node.Value{}, err
	}
	v, err := decodeValue(src, tok)
	if err != nil {
		return node.Value{}, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return node.Value{}, err
		}
		return node.Value{}, &SyntaxError{Msg: ErrTrailingData.Error(), Offset: src.Location(), cause: ErrTrailingData}
	}
	return v, nil
}

func decodeValue(src TokenSource, tok Token) (node.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return node.StringValue(tok.String), nil
	case KindNumber:
		n, err := node.ParseNumber(tok.Number)
		if err != nil {
			return node.Value{}, &SyntaxError{Msg: "invalid number literal " + tok.Number, Offset: tok.Offset, cause: err}
		}
		return node.NumberValue(n), nil
	case KindBool:
		return node.BoolValue(tok.Bool), nil
	case KindNull:
		return node.NullValue(), nil
	default:
		return node.Value{}, &SyntaxError{Msg: "unexpected token", Offset: tok.Offset}
	}
}

func decodeObject(src TokenSource) (node.Value, error) {
	obj := node.NewObject()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return node.Value{}, unexpectedEOF(err)
		}
		if tok.Kind == KindEndObject {
			return node.ObjectValue(obj), nil
		}
		if tok.Kind != KindKey {
			return node.Value{}, &SyntaxError{Msg: "expected object key", Offset: tok.Offset}
		}
		vt, err := src.NextToken()
		if err != nil {
			return node.Value{}, unexpectedEOF(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return node.Value{}, err
		}
		obj.Set(tok.String, v)
	}
}

func decodeArray(src TokenSource) (node.Value, error) {
	var arr []node.Value
	for {
		tok, err := src.NextToken()
		if err != nil {
			return node.Value{}, unexpectedEOF(err)
		}
		if tok.Kind == KindEndArray {
			return node.ArrayValue(arr...), nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return node.Value{}, err
		}
		arr = append(arr, v)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
