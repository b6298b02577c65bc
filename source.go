package graphmap

import (
	"io"
	"sync"

	eng "github.com/reoring/graphmap/internal/engine"
)

// Token describes a token in the input stream. Offset records the byte
// position when known (-1 otherwise).
type Token = eng.Token

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
)

// Source abstracts over token producers. Number tokens carry their literal
// text; the parser never commits to a numeric width.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source via a pluggable SPI. The
// built-in driver is the lenient scanner in internal/engine; importing
// github.com/reoring/graphmap/source switches the default to go-json.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = builtinDriver{}
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the built-in scanner.
func UseDefaultJSONDriver() {
	jsonDriverMu.Lock()
	currentJSONDriver = builtinDriver{}
	jsonDriverMu.Unlock()
}

// CurrentJSONDriver returns the process-wide driver.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// BuiltinDriver returns the lenient scanner driver regardless of the global setting.
func BuiltinDriver() JSONDriver { return builtinDriver{} }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

type builtinDriver struct{}

func (builtinDriver) NewReader(r io.Reader) Source {
	s, err := eng.NewScannerReader(r)
	if err != nil {
		return errSource{err: err}
	}
	return s
}
func (builtinDriver) NewBytes(b []byte) Source { return eng.NewScanner(b) }
func (builtinDriver) Name() string             { return "builtin" }

// errSource reports a read failure on the first token.
type errSource struct{ err error }

func (e errSource) NextToken() (Token, error) { return Token{}, e.err }
func (e errSource) Location() int64           { return -1 }
