package graphmap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/graphmap/i18n"
	eng "github.com/reoring/graphmap/internal/engine"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeMalformedPayload = "malformed_payload"
	CodeInvalidBinding   = "invalid_binding"
	CodeTypeMismatch     = "type_mismatch"
	CodeOverflow         = "overflow" // a type mismatch on numeric range
	CodeHookFailed       = "hook_failed"
	CodeDuplicateKey     = "duplicate_key" // non-fatal unless SeverityError
)

// Sentinels for errors.Is. An *Error matches the sentinel of its code class.
var (
	ErrMalformedPayload = errors.New("graphmap: malformed payload")
	ErrInvalidBinding   = errors.New("graphmap: invalid binding")
	ErrTypeMismatch     = errors.New("graphmap: type mismatch")
	ErrHookFailed       = errors.New("graphmap: mapping hook failed")
)

// Error is the error type returned by parsing, binding and mapping.
type Error struct {
	Code    string
	Path    string       // dotted field path from the mapping root ("" is the root)
	Message string
	Type    reflect.Type // target type involved, when known
	Offset  int64        // byte offset in the input (-1 when unknown)
	Cause   error
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString("graphmap: ")
	b.WriteString(e.Code)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Offset >= 0 && e.Code == CodeMalformedPayload {
		fmt.Fprintf(b, " (offset %d)", e.Offset)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil && e.Code == CodeHookFailed {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel of e's code class.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMalformedPayload:
		return e.Code == CodeMalformedPayload || e.Code == CodeDuplicateKey
	case ErrInvalidBinding:
		return e.Code == CodeInvalidBinding
	case ErrTypeMismatch:
		return e.Code == CodeTypeMismatch || e.Code == CodeOverflow
	case ErrHookFailed:
		return e.Code == CodeHookFailed
	}
	return false
}

// AsError extracts an *Error using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func typeMismatch(path string, t reflect.Type, expected, got string) *Error {
	return &Error{
		Code:    CodeTypeMismatch,
		Path:    path,
		Type:    t,
		Offset:  -1,
		Message: i18n.T(CodeTypeMismatch, map[string]string{"expected": expected, "got": got}),
	}
}

func overflow(path string, t reflect.Type, got string, cause error) *Error {
	return &Error{
		Code:    CodeOverflow,
		Path:    path,
		Type:    t,
		Offset:  -1,
		Cause:   cause,
		Message: i18n.T(CodeOverflow, map[string]string{"expected": t.String(), "got": got}),
	}
}

func invalidBinding(t reflect.Type, reason string) *Error {
	name := "<nil>"
	if t != nil {
		name = t.String()
	}
	return &Error{
		Code:    CodeInvalidBinding,
		Type:    t,
		Offset:  -1,
		Message: i18n.T(CodeInvalidBinding, map[string]string{"type": name, "reason": reason}),
	}
}

// toMalformed maps token/engine failures onto a malformed_payload Error.
func toMalformed(err error) *Error {
	if e, ok := AsError(err); ok {
		return e
	}
	out := &Error{Code: CodeMalformedPayload, Offset: -1, Cause: err}
	reason := err.Error()
	var se *eng.SyntaxError
	var ie eng.IssueError
	switch {
	case errors.As(err, &ie):
		out.Path = ie.Path
		out.Offset = ie.Offset
		reason = ie.Message
		if ie.Code == CodeDuplicateKey {
			out.Code = CodeDuplicateKey
		}
	case errors.As(err, &se):
		out.Offset = se.Offset
		reason = se.Msg
	case errors.Is(err, eng.ErrEmpty):
		reason = "empty input"
	}
	out.Message = i18n.T(CodeMalformedPayload, map[string]string{"reason": reason})
	return out
}

// DisplayPath renders an Error path for humans; the root is "$".
func DisplayPath(p string) string { return eng.DisplayPath(p) }
