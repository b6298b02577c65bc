package graphmap

import (
	"errors"
	"io"

	eng "github.com/reoring/graphmap/internal/engine"
	"github.com/reoring/graphmap/node"
)

// Parse converts JSON text into a node.Value. Invalid syntax, nesting beyond
// MaxDepth and oversized input fail with a malformed_payload *Error.
func Parse(data []byte, opts ...ParseOpt) (node.Value, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return node.Value{}, toMalformed(errMaxBytes)
	}
	return ParseFrom(driverFor(opt).NewBytes(data), opt)
}

// ParseString is Parse for string input.
func ParseString(s string, opts ...ParseOpt) (node.Value, error) {
	return Parse([]byte(s), opts...)
}

// ParseReader reads r to the end and parses the result. When MaxBytes is set
// it enforces the size cap up front.
func ParseReader(r io.Reader, opts ...ParseOpt) (node.Value, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return node.Value{}, toMalformed(err)
		}
		return Parse(data, opt)
	}
	return ParseFrom(driverFor(opt).NewReader(r), opt)
}

// ParseFrom consumes tokens from src and builds the value tree.
func ParseFrom(src Source, opts ...ParseOpt) (node.Value, error) {
	opt := lastOpt(opts)
	var sink func(eng.SimpleIssue)
	if opt.IssueSink != nil {
		sink = func(si eng.SimpleIssue) {
			opt.IssueSink(&Error{Code: si.Code, Path: si.Path, Message: si.Message, Offset: si.Offset})
		}
	}
	enforced := eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.OnDuplicateKey),
		MaxDepth:    opt.maxDepth(),
		MaxBytes:    opt.MaxBytes,
		IssueSink:   sink,
	})
	v, err := eng.DecodeValue(enforced)
	if err != nil {
		return node.Value{}, toMalformed(err)
	}
	return v, nil
}

// Stringify renders v as compact, byte-stable JSON.
func Stringify(v node.Value) string { return node.Stringify(v) }

var errMaxBytes = errors.New("max bytes exceeded")

func driverFor(opt ParseOpt) JSONDriver {
	if opt.Driver != nil {
		return opt.Driver
	}
	return CurrentJSONDriver()
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case SeverityError:
		return eng.DupError
	case SeverityWarn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}
