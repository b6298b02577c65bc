package graphmap

import (
	"log/slog"
	"reflect"

	"github.com/reoring/graphmap/node"
)

// Options configures a Mapper.
type Options struct {
	// Logger receives decode diagnostics. Nil means slog.Default().
	Logger *slog.Logger
	// Parse applies to Unmarshal and Mapper.Parse.
	Parse ParseOpt
	// StrictNumbers rejects JSON strings for numeric fields unless the field
	// carries the `string` tag option.
	StrictNumbers bool
	// LogUnknownKeys emits a debug record for every object key with no binding.
	LogUnknownKeys bool
}

// Mapper converts between node.Value trees and Go values. A Mapper is
// immutable and safe for concurrent use.
type Mapper struct {
	opts Options
	log  *slog.Logger
}

// New returns a Mapper using opts.
func New(opts Options) *Mapper {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}
	return &Mapper{opts: opts, log: lg.With(slog.String("component", "graphmap"))}
}

var defaultMapper = New(Options{})

// Default returns the Mapper behind the package-level helpers.
func Default() *Mapper { return defaultMapper }

// Logger returns the logger the mapper writes to.
func (m *Mapper) Logger() *slog.Logger { return m.log }

// Parse parses data with the mapper's ParseOpt. Duplicate keys reported with
// SeverityWarn are logged unless the options carry their own IssueSink.
func (m *Mapper) Parse(data []byte) (node.Value, error) {
	opt := m.opts.Parse
	if opt.IssueSink == nil && opt.OnDuplicateKey == SeverityWarn {
		opt.IssueSink = func(e *Error) {
			m.log.Warn("duplicate key in payload",
				slog.String("path", DisplayPath(e.Path)),
				slog.Int64("offset", e.Offset))
		}
	}
	return Parse(data, opt)
}

// Decode populates the value out points to from v. out must be a non-nil
// pointer; its target is reset to the zero value first.
func (m *Mapper) Decode(v node.Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return invalidBinding(reflect.TypeOf(out), "decode target must be a non-nil pointer")
	}
	if err := validateRoot(rv.Type().Elem()); err != nil {
		return err
	}
	dst := rv.Elem()
	dst.SetZero()
	d := &decoder{m: m}
	return d.decode("", v, dst, false)
}

// Unmarshal parses data and decodes the result into out.
func (m *Mapper) Unmarshal(data []byte, out any) error {
	v, err := m.Parse(data)
	if err != nil {
		return err
	}
	return m.Decode(v, out)
}

// Encode walks in and produces the sparse value tree.
func (m *Mapper) Encode(in any) (node.Value, error) {
	if in == nil {
		return node.NullValue(), nil
	}
	rv := reflect.ValueOf(in)
	if err := validateRoot(rv.Type()); err != nil {
		return node.Value{}, err
	}
	e := &encoder{m: m}
	return e.encode("", addressable(rv), false)
}

// Marshal encodes in and renders compact JSON.
func (m *Mapper) Marshal(in any) ([]byte, error) {
	v, err := m.Encode(in)
	if err != nil {
		return nil, err
	}
	return v.AppendJSON(nil), nil
}

// DecodeWith decodes v into a new T using m.
func DecodeWith[T any](m *Mapper, v node.Value) (T, error) {
	var out T
	err := m.Decode(v, &out)
	return out, err
}

// Decode uses the default Mapper.
func Decode(v node.Value, out any) error { return defaultMapper.Decode(v, out) }

// DecodeAs decodes v into a new T using the default Mapper.
func DecodeAs[T any](v node.Value) (T, error) { return DecodeWith[T](defaultMapper, v) }

// Unmarshal uses the default Mapper.
func Unmarshal(data []byte, out any) error { return defaultMapper.Unmarshal(data, out) }

// UnmarshalAs parses data into a new T using the default Mapper.
func UnmarshalAs[T any](data []byte) (T, error) {
	var out T
	err := defaultMapper.Unmarshal(data, &out)
	return out, err
}

// Encode uses the default Mapper.
func Encode(in any) (node.Value, error) { return defaultMapper.Encode(in) }

// Marshal uses the default Mapper.
func Marshal(in any) ([]byte, error) { return defaultMapper.Marshal(in) }
