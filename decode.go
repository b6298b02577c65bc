package graphmap

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/graphmap/codec"
	"github.com/reoring/graphmap/i18n"
	eng "github.com/reoring/graphmap/internal/engine"
	"github.com/reoring/graphmap/node"
)

type decoder struct {
	m *Mapper
}

// decode writes v into dst, which must be settable. Absent and null values
// leave dst untouched, except for node.Value targets which keep the null.
func (d *decoder) decode(path string, v node.Value, dst reflect.Value, quoted bool) error {
	t := dst.Type()
	if t == valueType {
		dst.Set(reflect.ValueOf(v))
		return nil
	}
	if !v.IsValid() || v.IsNull() {
		return nil
	}
	switch {
	case t.Kind() == reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(t.Elem()))
		}
		return d.decode(path, v, dst.Elem(), quoted)
	case t.Kind() == reflect.Interface:
		if t.NumMethod() != 0 {
			return invalidBinding(t, "interface type has no concrete mapping")
		}
		dst.Set(reflect.ValueOf(v))
		return nil
	case t == timeType:
		return d.decodeTime(path, v, dst)
	case t == numberType:
		n, err := d.number(path, v, t, true)
		if err != nil {
			return err
		}
		dst.SetString(string(n))
		return nil
	case t == bigIntType:
		n, err := d.number(path, v, t, quoted)
		if err != nil {
			return err
		}
		bi, err := n.BigInt()
		if err != nil {
			return typeMismatch(path, t, "integer", string(n))
		}
		dst.Addr().Interface().(*big.Int).Set(bi)
		return nil
	case t == bigFloatType:
		n, err := d.number(path, v, t, quoted)
		if err != nil {
			return err
		}
		bf, err := n.BigFloat()
		if err != nil {
			return typeMismatch(path, t, "number", string(n))
		}
		dst.Addr().Interface().(*big.Float).Set(bf)
		return nil
	case isListType(t):
		return d.decodeList(path, v, dst)
	}
	switch t.Kind() {
	case reflect.Struct:
		return d.decodeStruct(path, v, dst)
	case reflect.Slice:
		return d.decodeSlice(path, v, dst)
	case reflect.Array:
		return d.decodeArray(path, v, dst)
	case reflect.Map:
		return d.decodeMap(path, v, dst)
	}
	return d.decodeScalar(path, v, dst, quoted)
}

func (d *decoder) decodeStruct(path string, v node.Value, dst reflect.Value) error {
	t := dst.Type()
	obj, ok := v.Object()
	if !ok {
		return typeMismatch(path, t, "object", v.Kind().String())
	}
	tb, err := BindingsFor(t)
	if err != nil {
		return err
	}
	for i := range tb.Fields {
		fb := &tb.Fields[i]
		child, ok := obj.Get(fb.Key)
		if !ok {
			continue
		}
		if err := d.decodeField(eng.JoinKey(path, fb.Key), fb, child, fieldForWrite(dst, fb.Index)); err != nil {
			return err
		}
	}
	if d.m.opts.LogUnknownKeys {
		obj.Range(func(key string, _ node.Value) bool {
			if _, ok := tb.ByKey(key); !ok {
				d.m.log.Debug("unbound key",
					slog.String("type", t.String()),
					slog.String("path", eng.DisplayPath(eng.JoinKey(path, key))))
			}
			return true
		})
	}
	if tb.HasCompletionHook {
		if err := dst.Addr().Interface().(MappingCompleter).MappingCompleted(); err != nil {
			return hookFailed(path, t, err)
		}
	}
	return nil
}

func (d *decoder) decodeField(path string, fb *FieldBinding, v node.Value, dst reflect.Value) error {
	if fb.OpaqueText {
		if !v.IsValid() || v.IsNull() {
			return nil
		}
		settle(dst).SetString(node.Stringify(v))
		return nil
	}
	return d.decode(path, v, dst, fb.StringEncoded)
}

func (d *decoder) decodeSlice(path string, v node.Value, dst reflect.Value) error {
	elems := elements(v)
	out := reflect.MakeSlice(dst.Type(), len(elems), len(elems))
	for i, e := range elems {
		if err := d.decode(eng.JoinIndex(path, i), e, out.Index(i), false); err != nil {
			return err
		}
	}
	dst.Set(out)
	return nil
}

func (d *decoder) decodeArray(path string, v node.Value, dst reflect.Value) error {
	t := dst.Type()
	elems := elements(v)
	if len(elems) > t.Len() {
		return typeMismatch(path, t, fmt.Sprintf("at most %d elements", t.Len()), fmt.Sprintf("%d elements", len(elems)))
	}
	dst.SetZero()
	for i, e := range elems {
		if err := d.decode(eng.JoinIndex(path, i), e, dst.Index(i), false); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) decodeList(path string, v node.Value, dst reflect.Value) error {
	lb := dst.Addr().Interface().(listBinder)
	lb.listReset()
	et := lb.listElemType()
	for i, e := range elements(v) {
		ev := reflect.New(et).Elem()
		if err := d.decode(eng.JoinIndex(path, i), e, ev, false); err != nil {
			return err
		}
		lb.listAppend(ev)
	}
	return nil
}

func (d *decoder) decodeMap(path string, v node.Value, dst reflect.Value) error {
	t := dst.Type()
	obj, ok := v.Object()
	if !ok {
		return typeMismatch(path, t, "object", v.Kind().String())
	}
	out := reflect.MakeMapWithSize(t, obj.Len())
	var err error
	obj.Range(func(key string, child node.Value) bool {
		ev := reflect.New(t.Elem()).Elem()
		if err = d.decode(eng.JoinKey(path, key), child, ev, false); err != nil {
			return false
		}
		out.SetMapIndex(reflect.ValueOf(key).Convert(t.Key()), ev)
		return true
	})
	if err != nil {
		return err
	}
	dst.Set(out)
	return nil
}

func (d *decoder) decodeTime(path string, v node.Value, dst reflect.Value) error {
	var tm time.Time
	switch v.Kind() {
	case node.KindString:
		s, _ := v.Str()
		parsed, err := codec.ParseTime(s)
		if err != nil {
			return typeMismatch(path, timeType, "timestamp", strconv.Quote(s))
		}
		tm = parsed
	case node.KindNumber:
		n, _ := v.Num()
		secs, err := n.Int64()
		if err != nil {
			return typeMismatch(path, timeType, "unix timestamp", string(n))
		}
		tm = codec.UnixTime(secs)
	default:
		return typeMismatch(path, timeType, "timestamp", v.Kind().String())
	}
	dst.Set(reflect.ValueOf(tm))
	return nil
}

func (d *decoder) decodeScalar(path string, v node.Value, dst reflect.Value, quoted bool) error {
	t := dst.Type()
	switch t.Kind() {
	case reflect.String:
		switch v.Kind() {
		case node.KindString, node.KindNumber:
			s, _ := v.Text()
			dst.SetString(s)
		case node.KindBool:
			b, _ := v.Bool()
			dst.SetString(strconv.FormatBool(b))
		default:
			return typeMismatch(path, t, "string", v.Kind().String())
		}
	case reflect.Bool:
		switch v.Kind() {
		case node.KindBool:
			b, _ := v.Bool()
			dst.SetBool(b)
		case node.KindString:
			s, _ := v.Str()
			b, err := strconv.ParseBool(s)
			if !quoted || err != nil {
				return typeMismatch(path, t, "boolean", "string")
			}
			dst.SetBool(b)
		default:
			return typeMismatch(path, t, "boolean", v.Kind().String())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := d.number(path, v, t, quoted)
		if err != nil {
			return err
		}
		i, err := n.Int64()
		if err != nil {
			return numberError(path, t, n, err)
		}
		if dst.OverflowInt(i) {
			return overflow(path, t, string(n), strconv.ErrRange)
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := d.number(path, v, t, quoted)
		if err != nil {
			return err
		}
		if strings.HasPrefix(string(n), "-") {
			return overflow(path, t, string(n), strconv.ErrRange)
		}
		u, err := n.Uint64()
		if err != nil {
			return numberError(path, t, n, err)
		}
		if dst.OverflowUint(u) {
			return overflow(path, t, string(n), strconv.ErrRange)
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		n, err := d.number(path, v, t, quoted)
		if err != nil {
			return err
		}
		f, err := n.Float64()
		if err != nil || dst.OverflowFloat(f) {
			return overflow(path, t, string(n), strconv.ErrRange)
		}
		dst.SetFloat(f)
	default:
		return invalidBinding(t, "unsupported kind "+t.Kind().String())
	}
	return nil
}

// number reads a numeric literal. JSON strings holding a number are accepted
// unless the mapper is strict and the field is not string-encoded.
func (d *decoder) number(path string, v node.Value, t reflect.Type, quoted bool) (node.Number, error) {
	switch v.Kind() {
	case node.KindNumber:
		n, _ := v.Num()
		return n, nil
	case node.KindString:
		if quoted || !d.m.opts.StrictNumbers {
			s, _ := v.Str()
			if n, err := node.ParseNumber(strings.TrimSpace(s)); err == nil {
				return n, nil
			}
		}
	}
	return "", typeMismatch(path, t, "number", v.Kind().String())
}

func numberError(path string, t reflect.Type, n node.Number, err error) error {
	if errors.Is(err, node.ErrNotIntegral) {
		return typeMismatch(path, t, "integer", string(n))
	}
	return overflow(path, t, string(n), err)
}

func hookFailed(path string, t reflect.Type, cause error) *Error {
	return &Error{
		Code:    CodeHookFailed,
		Path:    path,
		Type:    t,
		Offset:  -1,
		Cause:   cause,
		Message: i18n.T(CodeHookFailed, map[string]string{"type": t.String()}),
	}
}

// elements treats a non-array value as a one-element collection.
func elements(v node.Value) []node.Value {
	if arr, ok := v.Array(); ok {
		return arr
	}
	return []node.Value{v}
}

// fieldForWrite follows index, allocating nil embedded pointers on the way.
func fieldForWrite(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

// settle allocates through pointers and returns the addressed value.
func settle(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	return v
}
