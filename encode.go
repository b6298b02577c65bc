package graphmap

import (
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"time"

	"github.com/reoring/graphmap/codec"
	eng "github.com/reoring/graphmap/internal/engine"
	"github.com/reoring/graphmap/node"
)

type encoder struct {
	m *Mapper
}

// encode is the inverse of decode. Objects are sparse; collection elements
// are always emitted, nil ones as null.
func (e *encoder) encode(path string, rv reflect.Value, quoted bool) (node.Value, error) {
	t := rv.Type()
	switch {
	case t == valueType:
		v := rv.Interface().(node.Value)
		if !v.IsValid() {
			return node.NullValue(), nil
		}
		return v, nil
	case t.Kind() == reflect.Pointer, t.Kind() == reflect.Interface:
		if rv.IsNil() {
			return node.NullValue(), nil
		}
		inner := rv.Elem()
		if t.Kind() == reflect.Interface {
			if _, _, reason := classify(inner.Type()); reason != "" {
				return node.Value{}, invalidBinding(inner.Type(), reason)
			}
			inner = addressable(inner)
		}
		return e.encode(path, inner, quoted)
	case t == timeType:
		return node.StringValue(codec.FormatTime(rv.Interface().(time.Time))), nil
	case t == numberType:
		n := rv.String()
		if n == "" {
			n = "0"
		}
		return numberValue(node.Number(n), quoted), nil
	case t == bigIntType:
		bi := addressable(rv).Addr().Interface().(*big.Int)
		return numberValue(node.Number(bi.String()), quoted), nil
	case t == bigFloatType:
		bf := addressable(rv).Addr().Interface().(*big.Float)
		if bf.IsInf() {
			return node.Value{}, typeMismatch(path, t, "finite number", bf.String())
		}
		n, err := node.ParseNumber(bf.Text('g', -1))
		if err != nil {
			return node.Value{}, typeMismatch(path, t, "finite number", bf.String())
		}
		return numberValue(n, quoted), nil
	case isListType(t):
		lb := addressable(rv).Addr().Interface().(listBinder)
		out := make([]node.Value, 0, lb.listLen())
		for i := 0; i < lb.listLen(); i++ {
			v, err := e.encode(eng.JoinIndex(path, i), lb.listValue(i), false)
			if err != nil {
				return node.Value{}, err
			}
			out = append(out, v)
		}
		return node.ArrayValue(out...), nil
	}

	switch t.Kind() {
	case reflect.Struct:
		return e.encodeStruct(path, rv)
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && rv.IsNil() {
			return node.NullValue(), nil
		}
		out := make([]node.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := e.encode(eng.JoinIndex(path, i), rv.Index(i), false)
			if err != nil {
				return node.Value{}, err
			}
			out = append(out, v)
		}
		return node.ArrayValue(out...), nil
	case reflect.Map:
		if rv.IsNil() {
			return node.NullValue(), nil
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		obj := node.NewObject()
		for _, k := range keys {
			v, err := e.encode(eng.JoinKey(path, k), addressable(rv.MapIndex(reflect.ValueOf(k).Convert(t.Key()))), false)
			if err != nil {
				return node.Value{}, err
			}
			obj.Set(k, v)
		}
		return node.ObjectValue(obj), nil
	case reflect.String:
		return node.StringValue(rv.String()), nil
	case reflect.Bool:
		if quoted {
			if rv.Bool() {
				return node.StringValue("true"), nil
			}
			return node.StringValue("false"), nil
		}
		return node.BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberValue(node.NumberFromInt(rv.Int()), quoted), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numberValue(node.NumberFromUint(rv.Uint()), quoted), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return node.Value{}, typeMismatch(path, t, "finite number", strconv.FormatFloat(f, 'g', -1, t.Bits()))
		}
		return numberValue(node.NumberFromFloat(f, t.Bits()), quoted), nil
	}
	return node.Value{}, invalidBinding(t, "unsupported kind "+t.Kind().String())
}

func (e *encoder) encodeStruct(path string, rv reflect.Value) (node.Value, error) {
	tb, err := BindingsFor(rv.Type())
	if err != nil {
		return node.Value{}, err
	}
	obj := node.NewObject()
	for i := range tb.Fields {
		fb := &tb.Fields[i]
		fv, ok := fieldForRead(rv, fb.Index)
		if !ok || isEmptyValue(fv) {
			continue
		}
		p := eng.JoinKey(path, fb.Key)
		var v node.Value
		if fb.OpaqueText {
			for fv.Kind() == reflect.Pointer {
				fv = fv.Elem()
			}
			v, err = ParseString(fv.String())
			if err != nil {
				if pe, ok := AsError(err); ok {
					pe.Path = p
				}
				return node.Value{}, err
			}
		} else if v, err = e.encode(p, fv, fb.StringEncoded); err != nil {
			return node.Value{}, err
		}
		obj.Set(fb.Key, v)
	}
	return node.ObjectValue(obj), nil
}

func numberValue(n node.Number, quoted bool) node.Value {
	if quoted {
		return node.StringValue(string(n))
	}
	return node.NumberValue(n)
}

// isEmptyValue decides omission in sparse objects. A non-nil pointer is
// never empty, so pointers mark explicitly set zero values.
func isEmptyValue(rv reflect.Value) bool {
	t := rv.Type()
	switch {
	case t == valueType:
		return !rv.Interface().(node.Value).IsValid()
	case t == timeType:
		return rv.Interface().(time.Time).IsZero()
	case t == numberType:
		return rv.String() == "" || rv.String() == "0"
	case t == bigIntType:
		return addressable(rv).Addr().Interface().(*big.Int).Sign() == 0
	case t == bigFloatType:
		return addressable(rv).Addr().Interface().(*big.Float).Sign() == 0
	case isListType(t):
		return addressable(rv).Addr().Interface().(listBinder).listLen() == 0
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	}
	return rv.IsZero()
}

// fieldForRead follows index and reports false when it crosses a nil
// embedded pointer.
func fieldForRead(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// addressable returns rv itself when it can be addressed, otherwise a copy
// that can.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	return cp
}
