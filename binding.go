package graphmap

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// FieldKind classifies how a field maps onto JSON.
type FieldKind int

const (
	FieldScalar     FieldKind = iota // string, bool, numbers, node.Number, time.Time, big.Int, big.Float
	FieldComposite                   // struct bound through its own TypeBindings
	FieldCollection                  // slice, array or List[T]
	FieldMap                         // map[string]T
	FieldOpaque                      // node.Value, any, or a string tagged opaque
)

func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldComposite:
		return "composite"
	case FieldCollection:
		return "collection"
	case FieldMap:
		return "map"
	case FieldOpaque:
		return "opaque"
	}
	return "unknown"
}

// MappingCompleter is implemented (with a pointer receiver) by types that
// derive secondary fields once mapping is done. MappingCompleted runs exactly
// once per decoded instance, after every bound field, including nested
// composites, has been populated.
type MappingCompleter interface {
	MappingCompleted() error
}

// FieldBinding describes one mappable field of a struct.
type FieldBinding struct {
	Name          string       // Go field name
	Key           string       // external JSON key
	Index         []int        // reflect index path, through embedded structs
	Type          reflect.Type // declared Go type
	Kind          FieldKind
	Elem          reflect.Type // element type for collections and maps
	Collection    bool
	StringEncoded bool // `string` option
	OpaqueText    bool // string field holding raw JSON text
}

// TypeBindings holds the bindings of one struct type. It is immutable once
// published and safe to share.
type TypeBindings struct {
	Type              reflect.Type
	Fields            []FieldBinding // declaration order
	HasCompletionHook bool
	byKey             map[string]int
}

// ByKey returns the binding for an external key.
func (tb *TypeBindings) ByKey(key string) (*FieldBinding, bool) {
	i, ok := tb.byKey[key]
	if !ok {
		return nil, false
	}
	return &tb.Fields[i], true
}

type bindingEntry struct {
	tb  *TypeBindings
	err error
}

// bindingCache maps reflect.Type to *bindingEntry. Discovery is deterministic,
// so racing goroutines may both build an entry; LoadOrStore keeps one.
var bindingCache sync.Map

// BindingsFor returns the cached bindings of struct type t (pointers are
// dereferenced), discovering them on first use. Misconfigured types fail with
// an invalid_binding *Error, and keep failing on later calls.
func BindingsFor(t reflect.Type) (*TypeBindings, error) {
	if t == nil {
		return nil, invalidBinding(nil, "nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if e, ok := bindingCache.Load(t); ok {
		be := e.(*bindingEntry)
		return be.tb, be.err
	}
	tb, err := buildBindings(t)
	e, _ := bindingCache.LoadOrStore(t, &bindingEntry{tb: tb, err: err})
	be := e.(*bindingEntry)
	return be.tb, be.err
}

// BindingsOf is BindingsFor for a type parameter.
func BindingsOf[T any]() (*TypeBindings, error) { return BindingsFor(reflect.TypeFor[T]()) }

// MustBindings is like BindingsFor but panics on error.
func MustBindings(t reflect.Type) *TypeBindings {
	tb, err := BindingsFor(t)
	if err != nil {
		panic(err)
	}
	return tb
}

// Validate discovers the bindings of each sample's type and of every type
// reachable from it, so misconfigured bindings fail at startup instead of on
// the first payload that exercises them.
func Validate(samples ...any) error {
	seen := map[reflect.Type]bool{}
	var errs []error
	for _, s := range samples {
		t, ok := s.(reflect.Type)
		if !ok {
			t = reflect.TypeOf(s)
		}
		if err := validateType(t, seen); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// validatedRoots holds the root types Decode and Encode have already
// validated, so repeat calls skip the graph walk.
var validatedRoots sync.Map

func validateRoot(t reflect.Type) error {
	if _, ok := validatedRoots.Load(t); ok {
		return nil
	}
	if err := Validate(t); err != nil {
		return err
	}
	validatedRoots.Store(t, struct{}{})
	return nil
}

func validateType(t reflect.Type, seen map[reflect.Type]bool) error {
	if t == nil {
		return invalidBinding(nil, "nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if seen[t] {
		return nil
	}
	seen[t] = true
	kind, elem, reason := classify(t)
	if reason != "" {
		return invalidBinding(t, reason)
	}
	switch kind {
	case FieldCollection, FieldMap:
		return validateType(elem, seen)
	case FieldComposite:
		tb, err := BindingsFor(t)
		if err != nil {
			return err
		}
		var errs []error
		for _, f := range tb.Fields {
			if f.Kind == FieldOpaque || f.Kind == FieldScalar {
				continue
			}
			if err := validateType(f.Type, seen); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// classify returns the field kind of t, its element type for collections and
// maps, and a reason when t cannot be bound.
func classify(t reflect.Type) (FieldKind, reflect.Type, string) {
	switch {
	case t == valueType:
		return FieldOpaque, nil, ""
	case isSpecialScalar(t):
		return FieldScalar, nil, ""
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return FieldScalar, nil, ""
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return FieldOpaque, nil, ""
		}
		return 0, nil, fmt.Sprintf("interface type %s has no concrete mapping", t)
	case reflect.Pointer:
		return classify(t.Elem())
	case reflect.Struct:
		if isListType(t) {
			el := listElem(t)
			if _, _, reason := classify(el); reason != "" {
				return 0, nil, "element type " + el.String() + ": " + reason
			}
			return FieldCollection, el, ""
		}
		return FieldComposite, nil, ""
	case reflect.Slice, reflect.Array:
		el := t.Elem()
		if _, _, reason := classify(el); reason != "" {
			return 0, nil, "element type " + el.String() + ": " + reason
		}
		return FieldCollection, el, ""
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return 0, nil, fmt.Sprintf("map key type %s is not a string", t.Key())
		}
		if _, _, reason := classify(t.Elem()); reason != "" {
			return 0, nil, "map value type " + t.Elem().String() + ": " + reason
		}
		return FieldMap, t.Elem(), ""
	}
	return 0, nil, fmt.Sprintf("unsupported kind %s", t.Kind())
}

// KindOf reports how values of t are mapped and, for collections and maps,
// their element type.
func KindOf(t reflect.Type) (FieldKind, reflect.Type, error) {
	kind, elem, reason := classify(t)
	if reason != "" {
		return 0, nil, invalidBinding(t, reason)
	}
	return kind, elem, nil
}

const maxEmbedDepth = 16

func buildBindings(t reflect.Type) (*TypeBindings, error) {
	if kind, _, _ := classify(t); t.Kind() != reflect.Struct || kind != FieldComposite {
		return nil, invalidBinding(t, "composite target must be a struct")
	}
	tb := &TypeBindings{Type: t, byKey: map[string]int{}}
	depthOf := map[string]int{}

	var walk func(st reflect.Type, index []int, depth int) error
	walk = func(st reflect.Type, index []int, depth int) error {
		for i := 0; i < st.NumField(); i++ {
			sf := st.Field(i)
			idx := append(append([]int(nil), index...), i)
			key, opts, tagged := resolveStructKey(sf)
			if sf.Anonymous && !tagged {
				ft := sf.Type
				ptr := ft.Kind() == reflect.Pointer
				if ptr {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct && !isListType(ft) && !isSpecialScalar(ft) {
					if ptr && !sf.IsExported() {
						continue
					}
					if depth >= maxEmbedDepth {
						return invalidBinding(t, "embedding too deep at "+sf.Name)
					}
					if err := walk(ft, idx, depth+1); err != nil {
						return err
					}
					continue
				}
			}
			if !sf.IsExported() || key == "-" {
				continue
			}
			fb, err := newFieldBinding(t, sf, key, opts, idx)
			if err != nil {
				return err
			}
			if prev, ok := depthOf[key]; ok {
				switch {
				case prev == depth:
					return invalidBinding(t, fmt.Sprintf("duplicate key %q", key))
				case prev < depth:
					continue
				}
				tb.Fields[tb.byKey[key]] = fb
				depthOf[key] = depth
				continue
			}
			depthOf[key] = depth
			tb.byKey[key] = len(tb.Fields)
			tb.Fields = append(tb.Fields, fb)
		}
		return nil
	}
	if err := walk(t, nil, 0); err != nil {
		return nil, err
	}

	pt := reflect.PointerTo(t)
	tb.HasCompletionHook = pt.Implements(completerType)
	if !tb.HasCompletionHook {
		if _, ok := pt.MethodByName("MappingCompleted"); ok {
			return nil, invalidBinding(t, "MappingCompleted must have signature func() error")
		}
	}
	return tb, nil
}

func newFieldBinding(owner reflect.Type, sf reflect.StructField, key string, opts []string, idx []int) (FieldBinding, error) {
	kind, elem, reason := classify(sf.Type)
	if reason != "" {
		return FieldBinding{}, invalidBinding(owner, "field "+sf.Name+": "+reason)
	}
	fb := FieldBinding{
		Name:       sf.Name,
		Key:        key,
		Index:      idx,
		Type:       sf.Type,
		Kind:       kind,
		Elem:       elem,
		Collection: kind == FieldCollection,
	}
	base := sf.Type
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	for _, o := range opts {
		switch o {
		case optOmitEmpty:
		case optOpaque:
			switch {
			case kind == FieldOpaque:
			case base.Kind() == reflect.String && base != numberType:
				fb.Kind = FieldOpaque
				fb.OpaqueText = true
			default:
				return FieldBinding{}, invalidBinding(owner, "field "+sf.Name+": opaque needs node.Value, any or string")
			}
		case optString:
			if kind != FieldScalar || base.Kind() == reflect.String || base == timeType {
				return FieldBinding{}, invalidBinding(owner, "field "+sf.Name+": string option needs a number or bool")
			}
			fb.StringEncoded = true
		default:
			return FieldBinding{}, invalidBinding(owner, fmt.Sprintf("field %s: unknown tag option %q", sf.Name, o))
		}
	}
	return fb, nil
}
