package graphmap

import (
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/reoring/graphmap/node"
)

var (
	valueType     = reflect.TypeFor[node.Value]()
	numberType    = reflect.TypeFor[node.Number]()
	timeType      = reflect.TypeFor[time.Time]()
	bigIntType    = reflect.TypeFor[big.Int]()
	bigFloatType  = reflect.TypeFor[big.Float]()
	completerType = reflect.TypeFor[MappingCompleter]()
	listType      = reflect.TypeFor[listBinder]()
)

// tagOptions recognised after the key in a graph tag.
const (
	optOmitEmpty = "omitempty" // accepted for symmetry with json tags; encoding is always sparse
	optOpaque    = "opaque"    // keep the raw value (node.Value) or its JSON text (string)
	optString    = "string"    // numbers and booleans travel as JSON strings
)

// resolveStructKey applies the repository-wide rule to resolve a struct field's
// external key. Priority: graph tag name > json tag name > field name; "-"
// disables the field. Options are only read from the graph tag.
func resolveStructKey(sf reflect.StructField) (key string, opts []string, tagged bool) {
	if gt, ok := sf.Tag.Lookup("graph"); ok {
		parts := strings.Split(gt, ",")
		key = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			if p = strings.TrimSpace(p); p != "" {
				opts = append(opts, p)
			}
		}
		if key == "" {
			key = jsonKey(sf)
		}
		return key, opts, true
	}
	if jt, ok := sf.Tag.Lookup("json"); ok && jt != "" {
		return jsonKey(sf), nil, true
	}
	return sf.Name, nil, false
}

func jsonKey(sf reflect.StructField) string {
	jt := sf.Tag.Get("json")
	if jt == "-" {
		return "-"
	}
	if i := strings.IndexByte(jt, ','); i >= 0 {
		jt = jt[:i]
	}
	if jt == "" {
		return sf.Name
	}
	return jt
}

func isSpecialScalar(t reflect.Type) bool {
	switch t {
	case numberType, timeType, bigIntType, bigFloatType:
		return true
	}
	return false
}

func isListType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(listType)
}

// listElem reports the element type of a List[T].
func listElem(t reflect.Type) reflect.Type {
	return reflect.New(t).Interface().(listBinder).listElemType()
}
