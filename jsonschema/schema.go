// Package jsonschema describes bound Go types as JSON Schema documents.
//
// The schema reflects what the mapper emits: struct fields by their external
// key, collections as arrays and string-keyed maps as objects. Every struct
// type becomes an entry of $defs so recursive types terminate. Decoding is
// more lenient than the schema states (null for any field, a bare value for a
// one-element collection, numeric strings for numbers).
package jsonschema

import (
	"math/big"
	"reflect"
	"time"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

// Draft is the dialect stamped on root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Dialect string `graph:"$schema" yaml:"$schema,omitempty"`
	Ref     string `graph:"$ref" yaml:"$ref,omitempty"`
	Title   string `graph:"title" yaml:"title,omitempty"`
	Type    string `graph:"type" yaml:"type,omitempty"`
	Format  string `graph:"format" yaml:"format,omitempty"`

	// Object
	Properties           map[string]*Schema `graph:"properties" yaml:"properties,omitempty"`
	AdditionalProperties *Schema            `graph:"additionalProperties" yaml:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `graph:"items" yaml:"items,omitempty"`
	MaxItems *int    `graph:"maxItems" yaml:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `graph:"oneOf" yaml:"oneOf,omitempty"`

	Defs map[string]*Schema `graph:"$defs" yaml:"$defs,omitempty"`
}

var (
	numberType   = reflect.TypeFor[node.Number]()
	timeType     = reflect.TypeFor[time.Time]()
	bigIntType   = reflect.TypeFor[big.Int]()
	bigFloatType = reflect.TypeFor[big.Float]()
)

// For returns the schema of t. Struct types are resolved through
// graphmap.BindingsFor, so invalid bindings fail here as they would on decode.
func For(t reflect.Type) (*Schema, error) {
	g := &generator{defs: map[string]*Schema{}}
	s, err := g.schema(t)
	if err != nil {
		return nil, err
	}
	s.Dialect = Draft
	if len(g.defs) > 0 {
		s.Defs = g.defs
	}
	return s, nil
}

// Of is For for a type parameter.
func Of[T any]() (*Schema, error) { return For(reflect.TypeFor[T]()) }

type generator struct {
	defs map[string]*Schema
}

func (g *generator) schema(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	kind, elem, err := graphmap.KindOf(t)
	if err != nil {
		return nil, err
	}
	switch kind {
	case graphmap.FieldOpaque:
		return &Schema{}, nil
	case graphmap.FieldScalar:
		return scalar(t), nil
	case graphmap.FieldMap:
		items, err := g.schema(elem)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "object", AdditionalProperties: items}, nil
	case graphmap.FieldCollection:
		items, err := g.schema(elem)
		if err != nil {
			return nil, err
		}
		s := &Schema{Type: "array", Items: items}
		if t.Kind() == reflect.Array {
			n := t.Len()
			s.MaxItems = &n
		}
		return s, nil
	}
	return g.object(t)
}

// object registers t in $defs and returns a reference to it.
func (g *generator) object(t reflect.Type) (*Schema, error) {
	name := t.String()
	ref := &Schema{Ref: "#/$defs/" + name}
	if _, ok := g.defs[name]; ok {
		return ref, nil
	}
	tb, err := graphmap.BindingsFor(t)
	if err != nil {
		return nil, err
	}
	def := &Schema{Title: t.Name(), Type: "object", Properties: map[string]*Schema{}}
	g.defs[name] = def
	for _, f := range tb.Fields {
		var fs *Schema
		switch {
		case f.OpaqueText:
			fs = &Schema{}
		case f.StringEncoded:
			fs = &Schema{Type: "string"}
		default:
			if fs, err = g.schema(f.Type); err != nil {
				delete(g.defs, name)
				return nil, err
			}
		}
		def.Properties[f.Key] = fs
	}
	return ref, nil
}

func scalar(t reflect.Type) *Schema {
	switch t {
	case timeType:
		return &Schema{OneOf: []*Schema{{Type: "string", Format: "date-time"}, {Type: "integer"}}}
	case numberType, bigFloatType:
		return &Schema{Type: "number"}
	case bigIntType:
		return &Schema{Type: "integer"}
	}
	switch t.Kind() {
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	}
	return &Schema{Type: "integer"}
}
