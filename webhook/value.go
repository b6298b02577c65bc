// Package webhook decodes change notifications pushed by the graph API.
//
// The `value` of a change is polymorphic: its concrete shape depends on the
// change field, the `item` and `verb` inside the payload, and in some
// notification families on a verb stored next to the value. A Resolver
// computes a discriminator key from those parts and maps the payload onto
// the registered shape. Unknown keys never fail a batch; they resolve to a
// FallbackValue that keeps the raw object.
package webhook

import (
	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

// ChangeValue is the resolved `value` of a change.
type ChangeValue interface {
	// ChangeKey returns the discriminator key the value was resolved under.
	ChangeKey() string
}

// ChangeMeta carries the discriminator key. Shapes embed it to satisfy
// ChangeValue; it has no mapped fields.
type ChangeMeta struct {
	key string
}

func (m *ChangeMeta) ChangeKey() string      { return m.key }
func (m *ChangeMeta) setChangeKey(k string) { m.key = k }

type keyed interface {
	setChangeKey(string)
}

// StringValue wraps a change whose value is a bare JSON string.
type StringValue struct {
	ChangeMeta
	Value string
}

// ListValue wraps a change whose value is a JSON array. Elements are kept raw
// because such arrays are heterogeneous.
type ListValue struct {
	ChangeMeta
	Items graphmap.List[node.Value]
}

// FallbackValue keeps a payload that no registered shape matches.
type FallbackValue struct {
	ChangeMeta
	Raw node.Value
}

// Get looks up a top-level key of the raw payload.
func (f *FallbackValue) Get(key string) (node.Value, bool) { return f.Raw.Get(key) }
