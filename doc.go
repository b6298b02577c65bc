package graphmap

// Package graphmap maps JSON payloads of a social-graph API onto Go types and
// back.
//
// - Parse/Stringify convert between JSON text and node.Value trees that keep
//   object key order.
// - Decode/Encode walk a node.Value and a Go type's field bindings (struct tags,
//   discovered once per type and cached) to build typed values, and produce the
//   sparse JSON the API expects on writes.
// - Errors carry a code (malformed_payload, invalid_binding, type_mismatch) and
//   the dotted field path where mapping failed.
//
// Design policy:
// - Keep only public APIs in the root package; put token handling under internal/.
// - Webhook change resolution lives in webhook/, API error classification in apierror/.
// - Loggers are injected through Options; nothing here logs through a global.
//
// Typical usage:
//
//	var page Page
//	err := graphmap.Unmarshal(body, &page)
//
//	m := graphmap.New(graphmap.Options{Logger: logger})
//	v, err := m.Parse(body)
//	err = m.Decode(v, &page)
//
//	wire, err := graphmap.Marshal(update)
//
// Struct tags:
//
//	type Page struct {
//		ID       string               `graph:"id"`
//		Name     string               `graph:"name"`
//		FanCount int64                `graph:"fan_count"`
//		Posts    graphmap.List[Post]  `graph:"posts"`
//		Extra    node.Value           `graph:"extra"` // kept as-is
//	}
