package webhook

import (
	"strings"

	"github.com/reoring/graphmap/node"
)

const (
	verbGranted = "granted"
	verbRevoked = "revoked"
)

// DiscriminatorKey builds the registry key of an object payload:
// UPPER(field), then _ITEM, _VERB, _CONTEXTVERB and _MESSAGING_PRODUCT for
// the parts that are present, in that order. A payload verb of "granted" or
// "revoked" collapses the key to that verb alone.
func DiscriminatorKey(field string, payload node.Value, contextualVerb string) string {
	verb := textOf(payload, "verb")
	if verb == verbGranted || verb == verbRevoked {
		return strings.ToUpper(verb)
	}
	var b strings.Builder
	b.WriteString(strings.ToUpper(field))
	for _, part := range [...]string{
		textOf(payload, "item"),
		verb,
		contextualVerb,
		textOf(payload, "messaging_product"),
	} {
		if part == "" {
			continue
		}
		b.WriteByte('_')
		b.WriteString(strings.ToUpper(part))
	}
	return b.String()
}

func textOf(v node.Value, key string) string {
	child, ok := v.Get(key)
	if !ok {
		return ""
	}
	s, _ := child.Text()
	return s
}
