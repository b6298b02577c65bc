package node

import (
	j "github.com/goccy/go-json"
)

// Stringify renders v as compact JSON. Objects are written in insertion order,
// so the output is byte-stable for the same tree. The zero Value renders as null.
func Stringify(v Value) string { return string(v.AppendJSON(nil)) }

// AppendJSON appends the compact JSON form of v to dst.
func (v Value) AppendJSON(dst []byte) []byte {
	switch v.kind {
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		if v.s == "" {
			return append(dst, '0')
		}
		return append(dst, v.s...)
	case KindString:
		return appendQuoted(dst, v.s)
	case KindArray:
		dst = append(dst, '[')
		for i, e := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = e.AppendJSON(dst)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		first := true
		v.obj.Range(func(k string, e Value) bool {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendQuoted(dst, k)
			dst = append(dst, ':')
			dst = e.AppendJSON(dst)
			return true
		})
		return append(dst, '}')
	default:
		return append(dst, "null"...)
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) { return v.AppendJSON(nil), nil }

// appendQuoted escapes quotes, backslashes and control characters. HTML
// characters are left as-is to match what the remote API sends.
func appendQuoted(dst []byte, s string) []byte {
	b, err := j.MarshalNoEscape(s)
	if err != nil {
		// strings always marshal; keep the output well-formed regardless
		return append(dst, `""`...)
	}
	return append(dst, b...)
}
