package engine

import "strconv"

// Paths are dotted field names from the mapping root with array positions in
// brackets, e.g. entry[0].changes[1].value.post_id. The root is "".

// JoinKey appends an object key to base.
func JoinKey(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

// JoinIndex appends an array position to base.
func JoinIndex(base string, i int) string {
	return base + "[" + strconv.Itoa(i) + "]"
}

// DisplayPath renders the root path as "$".
func DisplayPath(p string) string {
	if p == "" {
		return "$"
	}
	return p
}
