//go:build builtin

package benchmarks_test

import graphmap "github.com/reoring/graphmap"

// Run with -tags builtin to measure the mapping benchmarks on the scanner
// instead of go-json.
func init() {
	graphmap.SetJSONDriver(graphmap.BuiltinDriver())
}
