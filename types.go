package graphmap

// Severity expresses how a parse-time condition is handled.
type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityWarn
	SeverityError
)

// DefaultMaxDepth bounds nesting when ParseOpt.MaxDepth is zero.
const DefaultMaxDepth = 512

// ParseOpt bundles parsing options.
type ParseOpt struct {
	// MaxDepth limits object/array nesting. Zero means DefaultMaxDepth, a
	// negative value disables the check.
	MaxDepth int
	// MaxBytes rejects inputs larger than this many bytes when positive.
	MaxBytes int64
	// OnDuplicateKey decides what happens when an object repeats a key. With
	// SeverityIgnore the last value wins and the key keeps its first position.
	OnDuplicateKey Severity
	// Driver overrides the process-wide JSON driver for this call.
	Driver JSONDriver
	// IssueSink receives non-fatal conditions (duplicate keys with SeverityWarn).
	IssueSink func(*Error)
}

func (o ParseOpt) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return 0
	default:
		return o.MaxDepth
	}
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ParseOpt{}
}
