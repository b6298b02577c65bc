package apierror

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	graphmap "github.com/reoring/graphmap"
	"github.com/reoring/graphmap/node"
)

// Shape names the error layout a body matched.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeLogin
	ShapeBatch
	ShapeLegacyREST
	ShapeModern
)

func (s Shape) String() string {
	switch s {
	case ShapeLogin:
		return "login"
	case ShapeBatch:
		return "batch"
	case ShapeLegacyREST:
		return "legacy_rest"
	case ShapeModern:
		return "modern"
	}
	return "none"
}

// prefilterWindow is how far into the body the error key must appear.
const prefilterWindow = 50

// Classifier recognises error bodies. It is safe for concurrent use.
type Classifier struct {
	mapper *graphmap.Mapper
	log    *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*classifierConfig)

type classifierConfig struct {
	logger *slog.Logger
	parse  graphmap.ParseOpt
	mapper *graphmap.Mapper
}

// WithLogger sets the logger for bodies that look like errors but do not
// parse.
func WithLogger(l *slog.Logger) ClassifierOption {
	return func(c *classifierConfig) { c.logger = l }
}

// WithParseOpt sets the parse options (size and depth limits, driver).
func WithParseOpt(p graphmap.ParseOpt) ClassifierOption {
	return func(c *classifierConfig) { c.parse = p }
}

// WithMapper uses m as is, ignoring WithParseOpt.
func WithMapper(m *graphmap.Mapper) ClassifierOption {
	return func(c *classifierConfig) { c.mapper = m }
}

// NewClassifier returns a Classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	cfg := classifierConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	lg := cfg.logger
	if lg == nil {
		lg = slog.Default()
	}
	m := cfg.mapper
	if m == nil {
		m = graphmap.New(graphmap.Options{Logger: lg, Parse: cfg.parse})
	}
	return &Classifier{mapper: m, log: lg.With(slog.String("component", "apierror"))}
}

// LooksLikeError is the cheap pre-filter: the body must open with an object
// and mention an error key near its start.
func LooksLikeError(text string) bool {
	text = strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(text, "{") {
		return false
	}
	return strings.Contains(text[:min(len(text), prefilterWindow)], `"error`)
}

// Classify inspects a response body. It returns false for success bodies
// and for bodies that cannot be parsed.
func (c *Classifier) Classify(text string, status int) (*Diagnostic, Shape, bool) {
	if !LooksLikeError(text) {
		return nil, ShapeNone, false
	}
	v, err := c.mapper.Parse([]byte(text))
	if err != nil {
		c.log.Debug("error-like body did not parse", slog.Int("status", status), slog.Any("err", err))
		return nil, ShapeNone, false
	}
	if v.Kind() != node.KindObject {
		return nil, ShapeNone, false
	}

	// login errors can sit next to keys that otherwise look like success
	if typ, ok := str(v, "error_type"); ok && has(v, "code") {
		if msg, ok := str(v, "error_message"); ok {
			return NewDiagnostic(DiagnosticFields{
				Code:       integer(v, "code"),
				HTTPStatus: status,
				Type:       typ,
				Message:    msg,
				Raw:        v,
			}), ShapeLogin, true
		}
	}

	errVal, _ := v.Get("error")
	if errVal.Kind() == node.KindNumber && has(v, "error_description") && !has(v, "data") {
		if code := integer(v, "error"); code != nil {
			msg, _ := str(v, "error_description")
			return NewDiagnostic(DiagnosticFields{
				Code:       code,
				HTTPStatus: status,
				Message:    msg,
				Raw:        v,
			}), ShapeBatch, true
		}
	}

	if has(v, "error_code") && has(v, "error_msg") {
		msg, _ := str(v, "error_msg")
		return NewDiagnostic(DiagnosticFields{
			Code:       integer(v, "error_code"),
			HTTPStatus: status,
			Message:    msg,
			Raw:        v,
		}), ShapeLegacyREST, true
	}

	if errVal.Kind() == node.KindObject {
		typ, _ := str(errVal, "type")
		msg, _ := str(errVal, "message")
		title, _ := str(errVal, "error_user_title")
		userMsg, _ := str(errVal, "error_user_msg")
		trace, _ := str(errVal, "fbtrace_id")
		return NewDiagnostic(DiagnosticFields{
			Code:        integer(errVal, "code"),
			Subcode:     integer(errVal, "error_subcode"),
			HTTPStatus:  status,
			Type:        typ,
			Message:     msg,
			UserTitle:   title,
			UserMessage: userMsg,
			IsTransient: boolean(errVal, "is_transient"),
			TraceID:     trace,
			Raw:         errVal,
		}), ShapeModern, true
	}
	return nil, ShapeNone, false
}

// The readers below never fail: a key of an unexpected kind reads as absent,
// so a stray field cannot hide an error body.

func has(obj node.Value, key string) bool {
	_, ok := obj.Get(key)
	return ok
}

func str(obj node.Value, key string) (string, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return "", false
	}
	return v.Str()
}

// integer reads a number or a numeric string.
func integer(obj node.Value, key string) *int {
	v, ok := obj.Get(key)
	if !ok {
		return nil
	}
	text, ok := v.Text()
	if !ok {
		return nil
	}
	n, err := node.Number(strings.TrimSpace(text)).Int64()
	if err != nil || int64(int(n)) != n {
		return nil
	}
	i := int(n)
	return &i
}

// boolean reads a bool or "true"/"false"; anything else is false.
func boolean(obj node.Value, key string) bool {
	v, ok := obj.Get(key)
	if !ok {
		return false
	}
	if b, ok := v.Bool(); ok {
		return b
	}
	if s, ok := v.Str(); ok {
		b, _ := strconv.ParseBool(s)
		return b
	}
	return false
}

// Check returns the typed error for an error body, or nil for success.
func (c *Classifier) Check(text string, status int) error {
	d, shape, ok := c.Classify(text, status)
	if !ok {
		return nil
	}
	return ErrorFor(shape, d)
}

var defaultClassifier = sync.OnceValue(func() *Classifier { return NewClassifier() })

// Classify uses a Classifier with default options.
func Classify(text string, status int) (*Diagnostic, Shape, bool) {
	return defaultClassifier().Classify(text, status)
}

// Check uses a Classifier with default options.
func Check(text string, status int) error { return defaultClassifier().Check(text, status) }
