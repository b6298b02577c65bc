// Package apierror classifies graph API error bodies into typed errors.
//
// A Classifier recognises the four error shapes the API emits (the login
// error, batch sub-response errors, the legacy REST error and the modern
// error envelope) and produces a Diagnostic. ErrorFor turns a Diagnostic
// into the matching error variant. Successful bodies are rejected by a cheap
// prefix check before any parsing happens.
package apierror

import "github.com/reoring/graphmap/node"

// DiagnosticFields holds the values used to build a Diagnostic. Pointer
// fields are optional; nil means the API did not send them.
type DiagnosticFields struct {
	Code        *int
	Subcode     *int
	HTTPStatus  int
	Type        string
	Message     string
	UserTitle   string
	UserMessage string
	IsTransient bool
	TraceID     string
	Raw         node.Value
}

// Diagnostic is the structured description of an API error. It is immutable.
type Diagnostic struct {
	code        int
	hasCode     bool
	subcode     int
	hasSubcode  bool
	httpStatus  int
	typ         string
	message     string
	userTitle   string
	userMessage string
	transient   bool
	traceID     string
	raw         node.Value
}

// NewDiagnostic builds a Diagnostic from f.
func NewDiagnostic(f DiagnosticFields) *Diagnostic {
	d := &Diagnostic{
		httpStatus:  f.HTTPStatus,
		typ:         f.Type,
		message:     f.Message,
		userTitle:   f.UserTitle,
		userMessage: f.UserMessage,
		transient:   f.IsTransient,
		traceID:     f.TraceID,
		raw:         f.Raw,
	}
	if f.Code != nil {
		d.code, d.hasCode = *f.Code, true
	}
	if f.Subcode != nil {
		d.subcode, d.hasSubcode = *f.Subcode, true
	}
	return d
}

// Code returns the numeric error code and whether one was sent.
func (d *Diagnostic) Code() (int, bool) { return d.code, d.hasCode }

// Subcode returns error_subcode and whether one was sent.
func (d *Diagnostic) Subcode() (int, bool) { return d.subcode, d.hasSubcode }

func (d *Diagnostic) HTTPStatus() int     { return d.httpStatus }
func (d *Diagnostic) Type() string        { return d.typ }
func (d *Diagnostic) Message() string     { return d.message }
func (d *Diagnostic) UserTitle() string   { return d.userTitle }
func (d *Diagnostic) UserMessage() string { return d.userMessage }
func (d *Diagnostic) IsTransient() bool   { return d.transient }

// TraceID returns fbtrace_id, useful when reporting problems upstream.
func (d *Diagnostic) TraceID() string { return d.traceID }

// Raw returns the error object as received, for fields not modelled here.
func (d *Diagnostic) Raw() node.Value { return d.raw }
