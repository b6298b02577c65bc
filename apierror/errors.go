package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels for errors.Is. Every variant matches its own sentinel.
var (
	ErrOAuth          = errors.New("graph: oauth error")
	ErrQuery          = errors.New("graph: query error")
	ErrInstagram      = errors.New("graph: instagram error")
	ErrGraph          = errors.New("graph: api error")
	ErrResponseStatus = errors.New("graph: response status error")
	ErrNetwork        = errors.New("graph: network error")
)

// Known values of the modern envelope's `type`.
const (
	TypeOAuthException            = "OAuthException"
	TypeOAuthAccessTokenException = "OAuthAccessTokenException"
	TypeQueryParseException       = "QueryParseException"
	TypeIGApiException            = "IGApiException"
)

// Legacy codes that denote an authentication failure.
const (
	CodeInvalidToken  = 190
	CodeSessionKey    = 102
	CodeRateLimit     = 4
	CodeUserRateLimit = 17
	CodeAppRateLimit  = 32
	CodeTemporary     = 2
)

// OAuthError reports an invalid, expired or missing access token.
type OAuthError struct{ *Diagnostic }

// QueryError reports a malformed graph query.
type QueryError struct{ *Diagnostic }

// InstagramError is an error raised by the Instagram graph API.
type InstagramError struct{ *Diagnostic }

// GraphError is any other error in the modern envelope.
type GraphError struct{ *Diagnostic }

// ResponseStatusError is a legacy REST or batch error that is not an
// authentication failure.
type ResponseStatusError struct{ *Diagnostic }

func (e *OAuthError) Error() string          { return format("oauth", e.Diagnostic) }
func (e *QueryError) Error() string          { return format("query", e.Diagnostic) }
func (e *InstagramError) Error() string      { return format("instagram", e.Diagnostic) }
func (e *GraphError) Error() string          { return format("api", e.Diagnostic) }
func (e *ResponseStatusError) Error() string { return format("response status", e.Diagnostic) }

func (e *OAuthError) Is(target error) bool          { return target == ErrOAuth }
func (e *QueryError) Is(target error) bool          { return target == ErrQuery }
func (e *InstagramError) Is(target error) bool      { return target == ErrInstagram }
func (e *GraphError) Is(target error) bool          { return target == ErrGraph }
func (e *ResponseStatusError) Is(target error) bool { return target == ErrResponseStatus }

// NetworkError reports a transport failure before a body could be classified.
type NetworkError struct {
	HTTPStatus int
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("graph: network error (HTTP %d): %v", e.HTTPStatus, e.Cause)
	}
	return fmt.Sprintf("graph: network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error        { return e.Cause }
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func format(kind string, d *Diagnostic) string {
	b := &strings.Builder{}
	b.WriteString("graph: ")
	b.WriteString(kind)
	b.WriteString(" error")
	if d.typ != "" {
		fmt.Fprintf(b, " %s", d.typ)
	}
	if d.hasCode {
		fmt.Fprintf(b, " (code %d", d.code)
		if d.hasSubcode {
			fmt.Fprintf(b, ", subcode %d", d.subcode)
		}
		b.WriteString(")")
	}
	if d.httpStatus != 0 {
		fmt.Fprintf(b, " [HTTP %d]", d.httpStatus)
	}
	if d.message != "" {
		b.WriteString(": ")
		b.WriteString(d.message)
	}
	if d.traceID != "" {
		fmt.Fprintf(b, " (fbtrace_id %s)", d.traceID)
	}
	return b.String()
}

// ErrorFor builds the error variant for d as classified under shape.
func ErrorFor(shape Shape, d *Diagnostic) error {
	if d == nil {
		return nil
	}
	switch shape {
	case ShapeLogin:
		if d.typ == "" {
			return &OAuthError{d}
		}
	case ShapeBatch, ShapeLegacyREST:
		if code, ok := d.Code(); ok && (code == CodeInvalidToken || code == CodeSessionKey) {
			return &OAuthError{d}
		}
		return &ResponseStatusError{d}
	}
	switch d.typ {
	case TypeOAuthException, TypeOAuthAccessTokenException:
		return &OAuthError{d}
	case TypeQueryParseException:
		return &QueryError{d}
	case TypeIGApiException:
		return &InstagramError{d}
	}
	return &GraphError{d}
}

// DiagnosticOf extracts the Diagnostic carried by err, if any.
func DiagnosticOf(err error) (*Diagnostic, bool) {
	var (
		oe *OAuthError
		qe *QueryError
		ie *InstagramError
		ge *GraphError
		re *ResponseStatusError
	)
	switch {
	case errors.As(err, &oe):
		return oe.Diagnostic, true
	case errors.As(err, &qe):
		return qe.Diagnostic, true
	case errors.As(err, &ie):
		return ie.Diagnostic, true
	case errors.As(err, &ge):
		return ge.Diagnostic, true
	case errors.As(err, &re):
		return re.Diagnostic, true
	}
	return nil, false
}

// IsTransient reports whether err is an API error flagged is_transient, or
// one of the throttling and temporary codes.
func IsTransient(err error) bool {
	d, ok := DiagnosticOf(err)
	if !ok {
		return false
	}
	if d.transient {
		return true
	}
	switch code, _ := d.Code(); code {
	case CodeTemporary, CodeRateLimit, CodeUserRateLimit, CodeAppRateLimit:
		return true
	}
	return false
}

// Retryable reports whether a caller may retry the request that produced
// err: transient API errors and network errors with no status or a 408, 429
// or 5xx status.
func Retryable(err error) bool {
	if IsTransient(err) {
		return true
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		switch {
		case ne.HTTPStatus == 0,
			ne.HTTPStatus == http.StatusRequestTimeout,
			ne.HTTPStatus == http.StatusTooManyRequests,
			ne.HTTPStatus >= http.StatusInternalServerError:
			return true
		}
	}
	return false
}
