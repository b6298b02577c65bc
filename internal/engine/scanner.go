package engine

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// SyntaxError describes malformed input at a byte offset.
type SyntaxError struct {
	Msg    string
	Offset int64
	cause  error
}

func (e *SyntaxError) Error() string {
	if e.Offset < 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.cause }

type scanState int

const (
	stObjStart scanState = iota // after '{': key or '}'
	stObjKey                    // after ',': key
	stObjValue                  // after ':': value
	stObjComma                  // after value: ',' or '}'
	stArrStart                  // after '[': value or ']'
	stArrValue                  // after ',': value
	stArrComma                  // after value: ',' or ']'
)

// Scanner is the built-in TokenSource. It is more lenient than RFC 8259 in one
// respect: the escape \' decodes to a single quote, which some graph API
// endpoints historically emitted.
type Scanner struct {
	data     []byte
	pos      int
	stack    []scanState
	rootSeen bool
}

// NewScanner returns a Scanner over b. b must not be modified while scanning.
func NewScanner(b []byte) *Scanner { return &Scanner{data: b} }

// NewScannerReader reads r fully and scans the result.
func NewScannerReader(r io.Reader) (*Scanner, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewScanner(b), nil
}

// Location returns the current byte offset.
func (s *Scanner) Location() int64 { return int64(s.pos) }

// NextToken implements TokenSource.
func (s *Scanner) NextToken() (Token, error) {
	for {
		s.skipSpace()
		if len(s.stack) == 0 {
			if s.rootSeen {
				if s.pos < len(s.data) {
					return Token{}, s.errorf("unexpected data after top-level value")
				}
				return Token{}, io.EOF
			}
			if s.pos >= len(s.data) {
				return Token{}, io.EOF
			}
			s.rootSeen = true
			return s.value()
		}
		if s.pos >= len(s.data) {
			return Token{}, io.ErrUnexpectedEOF
		}
		top := &s.stack[len(s.stack)-1]
		c := s.data[s.pos]
		switch *top {
		case stObjStart, stObjKey:
			if c == '}' && *top == stObjStart {
				return s.closeContainer(KindEndObject), nil
			}
			if c != '"' {
				return Token{}, s.errorf("expected object key, found %q", c)
			}
			off := int64(s.pos)
			key, err := s.readString()
			if err != nil {
				return Token{}, err
			}
			s.skipSpace()
			if s.pos >= len(s.data) {
				return Token{}, io.ErrUnexpectedEOF
			}
			if s.data[s.pos] != ':' {
				return Token{}, s.errorf("expected ':' after object key")
			}
			s.pos++
			*top = stObjValue
			return Token{Kind: KindKey, String: key, Offset: off}, nil
		case stObjValue:
			*top = stObjComma
			return s.value()
		case stObjComma:
			switch c {
			case ',':
				s.pos++
				*top = stObjKey
				continue
			case '}':
				return s.closeContainer(KindEndObject), nil
			}
			return Token{}, s.errorf("expected ',' or '}' in object, found %q", c)
		case stArrStart, stArrValue:
			if c == ']' && *top == stArrStart {
				return s.closeContainer(KindEndArray), nil
			}
			*top = stArrComma
			return s.value()
		case stArrComma:
			switch c {
			case ',':
				s.pos++
				*top = stArrValue
				continue
			case ']':
				return s.closeContainer(KindEndArray), nil
			}
			return Token{}, s.errorf("expected ',' or ']' in array, found %q", c)
		}
	}
}

func (s *Scanner) closeContainer(k Kind) Token {
	off := int64(s.pos)
	s.pos++
	s.stack = s.stack[:len(s.stack)-1]
	return Token{Kind: k, Offset: off}
}

func (s *Scanner) value() (Token, error) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return Token{}, io.ErrUnexpectedEOF
	}
	off := int64(s.pos)
	c := s.data[s.pos]
	switch {
	case c == '{':
		s.pos++
		s.stack = append(s.stack, stObjStart)
		return Token{Kind: KindBeginObject, Offset: off}, nil
	case c == '[':
		s.pos++
		s.stack = append(s.stack, stArrStart)
		return Token{Kind: KindBeginArray, Offset: off}, nil
	case c == '"':
		str, err := s.readString()
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindString, String: str, Offset: off}, nil
	case c == 't':
		if err := s.literal("true"); err != nil {
			return Token{}, err
		}
		return Token{Kind: KindBool, Bool: true, Offset: off}, nil
	case c == 'f':
		if err := s.literal("false"); err != nil {
			return Token{}, err
		}
		return Token{Kind: KindBool, Offset: off}, nil
	case c == 'n':
		if err := s.literal("null"); err != nil {
			return Token{}, err
		}
		return Token{Kind: KindNull, Offset: off}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		start := s.pos
		for s.pos < len(s.data) && strings.IndexByte("+-.eE0123456789", s.data[s.pos]) >= 0 {
			s.pos++
		}
		return Token{Kind: KindNumber, Number: string(s.data[start:s.pos]), Offset: off}, nil
	}
	return Token{}, s.errorf("unexpected character %q", c)
}

func (s *Scanner) literal(word string) error {
	if len(s.data)-s.pos < len(word) || string(s.data[s.pos:s.pos+len(word)]) != word {
		return s.errorf("invalid literal, expected %s", word)
	}
	s.pos += len(word)
	return nil
}

// readString consumes a quoted string starting at the opening quote.
func (s *Scanner) readString() (string, error) {
	start := s.pos
	s.pos++
	var b strings.Builder
	for {
		if s.pos >= len(s.data) {
			return "", &SyntaxError{Msg: "unterminated string", Offset: int64(start), cause: io.ErrUnexpectedEOF}
		}
		c := s.data[s.pos]
		switch {
		case c == '"':
			s.pos++
			return b.String(), nil
		case c == '\\':
			if err := s.readEscape(&b); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", s.errorf("invalid control character in string")
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
}

func (s *Scanner) readEscape(b *strings.Builder) error {
	s.pos++ // backslash
	if s.pos >= len(s.data) {
		return &SyntaxError{Msg: "unterminated string", Offset: int64(s.pos), cause: io.ErrUnexpectedEOF}
	}
	c := s.data[s.pos]
	s.pos++
	switch c {
	case '"', '\\', '/', '\'':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'u':
		r, err := s.readHex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			// a high surrogate needs its low half to form one code point
			if s.pos+1 < len(s.data) && s.data[s.pos] == '\\' && s.data[s.pos+1] == 'u' {
				save := s.pos
				s.pos += 2
				r2, err := s.readHex4()
				if err != nil {
					return err
				}
				if dec := utf16.DecodeRune(r, r2); dec != utf8.RuneError {
					b.WriteRune(dec)
					return nil
				}
				s.pos = save
			}
			b.WriteRune(utf8.RuneError)
			return nil
		}
		b.WriteRune(r)
	default:
		s.pos--
		return s.errorf("illegal escape \\%c", c)
	}
	return nil
}

func (s *Scanner) readHex4() (rune, error) {
	if len(s.data)-s.pos < 4 {
		return 0, s.errorf("truncated \\u escape")
	}
	var r rune
	for _, c := range s.data[s.pos : s.pos+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, s.errorf("illegal \\u escape")
		}
	}
	s.pos += 4
	return r, nil
}

func (s *Scanner) skipSpace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *Scanner) errorf(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...), Offset: int64(s.pos)}
}
