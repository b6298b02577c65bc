package node

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

// Number is the textual form of a JSON number. The parser keeps the literal
// text so the consuming field decides the width.
type Number string

// ErrInvalidNumber is returned by ParseNumber for text that is not a JSON number.
var ErrInvalidNumber = errors.New("node: invalid number literal")

// ParseNumber validates s against the JSON number grammar.
func ParseNumber(s string) (Number, error) {
	if !validNumber(s) {
		return "", ErrInvalidNumber
	}
	return Number(s), nil
}

// NumberFromInt formats an integer.
func NumberFromInt(i int64) Number { return Number(strconv.FormatInt(i, 10)) }

// NumberFromUint formats an unsigned integer.
func NumberFromUint(u uint64) Number { return Number(strconv.FormatUint(u, 10)) }

// NumberFromFloat formats a float using the shortest representation. NaN and
// infinities have no JSON form and yield "0"; the encoder rejects them before
// calling it.
func NumberFromFloat(f float64, bits int) Number {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !validNumber(s) {
		return "0"
	}
	return Number(s)
}

func (n Number) String() string { return string(n) }

// IsInteger reports whether the literal has no fraction or exponent part.
func (n Number) IsInteger() bool {
	return !strings.ContainsAny(string(n), ".eE")
}

// Int64 interprets n as a signed 64-bit integer. Literals such as "3.0" or
// "1e3" that denote an integral value are accepted.
func (n Number) Int64() (int64, error) {
	if n.IsInteger() {
		return strconv.ParseInt(string(n), 10, 64)
	}
	bi, err := n.integral()
	if err != nil {
		return 0, err
	}
	if !bi.IsInt64() {
		return 0, strconv.ErrRange
	}
	return bi.Int64(), nil
}

// Uint64 interprets n as an unsigned 64-bit integer.
func (n Number) Uint64() (uint64, error) {
	if n.IsInteger() {
		return strconv.ParseUint(string(n), 10, 64)
	}
	bi, err := n.integral()
	if err != nil {
		return 0, err
	}
	if !bi.IsUint64() {
		return 0, strconv.ErrRange
	}
	return bi.Uint64(), nil
}

// Float64 interprets n as a float64.
func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

// BigInt interprets n as an arbitrary precision integer.
func (n Number) BigInt() (*big.Int, error) {
	if n.IsInteger() {
		bi, ok := new(big.Int).SetString(string(n), 10)
		if !ok {
			return nil, strconv.ErrSyntax
		}
		return bi, nil
	}
	return n.integral()
}

// BigFloat interprets n as an arbitrary precision float.
func (n Number) BigFloat() (*big.Float, error) {
	f, _, err := big.ParseFloat(string(n), 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ErrNotIntegral reports a fractional literal read as an integer.
var ErrNotIntegral = errors.New("node: number has a fractional part")

func (n Number) integral() (*big.Int, error) {
	r, ok := new(big.Rat).SetString(string(n))
	if !ok {
		return nil, strconv.ErrSyntax
	}
	if !r.IsInt() {
		return nil, ErrNotIntegral
	}
	return new(big.Int).Set(r.Num()), nil
}

func (n Number) rat() (*big.Rat, bool) { return new(big.Rat).SetString(string(n)) }

// validNumber checks the RFC 8259 number grammar.
func validNumber(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	if i >= len(s) {
		return false
	}
	switch {
	case s[i] == '0':
		i++
	case s[i] >= '1' && s[i] <= '9':
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	default:
		return false
	}
	if i < len(s) && s[i] == '.' {
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
