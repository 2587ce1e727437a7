// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package number

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

var (
	// ErrSyntax indicates that a literal does not match the JSON number grammar.
	ErrSyntax = errors.New("invalid number syntax")

	// ErrTooLong indicates that a literal exceeds the configured length limit.
	ErrTooLong = errors.New("number literal too long")

	// ErrRange indicates that a literal is well-formed but its exponent is
	// beyond what a decimal can represent or the parser allows.
	ErrRange = errors.New("number out of range")
)

// FormatError is the concrete type of errors reported when parsing a number
// literal.
type FormatError struct {
	Literal string // the offending literal (possibly abbreviated)
	Err     error  // one of ErrSyntax, ErrTooLong, ErrRange
}

// Error satisfies the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("parsing number %q: %v", e.Literal, e.Err)
}

// Unwrap supports error wrapping.
func (e *FormatError) Unwrap() error { return e.Err }

// DefaultMaxExponent is the exponent bound applied by a Parser whose
// MaxExponent is zero.
const DefaultMaxExponent = 9999

// A Parser parses JSON number literals. The zero value is ready for use. It
// imposes no length limit and bounds exponents by DefaultMaxExponent.
type Parser struct {
	// If positive, literals longer than this many bytes are rejected.
	MaxLength int

	// If positive, decimals whose exponent exceeds this magnitude are
	// rejected with ErrRange. Zero means DefaultMaxExponent; a negative
	// value removes the bound.
	MaxExponent int
}

// Parse parses a JSON number literal using a zero Parser.
func Parse(text string) (Value, error) { return Parser{}.Parse(text) }

// MustParse is as Parse, but panics if text is not a valid literal.
func MustParse(text string) Value {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse parses text as a JSON number literal and returns its value in the
// narrowest exact representation. A literal without fraction or exponent is
// stored as an Int32 if it fits, otherwise an Int64, otherwise a BigInt. Any
// literal with a fraction or exponent is stored as a Decimal.
func (p Parser) Parse(text string) (Value, error) {
	if p.MaxLength > 0 && len(text) > p.MaxLength {
		return Value{}, &FormatError{Literal: abbrev(text, p.MaxLength), Err: ErrTooLong}
	}
	integral, ok := scanLiteral(text)
	if !ok {
		return Value{}, &FormatError{Literal: text, Err: ErrSyntax}
	}
	if integral {
		if z, err := strconv.ParseInt(text, 10, 32); err == nil {
			return OfInt32(int32(z)), nil
		}
		if z, err := strconv.ParseInt(text, 10, 64); err == nil {
			return OfInt64(z), nil
		}
		b, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return Value{}, &FormatError{Literal: text, Err: ErrSyntax}
		}
		return Value{typ: BigInt, b: b}, nil
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return Value{}, &FormatError{Literal: text, Err: ErrRange}
	}
	if max := p.maxExponent(); max >= 0 {
		if exp := int64(d.Exponent()); exp > int64(max) || exp < -int64(max) {
			return Value{}, &FormatError{Literal: abbrev(text, 64), Err: ErrRange}
		}
	}
	return OfDecimal(d), nil
}

func (p Parser) maxExponent() int {
	if p.MaxExponent == 0 {
		return DefaultMaxExponent
	}
	return p.MaxExponent
}

// scanLiteral reports whether text matches the JSON number grammar
//
//	-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
//
// and if so, whether it has neither a fraction nor an exponent.
func scanLiteral(text string) (integral, ok bool) {
	i, n := 0, len(text)
	if i < n && text[i] == '-' {
		i++
	}

	// Integer part: a single zero, or a nonzero digit followed by digits.
	switch {
	case i < n && text[i] == '0':
		i++
	case i < n && isDigit(text[i]):
		i = skipDigits(text, i)
	default:
		return false, false
	}
	integral = true

	if i < n && text[i] == '.' {
		j := skipDigits(text, i+1)
		if j == i+1 {
			return false, false // no digits after decimal point
		}
		i, integral = j, false
	}

	if i < n && (text[i] == 'e' || text[i] == 'E') {
		i++
		if i < n && (text[i] == '+' || text[i] == '-') {
			i++
		}
		j := skipDigits(text, i)
		if j == i {
			return false, false // missing exponent digits
		}
		i, integral = j, false
	}
	return integral, i == n
}

func skipDigits(text string, i int) int {
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	return i
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func abbrev(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
