// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package number implements an exact representation of JSON numbers.
//
// A Value stores a number in the narrowest representation that preserves its
// exact value: a fixed-width signed integer, an arbitrary-precision integer,
// or an arbitrary-precision decimal. Binary floating point is never used for
// storage, so every Value can be written back as JSON without loss.
//
// Values are immutable once constructed and are safe for concurrent use.
package number

import (
	"math"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Type identifies the stored variant of a Value.
type Type byte

// Constants defining the valid Type values. The zero Type is Int32, so that
// the zero Value is the 32-bit integer 0.
const (
	Int32   Type = iota // 32-bit signed integer
	Int8                // 8-bit signed integer
	Int16               // 16-bit signed integer
	Int64               // 64-bit signed integer
	BigInt              // arbitrary-precision integer
	Decimal             // arbitrary-precision decimal
)

var typeStr = [...]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	BigInt:  "big integer",
	Decimal: "decimal",
}

func (t Type) String() string {
	if int(t) >= len(typeStr) {
		return "invalid type"
	}
	return typeStr[t]
}

// A Value is an immutable JSON number.
type Value struct {
	typ Type
	i   int64           // Int8, Int16, Int32, Int64
	b   *big.Int        // BigInt; never mutated after construction
	d   decimal.Decimal // Decimal
}

// OfInt8 returns a Value storing v as an 8-bit integer.
func OfInt8(v int8) Value { return Value{typ: Int8, i: int64(v)} }

// OfInt16 returns a Value storing v as a 16-bit integer.
func OfInt16(v int16) Value { return Value{typ: Int16, i: int64(v)} }

// OfInt32 returns a Value storing v as a 32-bit integer.
func OfInt32(v int32) Value { return Value{typ: Int32, i: int64(v)} }

// OfInt64 returns a Value storing v as a 64-bit integer.
func OfInt64(v int64) Value { return Value{typ: Int64, i: v} }

// Narrow returns a Value storing v in the narrowest fixed-width integer type
// that holds it exactly.
func Narrow(v int64) Value {
	switch {
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return OfInt8(int8(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return OfInt16(int16(v))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		return OfInt32(int32(v))
	}
	return OfInt64(v)
}

// OfBigInt returns a Value storing a copy of v as an arbitrary-precision
// integer. A nil v is treated as zero.
func OfBigInt(v *big.Int) Value {
	c := new(big.Int)
	if v != nil {
		c.Set(v)
	}
	return Value{typ: BigInt, b: c}
}

// OfDecimal returns a Value storing v as an arbitrary-precision decimal.
func OfDecimal(v decimal.Decimal) Value { return Value{typ: Decimal, d: v} }

// Type reports the stored variant of v.
func (v Value) Type() Type { return v.typ }

// IsInt8 reports whether v is stored as an 8-bit integer.
func (v Value) IsInt8() bool { return v.typ == Int8 }

// IsInt16 reports whether v is stored as a 16-bit integer.
func (v Value) IsInt16() bool { return v.typ == Int16 }

// IsInt32 reports whether v is stored as a 32-bit integer.
func (v Value) IsInt32() bool { return v.typ == Int32 }

// IsInt64 reports whether v is stored as a 64-bit integer.
func (v Value) IsInt64() bool { return v.typ == Int64 }

// IsBigInt reports whether v is stored as an arbitrary-precision integer.
func (v Value) IsBigInt() bool { return v.typ == BigInt }

// IsDecimal reports whether v is stored as an arbitrary-precision decimal.
func (v Value) IsDecimal() bool { return v.typ == Decimal }

// IsInteger reports whether v is stored as an integer of any width.
func (v Value) IsInteger() bool { return v.typ != Decimal }

// Int8 returns v converted to an 8-bit integer. The fractional part of a
// decimal is discarded and out-of-range values wrap.
func (v Value) Int8() int8 { return int8(v.lowBits()) }

// Int16 returns v converted to a 16-bit integer. The fractional part of a
// decimal is discarded and out-of-range values wrap.
func (v Value) Int16() int16 { return int16(v.lowBits()) }

// Int32 returns v converted to a 32-bit integer. The fractional part of a
// decimal is discarded and out-of-range values wrap.
func (v Value) Int32() int32 { return int32(v.lowBits()) }

// Int64 returns v converted to a 64-bit integer. The fractional part of a
// decimal is discarded and out-of-range values wrap.
func (v Value) Int64() int64 { return int64(v.lowBits()) }

// Float32 returns the float32 nearest to v.
func (v Value) Float32() float32 { return float32(v.Float64()) }

// Float64 returns the float64 nearest to v. Magnitudes beyond the float64
// range become infinities.
func (v Value) Float64() float64 {
	switch v.typ {
	case BigInt:
		f, _ := new(big.Float).SetInt(v.b).Float64()
		return f
	case Decimal:
		f, _ := v.d.Float64()
		return f
	default:
		return float64(v.i)
	}
}

// BigInt returns v as an arbitrary-precision integer. A decimal is truncated
// toward zero. The result is a fresh copy that the caller may modify.
func (v Value) BigInt() *big.Int {
	switch v.typ {
	case BigInt:
		return new(big.Int).Set(v.b)
	case Decimal:
		return v.d.BigInt()
	default:
		return big.NewInt(v.i)
	}
}

// Decimal returns the exact value of v as an arbitrary-precision decimal.
func (v Value) Decimal() decimal.Decimal {
	switch v.typ {
	case BigInt:
		return decimal.NewFromBigInt(v.b, 0)
	case Decimal:
		return v.d
	default:
		return decimal.NewFromInt(v.i)
	}
}

// String returns the canonical decimal text of v. Parsing the result yields
// a Value equal to v, though not necessarily of the same Type. A decimal with
// a large exponent is written as coefficient and exponent, "15e-5000001",
// rather than in positional form.
func (v Value) String() string {
	switch v.typ {
	case BigInt:
		return v.b.String()
	case Decimal:
		if exp := v.d.Exponent(); exp <= -plainExponent || exp >= plainExponent {
			return v.d.Coefficient().String() + "e" + strconv.Itoa(int(exp))
		}
		return v.d.String()
	default:
		return strconv.FormatInt(v.i, 10)
	}
}

// Decimals with an exponent of this magnitude or more are formatted with an
// explicit exponent.
const plainExponent = 32

var bigOne = big.NewInt(1)

// Bool reports whether the exact value of v is 1.
func (v Value) Bool() bool {
	switch v.typ {
	case BigInt:
		return v.b.Cmp(bigOne) == 0
	case Decimal:
		return v.d.Equal(decimal.NewFromInt(1))
	default:
		return v.i == 1
	}
}

// Sign returns -1, 0, or +1 according to the sign of v.
func (v Value) Sign() int {
	switch v.typ {
	case BigInt:
		return v.b.Sign()
	case Decimal:
		return v.d.Sign()
	}
	switch {
	case v.i < 0:
		return -1
	case v.i > 0:
		return 1
	}
	return 0
}

// Cmp compares the exact values of v and w, returning -1, 0, or +1.
func (v Value) Cmp(w Value) int {
	if v.isFixed() && w.isFixed() {
		switch {
		case v.i < w.i:
			return -1
		case v.i > w.i:
			return 1
		}
		return 0
	}
	if v.IsInteger() && w.IsInteger() {
		return v.BigInt().Cmp(w.BigInt())
	}
	return v.Decimal().Cmp(w.Decimal())
}

// Equal reports whether v and w have the same exact value, regardless of
// their stored variants.
func (v Value) Equal(w Value) bool { return v.Cmp(w) == 0 }

func (v Value) isFixed() bool { return v.typ != BigInt && v.typ != Decimal }

var lowMask = new(big.Int).SetUint64(math.MaxUint64)

// lowBits returns the low-order 64 bits of the two's-complement integer part
// of v.
func (v Value) lowBits() uint64 {
	switch v.typ {
	case BigInt:
		return new(big.Int).And(v.b, lowMask).Uint64()
	case Decimal:
		return new(big.Int).And(v.d.BigInt(), lowMask).Uint64()
	default:
		return uint64(v.i)
	}
}
