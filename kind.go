// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import "github.com/creachadair/jstream/number"

// Kind is the category of a token emitted or consumed while streaming a JSON
// document. The zero Kind is not a valid token.
type Kind byte

// Constants defining the valid Kind values.
const (
	BeginObject Kind = iota + 1 // start of an object "{"
	EndObject                   // end of an object "}"
	BeginArray                  // start of an array "["
	EndArray                    // end of an array "]"
	Key                         // object member key
	String                      // string value
	Int                         // number: 32-bit or narrower integer
	Long                        // number: 64-bit integer
	BigInteger                  // number: arbitrary-precision integer
	Decimal                     // number: arbitrary-precision decimal
	Null                        // constant: null
	Boolean                     // constant: true or false
	End                         // no more tokens in the stream
)

var kindInfo = [...]struct {
	name            string
	number, isValue bool
}{
	0:           {name: "invalid"},
	BeginObject: {name: "begin object"},
	EndObject:   {name: "end object"},
	BeginArray:  {name: "begin array"},
	EndArray:    {name: "end array"},
	Key:         {name: "key"},
	String:      {name: "string", isValue: true},
	Int:         {name: "int", number: true, isValue: true},
	Long:        {name: "long", number: true, isValue: true},
	BigInteger:  {name: "big integer", number: true, isValue: true},
	Decimal:     {name: "decimal", number: true, isValue: true},
	Null:        {name: "null", isValue: true},
	Boolean:     {name: "boolean", isValue: true},
	End:         {name: "end"},
}

func (k Kind) index() int {
	if int(k) >= len(kindInfo) {
		return 0
	}
	return int(k)
}

// IsNumber reports whether k is one of the number kinds.
func (k Kind) IsNumber() bool { return kindInfo[k.index()].number }

// IsValue reports whether a token of kind k can stand as an array element, an
// object member value, or a whole document by itself.
func (k Kind) IsValue() bool { return kindInfo[k.index()].isValue }

func (k Kind) String() string { return kindInfo[k.index()].name }

// NumberKind reports the token kind corresponding to the stored variant of v.
func NumberKind(v number.Value) Kind {
	switch v.Type() {
	case number.Int64:
		return Long
	case number.BigInt:
		return BigInteger
	case number.Decimal:
		return Decimal
	default:
		return Int
	}
}
