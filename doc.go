// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package jstream implements the structural core of a streaming JSON codec.
//
// # Contexts
//
// A Context tracks the open arrays and objects of a document in progress and
// checks each requested operation against the JSON grammar before it takes
// effect. Illegal sequences are rejected immediately with a
// [*StructuralError]:
//
//	c := jstream.NewContext(nil)
//	c.BeginObject()
//	err := c.Value() // error: value without a key
//
// Errors are permanent: a document that has failed cannot be continued.
//
// # Writing
//
// The Writer type produces compact JSON, consulting a Context before each
// token so that its output is always a prefix of a valid document:
//
//	w := jstream.NewWriter(os.Stdout, nil)
//	w.BeginObject()
//	w.Key("a")
//	w.BeginArray()
//	w.Number(number.OfInt32(1))
//	w.String("two")
//	w.EndArray()
//	w.EndObject()
//	if err := w.Close(); err != nil {
//	   log.Fatalf("Write failed: %v", err)
//	}
//
// # Reading
//
// The Reader type consumes a document token by token. Next reports the
// [Kind] of each token, and End when the document is complete:
//
//	r := jstream.NewReader(input, nil)
//	for {
//	   kind, err := r.Next()
//	   if err != nil {
//	      log.Fatalf("Read failed: %v", err)
//	   } else if kind == jstream.End {
//	      break
//	   }
//	   if kind.IsNumber() {
//	      log.Printf("Number: %v", r.Number())
//	   }
//	}
//
// Numbers are decoded with the [number] package, which stores each literal in
// the narrowest representation that preserves its exact value.
//
// # Streaming
//
// The Stream type delivers the tokens of a Reader to the methods of a Handler:
//
//	JSON type  | Methods                   | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | BeginObject, EndObject    | { ... }
//	array      | BeginArray, EndArray      | [ ... ]
//	member     | BeginMember, EndMember    | "key": value
//	value      | Value                     | true, false, null, number, string
//	--         | EndOfInput                | end of input
package jstream
