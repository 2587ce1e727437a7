// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"io"

	"github.com/creachadair/jstream/number"
	"github.com/creachadair/jstream/scanner"
)

// An Anchor represents a token in source text. The methods of an Anchor
// report the location, kind, and contents of the token.
type Anchor interface {
	Kind() Kind                 // Returns the kind of the token
	Text() []byte               // Returns a view of the raw (undecoded) text of the token
	Location() scanner.Location // Returns the full location of the token
	Number() number.Value       // Returns the value of a number token
}

// A Handler handles events from parsing an input stream.  If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// token after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose key is at loc. The text of the key is
	// still quoted; the decoded key is passed as key.
	BeginMember(key string, loc Anchor) error

	// End the current object member, whose value ended at loc.
	EndMember(loc Anchor) error

	// Report a scalar value at the given location. The kind of the value can
	// be recovered from the anchor. String tokens are quoted.
	Value(loc Anchor) error

	// EndOfInput reports the end of the document.
	EndOfInput(loc Anchor)
}

// Stream is a stream parser that consumes a document and delivers events to a
// Handler corresponding with its structure.
type Stream struct {
	r *Reader
}

// NewStream constructs a new Stream that consumes input from r. A nil cfg
// provides default settings.
func NewStream(r io.Reader, cfg *Config) *Stream { return &Stream{r: NewReader(r, cfg)} }

// NewStreamWithReader constructs a new Stream that consumes tokens from r.
func NewStreamWithReader(r *Reader) *Stream { return &Stream{r: r} }

// Parse parses the document and delivers events to h until either an error
// occurs or the document is complete. In case of a malformed document, the
// returned error has type [*SyntaxError]. If a Handler method reports an
// error, parsing stops and that error is returned.
func (s *Stream) Parse(h Handler) error {
	for {
		kind, err := s.r.Next()
		if err != nil {
			return err
		}

		switch kind {
		case End:
			h.EndOfInput(s.r)
			return nil
		case BeginObject:
			err = h.BeginObject(s.r)
		case EndObject:
			err = h.EndObject(s.r)
		case BeginArray:
			err = h.BeginArray(s.r)
		case EndArray:
			err = h.EndArray(s.r)
		case Key:
			err = h.BeginMember(s.r.Key(), s.r)
		default:
			err = h.Value(s.r)
		}
		if err != nil {
			return err
		}

		// A member is complete when a value or a container closes directly
		// inside an object.
		if kind != Key && kind != BeginObject && kind != BeginArray && s.r.ctx.Top().Kind == ObjectFrame {
			if err := h.EndMember(s.r); err != nil {
				return err
			}
		}
	}
}
