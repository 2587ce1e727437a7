// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"fmt"
	"io"

	"github.com/creachadair/jstream/internal/escape"
	"github.com/creachadair/jstream/number"
	"github.com/creachadair/jstream/scanner"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"go4.org/mem"
)

// A Reader reads the tokens of a single JSON document from an input stream.
// Each call to Next advances to the next token and reports its Kind, or
// reports an error. At the end of a valid document, Next reports End.
//
// The Reader rejects malformed input as soon as the offending token is
// scanned. Errors have concrete type *SyntaxError and are permanent.
type Reader struct {
	s   *scanner.Scanner
	ctx *Context
	np  number.Parser
	log log.Logger

	kind Kind         // kind of the current token
	key  string       // current key, if kind == Key
	num  number.Value // current number, if kind.IsNumber()
	err  error
}

// NewReader constructs a Reader that consumes input from r. A nil cfg
// provides default settings.
func NewReader(r io.Reader, cfg *Config) *Reader {
	return &Reader{
		s:   scanner.New(r),
		ctx: NewContext(cfg),
		np:  cfg.numberParser(),
		log: cfg.logger(),
	}
}

// Next advances r to the next token of the document and reports its kind.
// Once the document is complete, Next reports End and nil; trailing input
// other than whitespace is an error.
func (r *Reader) Next() (Kind, error) {
	if r.err != nil {
		return 0, r.err
	} else if r.kind == End {
		return End, nil
	}

	var sep scanner.Token // the separator preceding the token, if any
	for {
		top := r.ctx.Top()
		err := r.s.Next()
		if err == io.EOF {
			if sep != scanner.Invalid {
				return 0, r.syntaxError(nil, "unexpected end of input after %v", sep)
			}
			if err := r.ctx.End(); err != nil {
				return 0, r.structural(OpEnd, err)
			}
			return r.set(End), nil
		} else if err != nil {
			return 0, r.syntaxError(err, "%v", err)
		}

		switch tok := r.s.Token(); tok {
		case scanner.Comma:
			if sep != scanner.Invalid || top.Kind == RootFrame || top.State != StateAfterValue {
				return 0, r.syntaxError(nil, "unexpected %v", tok)
			}
			sep = tok
		case scanner.Colon:
			if sep != scanner.Invalid || top.Kind != ObjectFrame || top.State != StateAfterKey {
				return 0, r.syntaxError(nil, "unexpected %v", tok)
			}
			sep = tok
		default:
			if sep == scanner.Colon && isClose(tok) {
				return r.token(top, tok) // the context reports the key without a value
			}
			if want := separatorBefore(top, tok); want != sep {
				if want == scanner.Invalid {
					return 0, r.syntaxError(nil, "unexpected %v before %v", sep, tok)
				}
				return 0, r.syntaxError(nil, "expected %v, got %v", want, tok)
			}
			return r.token(top, tok)
		}
	}
}

// separatorBefore reports which separator must precede tok when top is the
// innermost frame, or Invalid if none is allowed. No separator precedes a
// closing bracket; a mismatched close is left for the context to report.
func separatorBefore(top Frame, tok scanner.Token) scanner.Token {
	if isClose(tok) {
		return scanner.Invalid
	}
	switch top.Kind {
	case ArrayFrame:
		if top.State == StateAfterValue {
			return scanner.Comma
		}
	case ObjectFrame:
		if top.State == StateAfterKey {
			return scanner.Colon
		} else if top.State == StateAfterValue {
			return scanner.Comma
		}
	}
	return scanner.Invalid
}

func isClose(tok scanner.Token) bool { return tok == scanner.RSquare || tok == scanner.RBrace }

// token applies the current scanner token to the context.
func (r *Reader) token(top Frame, tok scanner.Token) (Kind, error) {
	switch tok {
	case scanner.LBrace:
		return r.apply(OpBeginObject, BeginObject)
	case scanner.RBrace:
		return r.apply(OpEndObject, EndObject)
	case scanner.LSquare:
		return r.apply(OpBeginArray, BeginArray)
	case scanner.RSquare:
		return r.apply(OpEndArray, EndArray)
	case scanner.True, scanner.False:
		return r.apply(OpValue, Boolean)
	case scanner.Null:
		return r.apply(OpValue, Null)

	case scanner.String:
		if top.Kind != ObjectFrame || top.State == StateAfterKey {
			return r.apply(OpValue, String)
		}
		key, err := r.unquote()
		if err != nil {
			return 0, r.syntaxError(err, "invalid key: %v", err)
		}
		if err := r.ctx.Key(key); err != nil {
			return 0, r.structural(OpKey, err)
		}
		r.key = key
		return r.set(Key), nil

	case scanner.Integer, scanner.Number:
		if err := r.ctx.Value(); err != nil {
			return 0, r.structural(OpValue, err)
		}
		v, err := r.np.Parse(string(r.s.Text()))
		if err != nil {
			level.Debug(r.log).Log("msg", "invalid number", "path", r.ctx.Path(), "err", err)
			return 0, r.syntaxError(err, "%v", err)
		}
		r.num = v
		return r.set(NumberKind(v)), nil
	}
	return 0, r.syntaxError(nil, "unexpected %v", tok)
}

func (r *Reader) apply(op Op, kind Kind) (Kind, error) {
	if err := r.ctx.apply(op, ""); err != nil {
		return 0, r.structural(op, err)
	}
	return r.set(kind), nil
}

func (r *Reader) set(kind Kind) Kind {
	r.kind = kind
	return kind
}

// Kind reports the kind of the current token.
func (r *Reader) Kind() Kind { return r.kind }

// Text returns the undecoded text of the current token. The return value is
// only valid until the next call of Next.
func (r *Reader) Text() []byte { return r.s.Text() }

// Key returns the decoded text of the current Key token.
func (r *Reader) Key() string { return r.key }

// Unescape returns the decoded text of the current String or Key token.
func (r *Reader) Unescape() (string, error) {
	if r.kind != String && r.kind != Key {
		return "", fmt.Errorf("token is %v, not a string", r.kind)
	}
	return r.unquote()
}

// Number returns the value of the current number token. If the current token
// is not a number, it returns the zero Value.
func (r *Reader) Number() number.Value {
	if !r.kind.IsNumber() {
		return number.Value{}
	}
	return r.num
}

// Bool reports whether the current token is the constant true.
func (r *Reader) Bool() bool { return r.kind == Boolean && r.s.Token() == scanner.True }

// Location returns the location of the current token in the input.
func (r *Reader) Location() scanner.Location { return r.s.Location() }

// Depth reports the number of containers currently open.
func (r *Reader) Depth() int { return r.ctx.Depth() }

// Path reports the location of the most recent key or value read.
func (r *Reader) Path() string { return r.ctx.Path() }

// Skip skips the value introduced by the current token. If the current token
// opens an array or object, Skip reads through the matching close. If it is
// a key, Skip reads through the member's value. Otherwise Skip does nothing.
func (r *Reader) Skip() error {
	depth := r.ctx.Depth()
	switch r.kind {
	case BeginArray, BeginObject:
		depth--
	case Key:
		kind, err := r.Next()
		if err != nil {
			return err
		} else if kind != BeginArray && kind != BeginObject {
			return nil
		}
	default:
		return nil
	}
	for r.ctx.Depth() > depth {
		if _, err := r.Next(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) unquote() (string, error) {
	text := r.s.Text()
	dec, err := escape.Unquote(mem.B(text[1 : len(text)-1]))
	if err != nil {
		return "", err
	}
	return string(dec), nil
}

func (r *Reader) structural(op Op, err error) error {
	level.Debug(r.log).Log("msg", "rejected input", "op", op, "path", r.ctx.Path(), "err", err)
	return r.fail(&SyntaxError{Location: r.s.Location().First, Message: err.Error(), err: err})
}

func (r *Reader) syntaxError(err error, msg string, args ...any) error {
	return r.fail(&SyntaxError{
		Location: r.s.Location().First,
		Message:  fmt.Sprintf(msg, args...),
		err:      err,
	})
}

func (r *Reader) fail(err error) error {
	r.kind = 0
	r.err = err
	return err
}

// SyntaxError is the concrete type of errors reported by a Reader.
// It wraps the underlying *StructuralError or *number.FormatError, if any.
type SyntaxError struct {
	Location scanner.LineCol
	Message  string

	err error
}

// Error satisfies the error interface.
func (s *SyntaxError) Error() string {
	return fmt.Sprintf("at %s: %s", s.Location, s.Message)
}

// Unwrap supports error wrapping.
func (s *SyntaxError) Unwrap() error { return s.err }
