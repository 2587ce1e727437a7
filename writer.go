// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"bufio"
	"io"
	"strconv"

	"github.com/creachadair/jstream/internal/escape"
	"github.com/creachadair/jstream/number"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"go4.org/mem"
)

// A Writer writes a single JSON document in compact form. Each call is
// checked against the grammar before any output is produced, so the output
// is a prefix of a valid document at all times.
//
// Any error, structural or I/O, is permanent: the Writer reports it for every
// subsequent call.
type Writer struct {
	w   *bufio.Writer
	ctx *Context
	np  number.Parser
	log log.Logger
	buf []byte
	err error
}

// NewWriter constructs a Writer that delivers output to w. A nil cfg
// provides default settings.
func NewWriter(w io.Writer, cfg *Config) *Writer {
	return &Writer{
		w:   bufio.NewWriter(w),
		ctx: NewContext(cfg),
		np:  cfg.numberParser(),
		log: cfg.logger(),
	}
}

// BeginObject writes the start of an object.
func (w *Writer) BeginObject() error { return w.emit(OpBeginObject, "", "{", false) }

// EndObject writes the end of the innermost object.
func (w *Writer) EndObject() error { return w.emit(OpEndObject, "", "}", false) }

// BeginArray writes the start of an array.
func (w *Writer) BeginArray() error { return w.emit(OpBeginArray, "", "[", false) }

// EndArray writes the end of the innermost array.
func (w *Writer) EndArray() error { return w.emit(OpEndArray, "", "]", false) }

// Key writes the key of an object member. The next call must write its value.
func (w *Writer) Key(name string) error { return w.emit(OpKey, name, "", false) }

// String writes a string value.
func (w *Writer) String(s string) error {
	return w.emit(OpValue, "", s, true)
}

// Number writes a number value. The text of v is subject to the same length
// policy as NumberText.
func (w *Writer) Number(v number.Value) error {
	text := v.String()
	if err := w.checkLength(text); err != nil {
		return err
	}
	return w.emit(OpValue, "", text, false)
}

// NumberText writes a number value given as a JSON number literal. The
// literal is written as given, once it has been checked.
func (w *Writer) NumberText(lit string) error {
	if err := w.checkNumber(lit); err != nil {
		return err
	}
	return w.emit(OpValue, "", lit, false)
}

// Bool writes a Boolean value.
func (w *Writer) Bool(b bool) error { return w.emit(OpValue, "", strconv.FormatBool(b), false) }

// Null writes a null value.
func (w *Writer) Null() error { return w.emit(OpValue, "", "null", false) }

// StringField writes an object member with a string value.
func (w *Writer) StringField(key, s string) error {
	return w.emit(OpField, key, s, true)
}

// NumberField writes an object member with a number value.
func (w *Writer) NumberField(key string, v number.Value) error {
	text := v.String()
	if err := w.checkLength(text); err != nil {
		return err
	}
	return w.emit(OpField, key, text, false)
}

// BoolField writes an object member with a Boolean value.
func (w *Writer) BoolField(key string, b bool) error {
	return w.emit(OpField, key, strconv.FormatBool(b), false)
}

// NullField writes an object member with a null value.
func (w *Writer) NullField(key string) error { return w.emit(OpField, key, "null", false) }

// Path reports the location of the most recent key or value written.
func (w *Writer) Path() string { return w.ctx.Path() }

// Depth reports the number of containers currently open.
func (w *Writer) Depth() int { return w.ctx.Depth() }

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Close ends the document and flushes buffered output. It reports an error if
// the document is incomplete. Close does not close the underlying writer.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if err := w.ctx.End(); err != nil {
		return w.failed(OpEnd, err)
	}
	return w.Flush()
}

// checkLength applies the length policy to the text of a Value, which is
// already known to be a valid literal.
func (w *Writer) checkLength(text string) error {
	if w.err != nil {
		return w.err
	}
	if max := w.np.MaxLength; max > 0 && len(text) > max {
		return w.failed(OpValue, &number.FormatError{Literal: text[:max] + "...", Err: number.ErrTooLong})
	}
	return nil
}

func (w *Writer) checkNumber(lit string) error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.np.Parse(lit); err != nil {
		return w.failed(OpValue, err)
	}
	return nil
}

// emit applies op to the context and, if that succeeds, writes the necessary
// separator, the key (if any), and text. If quote is true, text is written as
// a JSON string.
func (w *Writer) emit(op Op, key, text string, quote bool) error {
	if w.err != nil {
		return w.err
	}
	top := w.ctx.Top()
	comma := top.Kind != RootFrame && top.State == StateAfterValue &&
		op != OpEndArray && op != OpEndObject
	if err := w.ctx.apply(op, key); err != nil {
		return w.failed(op, err)
	}

	w.buf = w.buf[:0]
	if comma {
		w.buf = append(w.buf, ',')
	}
	if op == OpKey || op == OpField {
		w.buf = escape.AppendQuoted(w.buf, mem.S(key))
		w.buf = append(w.buf, ':')
	}
	if quote {
		w.buf = escape.AppendQuoted(w.buf, mem.S(text))
	} else {
		w.buf = append(w.buf, text...)
	}
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = err
	}
	return w.err
}

func (w *Writer) failed(op Op, err error) error {
	level.Debug(w.log).Log("msg", "rejected write", "op", op, "path", w.ctx.Path(), "err", err)
	w.err = err
	return err
}
