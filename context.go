// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FrameKind identifies the kind of container a Frame tracks.
type FrameKind byte

// Constants defining the valid FrameKind values.
const (
	RootFrame   FrameKind = iota // the document as a whole
	ArrayFrame                   // an open array
	ObjectFrame                  // an open object
)

func (k FrameKind) String() string {
	switch k {
	case RootFrame:
		return "root"
	case ArrayFrame:
		return "array"
	case ObjectFrame:
		return "object"
	}
	return "invalid frame"
}

// State is the position of a frame within its container.
type State byte

// Constants defining the valid State values.
const (
	StateEmpty      State = iota // nothing has been added yet
	StateAfterKey                // a key awaits its value (objects only)
	StateAfterValue              // at least one value or member is complete
	StateEnd                     // the container is closed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAfterKey:
		return "after key"
	case StateAfterValue:
		return "after value"
	case StateEnd:
		return "end"
	}
	return "invalid state"
}

// Op is an operation requested of a frame.
type Op byte

// Constants defining the valid Op values.
const (
	OpKey         Op = iota + 1 // start an object member with a key
	OpValue                     // add a scalar value
	OpField                     // add a complete key and value at once
	OpBeginArray                // add an array value and open it
	OpBeginObject               // add an object value and open it
	OpEndArray                  // close the innermost array
	OpEndObject                 // close the innermost object
	OpEnd                       // end the document
)

var opStr = [...]string{
	"invalid op", "key", "value", "field", "begin array", "begin object",
	"end array", "end object", "end of document",
}

func (op Op) String() string {
	if int(op) >= len(opStr) {
		return opStr[0]
	}
	return opStr[op]
}

// addsValue reports whether op places a value in the current frame.
func (op Op) addsValue() bool {
	return op == OpValue || op == OpBeginArray || op == OpBeginObject
}

// ErrEmptyDocument is wrapped by the error reported when a document ends
// before its top-level value, unless the Config allows empty documents.
var ErrEmptyDocument = errors.New("document has no value")

// StructuralError is the concrete type of errors reported for an operation
// that violates the JSON grammar in the current state.
type StructuralError struct {
	Frame   FrameKind // the kind of the innermost open frame
	State   State     // the state of that frame
	Op      Op        // the rejected operation
	Path    string    // the document location, if known
	Message string

	err error
}

// Error satisfies the error interface.
func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("%s in %s: %s", e.Op, e.Frame, e.Message)
	if e.Path != "" {
		return "at " + e.Path + ": " + msg
	}
	return msg
}

// Unwrap supports error wrapping.
func (e *StructuralError) Unwrap() error { return e.err }

func (k FrameKind) fail(s State, op Op, msg string) error {
	return &StructuralError{Frame: k, State: s, Op: op, Message: msg}
}

// Next reports the state that a frame of kind k moves to from s when op is
// applied, or a *StructuralError if op is not legal in s.
//
// Opening a container counts as adding a value to the frame that encloses
// it. Closing a container moves its frame to StateEnd; no operation is legal
// in StateEnd.
func (k FrameKind) Next(s State, op Op) (State, error) {
	if s == StateEnd {
		if k == RootFrame {
			return s, k.fail(s, op, "document is complete")
		}
		return s, k.fail(s, op, "nesting problem")
	}
	switch k {
	case ArrayFrame:
		return arrayNext(s, op)
	case ObjectFrame:
		return objectNext(s, op)
	case RootFrame:
		return rootNext(s, op)
	}
	return s, k.fail(s, op, "unknown frame kind")
}

func arrayNext(s State, op Op) (State, error) {
	const k = ArrayFrame
	switch {
	case op == OpKey:
		return s, k.fail(s, op, "array has no keys")
	case op == OpField:
		return s, k.fail(s, op, "cannot add a field to an array")
	case op.addsValue():
		if s == StateEmpty || s == StateAfterValue {
			return StateAfterValue, nil
		}
	case op == OpEndArray:
		if s == StateEmpty || s == StateAfterValue {
			return StateEnd, nil
		}
	case op == OpEndObject:
		return s, k.fail(s, op, "innermost open container is an array")
	case op == OpEnd:
		return s, k.fail(s, op, "unclosed array")
	}
	return s, k.fail(s, op, "nesting problem")
}

func objectNext(s State, op Op) (State, error) {
	const k = ObjectFrame
	switch {
	case op == OpKey:
		if s == StateEmpty || s == StateAfterValue {
			return StateAfterKey, nil
		}
	case op == OpField:
		if s == StateEmpty || s == StateAfterValue {
			return StateAfterValue, nil
		}
	case op.addsValue():
		if s == StateAfterKey {
			return StateAfterValue, nil
		}
		return s, k.fail(s, op, "value without a key")
	case op == OpEndObject:
		if s == StateEmpty || s == StateAfterValue {
			return StateEnd, nil
		} else if s == StateAfterKey {
			return s, k.fail(s, op, "key has no value")
		}
	case op == OpEndArray:
		return s, k.fail(s, op, "innermost open container is an object")
	case op == OpEnd:
		return s, k.fail(s, op, "unclosed object")
	}
	return s, k.fail(s, op, "nesting problem")
}

func rootNext(s State, op Op) (State, error) {
	const k = RootFrame
	switch {
	case op == OpKey || op == OpField:
		return s, k.fail(s, op, "key outside of an object")
	case op.addsValue():
		if s == StateEmpty {
			return StateAfterValue, nil
		}
		return s, k.fail(s, op, "document already has a root value")
	case op == OpEndArray:
		return s, k.fail(s, op, "no open array")
	case op == OpEndObject:
		return s, k.fail(s, op, "no open object")
	case op == OpEnd:
		if s == StateAfterValue {
			return StateEnd, nil
		}
		return s, &StructuralError{Frame: k, State: s, Op: op, Message: ErrEmptyDocument.Error(), err: ErrEmptyDocument}
	}
	return s, k.fail(s, op, "nesting problem")
}

// A Frame records the state of one open container of a document.
type Frame struct {
	Kind  FrameKind
	State State
	Key   string // the most recent key (objects only)
	Len   int    // the number of values or members started so far
}

// A Context enforces JSON grammar on a sequence of streaming operations.
// Each method either accepts its operation, updating the state of the
// document, or reports a *StructuralError.
//
// Errors are permanent: once an operation fails, the document cannot be
// recovered and every subsequent operation reports the same error until
// Reset is called.
//
// A Context is not safe for concurrent use; the owner of a document must
// serialize calls.
type Context struct {
	cfg *Config
	stk []Frame // stk[0] is the root frame
	err error
}

// NewContext constructs a Context for a new document. A nil cfg provides
// default settings.
func NewContext(cfg *Config) *Context {
	c := &Context{cfg: cfg}
	c.Reset()
	return c
}

// Reset discards the state of c and prepares it for a new document.
func (c *Context) Reset() {
	c.stk = append(c.stk[:0], Frame{Kind: RootFrame})
	c.err = nil
}

// Key starts a new object member with the given key.
func (c *Context) Key(name string) error { return c.apply(OpKey, name) }

// Value adds a scalar value (string, number, Boolean, or null).
func (c *Context) Value() error { return c.apply(OpValue, "") }

// Field adds a complete object member with the given key and a scalar value.
// It is equivalent to Key followed by Value.
func (c *Context) Field(name string) error { return c.apply(OpField, name) }

// BeginArray adds an array value and opens it.
func (c *Context) BeginArray() error { return c.apply(OpBeginArray, "") }

// BeginObject adds an object value and opens it.
func (c *Context) BeginObject() error { return c.apply(OpBeginObject, "") }

// EndArray closes the innermost open container, which must be an array.
func (c *Context) EndArray() error { return c.apply(OpEndArray, "") }

// EndObject closes the innermost open container, which must be an object.
func (c *Context) EndObject() error { return c.apply(OpEndObject, "") }

// End ends the document. All containers must be closed, and the document
// must have a value unless empty documents are allowed.
func (c *Context) End() error { return c.apply(OpEnd, "") }

// Validate applies the operation corresponding to a token of kind k. A Key
// token is applied with an empty key; use Key to record the key text.
func (c *Context) Validate(k Kind) error {
	switch k {
	case BeginObject:
		return c.BeginObject()
	case EndObject:
		return c.EndObject()
	case BeginArray:
		return c.BeginArray()
	case EndArray:
		return c.EndArray()
	case Key:
		return c.Key("")
	case End:
		return c.End()
	}
	if k.IsValue() {
		return c.Value()
	}
	top := c.Top()
	return &StructuralError{
		Frame: top.Kind, State: top.State, Path: c.Path(),
		Message: fmt.Sprintf("invalid token kind %d", k),
	}
}

// Top returns a copy of the innermost frame. When no container is open, this
// is the root frame.
func (c *Context) Top() Frame { return c.stk[len(c.stk)-1] }

// Depth reports the number of containers currently open.
func (c *Context) Depth() int { return len(c.stk) - 1 }

// Done reports whether the document has ended successfully.
func (c *Context) Done() bool { return c.err == nil && c.stk[0].State == StateEnd }

// Err reports the error that stopped the document, or nil.
func (c *Context) Err() error { return c.err }

// Path describes the location of the most recent key or value in the
// document, for example "$.items[2].name". Keys that are not plain
// identifiers are rendered in bracket notation: $["a b"].
func (c *Context) Path() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for _, f := range c.stk[1:] {
		switch f.Kind {
		case ArrayFrame:
			if f.Len > 0 {
				sb.WriteByte('[')
				sb.WriteString(strconv.Itoa(f.Len - 1))
				sb.WriteByte(']')
			}
		case ObjectFrame:
			if f.State == StateEmpty {
				continue
			}
			if isIdent(f.Key) {
				sb.WriteByte('.')
				sb.WriteString(f.Key)
			} else {
				sb.WriteByte('[')
				sb.WriteString(Quote(f.Key))
				sb.WriteByte(']')
			}
		}
	}
	return sb.String()
}

func (c *Context) apply(op Op, key string) error {
	if c.err != nil {
		return c.err
	}
	top := &c.stk[len(c.stk)-1]
	next, err := top.Kind.Next(top.State, op)
	if err != nil {
		if !(op == OpEnd && errors.Is(err, ErrEmptyDocument) && c.cfg.allowEmpty()) {
			return c.fail(err)
		}
		next = StateEnd
	}
	if op == OpBeginArray || op == OpBeginObject {
		if max := c.cfg.maxDepth(); max > 0 && c.Depth() >= max {
			return c.fail(top.Kind.fail(top.State, op, "maximum nesting depth exceeded"))
		}
	}

	top.State = next
	switch op {
	case OpKey:
		top.Key = key
	case OpField:
		top.Key = key
		top.Len++
	case OpValue:
		top.Len++
	case OpBeginArray:
		top.Len++
		c.stk = append(c.stk, Frame{Kind: ArrayFrame})
	case OpBeginObject:
		top.Len++
		c.stk = append(c.stk, Frame{Kind: ObjectFrame})
	case OpEndArray, OpEndObject:
		c.stk = c.stk[:len(c.stk)-1]
	}
	return nil
}

func (c *Context) fail(err error) error {
	var se *StructuralError
	if errors.As(err, &se) && se.Path == "" {
		se.Path = c.Path()
	}
	c.err = err
	return err
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		isLetter := ch == '_' || ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
		if !isLetter && (i == 0 || ch < '0' || ch > '9') {
			return false
		}
	}
	return true
}
