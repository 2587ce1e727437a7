// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/jstream"
	"github.com/creachadair/jstream/number"
	"github.com/go-kit/log"
	"github.com/google/go-cmp/cmp"
)

// readAll reads all the tokens of input and renders each as kind, or as
// kind:text for keys and values.
func readAll(t *testing.T, r *jstream.Reader) ([]string, error) {
	t.Helper()
	var got []string
	for {
		kind, err := r.Next()
		if err != nil {
			return got, err
		}
		switch {
		case kind == jstream.Key:
			got = append(got, "key:"+r.Key())
		case kind.IsValue():
			got = append(got, kind.String()+":"+string(r.Text()))
		default:
			got = append(got, kind.String())
		}
		if kind == jstream.End {
			return got, nil
		}
	}
}

func TestReader(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`true`, []string{"boolean:true", "end"}},
		{` "Ab" `, []string{`string:"Ab"`, "end"}},
		{`[]`, []string{"begin array", "end array", "end"}},
		{`{}`, []string{"begin object", "end object", "end"}},
		{`{"a": [1, 2147483648, -9223372036854775809, 1.5e3], "b\n": null}`, []string{
			"begin object",
			"key:a", "begin array",
			"int:1", "long:2147483648", "big integer:-9223372036854775809", "decimal:1.5e3",
			"end array",
			"key:b\n", "null:null",
			"end object", "end",
		}},
		{"[\n  {\"x\": false},\n  []\n]\n", []string{
			"begin array",
			"begin object", "key:x", "boolean:false", "end object",
			"begin array", "end array",
			"end array", "end",
		}},
	}
	for _, test := range tests {
		r := jstream.NewReader(strings.NewReader(test.input), nil)
		got, err := readAll(t, r)
		if err != nil {
			t.Errorf("Read %#q: unexpected error: %v", test.input, err)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Read %#q: (-want, +got)\n%s", test.input, diff)
		}

		// After the end, Next keeps reporting End.
		if kind, err := r.Next(); kind != jstream.End || err != nil {
			t.Errorf("Next after end: got %v, %v; want end, nil", kind, err)
		}
	}
}

func TestReaderNumbers(t *testing.T) {
	const input = `[0, -2147483648, 2147483647, 2147483648, 18446744073709551616, 0.0, 1e2]`
	want := []struct {
		kind jstream.Kind
		typ  number.Type
		text string
	}{
		{jstream.Int, number.Int32, "0"},
		{jstream.Int, number.Int32, "-2147483648"},
		{jstream.Int, number.Int32, "2147483647"},
		{jstream.Long, number.Int64, "2147483648"},
		{jstream.BigInteger, number.BigInt, "18446744073709551616"},
		{jstream.Decimal, number.Decimal, "0.0"},
		{jstream.Decimal, number.Decimal, "1e2"},
	}

	r := jstream.NewReader(strings.NewReader(input), nil)
	if kind, err := r.Next(); err != nil || kind != jstream.BeginArray {
		t.Fatalf("Next: got %v, %v; want begin array", kind, err)
	}
	if !r.Number().IsInt32() || r.Number().Sign() != 0 {
		t.Errorf("Number of non-number token: got %v, want zero", r.Number())
	}
	for _, w := range want {
		kind, err := r.Next()
		if err != nil {
			t.Fatalf("Next: unexpected error: %v", err)
		}
		v := r.Number()
		if kind != w.kind || v.Type() != w.typ {
			t.Errorf("Token %q: got %v/%v, want %v/%v", r.Text(), kind, v.Type(), w.kind, w.typ)
		}
		if !kind.IsNumber() {
			t.Errorf("Kind %v is not a number", kind)
		}
		if !v.Equal(number.MustParse(w.text)) {
			t.Errorf("Token %q: got value %v, want %s", r.Text(), v, w.text)
		}
	}
}

func TestReaderErrors(t *testing.T) {
	tests := []struct {
		input string
		at    string // error location
		want  string // error message substring
	}{
		{`[1,]`, "1:3", `unexpected "," before "]"`},
		{`{"a" 1}`, "1:5", `expected ":", got integer`},
		{`{"a":1}{}`, "1:7", "document already has a root value"},
		{"[\n  1,\n  ]", "3:2", `unexpected "," before "]"`},
		{`[1e]`, "1:1", "want sign or digit"},
		{`[1e+]`, "1:1", "missing exponent digits"},
		{"{\"a\"\n : ", "2:3", `unexpected end of input after ":"`},
		{`{"true":}`, "1:8", "key has no value"},
		{`{"a": ]`, "1:6", "innermost open container is an object"},
		{`{"a" }`, "1:5", "key has no value"},
	}
	for _, test := range tests {
		r := jstream.NewReader(strings.NewReader(test.input), nil)
		_, err := readAll(t, r)
		var se *jstream.SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Read %#q: got %v, want *SyntaxError", test.input, err)
			continue
		}
		if got := se.Location.String(); got != test.at {
			t.Errorf("Read %#q: error at %s, want %s", test.input, got, test.at)
		}
		if !strings.Contains(se.Message, test.want) {
			t.Errorf("Read %#q: got %q, want %q", test.input, se.Message, test.want)
		}

		// Errors are permanent.
		if _, err2 := r.Next(); err2 != err {
			t.Errorf("Read %#q: Next after error: got %v, want %v", test.input, err2, err)
		}
	}
}

func TestReaderWrappedErrors(t *testing.T) {
	t.Run("Structural", func(t *testing.T) {
		r := jstream.NewReader(strings.NewReader(`{"a": [1, 2}`), nil)
		_, err := readAll(t, r)
		var se *jstream.StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("Got %v, want *StructuralError", err)
		}
		if se.Op != jstream.OpEndObject || se.Frame != jstream.ArrayFrame || se.Path != "$.a[1]" {
			t.Errorf("Got %+v, want end object in array at $.a[1]", se)
		}
	})
	t.Run("Number", func(t *testing.T) {
		cfg := &jstream.Config{MaxNumberLength: 5}
		r := jstream.NewReader(strings.NewReader(`[12345, 123456]`), cfg)
		got, err := readAll(t, r)
		if !errors.Is(err, number.ErrTooLong) {
			t.Fatalf("Got %v, want ErrTooLong", err)
		}
		var fe *number.FormatError
		if !errors.As(err, &fe) || !strings.HasPrefix(fe.Literal, "12345") {
			t.Errorf("Got %v, want *FormatError for 123456", err)
		}
		if diff := cmp.Diff([]string{"begin array", "int:12345"}, got); diff != "" {
			t.Errorf("Tokens before error (-want, +got)\n%s", diff)
		}
	})
	t.Run("KeyWithoutValue", func(t *testing.T) {
		r := jstream.NewReader(strings.NewReader(`{"a": 1, "b": }`), nil)
		got, err := readAll(t, r)
		var se *jstream.StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("Got %v, want *StructuralError", err)
		}
		if se.Op != jstream.OpEndObject || se.State != jstream.StateAfterKey || se.Path != "$.b" {
			t.Errorf("Got %+v, want end object after key at $.b", se)
		}
		if diff := cmp.Diff([]string{"begin object", "key:a", "int:1", "key:b"}, got); diff != "" {
			t.Errorf("Tokens before error (-want, +got)\n%s", diff)
		}
	})
	t.Run("Exponent", func(t *testing.T) {
		r := jstream.NewReader(strings.NewReader(`[1e10, 1e11]`), &jstream.Config{MaxNumberExponent: 10})
		got, err := readAll(t, r)
		if !errors.Is(err, number.ErrRange) {
			t.Fatalf("Got %v, want ErrRange", err)
		}
		if diff := cmp.Diff([]string{"begin array", "decimal:1e10"}, got); diff != "" {
			t.Errorf("Tokens before error (-want, +got)\n%s", diff)
		}

		// The default bound applies without a config.
		r = jstream.NewReader(strings.NewReader(`1e100000000`), nil)
		if _, err := r.Next(); !errors.Is(err, number.ErrRange) {
			t.Errorf("Got %v, want ErrRange", err)
		}
	})
	t.Run("Empty", func(t *testing.T) {
		r := jstream.NewReader(strings.NewReader(""), nil)
		if _, err := r.Next(); !errors.Is(err, jstream.ErrEmptyDocument) {
			t.Errorf("Got %v, want ErrEmptyDocument", err)
		}
	})
	t.Run("MaxDepth", func(t *testing.T) {
		r := jstream.NewReader(strings.NewReader(`[[[]]]`), &jstream.Config{MaxDepth: 2})
		got, err := readAll(t, r)
		if err == nil || !strings.Contains(err.Error(), "maximum nesting depth") {
			t.Errorf("Got %v, want depth error", err)
		}
		if len(got) != 2 {
			t.Errorf("Got tokens %q, want 2", got)
		}
	})
}

func TestReaderUnescape(t *testing.T) {
	r := jstream.NewReader(strings.NewReader(`{"kéy": "a\"b\\c😀", "n": 1}`), nil)
	var got []string
	for {
		kind, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		} else if kind == jstream.End {
			break
		}
		if kind == jstream.Key || kind == jstream.String {
			s, err := r.Unescape()
			if err != nil {
				t.Fatalf("Unescape %q: %v", r.Text(), err)
			}
			got = append(got, s)
		} else if kind.IsNumber() {
			if _, err := r.Unescape(); err == nil {
				t.Error("Unescape of a number: got nil, want error")
			}
		}
	}
	want := []string{"kéy", "a\"b\\c\U0001F600", "n"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unescaped (-want, +got)\n%s", diff)
	}
}

func TestReaderSkip(t *testing.T) {
	const input = `{"a": {"b": [1, [2], {"c": 3}]}, "d": 4, "e": [], "f": [5]}`
	r := jstream.NewReader(strings.NewReader(input), nil)

	var keys []string
	for {
		kind, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		} else if kind == jstream.End {
			break
		}
		if kind == jstream.Key {
			keys = append(keys, r.Key())
			if r.Key() != "d" {
				if err := r.Skip(); err != nil {
					t.Fatalf("Skip %q: %v", r.Key(), err)
				}
				if r.Depth() != 1 {
					t.Errorf("After Skip %q: depth %d, want 1", r.Key(), r.Depth())
				}
			}
		}
	}
	if diff := cmp.Diff([]string{"a", "d", "e", "f"}, keys); diff != "" {
		t.Errorf("Keys (-want, +got)\n%s", diff)
	}
}

func TestReaderBool(t *testing.T) {
	r := jstream.NewReader(strings.NewReader(`[true, false, null]`), nil)
	var got []bool
	for {
		kind, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		} else if kind == jstream.End {
			break
		} else if kind.IsValue() {
			got = append(got, r.Bool())
		}
	}
	if diff := cmp.Diff([]bool{true, false, false}, got); diff != "" {
		t.Errorf("Bool (-want, +got)\n%s", diff)
	}
}

func TestReaderPath(t *testing.T) {
	r := jstream.NewReader(strings.NewReader(`{"a": [true, {"b c": null}]}`), nil)
	var got []string
	for {
		kind, err := r.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		} else if kind == jstream.End {
			break
		} else if kind.IsValue() {
			got = append(got, r.Path())
		}
	}
	if diff := cmp.Diff([]string{"$.a[0]", `$.a[1]["b c"]`}, got); diff != "" {
		t.Errorf("Paths (-want, +got)\n%s", diff)
	}
}

func TestReaderLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := &jstream.Config{Logger: log.NewLogfmtLogger(&buf)}
	r := jstream.NewReader(strings.NewReader(`{"a": 1 ]`), cfg)
	if _, err := readAll(t, r); err == nil {
		t.Fatal("Read: got nil, want error")
	}
	got := buf.String()
	for _, want := range []string{"level=debug", `msg="rejected input"`, `op="end array"`, "path=$.a"} {
		if !strings.Contains(got, want) {
			t.Errorf("Log output %q does not contain %q", got, want)
		}
	}
}
