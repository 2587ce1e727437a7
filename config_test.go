// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream_test

import (
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/creachadair/jstream"
	"github.com/creachadair/jstream/number"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"
)

func TestConfigYAML(t *testing.T) {
	const input = `
allow_empty_document: true
max_depth: 64
max_number_length: 100
max_number_exponent: -1
`
	var got jstream.Config
	if err := yaml.Unmarshal([]byte(input), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := jstream.Config{AllowEmptyDocument: true, MaxDepth: 64, MaxNumberLength: 100, MaxNumberExponent: -1}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(jstream.Config{}, "Logger")); diff != "" {
		t.Errorf("Config (-want, +got)\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}
}

func TestConfigFlags(t *testing.T) {
	var cfg jstream.Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{
		"-json.max-depth=3", "-json.allow-empty-document", "-json.max-number-exponent=5",
	}); err != nil {
		t.Fatalf("Parse flags: %v", err)
	}
	want := jstream.Config{AllowEmptyDocument: true, MaxDepth: 3, MaxNumberExponent: 5}
	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreFields(jstream.Config{}, "Logger")); diff != "" {
		t.Errorf("Config (-want, +got)\n%s", diff)
	}

	// The flag settings take effect in a reader.
	r := jstream.NewReader(strings.NewReader("[[[[1]]]]"), &cfg)
	if _, err := readAll(t, r); err == nil {
		t.Error("Read past max depth: got nil, want error")
	}
	r = jstream.NewReader(strings.NewReader("1e6"), &cfg)
	if _, err := readAll(t, r); !errors.Is(err, number.ErrRange) {
		t.Errorf("Read past max exponent: got %v, want ErrRange", err)
	}
}

func TestConfigValidate(t *testing.T) {
	var nilConfig *jstream.Config
	if err := nilConfig.Validate(); err != nil {
		t.Errorf("Validate(nil): unexpected error: %v", err)
	}

	bad := &jstream.Config{MaxDepth: -1, MaxNumberLength: -5}
	err := bad.Validate()
	if err == nil {
		t.Fatal("Validate: got nil, want error")
	}
	for _, want := range []string{"max_depth", "max_number_length"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate: error %q does not mention %q", err, want)
		}
	}
}
