// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"errors"
	"flag"

	"github.com/creachadair/jstream/number"
	"github.com/go-kit/log"
)

// Config carries the policy settings shared by a Context and the drivers
// built on it. A nil *Config is valid and provides default settings.
type Config struct {
	// Accept a document with no top-level value. By default, ending a
	// document before its root value is a structural error.
	AllowEmptyDocument bool `yaml:"allow_empty_document"`

	// If positive, the maximum number of arrays and objects that may be open
	// at once.
	MaxDepth int `yaml:"max_depth"`

	// If positive, the maximum length in bytes of a number literal.
	MaxNumberLength int `yaml:"max_number_length"`

	// The maximum magnitude of a decimal exponent. Zero means
	// number.DefaultMaxExponent and a negative value removes the bound.
	MaxNumberExponent int `yaml:"max_number_exponent"`

	// Diagnostics about rejected documents are logged here at debug level.
	// If nil, nothing is logged.
	Logger log.Logger `yaml:"-"`
}

// RegisterFlags adds the flags required to configure c to the given FlagSet.
func (c *Config) RegisterFlags(f *flag.FlagSet) {
	f.BoolVar(&c.AllowEmptyDocument, "json.allow-empty-document", false, "Accept documents with no top-level value.")
	f.IntVar(&c.MaxDepth, "json.max-depth", 0, "Maximum nesting depth of arrays and objects (0 means unlimited).")
	f.IntVar(&c.MaxNumberLength, "json.max-number-length", 0, "Maximum length of a number literal in bytes (0 means unlimited).")
	f.IntVar(&c.MaxNumberExponent, "json.max-number-exponent", 0, "Maximum magnitude of a decimal exponent (0 means the default, negative means unlimited).")
}

// Validate reports whether c is a usable configuration.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, errors.New("max_depth must not be negative"))
	}
	if c.MaxNumberLength < 0 {
		errs = append(errs, errors.New("max_number_length must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) allowEmpty() bool { return c != nil && c.AllowEmptyDocument }

func (c *Config) maxDepth() int {
	if c == nil {
		return 0
	}
	return c.MaxDepth
}

func (c *Config) numberParser() number.Parser {
	if c == nil {
		return number.Parser{}
	}
	return number.Parser{MaxLength: c.MaxNumberLength, MaxExponent: c.MaxNumberExponent}
}

func (c *Config) logger() log.Logger {
	if c == nil || c.Logger == nil {
		return log.NewNopLogger()
	}
	return c.Logger
}
