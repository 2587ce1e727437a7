// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package number

// MarshalJSON implements the json.Marshaler interface. The value is encoded
// as a bare JSON number.
func (v Value) MarshalJSON() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalJSON implements the json.Unmarshaler interface.
func (v *Value) UnmarshalJSON(data []byte) error { return v.UnmarshalText(data) }

// MarshalText implements the encoding.TextMarshaler interface.
func (v Value) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// UnmarshalText implements the encoding.TextUnmarshaler interface. The text
// must be a valid JSON number literal.
func (v *Value) UnmarshalText(data []byte) error {
	w, err := Parse(string(data))
	if err != nil {
		return err
	}
	*v = w
	return nil
}
