// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package secret provides an opaque handle for sensitive configuration values
// (signing keys, database passwords).
//
// # Safety
//
// A [Secret] renders as "[REDACTED]" through every formatting path the
// codebase uses: fmt verbs, slog attributes, and JSON encoding. The raw value
// is reachable only through [Secret.Expose].
package secret

import (
	"encoding/json"
	"log/slog"
)

const redacted = "[REDACTED]"

// Secret wraps a sensitive string.
type Secret struct {
	value string
}

// New wraps value in a [Secret].
func New(value string) Secret {
	return Secret{value: value}
}

// Expose returns the raw value. Call sites should be limited to the code
// that actually consumes the key material.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty reports whether no value was provided.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// Len returns the byte length of the raw value.
func (s Secret) Len() int {
	return len(s.value)
}

// Equal reports whether two secrets hold the same value.
func (s Secret) Equal(other Secret) bool {
	return s.value == other.value
}

// # Redaction

// String implements [fmt.Stringer].
func (s Secret) String() string { return redacted }

// GoString implements [fmt.GoStringer] so %#v is redacted too.
func (s Secret) GoString() string { return redacted }

// LogValue implements [slog.LogValuer].
func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted) }

// MarshalJSON implements [json.Marshaler].
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

// MarshalText implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// UnmarshalText implements encoding.TextUnmarshaler, which lets env parsers
// populate a Secret directly from the environment.
func (s *Secret) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}
