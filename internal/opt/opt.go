// Package opt provides an explicit present/absent/cleared field type used by
// partial update commands.
package opt

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	absent state = iota
	set
	cleared
)

// Field is a tri-state optional value. The zero value is absent and leaves the
// target unchanged when applied.
type Field[T any] struct {
	state state
	value T
}

// Some returns a field carrying v.
func Some[T any](v T) Field[T] {
	return Field[T]{state: set, value: v}
}

// Clear returns a field that removes the target's current value.
func Clear[T any]() Field[T] {
	return Field[T]{state: cleared}
}

// IsAbsent reports whether the field was not provided.
func (f Field[T]) IsAbsent() bool { return f.state == absent }

// IsSet reports whether the field carries a value.
func (f Field[T]) IsSet() bool { return f.state == set }

// IsCleared reports whether the field asks for the value to be removed.
func (f Field[T]) IsCleared() bool { return f.state == cleared }

// Get returns the carried value and whether it is set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == set
}

// Apply writes the field onto dst: set replaces, cleared resets to the zero
// value, absent does nothing.
func (f Field[T]) Apply(dst *T) {
	switch f.state {
	case set:
		*dst = f.value
	case cleared:
		var zero T
		*dst = zero
	}
}

// UnmarshalJSON maps `null` to cleared and any other value to set. A key that
// is missing from the document never reaches this method and stays absent.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// MarshalJSON renders set values as themselves and anything else as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != set {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
