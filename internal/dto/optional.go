package dto

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNull = errors.New("null is not allowed")

var nullLiteral = []byte("null")

// present is implemented by field wrappers that remember whether the client sent them.
type present interface {
	presentValue() (any, bool)
}

// Optional is a field that may be omitted, but when sent must carry a value.
type Optional[T any] struct {
	Set   bool
	Value T
}

// UnmarshalJSON records presence and rejects an explicit null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		return errNull
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns the value or nil when the field was omitted.
func (o Optional[T]) Ptr() *T {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

func (o Optional[T]) presentValue() (any, bool) { return o.Value, o.Set }

// Some builds a present Optional. Mostly useful in tests and internal callers.
func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

// Nullable is a field that may be omitted, sent as null, or sent with a value.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON records presence and whether the client cleared the field.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), nullLiteral) {
		var zero T
		n.Null = true
		n.Value = zero
		return nil
	}
	n.Null = false
	return json.Unmarshal(data, &n.Value)
}

// Ptr returns nil when the field is absent or null.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}

func (n Nullable[T]) presentValue() (any, bool) { return n.Value, n.Set && !n.Null }

// Value builds a present, non-null Nullable.
func Value[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: v} }

// Null builds a present Nullable carrying null.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true, Null: true} }
