package models

import "encoding/json"

// Unknown is the placeholder rendered for any absent record field.
const Unknown = "Unknown"

// Optional holds a value that an upstream lookup may not have produced.
// The zero value is absent.
type Optional[T any] struct {
	value T
	valid bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, valid: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// SomeString returns None for the empty string and Some otherwise.
func SomeString(s string) Optional[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

func (o Optional[T]) Valid() bool {
	return o.valid
}

func (o Optional[T]) OrElse(def T) T {
	if o.valid {
		return o.value
	}
	return def
}

// Ptr returns a pointer to the value, or nil when absent. Used to bind
// optionals to nullable database columns.
func (o Optional[T]) Ptr() *T {
	if !o.valid {
		return nil
	}
	v := o.value
	return &v
}

// FromPtr is the inverse of Ptr.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// Coordinate is a latitude or longitude. It marshals as a JSON number when
// present and as the "Unknown" string when absent, which is what existing
// clients expect.
type Coordinate struct {
	Optional[float64]
}

func NewCoordinate(v float64) Coordinate {
	return Coordinate{Some(v)}
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	if v, ok := c.Get(); ok {
		return json.Marshal(v)
	}
	return json.Marshal(Unknown)
}
