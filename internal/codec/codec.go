// Package codec maps categorical strings to the dense integer codes a
// trained classifier was fitted on, and back.
package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCategory means a value was never seen at training time.
	// It is a user-correctable input problem, not a system fault.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrInvalidCode means a code falls outside [0, k) for its field. It
	// indicates a model/codec mismatch.
	ErrInvalidCode = errors.New("invalid code")

	ErrUnknownField   = errors.New("no codec for field")
	ErrDuplicateClass = errors.New("duplicate class")
	ErrEmptyDomain    = errors.New("codec domain is empty")
)

// CategoryError reports which field rejected which value.
type CategoryError struct {
	Field string
	Value string
}

func (e *CategoryError) Error() string {
	return fmt.Sprintf("%s: %q is not a known %s", ErrUnknownCategory, e.Value, e.Field)
}

func (e *CategoryError) Unwrap() error {
	return ErrUnknownCategory
}

// CodeError reports an out of range code and the field's domain size.
type CodeError struct {
	Field string
	Code  int
	Size  int
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%s: %d not in [0, %d) for %s", ErrInvalidCode, e.Code, e.Size, e.Field)
}

func (e *CodeError) Unwrap() error {
	return ErrInvalidCode
}

// Codec is an immutable bijection between a field's training-time classes
// and the range [0, len(classes)).
type Codec struct {
	field   string
	classes []string
	index   map[string]int
}

// New builds a codec whose code for classes[i] is i.
func New(field string, classes []string) (*Codec, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%s: %w", field, ErrEmptyDomain)
	}

	index := make(map[string]int, len(classes))
	for i, class := range classes {
		if _, dup := index[class]; dup {
			return nil, fmt.Errorf("%s: %w %q", field, ErrDuplicateClass, class)
		}
		index[class] = i
	}

	owned := make([]string, len(classes))
	copy(owned, classes)

	return &Codec{
		field:   field,
		classes: owned,
		index:   index,
	}, nil
}

func (c *Codec) Field() string {
	return c.field
}

func (c *Codec) Size() int {
	return len(c.classes)
}

func (c *Codec) Encode(value string) (int, error) {
	code, ok := c.index[value]
	if !ok {
		return 0, &CategoryError{Field: c.field, Value: value}
	}
	return code, nil
}

func (c *Codec) Decode(code int) (string, error) {
	if code < 0 || code >= len(c.classes) {
		return "", &CodeError{Field: c.field, Code: code, Size: len(c.classes)}
	}
	return c.classes[code], nil
}

// Contains reports whether value belongs to the domain.
func (c *Codec) Contains(value string) bool {
	_, ok := c.index[value]
	return ok
}

// Classes returns a copy of the domain in code order.
func (c *Codec) Classes() []string {
	out := make([]string, len(c.classes))
	copy(out, c.classes)
	return out
}
