package codec

import (
	"fmt"
	"sort"
)

// Set holds one codec per field. It is read-only once built.
type Set struct {
	codecs map[string]*Codec
}

// NewSet builds a codec for every entry of domains.
func NewSet(domains map[string][]string) (*Set, error) {
	codecs := make(map[string]*Codec, len(domains))
	for field, classes := range domains {
		c, err := New(field, classes)
		if err != nil {
			return nil, err
		}
		codecs[field] = c
	}
	return &Set{codecs: codecs}, nil
}

func (s *Set) Codec(field string) (*Codec, error) {
	c, ok := s.codecs[field]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownField, field)
	}
	return c, nil
}

func (s *Set) Has(field string) bool {
	_, ok := s.codecs[field]
	return ok
}

func (s *Set) Encode(field, value string) (int, error) {
	c, err := s.Codec(field)
	if err != nil {
		return 0, err
	}
	return c.Encode(value)
}

func (s *Set) Decode(field string, code int) (string, error) {
	c, err := s.Codec(field)
	if err != nil {
		return "", err
	}
	return c.Decode(code)
}

func (s *Set) Classes(field string) ([]string, error) {
	c, err := s.Codec(field)
	if err != nil {
		return nil, err
	}
	return c.Classes(), nil
}

// Fields returns the field names in sorted order.
func (s *Set) Fields() []string {
	fields := make([]string, 0, len(s.codecs))
	for f := range s.codecs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
