/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: schema.go
Description: Field type profiles produced by inference. A Schema keeps one profile per field
in the order fields were first seen in the dataset, which is also the order property
declarations are rendered in.
*/

package inference

import (
	"errors"
	"fmt"
)

// ErrEmptyField is matched by every EmptyFieldError
var ErrEmptyField = errors.New("no observed values")

// EmptyFieldError is returned when a field (or the whole dataset) has no observed values,
// so no datatype or confidence can be derived.
type EmptyFieldError struct {
	Field string // empty when the dataset itself has no fields
}

func (e *EmptyFieldError) Error() string {
	if e.Field == "" {
		return "dataset has no fields: no observed values"
	}
	return fmt.Sprintf("field %q: no observed values", e.Field)
}

// Unwrap lets errors.Is match ErrEmptyField
func (e *EmptyFieldError) Unwrap() error {
	return ErrEmptyField
}

// FieldProfile is the inferred type information for one field
type FieldProfile struct {
	Name       string           `json:"name" yaml:"name"`
	Datatype   Datatype         `json:"datatype" yaml:"datatype"`
	Counts     map[Datatype]int `json:"-" yaml:"-"`
	Observed   int              `json:"observed" yaml:"observed"`
	Confidence float64          `json:"confidence" yaml:"confidence"`
	Values     []interface{}    `json:"-" yaml:"-"`
}

// Count returns how many observed values classified as d
func (p *FieldProfile) Count(d Datatype) int {
	return p.Counts[d]
}

// ConfidenceRatio formats the confidence as matched/observed, e.g. "1/2"
func (p *FieldProfile) ConfidenceRatio() string {
	return fmt.Sprintf("%d/%d", p.Counts[p.Datatype], p.Observed)
}

// Schema is the ordered set of field profiles for a dataset
type Schema struct {
	fields []*FieldProfile
	index  map[string]int
}

// NewSchema builds a schema from profiles, keeping their order
func NewSchema(profiles ...*FieldProfile) *Schema {
	s := &Schema{index: make(map[string]int, len(profiles))}
	for _, p := range profiles {
		s.add(p)
	}
	return s
}

func (s *Schema) add(p *FieldProfile) {
	if i, ok := s.index[p.Name]; ok {
		s.fields[i] = p
		return
	}
	s.index[p.Name] = len(s.fields)
	s.fields = append(s.fields, p)
}

// Lookup returns the profile for a field
func (s *Schema) Lookup(name string) (*FieldProfile, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Profiles returns the profiles in field order
func (s *Schema) Profiles() []*FieldProfile {
	out := make([]*FieldProfile, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of fields
func (s *Schema) Len() int {
	return len(s.fields)
}
