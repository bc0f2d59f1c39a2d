/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: datatype.go
Description: Canonical datatypes and the candidate priority list used by the type inference
engine. Each datatype carries its short name and its ontology range. The candidate list is
an immutable value built once and passed into the engine; its order is both the membership
test order and the tie-break priority.
*/

package inference

import (
	"fmt"
	"strings"

	"github.com/kleascm/ontoforge/pkg/records"
)

// Datatype is a canonical field type
type Datatype int

const (
	Integer Datatype = iota
	Float
	Boolean
	String
)

// String returns the short datatype name
func (d Datatype) String() string {
	switch d {
	case Integer:
		return "int"
	case Float:
		return "float"
	case Boolean:
		return "bool"
	case String:
		return "str"
	default:
		return fmt.Sprintf("Datatype(%d)", int(d))
	}
}

// Range returns the ontology range identifier for the datatype
func (d Datatype) Range() string {
	switch d {
	case Integer:
		return "xsd:integer"
	case Float:
		return "xsd:float"
	case Boolean:
		return "xsd:boolean"
	default:
		return "xsd:string"
	}
}

// Valid reports whether d is one of the four canonical datatypes
func (d Datatype) Valid() bool {
	return d >= Integer && d <= String
}

// Matches reports whether a raw value is a native member of the datatype
func (d Datatype) Matches(v interface{}) bool {
	switch d {
	case Integer:
		return records.KindOf(v) == records.KindInteger
	case Float:
		return records.KindOf(v) == records.KindFloat
	case Boolean:
		return records.KindOf(v) == records.KindBoolean
	case String:
		return records.KindOf(v) == records.KindString
	}
	return false
}

// MarshalText encodes the datatype by name (used by YAML/JSON reports)
func (d Datatype) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid datatype %d", int(d))
	}
	return []byte(d.String()), nil
}

// ParseDatatype accepts short names ("int") as well as long ones ("integer", "xsd:integer")
func ParseDatatype(name string) (Datatype, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "xsd:")) {
	case "int", "integer":
		return Integer, nil
	case "float", "double":
		return Float, nil
	case "bool", "boolean":
		return Boolean, nil
	case "str", "string":
		return String, nil
	}
	return 0, fmt.Errorf("unknown datatype %q", name)
}

// Candidates is the ordered list of datatypes tested during classification.
// Earlier entries win ties. The zero value is not usable; build one with
// DefaultCandidates or NewCandidates.
type Candidates struct {
	order []Datatype
}

// DefaultCandidates returns Integer, Float, Boolean, String
func DefaultCandidates() Candidates {
	return Candidates{order: []Datatype{Integer, Float, Boolean, String}}
}

// NewCandidates validates and freezes a custom priority order.
// String must be present since it is the fallback for unmatched values.
func NewCandidates(order ...Datatype) (Candidates, error) {
	if len(order) == 0 {
		return Candidates{}, fmt.Errorf("candidate list must not be empty")
	}
	seen := make(map[Datatype]bool, len(order))
	for _, d := range order {
		if !d.Valid() {
			return Candidates{}, fmt.Errorf("invalid datatype %d in candidate list", int(d))
		}
		if seen[d] {
			return Candidates{}, fmt.Errorf("duplicate datatype %s in candidate list", d)
		}
		seen[d] = true
	}
	if !seen[String] {
		return Candidates{}, fmt.Errorf("candidate list must include %s as fallback", String)
	}
	frozen := make([]Datatype, len(order))
	copy(frozen, order)
	return Candidates{order: frozen}, nil
}

// ParseCandidates builds a candidate list from datatype names
func ParseCandidates(names []string) (Candidates, error) {
	order := make([]Datatype, 0, len(names))
	for _, name := range names {
		d, err := ParseDatatype(name)
		if err != nil {
			return Candidates{}, err
		}
		order = append(order, d)
	}
	return NewCandidates(order...)
}

// Order returns a copy of the priority order
func (c Candidates) Order() []Datatype {
	out := make([]Datatype, len(c.order))
	copy(out, c.order)
	return out
}

// Classify returns the first candidate the value is a member of, or String
func (c Candidates) Classify(v interface{}) Datatype {
	for _, d := range c.order {
		if d == String {
			continue
		}
		if d.Matches(v) {
			return d
		}
	}
	return String
}

// valid reports whether the list was built through a constructor
func (c Candidates) valid() bool {
	return len(c.order) > 0
}
