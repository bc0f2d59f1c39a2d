/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: coercion.go
Description: Value coercion engine. Rewrites every present value of every record into its
field's canonical datatype, substituting the empty string when conversion fails and
counting those recoveries per field. String values are backslash-escaped after conversion.
Null values are treated as missing and removed from the record.
*/

package coercion

import (
	"fmt"

	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/records"
)

// UnknownFieldError means a record carries a field the schema has no profile for,
// i.e. the schema was not inferred from this dataset.
type UnknownFieldError struct {
	Record int
	Field  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("record %d: field %q is not in the schema", e.Record, e.Field)
}

// Report summarises one coercion pass
type Report struct {
	order      []string
	recoveries map[string]int
	Converted  int `json:"converted" yaml:"converted"`
	Missing    int `json:"missing" yaml:"missing"`
}

func newReport(schema *inference.Schema) *Report {
	r := &Report{recoveries: make(map[string]int, schema.Len())}
	for _, p := range schema.Profiles() {
		r.order = append(r.order, p.Name)
		r.recoveries[p.Name] = 0
	}
	return r
}

// Recoveries returns how many values of field were replaced by the recovery value
func (r *Report) Recoveries(field string) int {
	return r.recoveries[field]
}

// Total returns the number of recovered values across all fields
func (r *Report) Total() int {
	total := 0
	for _, n := range r.recoveries {
		total += n
	}
	return total
}

// FieldsWithRecoveries lists, in schema order, the fields that had at least one recovery
func (r *Report) FieldsWithRecoveries() []string {
	var out []string
	for _, f := range r.order {
		if r.recoveries[f] > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Apply coerces the dataset in place against the schema.
// The dataset is validated first, so an UnknownFieldError leaves it untouched.
func Apply(ds records.Dataset, schema *inference.Schema) (*Report, error) {
	if schema == nil {
		return nil, fmt.Errorf("coercion requires a schema")
	}
	for i, rec := range ds {
		for _, field := range rec.Fields() {
			if _, ok := schema.Lookup(field); !ok {
				return nil, &UnknownFieldError{Record: i, Field: field}
			}
		}
	}

	report := newReport(schema)
	for _, rec := range ds {
		for _, field := range rec.Fields() {
			raw, _ := rec.Get(field)
			if raw == nil {
				rec.Delete(field)
				report.Missing++
				continue
			}

			profile, _ := schema.Lookup(field)
			value, ok := Convert(raw, profile.Datatype)
			if !ok {
				value = Recovered
				report.recoveries[field]++
			} else {
				report.Converted++
			}

			if s, isString := value.(string); isString && profile.Datatype == inference.String {
				value = EscapeBackslashes(s)
			}
			rec.Set(field, value)
		}
	}
	return report, nil
}
