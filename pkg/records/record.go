/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: record.go
Description: Record and Dataset model for ontoforge. A Record is an ordered mapping from
field name to a loosely typed value; a Dataset is the ordered sequence of records that
inference, coercion and rendering operate on. Field order is insertion order and survives
JSON decoding and encoding so rendered output is reproducible.
*/

package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Record is an ordered field -> value mapping. Field names are unique within a record.
type Record struct {
	fields []string
	values map[string]interface{}
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]interface{})}
}

// Set stores a value. New fields are appended; existing fields keep their position.
func (r *Record) Set(field string, value interface{}) *Record {
	if r.values == nil {
		r.values = make(map[string]interface{})
	}
	if _, exists := r.values[field]; !exists {
		r.fields = append(r.fields, field)
	}
	r.values[field] = value
	return r
}

// Get returns the value stored for field and whether the field is present
func (r *Record) Get(field string) (interface{}, bool) {
	v, ok := r.values[field]
	return v, ok
}

// Has reports whether the field is present (a nil value still counts as present)
func (r *Record) Has(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Delete removes a field, preserving the order of the remaining ones
func (r *Record) Delete(field string) {
	if _, ok := r.values[field]; !ok {
		return
	}
	delete(r.values, field)
	for i, f := range r.fields {
		if f == field {
			r.fields = append(r.fields[:i], r.fields[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in insertion order
func (r *Record) Fields() []string {
	out := make([]string, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields
func (r *Record) Len() int {
	return len(r.fields)
}

// Clone copies the record structure. Compound values are shared, not deep-copied.
func (r *Record) Clone() *Record {
	c := &Record{
		fields: make([]string, len(r.fields)),
		values: make(map[string]interface{}, len(r.values)),
	}
	copy(c.fields, r.fields)
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON encodes the record as a JSON object in field order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		val, err := encodeValue(r.values[field])
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", field, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeValue keeps floats in float form so that 7.0 does not decode back as an integer
func encodeValue(v interface{}) ([]byte, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("unsupported float value %v", x)
		}
		return []byte(formatFloat(x, 64)), nil
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("unsupported float value %v", x)
		}
		return []byte(formatFloat(f, 32)), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document.
// Integers become int64, other numbers float64, nested values stay compound.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object, got %v", tok)
	}

	r.fields = nil
	r.values = make(map[string]interface{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in record", tok)
		}
		var raw interface{}
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode field %q: %w", key, err)
		}
		r.Set(key, normalize(raw))
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// normalize converts json.Number into int64 or float64
func normalize(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return s
}

// Dataset is the ordered sequence of records inference runs over
type Dataset []*Record

// Fields returns every field name in the dataset in first-seen order
func (d Dataset) Fields() []string {
	seen := make(map[string]struct{})
	var fields []string
	for _, rec := range d {
		for _, f := range rec.fields {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			fields = append(fields, f)
		}
	}
	return fields
}

// Clone copies every record so the copy can be coerced without touching the original
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for i, rec := range d {
		out[i] = rec.Clone()
	}
	return out
}

// compact drops nil records produced by JSON null array elements
func (d Dataset) compact() Dataset {
	out := d[:0]
	for _, rec := range d {
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}
