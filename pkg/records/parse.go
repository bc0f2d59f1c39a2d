/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parse.go
Description: Decoding helpers for record collections. Accepts a bare JSON array of objects,
an API envelope of the form {"results": [...]}, or a single object. Also provides value
kind classification and text cell parsing shared by inference, coercion and tabular sources.
*/

package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Kind is the runtime shape of a raw value
type Kind int

const (
	KindMissing Kind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindCompound
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	default:
		return "compound"
	}
}

// KindOf classifies a raw value. Anything that is not a Go scalar is compound.
// Unsigned values beyond the int64 range are strings since no integer form can hold them.
func KindOf(v interface{}) Kind {
	switch x := v.(type) {
	case nil:
		return KindMissing
	case uint:
		if uint64(x) > math.MaxInt64 {
			return KindString
		}
		return KindInteger
	case uint64:
		if x > math.MaxInt64 {
			return KindString
		}
		return KindInteger
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return KindInteger
	case float32, float64:
		return KindFloat
	case bool:
		return KindBoolean
	case string:
		return KindString
	default:
		return KindCompound
	}
}

// FormatFloat prints a float with a decimal point for integral values (7.0) and
// switches to exponent form for very small or very large magnitudes. The text reads
// back as a float, both in Turtle and in JSON.
func FormatFloat(f float64) string {
	return formatFloat(f, 64)
}

func formatFloat(f float64, bitSize int) string {
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ParseJSON decodes a record collection from JSON
func ParseJSON(data []byte) (Dataset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty JSON document")
	}

	switch trimmed[0] {
	case '[':
		var ds Dataset
		if err := json.Unmarshal(trimmed, &ds); err != nil {
			return nil, fmt.Errorf("failed to parse record array: %w", err)
		}
		return ds.compact(), nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("failed to parse JSON object: %w", err)
		}
		if results, ok := envelope["results"]; ok {
			var ds Dataset
			if err := json.Unmarshal(results, &ds); err != nil {
				return nil, fmt.Errorf("failed to parse results array: %w", err)
			}
			return ds.compact(), nil
		}
		rec := NewRecord()
		if err := rec.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return Dataset{rec}, nil
	default:
		return nil, fmt.Errorf("expected JSON array or object, got %q", trimmed[0])
	}
}

// ReadJSON reads and decodes a record collection
func ReadJSON(r io.Reader) (Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	return ParseJSON(data)
}

// ParseScalar turns a text cell into a typed value. Empty cells are missing (nil).
func ParseScalar(text string) interface{} {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return text
}
