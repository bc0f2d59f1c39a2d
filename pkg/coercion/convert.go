/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: convert.go
Description: Per-value conversion rules. Each canonical datatype has one converter that
either returns a native Go value (int64, float64, bool, string) or reports failure, in
which case the caller substitutes the recovery value.
*/

package coercion

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/records"
)

// Recovered is the value substituted when a conversion fails
const Recovered = ""

// Convert converts v into the native representation of d.
// The boolean result is false when v is not representable as d.
func Convert(v interface{}, d inference.Datatype) (interface{}, bool) {
	switch d {
	case inference.Integer:
		return toInteger(v)
	case inference.Float:
		return toFloat(v)
	case inference.Boolean:
		return toBoolean(v)
	case inference.String:
		return toString(v), true
	}
	return nil, false
}

// EscapeBackslashes doubles every backslash; the document format uses \ as escape
func EscapeBackslashes(s string) string {
	return strings.ReplaceAll(s, `\`, `\\`)
}

// FormatFloat prints a float with a decimal point for integral values (7.0) and
// switches to exponent form for very small or very large magnitudes.
func FormatFloat(f float64) string {
	return records.FormatFloat(f)
}

func toInteger(v interface{}) (interface{}, bool) {
	if i, ok := integerValue(v); ok {
		return i, true
	}
	switch x := v.(type) {
	case float32:
		return truncate(float64(x))
	case float64:
		return truncate(x)
	case bool:
		if x {
			return int64(1), true
		}
		return int64(0), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, false
		}
		return i, true
	}
	return nil, false
}

func toFloat(v interface{}) (interface{}, bool) {
	if i, ok := integerValue(v); ok {
		return float64(i), true
	}
	switch x := v.(type) {
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	case bool:
		if x {
			return 1.0, true
		}
		return 0.0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, false
		}
		return finite(f)
	}
	return nil, false
}

func toBoolean(v interface{}) (interface{}, bool) {
	if i, ok := integerValue(v); ok {
		return oneOrZero(float64(i))
	}
	switch x := v.(type) {
	case bool:
		return x, true
	case float32:
		return oneOrZero(float64(x))
	case float64:
		return oneOrZero(x)
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return nil, false
}

func toString(v interface{}) string {
	if i, ok := integerValue(v); ok {
		return strconv.FormatInt(i, 10)
	}
	switch x := v.(type) {
	case string:
		return x
	case float32:
		return FormatFloat(float64(x))
	case float64:
		return FormatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	// Compound values become opaque JSON text
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// integerValue widens every integer kind that fits in int64
func integerValue(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func truncate(f float64) (interface{}, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return nil, false
	}
	return int64(math.Trunc(f)), true
}

func finite(f float64) (interface{}, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func oneOrZero(f float64) (interface{}, bool) {
	switch f {
	case 1:
		return true, true
	case 0:
		return false, true
	}
	return nil, false
}
