/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: literal.go
Description: Literal and local name formatting for the ontology document.
*/

package ontology

import (
	"strconv"
	"strings"

	"github.com/kleascm/ontoforge/pkg/coercion"
	"github.com/kleascm/ontoforge/pkg/inference"
)

// Literal formats a coerced value of datatype d. The boolean result is false when the
// value is the recovery value (or cannot be represented) and must be omitted.
func Literal(v interface{}, d inference.Datatype) (string, bool) {
	if s, ok := v.(string); ok && s == coercion.Recovered {
		return "", false
	}
	native, ok := coercion.Convert(v, d)
	if !ok {
		return "", false
	}
	switch x := native.(type) {
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		return coercion.FormatFloat(x), true
	case bool:
		return strconv.FormatBool(x), true
	case string:
		return StringLiteral(x), true
	}
	return "", false
}

// StringLiteral quotes s, switching to the long form when it spans lines or holds quotes.
// The text is expected to be backslash-escaped already.
func StringLiteral(s string) string {
	if strings.ContainsAny(s, "\n\r\"") {
		return `"""` + strings.ReplaceAll(s, `"`, `\"`) + `"""`
	}
	return `"` + s + `"`
}

// LocalName percent-encodes every byte outside [A-Za-z0-9_-], and a leading '-'
// since a prefixed name cannot start with one
func LocalName(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) && !(i == 0 && c == '-') {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte("0123456789ABCDEF"[c>>4])
		b.WriteByte("0123456789ABCDEF"[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
