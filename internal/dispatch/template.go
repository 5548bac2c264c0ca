// ABOUTME: Literal {field} template expansion over contact records
// ABOUTME: Case-insensitive field match; unmatched placeholders are removed

package dispatch

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{[^{}]+\}`)

// Expand substitutes every {field} placeholder with the matching record
// value, case-insensitively, and removes placeholders with no matching
// field. It is literal string replacement, not templating: no conditionals
// and no escaping of braces in data.
func Expand(template string, record map[string]any) string {
	fields := make(map[string]string, len(record))
	for k, v := range record {
		fields[strings.ToLower(k)] = fieldString(v)
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(ph string) string {
		name := strings.ToLower(strings.TrimSpace(ph[1 : len(ph)-1]))
		return fields[name]
	})
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
