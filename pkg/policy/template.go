package policy

import (
	"fmt"
	"strings"
	"time"
)

// Placeholder schema shared by all response templates. Each placeholder has
// a safe default so rendering with an empty fields map still produces a
// complete document.
var placeholderDefaults = map[string]string{
	"reference":   "Unknown",
	"recipient":   "Valued Correspondent",
	"amount":      "Unknown",
	"currency":    "USD",
	"beneficiary": "Unknown",
	"reason":      "Customer request",
}

// substitute replaces {placeholder} tokens with extracted field values,
// falling back to the schema defaults. Extra extracted fields are also
// substituted when the template carries a matching placeholder; fields
// without a placeholder are silently ignored.
func substitute(tmpl string, fields map[string]any) string {
	values := make(map[string]string, len(placeholderDefaults)+len(fields))
	for key, def := range placeholderDefaults {
		values[key] = def
	}
	values["date"] = time.Now().UTC().Format("2006-01-02")

	for key, v := range fields {
		if v == nil {
			continue
		}
		values[key] = stringify(v)
	}

	pairs := make([]string, 0, len(values)*2)
	for key, v := range values {
		pairs = append(pairs, "{"+key+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// JSON numbers decode as float64; render integral values plainly
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%g", s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
