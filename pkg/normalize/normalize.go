// Package normalize turns raw generative-model text into structured values.
//
// Generative collaborators are asked for JSON but frequently return prose
// around it, fenced code blocks, or garbage. Normalize is a total function:
// it never fails, it degrades through a deterministic fallback chain and
// tags each result with its provenance.
package normalize

import "encoding/json"

// Shape is the structured shape a caller expects from the raw text
type Shape int

const (
	// Object expects a single JSON object
	Object Shape = iota
	// List expects a JSON array; non-array values are coerced into a
	// single-element list
	List
)

// Source records how the value of a Result was obtained
type Source int

const (
	// StrictParsed means the entire text parsed as valid JSON
	StrictParsed Source = iota
	// ExtractedFromText means a JSON blob embedded in prose was parsed
	ExtractedFromText
	// Fallback means parsing failed entirely and the caller-supplied
	// default was used
	Fallback
)

// Result is a normalized value with its provenance
type Result struct {
	Value  any
	Source Source
}

// Fallback reports whether the value is a caller-supplied default
func (r Result) Fallback() bool {
	return r.Source == Fallback
}

// Normalize parses raw text into the expected shape. It tries, in order:
// strict parse of the whole text, parse of the outermost JSON blob found in
// the text, and finally the caller-supplied default producer. defaults must
// not be nil and must be a pure function of static context.
func Normalize(raw string, shape Shape, defaults func() any) Result {
	if v, ok := parseShaped(raw, shape); ok {
		return Result{Value: v, Source: StrictParsed}
	}

	if blob, ok := extractBlob(raw, shape); ok {
		if v, ok := parseShaped(blob, shape); ok {
			return Result{Value: v, Source: ExtractedFromText}
		}
	}

	return Result{Value: defaults(), Source: Fallback}
}

// AsObject returns the result value as a map, or nil if it is not one
func (r Result) AsObject() map[string]any {
	obj, _ := r.Value.(map[string]any)
	return obj
}

// AsList returns the result value as a slice, or nil if it is not one
func (r Result) AsList() []any {
	list, _ := r.Value.([]any)
	return list
}

func parseShaped(text string, shape Shape) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}

	switch shape {
	case Object:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		return obj, true
	case List:
		if list, ok := v.([]any); ok {
			return list, true
		}
		if v == nil {
			return nil, false
		}
		// Mirror the coercion the callers rely on: a single suggestion
		// returned bare is still one suggestion.
		return []any{v}, true
	default:
		return nil, false
	}
}

// extractBlob scans for the outermost JSON delimiters of the expected shape:
// first opening bracket through last matching closing bracket.
func extractBlob(raw string, shape Shape) (string, bool) {
	opening, closing := byte('{'), byte('}')
	if shape == List {
		opening, closing = '[', ']'
	}

	start := -1
	end := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == opening {
			start = i
			break
		}
	}
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i] == closing {
			end = i
			break
		}
	}

	if start < 0 || end < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
