package llm

import "context"

// Mock is a Service stub for tests. CompleteFn takes precedence; otherwise
// Responses are returned in order, repeating the last one when exhausted.
type Mock struct {
	CompleteFn func(ctx context.Context, prompt string) (string, error)
	Responses  []string
	Prompts    []string

	next int
}

var _ Service = &Mock{}

// Complete records the prompt and returns the configured response
func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, prompt)
	}

	if len(m.Responses) == 0 {
		return "{}", nil
	}
	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.next++
	return m.Responses[idx], nil
}
