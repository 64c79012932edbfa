// Package llm provides the generative text collaborator: a prompt-in,
// raw-text-out completion service. Callers own parsing and fallback of the
// returned text; a failure here means the call itself failed, not that the
// output was malformed.
package llm

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// ErrGeneration marks a failed completion call. It is distinct from a
// malformed response, which is returned successfully and normalized by the
// caller.
var ErrGeneration = errors.New("text generation failed")

const systemPrompt = "You are a financial message parsing assistant. " +
	"Your task is to accurately convert MT messages to MX (ISO 20022) format " +
	"or extract useful attributes from MT messages. " +
	"Always return well-structured JSON responses when requested."

// Service completes a prompt into raw text
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type client struct {
	llmClient gollem.LLMClient
}

// New creates a Service backed by a gollem LLM client
func New(llmClient gollem.LLMClient) (Service, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &client{llmClient: llmClient}, nil
}

// Complete sends the prompt in a fresh session and returns the first text
// of the response. No retries: transient failures propagate to the caller.
func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return "", goerr.Wrap(ErrGeneration, "failed to create LLM session",
			goerr.V("cause", err.Error()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(ErrGeneration, "failed to generate content",
			goerr.V("cause", err.Error()))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.Wrap(ErrGeneration, "LLM returned empty response")
	}

	return resp.Texts[0], nil
}
