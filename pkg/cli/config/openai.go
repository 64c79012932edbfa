package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// OpenAI holds configuration for the OpenAI LLM client
type OpenAI struct {
	APIKey string `masq:"secret"`
	model  string
}

// Flags returns CLI flags for OpenAI configuration
func (o *OpenAI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("MTNAV_OPENAI_API_KEY", "OPENAI_API_KEY"),
			Destination: &o.APIKey,
		},
		&cli.StringFlag{
			Name:        "openai-model",
			Usage:       "OpenAI model name",
			Value:       "gpt-4o",
			Sources:     cli.EnvVars("MTNAV_OPENAI_MODEL"),
			Destination: &o.model,
		},
	}
}

// LogAttrs returns log attributes for the OpenAI configuration. The API key
// itself is redacted by the logging layer.
func (o *OpenAI) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Bool("api_key_set", o.APIKey != ""),
		slog.String("model", o.model),
	}
}

// Configure creates a new OpenAI LLM client from the configured flags
func (o *OpenAI) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if o.APIKey == "" {
		return nil, goerr.New("openai-api-key is required")
	}

	client, err := openai.New(ctx, o.APIKey, openai.WithModel(o.model))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create OpenAI client")
	}

	return client, nil
}
