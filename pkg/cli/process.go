package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"

	"github.com/payops-lab/mtnavigator/pkg/cli/config"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/repository/memory"
	"github.com/payops-lab/mtnavigator/pkg/service/classifier"
	"github.com/payops-lab/mtnavigator/pkg/service/llm"
	"github.com/payops-lab/mtnavigator/pkg/service/tabular"
	"github.com/payops-lab/mtnavigator/pkg/usecase"
	"github.com/payops-lab/mtnavigator/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// cmdProcess processes one message file (or a bulk CSV) and prints the
// result as JSON. Uses the in-memory repository, nothing is persisted.
func cmdProcess() *cli.Command {
	var input string
	var mode string
	var wireID string
	var bulk bool
	var openaiCfg config.OpenAI
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Input file path ('-' for stdin)",
			Value:       "-",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "Processing mode (convert or extract)",
			Value:       "convert",
			Sources:     cli.EnvVars("MTNAV_PROCESS_MODE"),
			Destination: &mode,
		},
		&cli.StringFlag{
			Name:        "message-id",
			Usage:       "External message identifier",
			Destination: &wireID,
		},
		&cli.BoolFlag{
			Name:        "bulk",
			Usage:       "Treat the input as a bulk CSV file",
			Destination: &bulk,
		},
	}
	flags = append(flags, openaiCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "process",
		Aliases: []string{"p"},
		Usage:   "Process a message file and print the result as JSON",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			llmClient, err := openaiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure OpenAI client")
			}
			llmSvc, err := llm.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to create LLM service")
			}

			table, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure policy table")
			}

			cls, err := classifier.New(llmSvc, table)
			if err != nil {
				return goerr.Wrap(err, "failed to create classifier")
			}

			uc := usecase.New(memory.New(), cls)
			processingMode := types.ProcessingMode(mode).Normalize()

			var output any
			if bulk {
				f, err := openInput(input)
				if err != nil {
					return err
				}
				defer safe.Close(ctx, f)

				rows, err := tabular.LoadCSV(f)
				if err != nil {
					return err
				}
				output, err = uc.ProcessBulk(ctx, rows, processingMode)
				if err != nil {
					return err
				}
			} else {
				content, err := readInput(input)
				if err != nil {
					return err
				}
				output, err = uc.ProcessMessage(ctx, content, processingMode, wireID)
				if err != nil {
					return err
				}
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(output); err != nil {
				return goerr.Wrap(err, "failed to encode result")
			}
			return nil
		},
	}
}

func openInput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	// #nosec G304 - path is provided by CLI argument
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open input file", goerr.V("path", path))
	}
	return f, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}
	// #nosec G304 - path is provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read input file", goerr.V("path", path))
	}
	return string(data), nil
}
