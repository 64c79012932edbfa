package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/payops-lab/mtnavigator/pkg/cli/config"
	httpctrl "github.com/payops-lab/mtnavigator/pkg/controller/http"
	"github.com/payops-lab/mtnavigator/pkg/service/classifier"
	"github.com/payops-lab/mtnavigator/pkg/service/llm"
	"github.com/payops-lab/mtnavigator/pkg/usecase"
	"github.com/payops-lab/mtnavigator/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var bulkLimit int
	var repoCfg config.Repository
	var openaiCfg config.OpenAI
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MTNAV_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "bulk-limit",
			Usage:       "Maximum number of concurrently processed bulk rows",
			Value:       4,
			Sources:     cli.EnvVars("MTNAV_BULK_LIMIT"),
			Destination: &bulkLimit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, openaiCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

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

			uc := usecase.New(repo, cls, usecase.WithBulkLimit(bulkLimit))

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
