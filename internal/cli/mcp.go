package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/sharpei/internal/api"
	"github.com/sandeepkv93/sharpei/internal/logging"
	"github.com/sandeepkv93/sharpei/internal/mcp"
)

func mcpCmd(flags *globalFlags, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the task store to MCP clients over stdio",
		Long: `Run an MCP server on stdin/stdout that lets assistants list, create, edit,
complete, delete and archive tasks in the configured store.

Logs go to stderr; stdout carries only protocol messages.`,
		Example: `  sharpei mcp --store-url http://127.0.0.1:8080`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			client := api.NewClient(cfg.StoreURL, cfg.RequestTimeout, api.WithLogger(logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = mcp.NewServer(client, version, logger).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
