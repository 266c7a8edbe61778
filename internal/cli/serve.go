package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/sharpei/internal/logging"
	"github.com/sandeepkv93/sharpei/internal/server"
	"github.com/sandeepkv93/sharpei/internal/storage"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr   string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task store over HTTP",
		Long: `Serve the task store over HTTP, backed by a SQLite database.

Examples:
  sharpei serve
  sharpei serve --addr :9000 --db ~/tasks.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			repo, err := storage.OpenSQLite(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
			}
			defer repo.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("serving task store", "db", cfg.DBPath)
			return server.New(repo, logger).ListenAndServe(ctx, cfg.ListenAddr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	return cmd
}
