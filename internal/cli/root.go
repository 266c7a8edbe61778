// Package cli wires configuration, logging and the store into the sharpei
// commands.
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/sharpei/internal/api"
	"github.com/sandeepkv93/sharpei/internal/config"
	"github.com/sandeepkv93/sharpei/internal/logging"
	"github.com/sandeepkv93/sharpei/internal/scheduler"
	"github.com/sandeepkv93/sharpei/internal/update"
)

// globalFlags are shared by every command. Empty values leave the config
// file and environment in charge.
type globalFlags struct {
	configPath string
	storeURL   string
	logFile    string
	logLevel   string
	stateFile  string
}

// Execute runs the root command and reports errors on stderr.
func Execute(version string) error {
	root := NewRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "sharpei",
		Short: "Keyboard-driven task list with priorities, subtasks and quick add",
		Long: `sharpei is a terminal client for a prioritised task list.

Run it without arguments to open the task board, use "sharpei serve" to
host the bundled SQLite-backed task store, or "sharpei mcp" to hand the
store to an MCP client.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoard(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultPath(), "config file")
	pf.StringVar(&flags.storeURL, "store-url", "", "task store base URL")
	pf.StringVar(&flags.logFile, "log-file", "", "log file (the board owns the terminal)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&flags.stateFile, "state-file", "", "file that remembers expanded tasks and filters")

	root.AddCommand(serveCmd(flags))
	root.AddCommand(addCmd(flags))
	root.AddCommand(archiveCmd(flags))
	root.AddCommand(mcpCmd(flags, version))
	root.AddCommand(versionCmd(version))
	return root
}

// load resolves the config file and environment, then applies any flag the
// user set explicitly.
func (f *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	set := cmd.Flags()
	if set.Changed("store-url") {
		cfg.StoreURL = f.storeURL
	}
	if set.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if set.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set.Changed("state-file") {
		cfg.StateFile = f.stateFile
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runBoard(cmd *cobra.Command, flags *globalFlags) error {
	cfg, err := flags.load(cmd)
	if err != nil {
		return err
	}
	logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	due := scheduler.NewEngine(64)
	due.Start()
	defer due.Stop()

	client := api.NewClient(cfg.StoreURL, cfg.RequestTimeout, api.WithLogger(logger))
	model := update.NewModel(client, update.Options{
		Logger:       logger,
		ErrorDisplay: cfg.ErrorDisplay,
		StateFile:    cfg.StateFile,
		Due:          due,
	})
	logger.Info("starting board", "store", cfg.StoreURL)

	program := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("sharpei failed: %w", err)
	}
	return nil
}
