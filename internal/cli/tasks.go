package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/sharpei/internal/api"
	"github.com/sandeepkv93/sharpei/internal/config"
	"github.com/sandeepkv93/sharpei/internal/dates"
	"github.com/sandeepkv93/sharpei/internal/logging"
	"github.com/sandeepkv93/sharpei/internal/model"
	"github.com/sandeepkv93/sharpei/internal/quickadd"
)

// newClient builds a store client for one-shot commands. Their logs go to
// stderr so stdout stays scriptable.
func newClient(cmd *cobra.Command, cfg config.Config) (*api.Client, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.StoreURL, cfg.RequestTimeout, api.WithLogger(logger)), nil
}

func addCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <quick-add line>",
		Short: "Add a task using the quick-add syntax",
		Long: `Add a task using the quick-add syntax.

Markers: !high / !low for priority, #tag for hashtags, >name for the
category and @today, @tomorrow, @+3d, @+2w, @monday or @2026-03-01 for the
due date. Everything else becomes the title.`,
		Example: `  sharpei add "Pay rent !h #bills @friday >Home"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			res := quickadd.Parse(strings.Join(args, " "))
			if res.Title == "" {
				return fmt.Errorf("task title is empty")
			}
			client, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}

			categoryID := ""
			if res.CategoryName != "" {
				cats, err := client.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				cat, ok := res.ResolveCategory(cats)
				if !ok {
					return fmt.Errorf("unknown category %q", res.CategoryName)
				}
				categoryID = cat.ID
			}

			created, err := client.CreateTask(cmd.Context(), res.Task(categoryID))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeTask(created))
			return nil
		},
	}
}

func describeTask(t model.Task) string {
	parts := []string{fmt.Sprintf("added %s [%s]", t.Title, t.Priority)}
	if t.DueDate != nil {
		parts = append(parts, "due "+dates.Format(*t.DueDate))
	}
	if t.Hashtags != "" {
		parts = append(parts, t.Hashtags)
	}
	return strings.Join(parts, " ")
}

func archiveCmd(flags *globalFlags) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			client, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}

			categoryID := ""
			if strings.TrimSpace(category) != "" {
				cats, err := client.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				cat, ok := model.FindCategoryByName(cats, category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				categoryID = cat.ID
			}

			n, err := client.ArchiveCompleted(cmd.Context(), categoryID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d completed tasks\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only archive tasks in this category")
	return cmd
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sharpei %s\n", version)
		},
	}
}
