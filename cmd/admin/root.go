package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taskhub/pkg/di"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
}

var validFormats = []string{"text", "json"}

// NewRootCommand creates the taskhub-admin command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "taskhub-admin",
		Short: "Maintenance commands for the TaskHub store",
		Long: `Maintenance commands for the TaskHub store.

Every command reads the same environment (or .env file) as the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newReconcileCommand(opts))
	cmd.AddCommand(newExportCommand(opts))

	return cmd
}

// withContainer runs fn against a container holding only the store layer
func withContainer(fn func(c *di.Container) error) error {
	container := di.NewContainer()
	if err := container.InitializeCore(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer container.Cleanup()

	return fn(container)
}

func render(w io.Writer, format string, v any, text func(w io.Writer)) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
