package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"taskhub/pkg/di"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables or indexes for the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *di.Container) error {
				if err := c.Migrate(cmd.Context()); err != nil {
					return err
				}
				result := map[string]string{"store": c.Config.Database.Driver, "status": "migrated"}
				return render(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) {
					fmt.Fprintf(w, "%s schema is up to date\n", c.Config.Database.Driver)
				})
			})
		},
	}
}

func newReconcileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair drift between users' pending tasks and task assignments",
		Long: `Scan every user and task and repair the relationship between them.

Tasks pointing at missing users are unassigned, stale assignee names are
refreshed and pending task lists are rebuilt from the task side. Running
it twice in a row repairs nothing the second time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *di.Container) error {
				report, err := c.NewReconcileService().Reconcile(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.Format, report, func(w io.Writer) {
					fmt.Fprintf(w, "scanned %d users and %d tasks in %s\n",
						report.UsersScanned, report.TasksScanned, report.Duration)
					fmt.Fprintf(w, "  tasks unassigned:  %d\n", report.TasksUnassigned)
					fmt.Fprintf(w, "  task names fixed:  %d\n", report.TaskNamesFixed)
					fmt.Fprintf(w, "  users rewritten:   %d\n", report.UsersRewritten)
				})
			})
		},
	}
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of users and tasks to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *di.Container) error {
				result, err := c.NewExportService().Export(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.Format, result, func(w io.Writer) {
					fmt.Fprintf(w, "exported %d users and %d tasks to %s (%s)\n",
						result.Users, result.Tasks, result.Prefix, result.Provider)
					for _, obj := range result.Objects {
						fmt.Fprintf(w, "  %s\n", obj)
					}
				})
			})
		},
	}
}
