package cli

import (
	"github.com/spf13/cobra"

	"marklist/backend/internal/gateway"
	"marklist/backend/internal/student"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every student, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			services, err := gateway.NewServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer services.Close()

			marklists, err := services.Students.List(cmd.Context())
			if err != nil {
				return err
			}
			student.SortNewestFirst(marklists)

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), marklists)
			}
			return writeMarklistTable(cmd.OutOrStdout(), marklists, cfg.Subjects)
		},
	}

	return cmd
}
