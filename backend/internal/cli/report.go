package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"marklist/backend/internal/gateway"
	"marklist/backend/internal/report"
)

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report <student-id>",
		Short: "Write a student's PDF report card",
		Args:  cobra.ExactArgs(1),
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

			m, err := services.Students.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output == "" {
				output = report.Filename(m)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()

			if err := report.Render(f, m, cfg.Subjects, time.Now()); err != nil {
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to <reg>_<name>_report.pdf)")
	return cmd
}
