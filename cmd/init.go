package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/pkg/logger"
)

func newInitCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the record from the default template",
		Long: `Create appversion.json in the project root with version 0.1.0, status
stable, zeroed build counters, no commit and an empty configuration.
An existing record is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := st.engine()
			if err != nil {
				return err
			}
			if st.dryRun {
				if e.Exists() {
					logger.Warn("Record already exists", logger.String("file", e.Path()))
				}
				logger.Info("Would create record", logger.String("file", e.Path()))
				return nil
			}

			r, err := e.Init(cmd.Context(), nil)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (version %s)\n", e.Path(), r.VersionString())
			return nil
		},
	}
}
