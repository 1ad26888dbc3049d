package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/internal/gitctx"
	"github.com/fulmenhq/appversion/pkg/logger"
)

func newTagCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "tag",
		Short: "Create a lightweight git tag vMAJOR.MINOR.PATCH at HEAD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}
			name := gitctx.TagName(r.VersionString())

			if st.dryRun {
				logger.Info("Would create tag", logger.String("tag", name))
				return nil
			}
			if err := gitctx.AddTag(e.Root(), name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added tag %s\n", name)
			return nil
		},
	}
}
