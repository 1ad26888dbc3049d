package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/pkg/record"
)

func newComposeCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "compose <pattern>",
		Short: "Render a string from record fields",
		Long: `Render pattern, replacing each placeholder letter with a record field.
Any other character is printed as is.

  M  version.major     S  status.stage     n  build.number
  m  version.minor     s  status.number    t  build.total
  p  version.patch     c  commit           d  build.date

Example:
  apv compose M.m.p-S.s+n     # 1.4.0-beta.2+17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), record.Compose(r, args[0]))
			return nil
		},
	}
}
