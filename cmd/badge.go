package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/pkg/badge"
)

func newBadgeCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "badge <version|status>",
		Short:     "Print the markdown badge for the version or the status",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"version", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := badge.ParseKind(args[0])
			if err != nil {
				return err
			}
			_, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}

			rn, err := badge.NewRenderer(st.cfg.Badge.Template, st.cfg.Badge.URL)
			if err != nil {
				return err
			}
			out, err := rn.Render(r, kind)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}
