/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/pkg/buildinfo"
	"github.com/fulmenhq/appversion/pkg/record"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the apv version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if jsonOutput {
				versionInfo := map[string]interface{}{
					"version":      buildinfo.Version(),
					"recordSchema": record.CurrentSchema,
					"goVersion":    runtime.Version(),
					"platform":     runtime.GOOS,
					"arch":         runtime.GOARCH,
				}
				jsonData, err := json.MarshalIndent(versionInfo, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format JSON: %v", err)
				}
				_, _ = fmt.Fprintln(out, string(jsonData))
				return nil
			}

			_, _ = fmt.Fprintf(out, "apv %s\n", buildinfo.Version())
			_, _ = fmt.Fprintf(out, "Record schema: %s\n", record.CurrentSchema)
			_, _ = fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}
