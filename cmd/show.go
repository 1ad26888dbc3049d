package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/internal/gitctx"
	"github.com/fulmenhq/appversion/pkg/ascii"
	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/record"
)

const maxListWidth = 60

func newShowCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Summarize the record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonOutput, _ := cmd.Flags().GetBool("json")
			withGit, _ := cmd.Flags().GetBool("git")
			out := cmd.OutOrStdout()

			e, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := record.Serialize(r)
				if err != nil {
					return err
				}
				_, _ = out.Write(data)
				return nil
			}

			rows := showRows(r)
			if withGit {
				info, err := gitctx.Describe(e.Root())
				switch {
				case err == nil:
					rows = append(rows, gitRows(info)...)
				case errors.Is(err, gitctx.ErrNoRepository):
					rows = append(rows, ascii.Row{Key: "git", Value: "no repository"})
				default:
					logger.Warn("Failed to read repository state", logger.Err(err))
				}
			}
			_, _ = fmt.Fprint(out, ascii.Box(ascii.Table(rows)))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the record as stored")
	cmd.Flags().Bool("git", false, "Include branch and worktree state")
	return cmd
}

func showRows(r *record.Record) []ascii.Row {
	commit := r.CommitString()
	if commit == "" {
		commit = "-"
	}
	date := r.Build.Date
	if date == "" {
		date = "-"
	}
	return []ascii.Row{
		{Key: "version", Value: r.VersionString()},
		{Key: "status", Value: r.Status.String()},
		{Key: "build", Value: fmt.Sprintf("#%d (total %d)", r.Build.Number, r.Build.Total)},
		{Key: "build date", Value: date},
		{Key: "commit", Value: commit},
		{Key: "schema", Value: r.Config.SchemaVersion},
		{Key: "ignore", Value: listValue(r.Config.Ignore)},
		{Key: "markdown", Value: listValue(r.Config.Markdown)},
		{Key: "json", Value: listValue(r.Config.JSON)},
	}
}

func gitRows(info *gitctx.Info) []ascii.Row {
	branch := info.Branch
	if branch == "" {
		branch = "(detached)"
	}
	state := "clean"
	if info.Dirty() {
		state = "dirty (" + strconv.Itoa(info.ModifiedFiles) + " files)"
	}
	return []ascii.Row{
		{Key: "git head", Value: info.Head},
		{Key: "git branch", Value: branch},
		{Key: "worktree", Value: state},
	}
}

func listValue(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return ascii.Truncate(strings.Join(items, ", "), maxListWidth)
}
