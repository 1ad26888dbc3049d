package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/appversion/internal/gitctx"
	"github.com/fulmenhq/appversion/pkg/badge"
	"github.com/fulmenhq/appversion/pkg/logger"
	"github.com/fulmenhq/appversion/pkg/mutation"
	"github.com/fulmenhq/appversion/pkg/propagation"
	"github.com/fulmenhq/appversion/pkg/record"
	"github.com/fulmenhq/appversion/pkg/store"
)

func newUpdateCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <major|minor|patch|build|commit>",
		Short: "Bump a version component, the build counters or the commit",
		Long: `Update one part of the record.

  major|minor|patch  bump the component and reset everything below it,
                     then propagate the new version and refresh badges
  build              increment build.number and build.total, stamp build.date
  commit             record the short hash of HEAD (null outside a repository)`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"major", "minor", "patch", "build", "commit"},
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := mutation.ParseOperation(args[0])
			if err != nil {
				return err
			}
			e, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}

			in := mutation.Inputs{Now: time.Now(), DateLayout: st.cfg.DateLayout}
			if op == mutation.OpCommit {
				hash, gerr := gitctx.ShortHead(e.Root())
				switch {
				case gerr == nil:
					in.Commit, in.HasRepository = hash, true
				case errors.Is(gerr, gitctx.ErrNoRepository):
					logger.Debug("No repository at root", logger.String("root", e.Root()))
				default:
					return gerr
				}
			}

			res, err := mutation.Apply(r, op, in)
			if err != nil {
				return err
			}
			return st.commit(cmd.Context(), cmd.OutOrStdout(), e, r, res)
		},
	}
	cmd.Flags().String("date-layout", "", "Go time layout for build.date (default RFC3339)")
	return cmd
}

func newSetVersionCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "set-version <major.minor.patch>",
		Short: "Set the version explicitly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := mutation.SetVersionString(r, args[0])
			if err != nil {
				return err
			}
			return st.commit(cmd.Context(), cmd.OutOrStdout(), e, r, res)
		},
	}
}

func newSetStatusCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <stage[.number]>",
		Short: "Set the release status (stable, rc, beta, alpha)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, r, err := st.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := mutation.SetStatus(r, args[0], st.cfg.Status.Validate)
			if err != nil {
				return err
			}
			return st.commit(cmd.Context(), cmd.OutOrStdout(), e, r, res)
		},
	}
	cmd.Flags().Bool("validate-status", true, "Only accept the stages stable, rc, beta and alpha")
	return cmd
}

// commit persists a mutation result and runs its side effects: manifest
// propagation for version changes, badge refresh for version and status
// changes. Side-effect failures are logged and never undo the save.
func (st *cliState) commit(ctx context.Context, out io.Writer, e *store.Engine, before *record.Record, res mutation.Result) error {
	after := res.Record

	if st.dryRun {
		logger.Info("Record not written", logger.String("file", e.Path()))
	} else if err := e.Save(ctx, after); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, res.Message)

	if res.VersionChanged {
		if err := st.propagate(ctx, out, e.Root(), after); err != nil {
			return err
		}
		st.refreshBadges(e.Root(), before, after, badge.KindVersion)
	}
	if res.StatusChanged {
		st.refreshBadges(e.Root(), before, after, badge.KindStatus)
	}
	return nil
}

func (st *cliState) propagate(ctx context.Context, out io.Writer, root string, r *record.Record) error {
	p := propagation.NewPropagator(nil)
	result, err := p.Propagate(ctx, propagation.Options{
		Root:             root,
		Version:          r.VersionString(),
		Ignore:           r.Config.Ignore,
		DefaultIgnore:    st.cfg.Propagation.DefaultIgnore,
		Targets:          r.Config.JSON,
		DryRun:           st.dryRun,
		Workers:          st.cfg.Propagation.Workers,
		RespectGitignore: st.cfg.Propagation.RespectGitignore,
	})
	if err != nil {
		return fmt.Errorf("propagate version: %w", err)
	}
	if result.Skipped {
		return nil
	}

	verb := "Updated"
	if st.dryRun {
		verb = "Would update"
	}
	for _, c := range result.Changes {
		_, _ = fmt.Fprintf(out, "%s %s: %s -> %s\n", verb, c.File, c.OldVersion, c.NewVersion)
	}
	if len(result.Errors) > 0 {
		files := make([]string, 0, len(result.Errors))
		for _, fe := range result.Errors {
			files = append(files, fe.File)
		}
		logger.Warn("Some manifests were not updated", logger.String("files", strings.Join(files, ", ")))
	}
	logger.Debug("Propagation finished",
		logger.Int("scanned", result.Scanned),
		logger.Int("changed", len(result.Changes)),
		logger.Duration("duration", result.Duration))
	return nil
}

// refreshBadges swaps the badge rendered from before for the one rendered
// from after in every markdown document the record lists.
func (st *cliState) refreshBadges(root string, before, after *record.Record, kind badge.Kind) {
	if len(after.Config.Markdown) == 0 {
		return
	}
	rn, err := badge.NewRenderer(st.cfg.Badge.Template, st.cfg.Badge.URL)
	if err != nil {
		logger.Warn("Badge templates are invalid", logger.Err(err))
		return
	}
	oldMarkup, err := rn.Render(before, kind)
	if err != nil {
		logger.Warn("Failed to render badge", logger.Err(err))
		return
	}
	newMarkup, err := rn.Render(after, kind)
	if err != nil {
		logger.Warn("Failed to render badge", logger.Err(err))
		return
	}

	p := &badge.Patcher{Root: root, DryRun: st.dryRun}
	n := p.Update(after.Config.Markdown, newMarkup, oldMarkup)
	logger.Debug("Badges refreshed", logger.String("kind", string(kind)), logger.Int("documents", n))
}
