package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"perkplan/internal/logging"
	"perkplan/internal/render"
	"perkplan/internal/session"
	"perkplan/internal/watch"
)

// newWatchCmd regenerates the preview whenever the inputs change
func newWatchCmd() *cobra.Command {
	var (
		pf     planFlags
		pretty bool
		all    bool
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the plan whenever the catalog or selection changes",
		Long: `Watches the catalog and selection files and prints a fresh plan after
every settled change. Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(&pf)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			refresh := func(ctx context.Context, changed []string) error {
				return regenerate(s, out, cmd.ErrOrStderr(), previewFormat(pretty), previewOptions(s, all), save, changed)
			}

			w, err := watch.New([]string{s.CatalogPath(), s.SelectionPath()}, cfg.GetDebounce(), refresh)
			if err != nil {
				return err
			}

			// Print the current plan before waiting for changes.
			w.Trigger(ctx)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return w.Run(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				stats := w.GetStats()
				logging.Watch("shutting down after %d regenerations (%d errors)", stats.Regenerations, stats.Errors)
				return nil
			})
			return g.Wait()
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Render markdown through glamour instead of a table")
	cmd.Flags().BoolVar(&all, "all", false, "Include empty levels")
	cmd.Flags().BoolVar(&save, "save", false, "Record every regenerated plan in the history database")
	return cmd
}

// regenerate reloads the inputs and prints a new plan. Load or planning
// errors are printed and returned so the watcher counts them, but the
// previous inputs stay loaded.
func regenerate(s *session.Session, out, errOut io.Writer, format string, opts render.Options, save bool, changed []string) error {
	if len(changed) > 0 {
		if err := s.Reload(); err != nil {
			fmt.Fprintf(errOut, "reload failed: %v\n", err)
			return err
		}
	}
	res, err := s.Generate()
	if err != nil {
		fmt.Fprintf(errOut, "generate failed: %v\n", err)
		return err
	}
	printWarnings(errOut, res.Warnings)
	if err := s.Render(out, format, opts, res.Plan); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if save {
		id, err := s.Save()
		if err != nil {
			return err
		}
		fmt.Fprintf(errOut, "Saved plan %s\n", id)
	}
	return nil
}
