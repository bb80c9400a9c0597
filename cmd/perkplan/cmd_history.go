package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"perkplan/internal/config"
	"perkplan/internal/render"
	"perkplan/internal/store"
)

// openHistory opens the plan history without loading catalog or selection.
func openHistory() (*store.Store, error) {
	if !cfg.Store.Enabled {
		return nil, fmt.Errorf("plan history is disabled (store.enabled: false)")
	}
	return store.Open(config.Resolve(baseDir, cfg.Store.Path), cfg.Store.Driver)
}

// newHistoryCmd groups the plan history commands
func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved plans",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved plans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openHistory()
			if err != nil {
				return err
			}
			defer st.Close()

			plans, err := st.List(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No saved plans")
				return nil
			}
			fmt.Fprintf(out, "%-36s  %-19s  %-8s  %8s  %5s\n", "ID", "CREATED", "LEVELS", "ASSIGNED", "EMPTY")
			for _, p := range plans {
				fmt.Fprintf(out, "%-36s  %-19s  %-8s  %8d  %5d\n",
					p.ID, p.CreatedAt.Format("2006-01-02 15:04:05"), p.Range, p.Assigned, p.Empty)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of plans (0 for all)")
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var (
		format  string
		compact bool
	)
	cmd := &cobra.Command{
		Use:   "show [id|latest]",
		Short: "Render a saved plan",
		Long: `Renders a saved plan. The ID may be abbreviated to any unique prefix;
"latest" (the default) shows the most recent plan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openHistory()
			if err != nil {
				return err
			}
			defer st.Close()

			var rec *store.Record
			if len(args) == 0 || args[0] == "latest" {
				rec, err = st.Latest()
			} else {
				rec, err = st.LoadPlan(args[0])
			}
			if err != nil {
				return err
			}

			if format == "" {
				format = cfg.Output.Format
			}
			r, err := render.ByName(format, render.Options{Compact: compact, Style: cfg.Output.Style})
			if err != nil {
				return err
			}
			return r.Render(cmd.OutOrStdout(), render.Document{Title: rec.Title, Plan: rec.Plan, Stats: rec.Stats})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (default from config)")
	cmd.Flags().BoolVar(&compact, "compact", false, "Omit empty levels where the format supports it")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openHistory()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", args[0])
			return nil
		},
	}
}
