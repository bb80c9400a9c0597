package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"perkplan/internal/render"
	"perkplan/internal/session"
)

// newGenerateCmd generates a plan and renders it
func newGenerateCmd() *cobra.Command {
	var (
		pf      planFlags
		format  string
		out     string
		save    bool
		compact bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a plan and print it",
		Long: `Generates a level-by-level plan from the catalog and selection.

Examples:
  perkplan generate
  perkplan generate --select Toughness:3:1 --select "Lone Wanderer:2:2" --to 30
  perkplan generate --format json --out plan.json --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(&pf)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Generate()
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)

			if format == "" {
				format = cfg.Output.Format
			}
			opts := s.RenderOptions()
			opts.Compact = opts.Compact || compact

			if err := writeOutput(cmd.OutOrStdout(), out, func(w io.Writer) error {
				return s.Render(w, format, opts, res.Plan)
			}); err != nil {
				return err
			}

			if save {
				id, err := s.Save()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved plan %s\n", id)
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", fmt.Sprintf("Output format: %s (default from config)", strings.Join(render.Names(), ", ")))
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "Record the plan in the history database")
	cmd.Flags().BoolVar(&compact, "compact", false, "Omit empty levels where the format supports it")
	return cmd
}

// newExportCmd writes the text report
func newExportCmd() *cobra.Command {
	var (
		pf   planFlags
		out  string
		save bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the plan as a text report",
		Long: `Generates the plan and writes the text report (stats distribution and
level table) to the configured output path, perk_plan_output.txt by default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(&pf)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Generate()
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)

			path, err := s.Export(out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported plan to %s\n", path)

			if save {
				id, err := s.Save()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved plan %s\n", id)
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination file (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "Record the plan in the history database")
	return cmd
}

// newPreviewCmd renders the plan for the terminal
func newPreviewCmd() *cobra.Command {
	var (
		pf     planFlags
		pretty bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the plan as a styled terminal table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(&pf)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.Generate()
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)
			return s.Render(cmd.OutOrStdout(), previewFormat(pretty), previewOptions(s, all), res.Plan)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Render markdown through glamour instead of a table")
	cmd.Flags().BoolVar(&all, "all", false, "Include empty levels")
	return cmd
}

func previewFormat(pretty bool) string {
	if pretty {
		return "pretty"
	}
	return "table"
}

// previewOptions hides empty levels unless all is set.
func previewOptions(s *session.Session, all bool) render.Options {
	opts := s.RenderOptions()
	opts.Compact = !all
	return opts
}

// writeOutput sends fn's output to path, or to stdout when path is empty.
func writeOutput(stdout io.Writer, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
