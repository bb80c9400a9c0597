package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"perkplan/internal/config"
	"perkplan/internal/logging"
)

var (
	// Global flags
	verbose       bool
	configPath    string
	workspace     string
	catalogPath   string
	selectionPath string

	// Loaded in PersistentPreRunE
	cfg     *config.Config
	baseDir string
)

// newRootCmd builds the command tree. Flags bind to the package-level vars
// above and are reset to their defaults on every call.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "perkplan",
		Short: "perkplan - greedy perk-rank level planner",
		Long: `perkplan assigns perk ranks to character levels.

Given a perk catalog and a selection of perks with a maximum rank and a
priority, it walks levels in ascending order and picks at most one rank per
level: the lowest priority value wins, then the lowest level gate, then the
lowest rank, then catalog order. Ranks unlock in sequence and never before
their level gate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: perkplan.yaml in the workspace root)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Base directory for relative paths (default: config file directory)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&selectionPath, "selection", "", "Selection file (overrides config)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	return rootCmd
}

// loadConfig resolves the config file and base directory and initializes logging.
func loadConfig() error {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	base := workspace
	if base == "" {
		base = filepath.Dir(path)
	}
	base, err = filepath.Abs(base)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}

	opts := logging.Options{
		Level:      loaded.Logging.Level,
		Format:     loaded.Logging.Format,
		File:       config.Resolve(base, loaded.Logging.File),
		Categories: loaded.Logging.Categories,
	}
	if err := logging.Initialize(opts, verbose); err != nil {
		return err
	}

	cfg = loaded
	baseDir = base
	logging.BootDebug("config %s, workspace %s", path, base)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
