package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"perkplan/internal/catalog"
	"perkplan/internal/config"
)

// newCatalogCmd lists catalog items grouped by requirement dimension
func newCatalogCmd() *cobra.Command {
	var flat bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List catalog perks grouped by requirement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.Catalog.Path
			if catalogPath != "" {
				path = catalogPath
			}
			path = config.Resolve(baseDir, path)

			var opts []catalog.Option
			if cfg.Catalog.AllowDuplicates {
				opts = append(opts, catalog.AllowDuplicates())
			}
			cat, err := catalog.Load(path, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flat {
				for _, item := range cat.Items() {
					var levels []string
					for _, e := range cat.Ranks(item) {
						levels = append(levels, strconv.Itoa(e.MinSlot))
					}
					fmt.Fprintf(out, "%-24s ranks 1-%d  levels %s\n", item, cat.MaxRank(item), strings.Join(levels, ","))
				}
				return nil
			}

			grouped := make(map[string]bool)
			for _, g := range cat.GroupByDimension() {
				fmt.Fprintf(out, "%s\n", g.Dimension)
				for _, it := range g.Items {
					grouped[it.Item] = true
					fmt.Fprintf(out, "  %-24s %s>=%-3d ranks 1-%d\n", it.Item, g.Dimension, it.Threshold, cat.MaxRank(it.Item))
				}
			}

			var other []string
			for _, item := range cat.Items() {
				if !grouped[item] {
					other = append(other, item)
				}
			}
			if len(other) > 0 {
				fmt.Fprintln(out, "(no requirement)")
				for _, item := range other {
					fmt.Fprintf(out, "  %-24s ranks 1-%d\n", item, cat.MaxRank(item))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "List items in catalog order without grouping")
	return cmd
}

// newValidateCmd checks the selection against the catalog without planning
func newValidateCmd() *cobra.Command {
	var pf planFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the selection against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(&pf)
			if err != nil {
				return err
			}
			defer s.Close()

			warnings, err := s.Validate()
			if err != nil {
				return err
			}
			printWarnings(cmd.ErrOrStderr(), warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "Selection OK: %d perks, %d catalog entries, levels %s\n",
				s.Selection().Len(), s.Catalog().Len(), s.Slots())
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}
