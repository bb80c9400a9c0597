package main

import (
	"github.com/spf13/cobra"

	"perkplan/internal/session"
)

// planFlags are shared by every command that generates a plan.
type planFlags struct {
	selects []string
	stats   map[string]int
	from    int
	to      int
	strict  bool
	policy  string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.selects, "select", "s", nil, "Select a perk as NAME[:MAXRANK[:PRIORITY]] (repeatable)")
	cmd.Flags().StringToIntVar(&f.stats, "stat", nil, "Set a stat, e.g. --stat S=5,E=3")
	cmd.Flags().IntVar(&f.from, "from", 0, "First level to plan (default from config)")
	cmd.Flags().IntVar(&f.to, "to", 0, "Last level to plan (default from config)")
	cmd.Flags().BoolVar(&f.strict, "strict-requirements", false, "Only assign ranks whose stat requirements are met")
	cmd.Flags().StringVar(&f.policy, "policy", "", "Eligibility policy: always or requirements")
}

func (f *planFlags) overrides() session.Overrides {
	ov := session.Overrides{
		Catalog:   catalogPath,
		Selection: selectionPath,
		Select:    f.selects,
		Stats:     f.stats,
		From:      f.from,
		To:        f.to,
		Policy:    f.policy,
	}
	if f.strict {
		ov.Policy = "requirements"
	}
	return ov
}

// openSession loads the inputs for a planning command.
func openSession(f *planFlags) (*session.Session, error) {
	return session.New(cfg, baseDir, f.overrides())
}
