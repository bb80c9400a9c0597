package planner

// Eligibility decides whether a player with stats qualifies for an entry
// carrying requirement. Implementations must be pure.
type Eligibility func(requirement map[string]int, stats Stats) bool

// AlwaysEligible accepts every entry. It is the default policy.
func AlwaysEligible(map[string]int, Stats) bool {
	return true
}

// MeetsRequirements accepts an entry when every requirement dimension is
// matched or exceeded by stats. Missing stats count as zero.
func MeetsRequirements(requirement map[string]int, stats Stats) bool {
	for dim, need := range requirement {
		if stats[dim] < need {
			return false
		}
	}
	return true
}

// PolicyNames lists the configurable policy names. The empty name selects
// the default policy.
var PolicyNames = []string{"always", "requirements", "strict"}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (Eligibility, bool) {
	switch name {
	case "", PolicyNames[0]:
		return AlwaysEligible, true
	case PolicyNames[1], PolicyNames[2]:
		return MeetsRequirements, true
	default:
		return nil, false
	}
}
