package review

import (
	"github.com/bazelbuild/continuous-integration/bcrbot/internal/set"
)

// ModuleCoverage describes if a change of a module is approved by a
// maintainer of it.
type ModuleCoverage struct {
	Module  string
	Covered bool
	// CoveredBy is the maintainer that approved the change.
	CoveredBy string
	// Self is true if the change is covered because the pull request
	// author maintains the module.
	Self bool
}

// Coverage is the maintainer approval state of all modules changed by a
// pull request.
type Coverage struct {
	// Modules in ascending order of their names.
	Modules []*ModuleCoverage
}

// AllCovered returns true if the changes of all modules are approved.
// It is false when Coverage contains no modules.
func (c *Coverage) AllCovered() bool {
	if len(c.Modules) == 0 {
		return false
	}

	for _, m := range c.Modules {
		if !m.Covered {
			return false
		}
	}

	return true
}

// AnyCovered returns true if the change of at least one module is approved.
func (c *Coverage) AnyCovered() bool {
	for _, m := range c.Modules {
		if m.Covered {
			return true
		}
	}

	return false
}

// Uncovered returns the names of the modules whose changes are not
// approved.
func (c *Coverage) Uncovered() []string {
	var result []string

	for _, m := range c.Modules {
		if !m.Covered {
			result = append(result, m.Module)
		}
	}

	return result
}

// Evaluate determines for each module if one of its maintainers approved
// the change.
// When allowSelfApproval is true, a module is also covered if author is one
// of its maintainers.
// Modules without maintainers are never covered.
func Evaluate(
	modules set.Set[string],
	maintainers MaintainerMap,
	approvers set.Set[string],
	author string,
	allowSelfApproval bool,
) *Coverage {
	var result Coverage

	for _, module := range modules.Sorted() {
		mc := ModuleCoverage{Module: module}

		for _, m := range maintainers.MaintainersOf(module) {
			if approvers.Contains(m) {
				mc.Covered = true
				mc.CoveredBy = m
				break
			}
		}

		if !mc.Covered && allowSelfApproval && maintainers.Maintains(author, module) {
			mc.Covered = true
			mc.CoveredBy = author
			mc.Self = true
		}

		result.Modules = append(result.Modules, &mc)
	}

	return &result
}
