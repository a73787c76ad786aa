package rules

import (
	"sort"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// Registry indexes rules by id and severity. A severity floor set at
// construction filters rules during registration, so disabled severities
// never register callbacks at all.
type Registry struct {
	byID       map[string]Rule
	bySeverity map[findings.Severity][]Rule
	ordered    []Rule
	floor      findings.Severity
}

// NewRegistry creates a registry accepting rules at or above floor.
func NewRegistry(floor findings.Severity) *Registry {
	return &Registry{
		byID:       make(map[string]Rule),
		bySeverity: make(map[findings.Severity][]Rule),
		floor:      floor,
	}
}

// Register adds a rule. Rules below the severity floor are silently skipped;
// a duplicate id is a configuration fault.
func (r *Registry) Register(rule Rule) error {
	if rule.Severity() < r.floor {
		return nil
	}
	if _, exists := r.byID[rule.ID()]; exists {
		return errors.Newf(errors.CodeValidationError, "duplicate rule id %s", rule.ID())
	}
	r.byID[rule.ID()] = rule
	r.bySeverity[rule.Severity()] = append(r.bySeverity[rule.Severity()], rule)
	r.ordered = append(r.ordered, rule)
	return nil
}

// Get returns the rule with the given id.
func (r *Registry) Get(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// BySeverity returns the registered rules of one severity, in registration
// order.
func (r *Registry) BySeverity(sev findings.Severity) []Rule {
	return r.bySeverity[sev]
}

// All returns every registered rule sorted by severity (highest first) then
// id, the order rule listings use.
func (r *Registry) All() []Rule {
	out := make([]Rule, len(r.ordered))
	copy(out, r.ordered)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity() != out[j].Severity() {
			return out[i].Severity() > out[j].Severity()
		}
		return out[i].ID() < out[j].ID()
	})
	return out
}

func (r *Registry) Len() int { return len(r.ordered) }

// RegisterAllCallbacks hooks every registered rule into the visitor.
func (r *Registry) RegisterAllCallbacks(v *visitor.Visitor) {
	for _, rule := range r.ordered {
		rule.RegisterCallbacks(v)
	}
}
