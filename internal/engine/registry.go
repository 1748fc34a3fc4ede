// Package engine is the pure maintenance due-evaluation core. It holds no
// I/O, no clock and no shared state; every function is deterministic in its
// inputs, so the trip trigger, the daily sweep and the display path all
// compute identical verdicts from identical data.
package engine

import "github.com/ridecare/ridecare/internal/models"

// Registry is a mutable, insertion-ordered set of maintenance rules keyed by
// rule id. Construct one per evaluation session; there is no package-level
// rule list.
type Registry struct {
	order []string
	rules map[string]models.MaintenanceRule
}

// NewRegistry creates a registry holding the given rules. Later duplicates of
// an id replace earlier ones without changing their position.
func NewRegistry(rules ...models.MaintenanceRule) *Registry {
	r := &Registry{rules: make(map[string]models.MaintenanceRule)}
	for _, rule := range rules {
		r.Add(rule)
	}
	return r
}

// DefaultRegistry creates a registry holding the stock rule set.
func DefaultRegistry() *Registry {
	return NewRegistry(models.DefaultRules()...)
}

// Add inserts a rule. Adding an id that is already present replaces the rule
// in place; adding a previously removed id appends it at the tail.
func (r *Registry) Add(rule models.MaintenanceRule) {
	if _, ok := r.rules[rule.ID]; !ok {
		r.order = append(r.order, rule.ID)
	}
	r.rules[rule.ID] = rule
}

// Remove deletes a rule by id and reports whether it was present. Removing an
// absent id is a no-op.
func (r *Registry) Remove(ruleID string) bool {
	if _, ok := r.rules[ruleID]; !ok {
		return false
	}
	delete(r.rules, ruleID)
	for i, id := range r.order {
		if id == ruleID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the rule for an id, if present.
func (r *Registry) Get(ruleID string) (models.MaintenanceRule, bool) {
	rule, ok := r.rules[ruleID]
	return rule, ok
}

// Rules returns a snapshot of all rules in insertion order.
func (r *Registry) Rules() []models.MaintenanceRule {
	out := make([]models.MaintenanceRule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rules[id])
	}
	return out
}

// Len returns the number of rules in the registry.
func (r *Registry) Len() int {
	return len(r.rules)
}
