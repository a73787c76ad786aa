// Package rules defines the pluggable analysis rule contract and the
// registry the engine draws from. A rule bundles stable identity and
// severity metadata with one method that hooks its callbacks into the
// traversal dispatcher.
package rules

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// Rule is one analysis check. Implementations must be stateless: callbacks
// run concurrently across files after linking.
type Rule interface {
	ID() string
	Name() string
	Severity() findings.Severity
	Description() string

	// Example returns an illustrative code fragment, or "".
	Example() string

	// GasSavings estimates the saving for gas-severity rules, or "".
	GasSavings() string

	RegisterCallbacks(v *visitor.Visitor)
}

// Meta carries the static rule metadata. Rules embed it and implement only
// RegisterCallbacks.
type Meta struct {
	RuleID          string
	RuleName        string
	RuleSeverity    findings.Severity
	RuleDescription string
	RuleExample     string
	RuleGasSavings  string
}

func (m Meta) ID() string                   { return m.RuleID }
func (m Meta) Name() string                 { return m.RuleName }
func (m Meta) Severity() findings.Severity  { return m.RuleSeverity }
func (m Meta) Description() string          { return m.RuleDescription }
func (m Meta) Example() string              { return m.RuleExample }
func (m Meta) GasSavings() string           { return m.RuleGasSavings }
