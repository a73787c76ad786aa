package builtin

import (
	"strings"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// FloatingPragma flags version pragmas that accept a range of compilers.
type FloatingPragma struct{}

func (*FloatingPragma) ID() string   { return "floating-pragma" }
func (*FloatingPragma) Name() string { return "Floating compiler version pragma" }

func (*FloatingPragma) Severity() findings.Severity { return findings.SeverityLow }

func (*FloatingPragma) Description() string {
	return "A floating pragma (`^`, `>=`, `<`) lets the contract compile under versions it " +
		"was never tested with. Deployed code should pin one exact compiler version."
}

func (*FloatingPragma) Example() string {
	return "```solidity\n" +
		"pragma solidity ^0.8.20; // floating\n" +
		"pragma solidity 0.8.20;  // pinned\n" +
		"```"
}

func (*FloatingPragma) GasSavings() string { return "" }

func (r *FloatingPragma) RegisterCallbacks(v *visitor.Visitor) {
	v.OnUnitPart(func(part ast.UnitPart, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		pragma, ok := part.(*ast.PragmaDirective)
		if !ok || pragma.Name != "solidity" {
			return nil
		}
		if !strings.ContainsAny(pragma.Value, "^><") {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(pragma.Span)}}
	})
}
