package builtin

import (
	"strings"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// ConstantNaming flags constant and immutable state variables not written in
// UPPER_SNAKE_CASE.
type ConstantNaming struct{}

func (*ConstantNaming) ID() string   { return "constant-naming" }
func (*ConstantNaming) Name() string { return "Constant not in UPPER_SNAKE_CASE" }

func (*ConstantNaming) Severity() findings.Severity { return findings.SeverityNC }

func (*ConstantNaming) Description() string {
	return "Constants and immutables are conventionally UPPER_SNAKE_CASE so readers can tell " +
		"fixed values from mutable state at the use site."
}

func (*ConstantNaming) Example() string {
	return "```solidity\n" +
		"uint256 constant maxSupply = 1e27;  // flagged\n" +
		"uint256 constant MAX_SUPPLY = 1e27;\n" +
		"```"
}

func (*ConstantNaming) GasSavings() string { return "" }

func (r *ConstantNaming) RegisterCallbacks(v *visitor.Visitor) {
	v.OnVariable(func(decl *ast.VariableDeclaration, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		if decl.Mutability == ast.Mutable || decl.Name == "" {
			return nil
		}
		if isUpperSnake(decl.Name) {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(decl.NameSpan)}}
	})
}

func isUpperSnake(name string) bool {
	name = strings.TrimLeft(name, "_")
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
