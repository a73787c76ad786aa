package builtin

import (
	"strings"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// MissingStorageGap flags upgradeable base contracts without a `__gap`
// reserve array. Uses the linked ancestry to decide what is upgradeable.
type MissingStorageGap struct{}

func (*MissingStorageGap) ID() string   { return "missing-storage-gap" }
func (*MissingStorageGap) Name() string { return "Upgradeable contract without storage gap" }

func (*MissingStorageGap) Severity() findings.Severity { return findings.SeverityLow }

func (*MissingStorageGap) Description() string {
	return "Contracts in an upgradeable hierarchy that declare state variables should reserve " +
		"a `uint256[50] private __gap` so later upgrades can add variables without shifting " +
		"the storage layout of every descendant."
}

func (*MissingStorageGap) Example() string {
	return "```solidity\n" +
		"contract TokenStorage is Initializable {\n" +
		"    uint256 internal supply;\n" +
		"    uint256[50] private __gap; // reserve slots for future versions\n" +
		"}\n" +
		"```"
}

func (*MissingStorageGap) GasSavings() string { return "" }

func (r *MissingStorageGap) RegisterCallbacks(v *visitor.Visitor) {
	v.OnContract(func(def *ast.ContractDefinition, file *scope.SourceFile, ctx *scope.AnalysisContext) []findings.RuleFinding {
		if ctx == nil || def.Kind == ast.KindInterface || def.Kind == ast.KindLibrary {
			return nil
		}
		qualified := ctx.QualifiedNameFor(file, def.Name)
		if !ctx.InheritsFrom(qualified, "Upgradeable") && !ctx.InheritsFrom(qualified, "Initializable") {
			return nil
		}
		decl, ok := ctx.Contract(qualified)
		if !ok || len(decl.StateVars) == 0 {
			return nil
		}
		for _, sv := range decl.StateVars {
			if strings.HasPrefix(sv.Name, "__gap") {
				return nil
			}
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(def.NameSpan)}}
	})
}
