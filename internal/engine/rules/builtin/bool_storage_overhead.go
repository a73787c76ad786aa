package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// BoolStorageOverhead flags bool state variables, which pay the masked-write
// penalty on every update.
type BoolStorageOverhead struct{}

func (*BoolStorageOverhead) ID() string   { return "bool-storage-overhead" }
func (*BoolStorageOverhead) Name() string { return "Bool state variable storage overhead" }

func (*BoolStorageOverhead) Severity() findings.Severity { return findings.SeverityGas }

func (*BoolStorageOverhead) Description() string {
	return "Writing a bool performs a read-mask-write cycle on its storage slot. A uint256 " +
		"flag using 1/2 instead of true/false avoids the masking and the Gsset/Gsreset " +
		"asymmetry on toggles."
}

func (*BoolStorageOverhead) Example() string {
	return "```solidity\n" +
		"bool private locked;          // masked writes\n" +
		"uint256 private locked;       // 1 = unlocked, 2 = locked\n" +
		"```"
}

func (*BoolStorageOverhead) GasSavings() string { return "~100 gas per write" }

func (r *BoolStorageOverhead) RegisterCallbacks(v *visitor.Visitor) {
	v.OnContractPart(func(part ast.ContractPart, def *ast.ContractDefinition, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		decl, ok := part.(*ast.VariableDeclaration)
		if !ok || def.Kind == ast.KindInterface {
			return nil
		}
		if ty, ok := decl.Type.(*ast.ElementaryType); !ok || ty.Name != "bool" {
			return nil
		}
		if decl.Mutability != ast.Mutable {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(decl.Span)}}
	})
}
