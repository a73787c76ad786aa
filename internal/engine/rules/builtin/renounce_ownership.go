package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// RenounceOwnership flags Ownable contracts that leave the inherited
// renounceOwnership entry point callable.
type RenounceOwnership struct{}

func (*RenounceOwnership) ID() string   { return "renounce-ownership-enabled" }
func (*RenounceOwnership) Name() string { return "`renounceOwnership` left callable" }

func (*RenounceOwnership) Severity() findings.Severity { return findings.SeverityLow }

func (*RenounceOwnership) Description() string {
	return "Ownable contracts inherit a public `renounceOwnership` that permanently bricks " +
		"every onlyOwner function when called, accidentally or not. Override it to revert " +
		"unless giving up ownership is an intended feature."
}

func (*RenounceOwnership) Example() string {
	return "```solidity\n" +
		"function renounceOwnership() public view override onlyOwner {\n" +
		"    revert(\"renouncing ownership is disabled\");\n" +
		"}\n" +
		"```"
}

func (*RenounceOwnership) GasSavings() string { return "" }

func (r *RenounceOwnership) RegisterCallbacks(v *visitor.Visitor) {
	v.OnContract(func(def *ast.ContractDefinition, file *scope.SourceFile, ctx *scope.AnalysisContext) []findings.RuleFinding {
		if ctx == nil || def.Kind != ast.KindContract {
			return nil
		}
		qualified := ctx.QualifiedNameFor(file, def.Name)
		if !ctx.InheritsFrom(qualified, "Ownable") {
			return nil
		}
		decl, ok := ctx.Contract(qualified)
		if !ok {
			return nil
		}
		for _, fn := range decl.Functions {
			if fn.Name == "renounceOwnership" {
				return nil
			}
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(def.NameSpan)}}
	})
}
