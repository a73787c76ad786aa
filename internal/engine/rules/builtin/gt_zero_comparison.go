package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// GtZeroComparison flags `x > 0` where `x != 0` is cheaper for unsigned
// values.
type GtZeroComparison struct{}

func (*GtZeroComparison) ID() string   { return "gt-zero-comparison" }
func (*GtZeroComparison) Name() string { return "`> 0` comparison on unsigned value" }

func (*GtZeroComparison) Severity() findings.Severity { return findings.SeverityGas }

func (*GtZeroComparison) Description() string {
	return "For unsigned integers `!= 0` and `> 0` are equivalent, and `!= 0` compiles to a " +
		"cheaper comparison."
}

func (*GtZeroComparison) Example() string {
	return "```solidity\n" +
		"require(amount > 0);  // costs more\n" +
		"require(amount != 0); // same meaning, cheaper\n" +
		"```"
}

func (*GtZeroComparison) GasSavings() string { return "~3 gas per comparison" }

func (r *GtZeroComparison) RegisterCallbacks(v *visitor.Visitor) {
	v.OnExpression(func(e ast.Expression, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		bin, ok := e.(*ast.BinaryExpr)
		if !ok || bin.Op != ">" {
			return nil
		}
		if lit, ok := bin.Right.(*ast.NumberLiteral); !ok || lit.Value != "0" {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(bin.Span)}}
	})
}
