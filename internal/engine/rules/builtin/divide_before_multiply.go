package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// DivideBeforeMultiply flags multiplications whose left operand is a
// division, where integer truncation compounds.
type DivideBeforeMultiply struct{}

func (*DivideBeforeMultiply) ID() string   { return "divide-before-multiply" }
func (*DivideBeforeMultiply) Name() string { return "Division before multiplication" }

func (*DivideBeforeMultiply) Severity() findings.Severity { return findings.SeverityMedium }

func (*DivideBeforeMultiply) Description() string {
	return "Integer division truncates, so dividing before multiplying loses precision that " +
		"the later multiplication amplifies. Reorder to multiply first, or use a scaling " +
		"factor."
}

func (*DivideBeforeMultiply) Example() string {
	return "```solidity\n" +
		"uint share = amount / total * weight; // truncates before scaling\n" +
		"uint share = amount * weight / total; // better\n" +
		"```"
}

func (*DivideBeforeMultiply) GasSavings() string { return "" }

func (r *DivideBeforeMultiply) RegisterCallbacks(v *visitor.Visitor) {
	v.OnExpression(func(e ast.Expression, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		mul, ok := e.(*ast.BinaryExpr)
		if !ok || mul.Op != "*" {
			return nil
		}
		left := mul.Left
		if paren, ok := left.(*ast.ParenExpr); ok {
			left = paren.Inner
		}
		if div, ok := left.(*ast.BinaryExpr); !ok || div.Op != "/" {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(mul.Span)}}
	})
}
