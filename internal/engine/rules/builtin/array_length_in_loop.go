package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// ArrayLengthInLoop flags `.length` reads inside a for-loop condition.
type ArrayLengthInLoop struct{}

func (*ArrayLengthInLoop) ID() string   { return "array-length-in-loop" }
func (*ArrayLengthInLoop) Name() string { return "Array length read every loop iteration" }

func (*ArrayLengthInLoop) Severity() findings.Severity { return findings.SeverityGas }

func (*ArrayLengthInLoop) Description() string {
	return "A `.length` read in the loop condition re-reads the array length on every " +
		"iteration, an SLOAD each time for storage arrays. Cache the length in a local " +
		"variable before the loop."
}

func (*ArrayLengthInLoop) Example() string {
	return "```solidity\n" +
		"uint len = items.length;\n" +
		"for (uint i = 0; i < len; i++) { ... }\n" +
		"```"
}

func (*ArrayLengthInLoop) GasSavings() string { return "~100 gas per iteration for storage arrays" }

func (r *ArrayLengthInLoop) RegisterCallbacks(v *visitor.Visitor) {
	v.OnStatement(func(s ast.Statement, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		loop, ok := s.(*ast.ForStmt)
		if !ok || loop.Cond == nil {
			return nil
		}
		var out []findings.RuleFinding
		ast.Inspect(loop.Cond, func(n ast.Node) bool {
			if ma, ok := n.(*ast.MemberAccess); ok && ma.Member == "length" {
				out = append(out, findings.RuleFinding{RuleID: r.ID(), Location: file.Location(ma.Span)})
			}
			return true
		})
		return out
	})
}
