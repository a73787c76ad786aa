package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// UncheckedLowLevelCall flags low-level calls whose success flag is thrown
// away: the call expression stands alone as a statement.
type UncheckedLowLevelCall struct{}

func (*UncheckedLowLevelCall) ID() string   { return "unchecked-low-level-call" }
func (*UncheckedLowLevelCall) Name() string { return "Unchecked low-level call result" }

func (*UncheckedLowLevelCall) Severity() findings.Severity { return findings.SeverityMedium }

func (*UncheckedLowLevelCall) Description() string {
	return "`call`, `delegatecall`, `staticcall` and `send` signal failure through their " +
		"return value instead of reverting. Discarding that value lets a failed transfer or " +
		"call pass silently. Capture the success flag and handle it."
}

func (*UncheckedLowLevelCall) Example() string {
	return "```solidity\n" +
		"recipient.call{value: amount}(\"\"); // failure ignored\n" +
		"(bool ok, ) = recipient.call{value: amount}(\"\");\n" +
		"require(ok);\n" +
		"```"
}

func (*UncheckedLowLevelCall) GasSavings() string { return "" }

func (r *UncheckedLowLevelCall) RegisterCallbacks(v *visitor.Visitor) {
	v.OnStatement(func(s ast.Statement, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		stmt, ok := s.(*ast.ExprStmt)
		if !ok {
			return nil
		}
		call, ok := stmt.Expr.(*ast.CallExpr)
		if !ok {
			return nil
		}
		callee := call.Callee
		if opts, ok := callee.(*ast.CallOptions); ok {
			callee = opts.Callee
		}
		ma, ok := callee.(*ast.MemberAccess)
		if !ok {
			return nil
		}
		switch ma.Member {
		case "call", "delegatecall", "staticcall", "send":
			return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(call.Span)}}
		}
		return nil
	})
}
