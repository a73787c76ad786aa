package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// PostIncrement flags `i++`/`i--` in for-loop update clauses, where the
// prefix form avoids a temporary.
type PostIncrement struct{}

func (*PostIncrement) ID() string   { return "post-increment-in-loop" }
func (*PostIncrement) Name() string { return "Post-increment in loop update" }

func (*PostIncrement) Severity() findings.Severity { return findings.SeverityGas }

func (*PostIncrement) Description() string {
	return "`i++` keeps a copy of the old value that the loop update never reads. `++i` (or an " +
		"unchecked increment) is cheaper in every compiler version before the optimizer " +
		"catches it."
}

func (*PostIncrement) Example() string {
	return "```solidity\n" +
		"for (uint i = 0; i < n; i++) { ... } // post-increment\n" +
		"for (uint i = 0; i < n; ++i) { ... } // cheaper\n" +
		"```"
}

func (*PostIncrement) GasSavings() string { return "~5 gas per iteration" }

func (r *PostIncrement) RegisterCallbacks(v *visitor.Visitor) {
	v.OnStatement(func(s ast.Statement, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		loop, ok := s.(*ast.ForStmt)
		if !ok || loop.Post == nil {
			return nil
		}
		un, ok := loop.Post.(*ast.UnaryExpr)
		if !ok || un.Prefix {
			return nil
		}
		if un.Op != "++" && un.Op != "--" {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(un.Span)}}
	})
}
