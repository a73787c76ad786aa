package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// TxOriginAuth flags any use of `tx.origin`, the classic phishing-prone
// authorization pattern.
type TxOriginAuth struct{}

func (*TxOriginAuth) ID() string   { return "tx-origin-usage" }
func (*TxOriginAuth) Name() string { return "Use of `tx.origin`" }

func (*TxOriginAuth) Severity() findings.Severity { return findings.SeverityHigh }

func (*TxOriginAuth) Description() string {
	return "`tx.origin` names the transaction initiator, not the immediate caller, so any " +
		"contract the user interacts with can pass `tx.origin` checks on their behalf. Use " +
		"`msg.sender` for authorization."
}

func (*TxOriginAuth) Example() string {
	return "```solidity\n" +
		"require(tx.origin == owner); // phishable, use msg.sender\n" +
		"```"
}

func (*TxOriginAuth) GasSavings() string { return "" }

func (r *TxOriginAuth) RegisterCallbacks(v *visitor.Visitor) {
	v.OnExpression(func(e ast.Expression, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		ma, ok := e.(*ast.MemberAccess)
		if !ok || ma.Member != "origin" {
			return nil
		}
		if id, ok := ma.Expr.(*ast.Identifier); !ok || id.Name != "tx" {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(ma.Span)}}
	})
}
