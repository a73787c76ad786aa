package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// MsgValueInLoop flags `msg.value` reads inside loop bodies.
type MsgValueInLoop struct{}

func (*MsgValueInLoop) ID() string   { return "msg-value-in-loop" }
func (*MsgValueInLoop) Name() string { return "Use of `msg.value` inside a loop" }

func (*MsgValueInLoop) Severity() findings.Severity { return findings.SeverityHigh }

func (*MsgValueInLoop) Description() string {
	return "`msg.value` is constant for the whole call but code that spends it per iteration " +
		"usually assumes a fresh payment each time, double-counting the sent ether. Hoist the " +
		"value out of the loop or track the remaining balance explicitly."
}

func (*MsgValueInLoop) Example() string {
	return "```solidity\n" +
		"for (uint i = 0; i < recipients.length; i++) {\n" +
		"    payable(recipients[i]).transfer(msg.value); // same msg.value every iteration\n" +
		"}\n" +
		"```"
}

func (*MsgValueInLoop) GasSavings() string { return "" }

func (r *MsgValueInLoop) RegisterCallbacks(v *visitor.Visitor) {
	v.OnStatement(func(s ast.Statement, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		body := loopBody(s)
		if body == nil {
			return nil
		}
		var out []findings.RuleFinding
		for _, span := range memberAccessSpans(body, "msg", "value") {
			out = append(out, findings.RuleFinding{RuleID: r.ID(), Location: file.Location(span)})
		}
		return out
	})
}
