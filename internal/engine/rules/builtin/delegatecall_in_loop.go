package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// DelegatecallInLoop flags `delegatecall` inside for/while/do-while bodies.
type DelegatecallInLoop struct{}

func (*DelegatecallInLoop) ID() string   { return "delegatecall-in-loop" }
func (*DelegatecallInLoop) Name() string { return "Use of `delegatecall` inside a loop" }

func (*DelegatecallInLoop) Severity() findings.Severity { return findings.SeverityHigh }

func (*DelegatecallInLoop) Description() string {
	return "Executing `delegatecall` inside a loop multiplies reentrancy risk: external code " +
		"runs with the caller's storage and permissions once per iteration, and malicious " +
		"targets or manipulated bounds can corrupt state or exhaust gas. Refactor unless the " +
		"targets and loop bounds are strictly controlled."
}

func (*DelegatecallInLoop) Example() string {
	return "```solidity\n" +
		"for (uint i = 0; i < targets.length; i++) {\n" +
		"    (bool success, ) = targets[i].delegatecall(data[i]); // delegatecall inside loop\n" +
		"    require(success);\n" +
		"}\n" +
		"```"
}

func (*DelegatecallInLoop) GasSavings() string { return "" }

func (r *DelegatecallInLoop) RegisterCallbacks(v *visitor.Visitor) {
	v.OnStatement(func(s ast.Statement, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		body := loopBody(s)
		if body == nil {
			return nil
		}
		var out []findings.RuleFinding
		for _, span := range memberCallSpans(body, "delegatecall") {
			out = append(out, findings.RuleFinding{RuleID: r.ID(), Location: file.Location(span)})
		}
		return out
	})
}
