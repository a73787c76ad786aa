package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// EmptyFunctionBody flags plain functions with an empty body. Constructors
// (which may exist only to call base constructors), virtual hooks and
// fallback/receive stubs are intentional and skipped.
type EmptyFunctionBody struct{}

func (*EmptyFunctionBody) ID() string   { return "empty-function-body" }
func (*EmptyFunctionBody) Name() string { return "Function with empty body" }

func (*EmptyFunctionBody) Severity() findings.Severity { return findings.SeverityNC }

func (*EmptyFunctionBody) Description() string {
	return "An empty non-virtual function body is either dead code or a missing " +
		"implementation. Delete it or add a comment-bearing revert."
}

func (*EmptyFunctionBody) Example() string { return "" }

func (*EmptyFunctionBody) GasSavings() string { return "" }

func (r *EmptyFunctionBody) RegisterCallbacks(v *visitor.Visitor) {
	v.OnFunction(func(fn *ast.FunctionDefinition, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		if fn.Kind != ast.FnFunction || fn.Virtual {
			return nil
		}
		if fn.Body == nil || len(fn.Body.Stmts) > 0 {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(fn.NameSpan)}}
	})
}
