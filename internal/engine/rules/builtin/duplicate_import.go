package builtin

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// DuplicateImport flags repeated imports of the same path within one file.
type DuplicateImport struct{}

func (*DuplicateImport) ID() string   { return "duplicate-import" }
func (*DuplicateImport) Name() string { return "Duplicate import" }

func (*DuplicateImport) Severity() findings.Severity { return findings.SeverityNC }

func (*DuplicateImport) Description() string {
	return "Importing the same file twice is harmless to the compiler but hides which import " +
		"actually brings a symbol in. Keep one import per path."
}

func (*DuplicateImport) Example() string { return "" }

func (*DuplicateImport) GasSavings() string { return "" }

func (r *DuplicateImport) RegisterCallbacks(v *visitor.Visitor) {
	v.OnSourceUnit(func(unit *ast.SourceUnit, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		seen := make(map[string]bool)
		var out []findings.RuleFinding
		for _, imp := range file.Imports {
			if seen[imp.Path] {
				out = append(out, findings.RuleFinding{RuleID: r.ID(), Location: file.Location(imp.Span)})
				continue
			}
			seen[imp.Path] = true
		}
		return out
	})
}
