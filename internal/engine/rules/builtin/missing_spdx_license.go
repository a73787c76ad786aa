package builtin

import (
	"strings"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// MissingSPDXLicense flags files without an SPDX license identifier comment.
type MissingSPDXLicense struct{}

func (*MissingSPDXLicense) ID() string   { return "missing-spdx-license" }
func (*MissingSPDXLicense) Name() string { return "Missing SPDX license identifier" }

func (*MissingSPDXLicense) Severity() findings.Severity { return findings.SeverityNC }

func (*MissingSPDXLicense) Description() string {
	return "The compiler warns on files without an `SPDX-License-Identifier` comment, and " +
		"verified source without one has unclear licensing. Add it as the first line."
}

func (*MissingSPDXLicense) Example() string {
	return "```solidity\n// SPDX-License-Identifier: MIT\n```"
}

func (*MissingSPDXLicense) GasSavings() string { return "" }

func (r *MissingSPDXLicense) RegisterCallbacks(v *visitor.Visitor) {
	v.OnSourceUnit(func(unit *ast.SourceUnit, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		if strings.Contains(string(file.Content), "SPDX-License-Identifier:") {
			return nil
		}
		loc := file.Location(ast.Span{Start: 0, End: 0})
		loc.Snippet = scope.FallbackSnippet
		return []findings.RuleFinding{{RuleID: r.ID(), Location: loc}}
	})
}
