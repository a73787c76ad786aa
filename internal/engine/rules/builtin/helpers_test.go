package builtin

import (
	"io"
	"log/slog"
	"testing"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/parser"
	"github.com/slvDev/solwatch/internal/engine/resolver"
	"github.com/slvDev/solwatch/internal/engine/rules"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// runRule parses code into a one-file linked context and returns the rule's
// findings for it.
func runRule(t *testing.T, r rules.Rule, filename, code string) []findings.RuleFinding {
	t.Helper()
	return runRuleWithChains(t, r, filename, code, nil)
}

// runRuleWithChains additionally injects mock inheritance chains, keyed by
// contract name, so ancestry-dependent rules can be tested without full base
// implementations.
func runRuleWithChains(t *testing.T, r rules.Rule, filename, code string, chains map[string][]string) []findings.RuleFinding {
	t.Helper()

	unit, err := parser.NewParser().Parse(filename, []byte(code))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	file := scope.NewSourceFile(filename, []byte(code), unit)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := scope.NewAnalysisContext(parser.NewParser(), resolver.NewResolver(t.TempDir()), log)
	ctx.AddFile(file)
	if err := ctx.Link(); err != nil {
		t.Fatalf("Link: %v", err)
	}
	for name, chain := range chains {
		if decl, ok := ctx.Contract(scope.QualifiedName(filename, name)); ok {
			decl.InheritanceChain = chain
		}
	}

	v := visitor.New()
	r.RegisterCallbacks(v)
	return v.Traverse(file, ctx)
}

func lines(fs []findings.RuleFinding) []int {
	var out []int
	for _, f := range fs {
		out = append(out, f.Location.Line)
	}
	return out
}
