package visitor

import (
	"testing"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/parser"
	"github.com/slvDev/solwatch/internal/engine/scope"
)

const source = `pragma solidity ^0.8.0;

contract Counter {
    uint256 public count;

    event Bumped(uint256 newCount);

    function bump(uint256 by) external {
        for (uint256 i = 0; i < by; i++) {
            count += 1;
        }
        if (count > 100) {
            count = 0;
        }
        emit Bumped(count);
    }
}
`

func parseFile(t *testing.T) *scope.SourceFile {
	t.Helper()
	unit, err := parser.NewParser().Parse("counter.sol", []byte(source))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return scope.NewSourceFile("counter.sol", []byte(source), unit)
}

func TestTraverseCategories(t *testing.T) {
	file := parseFile(t)
	v := New()

	counts := map[string]int{}
	none := []findings.RuleFinding(nil)

	v.OnSourceUnit(func(*ast.SourceUnit, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding {
		counts["sourceUnit"]++
		return none
	})
	v.OnUnitPart(func(ast.UnitPart, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding {
		counts["unitPart"]++
		return none
	})
	v.OnContract(func(*ast.ContractDefinition, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding {
		counts["contract"]++
		return none
	})
	v.OnContractPart(func(ast.ContractPart, *ast.ContractDefinition, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding {
		counts["contractPart"]++
		return none
	})
	v.OnFunction(func(*ast.FunctionDefinition, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding {
		counts["function"]++
		return none
	})
	v.OnVariable(func(*ast.VariableDeclaration, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding {
		counts["variable"]++
		return none
	})
	v.OnStatement(func(s ast.Statement, _ *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		counts["statement"]++
		if _, ok := s.(*ast.ForStmt); ok {
			counts["forStmt"]++
		}
		if _, ok := s.(*ast.IfStmt); ok {
			counts["ifStmt"]++
		}
		return none
	})
	v.OnExpression(func(e ast.Expression, _ *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		counts["expression"]++
		if b, ok := e.(*ast.BinaryExpr); ok && b.Op == "<" {
			counts["lessThan"]++
		}
		return none
	})

	got := v.Traverse(file, nil)
	if len(got) != 0 {
		t.Errorf("no findings expected, got %d", len(got))
	}

	if counts["sourceUnit"] != 1 {
		t.Errorf("sourceUnit visits = %d, want 1", counts["sourceUnit"])
	}
	// pragma + contract
	if counts["unitPart"] != 2 {
		t.Errorf("unitPart visits = %d, want 2", counts["unitPart"])
	}
	if counts["contract"] != 1 {
		t.Errorf("contract visits = %d, want 1", counts["contract"])
	}
	// state variable + event + function
	if counts["contractPart"] != 3 {
		t.Errorf("contractPart visits = %d, want 3", counts["contractPart"])
	}
	if counts["function"] != 1 || counts["variable"] != 1 {
		t.Errorf("function/variable visits = %d/%d, want 1/1", counts["function"], counts["variable"])
	}
	if counts["forStmt"] != 1 || counts["ifStmt"] != 1 {
		t.Errorf("for/if visits = %d/%d, want 1/1", counts["forStmt"], counts["ifStmt"])
	}
	if counts["lessThan"] != 1 {
		t.Errorf("loop condition not reached: lessThan = %d", counts["lessThan"])
	}
	if counts["statement"] == 0 || counts["expression"] == 0 {
		t.Error("statement or expression callbacks never fired")
	}
}

func TestTraverseAccumulatesInOrder(t *testing.T) {
	file := parseFile(t)
	v := New()

	v.OnContract(func(def *ast.ContractDefinition, f *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		return []findings.RuleFinding{{RuleID: "first", Location: f.Location(def.NameSpan)}}
	})
	v.OnFunction(func(fn *ast.FunctionDefinition, f *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		return []findings.RuleFinding{{RuleID: "second", Location: f.Location(fn.NameSpan)}}
	})

	got := v.Traverse(file, nil)
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2", len(got))
	}
	if got[0].RuleID != "first" || got[1].RuleID != "second" {
		t.Errorf("traversal order violated: %v", []string{got[0].RuleID, got[1].RuleID})
	}
	if got[0].Location.Snippet != "Counter" {
		t.Errorf("contract name snippet = %q, want Counter", got[0].Location.Snippet)
	}
}

func TestTraverseSkipsNothingInNestedBlocks(t *testing.T) {
	nested := `contract Deep {
    function f(uint a) public pure returns (uint) {
        while (a > 0) {
            unchecked { a--; }
            do { a += 2; } while (a > 10);
        }
        return a;
    }
}
`
	unit, err := parser.NewParser().Parse("deep.sol", []byte(nested))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	file := scope.NewSourceFile("deep.sol", []byte(nested), unit)

	v := New()
	var kinds []string
	v.OnStatement(func(s ast.Statement, _ *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		switch s.(type) {
		case *ast.WhileStmt:
			kinds = append(kinds, "while")
		case *ast.DoWhileStmt:
			kinds = append(kinds, "dowhile")
		case *ast.ReturnStmt:
			kinds = append(kinds, "return")
		}
		return nil
	})
	v.Traverse(file, nil)

	want := map[string]bool{"while": false, "dowhile": false, "return": false}
	for _, k := range kinds {
		want[k] = true
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("statement kind %q never visited", k)
		}
	}
}
