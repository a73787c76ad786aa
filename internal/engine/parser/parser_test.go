package parser

import (
	"testing"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/engine/ast"
)

const sampleSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

import "./Base.sol";
import {Ownable as Owned, Context} from "@openzeppelin/contracts/access/Ownable.sol";

contract Vault is Base, Owned {
    uint256 public totalDeposits;
    address private immutable asset;

    event Deposited(address indexed from, uint256 amount);

    constructor(address _asset) {
        asset = _asset;
    }

    function deposit(uint256 amount) external payable {
        totalDeposits += amount;
        emit Deposited(msg.sender, amount);
    }

    function sweep(address[] calldata targets) internal {
        for (uint256 i = 0; i < targets.length; i++) {
            (bool ok, ) = targets[i].delegatecall("");
            if (!ok) {
                revert();
            }
        }
    }
}
`

func parseSample(t *testing.T, source string) *ast.SourceUnit {
	t.Helper()
	unit, err := NewParser().Parse("test.sol", []byte(source))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return unit
}

func findContract(unit *ast.SourceUnit, name string) *ast.ContractDefinition {
	for _, part := range unit.Parts {
		if c, ok := part.(*ast.ContractDefinition); ok && c.Name == name {
			return c
		}
	}
	return nil
}

func TestParseContractStructure(t *testing.T) {
	unit := parseSample(t, sampleSource)

	vault := findContract(unit, "Vault")
	if vault == nil {
		t.Fatal("contract Vault not found")
	}
	if vault.Kind != ast.KindContract {
		t.Errorf("kind = %v, want contract", vault.Kind)
	}

	var bases []string
	for _, b := range vault.Bases {
		bases = append(bases, b.Name)
	}
	if len(bases) != 2 || bases[0] != "Base" || bases[1] != "Owned" {
		t.Errorf("bases = %v, want [Base Owned]", bases)
	}

	var varNames []string
	var fnKinds []ast.FunctionKind
	for _, part := range vault.Parts {
		switch p := part.(type) {
		case *ast.VariableDeclaration:
			varNames = append(varNames, p.Name)
		case *ast.FunctionDefinition:
			fnKinds = append(fnKinds, p.Kind)
		}
	}
	if len(varNames) != 2 || varNames[0] != "totalDeposits" || varNames[1] != "asset" {
		t.Errorf("state variables = %v, want [totalDeposits asset]", varNames)
	}
	if len(fnKinds) != 3 || fnKinds[0] != ast.FnConstructor {
		t.Errorf("function kinds = %v, want constructor first of three", fnKinds)
	}
}

func TestParseStateVariableAttributes(t *testing.T) {
	unit := parseSample(t, sampleSource)
	vault := findContract(unit, "Vault")
	if vault == nil {
		t.Fatal("contract Vault not found")
	}

	var vars []*ast.VariableDeclaration
	for _, part := range vault.Parts {
		if v, ok := part.(*ast.VariableDeclaration); ok {
			vars = append(vars, v)
		}
	}
	if len(vars) != 2 {
		t.Fatalf("got %d state variables, want 2", len(vars))
	}
	if vars[0].Visibility != ast.VisibilityPublic {
		t.Errorf("totalDeposits visibility = %v, want public", vars[0].Visibility)
	}
	if got := ast.TypeText(vars[0].Type); got != "uint256" {
		t.Errorf("totalDeposits type = %q, want uint256", got)
	}
	if vars[1].Mutability != ast.Immutable {
		t.Errorf("asset mutability = %v, want immutable", vars[1].Mutability)
	}
}

func TestParseImports(t *testing.T) {
	unit := parseSample(t, sampleSource)

	var imports []*ast.ImportDirective
	for _, part := range unit.Parts {
		if imp, ok := part.(*ast.ImportDirective); ok {
			imports = append(imports, imp)
		}
	}
	if len(imports) != 2 {
		t.Fatalf("got %d imports, want 2", len(imports))
	}
	if imports[0].Path != "./Base.sol" {
		t.Errorf("first import path = %q", imports[0].Path)
	}
	if imports[1].Path != "@openzeppelin/contracts/access/Ownable.sol" {
		t.Errorf("second import path = %q", imports[1].Path)
	}
	if len(imports[1].Symbols) != 2 {
		t.Fatalf("second import symbols = %v, want 2 entries", imports[1].Symbols)
	}
	if imports[1].Symbols[0].Name != "Ownable" || imports[1].Symbols[0].Alias != "Owned" {
		t.Errorf("first symbol = %+v, want Ownable as Owned", imports[1].Symbols[0])
	}
	if imports[1].Symbols[1].Name != "Context" || imports[1].Symbols[1].Alias != "" {
		t.Errorf("second symbol = %+v, want Context", imports[1].Symbols[1])
	}
}

func TestParsePragma(t *testing.T) {
	unit := parseSample(t, sampleSource)
	for _, part := range unit.Parts {
		if p, ok := part.(*ast.PragmaDirective); ok {
			if p.Name != "solidity" {
				t.Errorf("pragma name = %q, want solidity", p.Name)
			}
			if p.Value != "^0.8.20" {
				t.Errorf("pragma value = %q, want ^0.8.20", p.Value)
			}
			return
		}
	}
	t.Fatal("no pragma directive found")
}

func TestParseFunctionBody(t *testing.T) {
	unit := parseSample(t, sampleSource)
	vault := findContract(unit, "Vault")
	if vault == nil {
		t.Fatal("contract Vault not found")
	}

	var sweep *ast.FunctionDefinition
	for _, part := range vault.Parts {
		if fn, ok := part.(*ast.FunctionDefinition); ok && fn.Name == "sweep" {
			sweep = fn
		}
	}
	if sweep == nil {
		t.Fatal("function sweep not found")
	}
	if sweep.Visibility != ast.VisibilityInternal {
		t.Errorf("sweep visibility = %v, want internal", sweep.Visibility)
	}
	if sweep.Body == nil || len(sweep.Body.Stmts) == 0 {
		t.Fatal("sweep has no body statements")
	}
	if _, ok := sweep.Body.Stmts[0].(*ast.ForStmt); !ok {
		t.Errorf("first statement = %T, want *ast.ForStmt", sweep.Body.Stmts[0])
	}
	if !ast.ContainsCallNamed(sweep.Body, "delegatecall") {
		t.Error("delegatecall not found in sweep body")
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := NewParser().Parse("broken.sol", []byte("contract { oops"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.IsCode(err, errors.CodeParseError) {
		t.Errorf("error code mismatch: %v", err)
	}
}

func TestParseInterfaceAndLibrary(t *testing.T) {
	source := `pragma solidity ^0.8.0;
interface IVault { function deposit(uint256 amount) external; }
library Math { function min(uint256 a, uint256 b) internal pure returns (uint256) { return a < b ? a : b; } }
abstract contract Pausable { bool internal paused; }
`
	unit := parseSample(t, source)

	tests := []struct {
		name string
		kind ast.ContractKind
	}{
		{"IVault", ast.KindInterface},
		{"Math", ast.KindLibrary},
		{"Pausable", ast.KindAbstract},
	}
	for _, tt := range tests {
		c := findContract(unit, tt.name)
		if c == nil {
			t.Errorf("%s not found", tt.name)
			continue
		}
		if c.Kind != tt.kind {
			t.Errorf("%s kind = %v, want %v", tt.name, c.Kind, tt.kind)
		}
	}
}
