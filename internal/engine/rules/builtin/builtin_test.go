package builtin

import (
	"testing"

	"github.com/slvDev/solwatch/internal/core/findings"
)

func TestAllRulesHaveUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range All() {
		if r.ID() == "" {
			t.Errorf("%T has empty id", r)
		}
		if seen[r.ID()] {
			t.Errorf("duplicate rule id %s", r.ID())
		}
		seen[r.ID()] = true
		if r.Name() == "" || r.Description() == "" {
			t.Errorf("%s missing name or description", r.ID())
		}
	}
}

func TestGasRulesDeclareSavings(t *testing.T) {
	for _, r := range All() {
		if r.Severity() == findings.SeverityGas && r.GasSavings() == "" {
			t.Errorf("%s is a gas rule without a savings estimate", r.ID())
		}
	}
}

func TestDelegatecallInLoop(t *testing.T) {
	code := `contract T {
    function bad(address[] calldata targets, bytes[] calldata data) external {
        for (uint i = 0; i < targets.length; i++) {
            (bool s, ) = targets[i].delegatecall(data[i]);
            require(s);
        }
    }

    function nested(address t, bytes calldata d) external {
        uint i = 0;
        while (i < 3) {
            if (i == 1) {
                (bool s, ) = t.delegatecall(d);
                require(s);
            }
            i++;
        }
    }

    function fine(address t, bytes calldata d) external {
        (bool s, ) = t.delegatecall(d);
        require(s);
    }
}
`
	got := runRule(t, &DelegatecallInLoop{}, "t.sol", code)
	if len(got) != 2 {
		t.Fatalf("findings = %v, want 2", lines(got))
	}
	if got[0].Location.Line != 4 || got[1].Location.Line != 13 {
		t.Errorf("lines = %v, want [4 13]", lines(got))
	}
	if got[0].Location.Snippet != "targets[i].delegatecall(data[i])" {
		t.Errorf("snippet = %q", got[0].Location.Snippet)
	}
}

func TestMsgValueInLoop(t *testing.T) {
	code := `contract T {
    function bad(address payable[] calldata to) external payable {
        for (uint i = 0; i < to.length; i++) {
            to[i].transfer(msg.value);
        }
    }

    function fine(address payable to) external payable {
        to.transfer(msg.value);
    }
}
`
	got := runRule(t, &MsgValueInLoop{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 4 {
		t.Errorf("findings = %v, want one at line 4", lines(got))
	}
}

func TestTxOriginAuth(t *testing.T) {
	code := `contract T {
    address owner;
    function bad() external view {
        require(tx.origin == owner);
    }
    function fine() external view {
        require(msg.sender == owner);
    }
}
`
	got := runRule(t, &TxOriginAuth{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 4 {
		t.Errorf("findings = %v, want one at line 4", lines(got))
	}
	if got[0].Location.Snippet != "tx.origin" {
		t.Errorf("snippet = %q, want tx.origin", got[0].Location.Snippet)
	}
}

func TestHardcodedPrivateKey(t *testing.T) {
	code := `contract T {
    bytes32 constant LEAKED = 0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80;
    bytes32 constant ZERO_ROOT = 0x0000000000000000000000000000000000000000000000000000000000000001;
    bytes32 constant HASH = keccak256("seed");
    address owner = 0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045;
}
`
	got := runRule(t, &HardcodedPrivateKey{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 2 {
		t.Errorf("findings = %v, want only the high-entropy literal at line 2", lines(got))
	}
}

func TestDivideBeforeMultiply(t *testing.T) {
	code := `contract T {
    function bad(uint a, uint b, uint c) external pure returns (uint) {
        return a / b * c;
    }
    function fine(uint a, uint b, uint c) external pure returns (uint) {
        return a * c / b;
    }
}
`
	got := runRule(t, &DivideBeforeMultiply{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 3 {
		t.Errorf("findings = %v, want one at line 3", lines(got))
	}
}

func TestUncheckedLowLevelCall(t *testing.T) {
	code := `contract T {
    function bad(address payable to, uint amount) external {
        to.call{value: amount}("");
    }
    function alsoBad(address to) external {
        to.send(1);
    }
    function fine(address payable to, uint amount) external {
        (bool ok, ) = to.call{value: amount}("");
        require(ok);
    }
}
`
	got := runRule(t, &UncheckedLowLevelCall{}, "t.sol", code)
	if len(got) != 2 {
		t.Fatalf("findings = %v, want 2", lines(got))
	}
	if got[0].Location.Line != 3 || got[1].Location.Line != 6 {
		t.Errorf("lines = %v, want [3 6]", lines(got))
	}
}

func TestMissingStorageGap(t *testing.T) {
	code := `contract TokenStorage is Initializable {
    uint256 internal supply;
}

contract SafeStorage is Initializable {
    uint256 internal supply;
    uint256[50] private __gap;
}

contract Plain {
    uint256 internal supply;
}
`
	chains := map[string][]string{
		"TokenStorage": {"Initializable"},
		"SafeStorage":  {"Initializable"},
	}
	got := runRuleWithChains(t, &MissingStorageGap{}, "t.sol", code, chains)
	if len(got) != 1 || got[0].Location.Line != 1 {
		t.Errorf("findings = %v, want one at line 1", lines(got))
	}
	if got[0].Location.Snippet != "TokenStorage" {
		t.Errorf("snippet = %q, want TokenStorage", got[0].Location.Snippet)
	}
}

func TestFloatingPragma(t *testing.T) {
	tests := []struct {
		pragma string
		want   int
	}{
		{"pragma solidity ^0.8.20;", 1},
		{"pragma solidity >=0.8.0 <0.9.0;", 1},
		{"pragma solidity 0.8.20;", 0},
	}
	for _, tt := range tests {
		got := runRule(t, &FloatingPragma{}, "t.sol", tt.pragma+"\ncontract T {}\n")
		if len(got) != tt.want {
			t.Errorf("%q: findings = %d, want %d", tt.pragma, len(got), tt.want)
		}
	}
}

func TestRenounceOwnership(t *testing.T) {
	code := `contract Vulnerable is Ownable {
    uint x;
}

contract Guarded is Ownable {
    function renounceOwnership() public view {
        revert("disabled");
    }
}
`
	chains := map[string][]string{
		"Vulnerable": {"Ownable"},
		"Guarded":    {"Ownable"},
	}
	got := runRuleWithChains(t, &RenounceOwnership{}, "t.sol", code, chains)
	if len(got) != 1 || got[0].Location.Snippet != "Vulnerable" {
		t.Errorf("findings = %v, want Vulnerable only", got)
	}
}

func TestGtZeroComparison(t *testing.T) {
	code := `contract T {
    function f(uint a) external pure {
        require(a > 0);
        require(a != 0);
        require(a > 1);
    }
}
`
	got := runRule(t, &GtZeroComparison{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 3 {
		t.Errorf("findings = %v, want one at line 3", lines(got))
	}
}

func TestPostIncrement(t *testing.T) {
	code := `contract T {
    function f(uint n) external pure {
        for (uint i = 0; i < n; i++) {}
        for (uint j = 0; j < n; ++j) {}
    }
}
`
	got := runRule(t, &PostIncrement{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 3 {
		t.Errorf("findings = %v, want one at line 3", lines(got))
	}
}

func TestArrayLengthInLoop(t *testing.T) {
	code := `contract T {
    uint[] items;
    function f() external view {
        for (uint i = 0; i < items.length; i++) {}
        uint len = items.length;
        for (uint j = 0; j < len; j++) {}
    }
}
`
	got := runRule(t, &ArrayLengthInLoop{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 4 {
		t.Errorf("findings = %v, want one at line 4", lines(got))
	}
}

func TestBoolStorageOverhead(t *testing.T) {
	code := `contract T {
    bool private locked;
    bool private constant FLAG = true;
    uint256 private counter;
}

interface I {
    function locked() external view returns (bool);
}
`
	got := runRule(t, &BoolStorageOverhead{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 2 {
		t.Errorf("findings = %v, want one at line 2", lines(got))
	}
}

func TestMissingSPDXLicense(t *testing.T) {
	withLicense := "// SPDX-License-Identifier: MIT\ncontract T {}\n"
	if got := runRule(t, &MissingSPDXLicense{}, "t.sol", withLicense); len(got) != 0 {
		t.Errorf("licensed file flagged: %v", got)
	}
	without := "contract T {}\n"
	if got := runRule(t, &MissingSPDXLicense{}, "t.sol", without); len(got) != 1 {
		t.Errorf("unlicensed file not flagged")
	}
}

func TestDuplicateImport(t *testing.T) {
	code := `import "./A.sol";
import "./B.sol";
import "./A.sol";
contract T {}
`
	got := runRule(t, &DuplicateImport{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Line != 3 {
		t.Errorf("findings = %v, want one at line 3", lines(got))
	}
}

func TestConstantNaming(t *testing.T) {
	code := `contract T {
    uint256 constant maxSupply = 100;
    uint256 constant MAX_SUPPLY = 100;
    uint256 immutable deployBlock;
    uint256 immutable DEPLOY_BLOCK;
    uint256 mutableVar;
    constructor() { deployBlock = block.number; DEPLOY_BLOCK = block.number; }
}
`
	got := runRule(t, &ConstantNaming{}, "t.sol", code)
	if len(got) != 2 {
		t.Fatalf("findings = %v, want 2", lines(got))
	}
	if got[0].Location.Snippet != "maxSupply" || got[1].Location.Snippet != "deployBlock" {
		t.Errorf("snippets = %q, %q", got[0].Location.Snippet, got[1].Location.Snippet)
	}
}

func TestEmptyFunctionBody(t *testing.T) {
	code := `contract T {
    function empty() external {}
    function hook() external virtual {}
    function full() external { revert(); }
    constructor() {}
}

interface I {
    function decl() external;
}
`
	got := runRule(t, &EmptyFunctionBody{}, "t.sol", code)
	if len(got) != 1 || got[0].Location.Snippet != "empty" {
		t.Errorf("findings = %v, want only empty()", got)
	}
}
