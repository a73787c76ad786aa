package builtin

import (
	"math"
	"regexp"
	"strings"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
)

// 32-byte hex blobs are private-key shaped. Entropy filters out test
// constants like 0x0000...01 that match the pattern but carry no secret.
var (
	privateKeyRE = regexp.MustCompile(`(?i)\b(?:0x)?[0-9a-f]{64}\b`)

	entropyThreshold = 3.0
)

// HardcodedPrivateKey flags 64-hex-digit literals in source, which are almost
// always leaked signing keys left over from testing.
type HardcodedPrivateKey struct{}

func (*HardcodedPrivateKey) ID() string   { return "hardcoded-private-key" }
func (*HardcodedPrivateKey) Name() string { return "Hardcoded private key material" }

func (*HardcodedPrivateKey) Severity() findings.Severity { return findings.SeverityHigh }

func (*HardcodedPrivateKey) Description() string {
	return "A 64-hex-digit literal has the shape of a secp256k1 private key. Anything committed " +
		"to source is public the moment the repository or the bytecode is; keys used during " +
		"testing must never survive into tracked contracts."
}

func (*HardcodedPrivateKey) Example() string {
	return "```solidity\n" +
		"bytes32 constant DEPLOYER_KEY = 0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80;\n" +
		"```"
}

func (*HardcodedPrivateKey) GasSavings() string { return "" }

func (r *HardcodedPrivateKey) RegisterCallbacks(v *visitor.Visitor) {
	v.OnExpression(func(e ast.Expression, file *scope.SourceFile, _ *scope.AnalysisContext) []findings.RuleFinding {
		var value string
		var span ast.Span
		switch lit := e.(type) {
		case *ast.NumberLiteral:
			value, span = lit.Value, lit.Span
		case *ast.StringLiteral:
			value, span = lit.Value, lit.Span
		case *ast.HexLiteral:
			value, span = lit.Value, lit.Span
		default:
			return nil
		}

		match := privateKeyRE.FindString(value)
		if match == "" {
			return nil
		}
		hexPart := strings.TrimPrefix(strings.TrimPrefix(match, "0x"), "0X")
		if shannonEntropy(hexPart) < entropyThreshold {
			return nil
		}
		return []findings.RuleFinding{{RuleID: r.ID(), Location: file.Location(span)}}
	})
}

func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}
	total := float64(len(s))
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
