// Package builtin holds the stock rule catalogue. Every rule is stateless
// and registers plain callbacks against the traversal dispatcher; rules that
// need ancestry go through the analysis context's query surface.
package builtin

import (
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/rules"
)

// All returns one instance of every builtin rule, highest severity first.
func All() []rules.Rule {
	return []rules.Rule{
		&DelegatecallInLoop{},
		&MsgValueInLoop{},
		&TxOriginAuth{},
		&HardcodedPrivateKey{},
		&DivideBeforeMultiply{},
		&UncheckedLowLevelCall{},
		&MissingStorageGap{},
		&FloatingPragma{},
		&RenounceOwnership{},
		&GtZeroComparison{},
		&PostIncrement{},
		&ArrayLengthInLoop{},
		&BoolStorageOverhead{},
		&MissingSPDXLicense{},
		&DuplicateImport{},
		&ConstantNaming{},
		&EmptyFunctionBody{},
	}
}

// loopBody returns the body of a loop statement, or nil for anything else.
func loopBody(s ast.Statement) ast.Statement {
	switch t := s.(type) {
	case *ast.ForStmt:
		return t.Body
	case *ast.WhileStmt:
		return t.Body
	case *ast.DoWhileStmt:
		return t.Body
	}
	return nil
}

// memberCallSpans collects the spans of calls whose callee is a member access
// on the given name, e.g. `x.delegatecall(...)`.
func memberCallSpans(n ast.Node, member string) []ast.Span {
	var spans []ast.Span
	ast.Inspect(n, func(c ast.Node) bool {
		call, ok := c.(*ast.CallExpr)
		if !ok {
			return true
		}
		if ma, ok := call.Callee.(*ast.MemberAccess); ok && ma.Member == member {
			spans = append(spans, call.Span)
		}
		return true
	})
	return spans
}

// memberAccessSpans collects spans of `<object>.<member>` accesses where the
// object is the given bare identifier.
func memberAccessSpans(n ast.Node, object, member string) []ast.Span {
	var spans []ast.Span
	ast.Inspect(n, func(c ast.Node) bool {
		ma, ok := c.(*ast.MemberAccess)
		if !ok {
			return true
		}
		if id, ok := ma.Expr.(*ast.Identifier); ok && id.Name == object && ma.Member == member {
			spans = append(spans, ma.Span)
		}
		return true
	})
	return spans
}
