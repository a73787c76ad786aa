package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/slvDev/solwatch/internal/engine/ast"
)

func (c *converter) expression(n *sitter.Node) ast.Expression {
	switch n.Kind() {
	case "binary_expression":
		e := &ast.BinaryExpr{Span: c.span(n)}
		if left := n.ChildByFieldName("left"); left != nil {
			e.Left = c.expression(left)
		}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Op = c.text(op)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			e.Right = c.expression(right)
		}
		return e

	case "unary_expression":
		e := &ast.UnaryExpr{Span: c.span(n), Prefix: true}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Op = c.text(op)
		}
		if arg := n.ChildByFieldName("argument"); arg != nil {
			e.Operand = c.expression(arg)
		}
		return e

	case "update_expression":
		e := &ast.UnaryExpr{Span: c.span(n)}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Op = c.text(op)
			e.Prefix = op.StartByte() == n.StartByte()
		}
		if arg := n.ChildByFieldName("argument"); arg != nil {
			e.Operand = c.expression(arg)
		}
		return e

	case "assignment_expression", "augmented_assignment_expression":
		e := &ast.AssignExpr{Span: c.span(n), Op: "="}
		if left := n.ChildByFieldName("left"); left != nil {
			e.Left = c.expression(left)
		}
		if op := n.ChildByFieldName("operator"); op != nil {
			e.Op = c.text(op)
		} else if n.Kind() == "augmented_assignment_expression" {
			e.Op = c.operatorBetween(n)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			e.Right = c.expression(right)
		}
		return e

	case "ternary_expression":
		e := &ast.ConditionalExpr{Span: c.span(n)}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			e.Cond = c.expression(cond)
		}
		if then := n.ChildByFieldName("success"); then != nil {
			e.Then = c.expression(then)
		}
		if els := n.ChildByFieldName("failure"); els != nil {
			e.Else = c.expression(els)
		}
		if e.Cond == nil {
			exprs := c.namedExpressions(n)
			if len(exprs) == 3 {
				e.Cond, e.Then, e.Else = exprs[0], exprs[1], exprs[2]
			}
		}
		return e

	case "call_expression":
		return c.callExpression(n)

	case "payable_conversion_expression":
		// payable(addr) behaves like a call for matching purposes.
		call := &ast.CallExpr{
			Span:   c.span(n),
			Callee: &ast.Identifier{Span: c.span(n), Name: "payable"},
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child != nil && child.Kind() == "call_arguments" {
				call.Args = c.callArguments(child, &call.ArgNames)
			}
		}
		return call

	case "meta_type_expression":
		e := &ast.MetaType{Span: c.span(n)}
		if child := firstNamedChild(n); child != nil {
			e.TypeExpr = c.typeName(child)
		}
		return e

	case "member_expression":
		e := &ast.MemberAccess{Span: c.span(n)}
		if obj := n.ChildByFieldName("object"); obj != nil {
			e.Expr = c.expression(obj)
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			e.Member = c.text(prop)
		}
		return e

	case "array_access":
		e := &ast.IndexAccess{Span: c.span(n)}
		if base := n.ChildByFieldName("base"); base != nil {
			e.Base = c.expression(base)
		}
		if idx := n.ChildByFieldName("index"); idx != nil {
			e.Index = c.expression(idx)
		}
		return e

	case "slice_access":
		e := &ast.SliceAccess{Span: c.span(n)}
		if base := n.ChildByFieldName("base"); base != nil {
			e.Base = c.expression(base)
		}
		exprs := c.namedExpressions(n)
		if len(exprs) > 1 {
			e.Start = exprs[1]
		}
		if len(exprs) > 2 {
			e.End = exprs[2]
		}
		return e

	case "parenthesized_expression":
		e := &ast.ParenExpr{Span: c.span(n)}
		if child := firstNamedChild(n); child != nil {
			e.Inner = c.expression(child)
		}
		return e

	case "tuple_expression":
		e := &ast.TupleExpr{Span: c.span(n)}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			e.Elems = append(e.Elems, c.expression(child))
		}
		if len(e.Elems) == 1 {
			return &ast.ParenExpr{Span: c.span(n), Inner: e.Elems[0]}
		}
		return e

	case "inline_array_expression":
		e := &ast.ArrayLiteral{Span: c.span(n)}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			e.Elems = append(e.Elems, c.expression(child))
		}
		return e

	case "new_expression":
		e := &ast.NewExpr{Span: c.span(n)}
		if child := firstNamedChild(n); child != nil {
			e.TypeExpr = c.typeName(child)
		}
		return e

	case "struct_expression":
		// Struct({field: value, ...}); keep the callee and named values.
		call := &ast.CallExpr{Span: c.span(n)}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			if child.Kind() == "struct_field_assignment" {
				var fieldName string
				var fieldValue ast.Expression
				for j := uint(0); j < child.NamedChildCount(); j++ {
					sub := child.NamedChild(j)
					if sub == nil {
						continue
					}
					if sub.Kind() == "identifier" && fieldName == "" {
						fieldName = c.text(sub)
						continue
					}
					fieldValue = c.expression(sub)
				}
				call.ArgNames = append(call.ArgNames, fieldName)
				call.Args = append(call.Args, fieldValue)
				continue
			}
			if call.Callee == nil {
				call.Callee = c.expression(child)
			}
		}
		return call

	case "identifier":
		return &ast.Identifier{Span: c.span(n), Name: c.text(n)}

	case "boolean_literal":
		return &ast.BoolLiteral{Span: c.span(n), Value: strings.TrimSpace(c.text(n)) == "true"}

	case "number_literal":
		return c.numberLiteral(n)

	case "string_literal", "unicode_string_literal":
		return &ast.StringLiteral{Span: c.span(n), Value: unquote(c.text(n))}

	case "hex_string_literal":
		return &ast.HexLiteral{Span: c.span(n), Value: c.text(n)}

	case "user_defined_type":
		return c.dottedIdentifier(n)

	case "primitive_type":
		return &ast.ElementaryType{Span: c.span(n), Name: c.text(n)}

	case "type_name", "mapping", "array_type", "function_type":
		return c.typeName(n)
	}

	// Unknown expression kind: unwrap a single named child, otherwise wrap
	// the children so traversal still reaches everything underneath.
	exprs := c.namedExpressions(n)
	switch len(exprs) {
	case 0:
		return &ast.Identifier{Span: c.span(n), Name: strings.TrimSpace(c.text(n))}
	case 1:
		return exprs[0]
	}
	return &ast.TupleExpr{Span: c.span(n), Elems: exprs}
}

func (c *converter) callExpression(n *sitter.Node) ast.Expression {
	call := &ast.CallExpr{Span: c.span(n)}
	if fn := n.ChildByFieldName("function"); fn != nil {
		call.Callee = c.expression(fn)
	}
	var optNames []string
	var optValues []ast.Expression
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "call_arguments":
			call.Args = c.callArguments(child, &call.ArgNames)
		case "call_struct_argument", "struct_field_assignment":
			// {value: x, gas: y} call options between callee and arguments.
			var name string
			var value ast.Expression
			for j := uint(0); j < child.NamedChildCount(); j++ {
				sub := child.NamedChild(j)
				if sub == nil {
					continue
				}
				if sub.Kind() == "identifier" && name == "" {
					name = c.text(sub)
					continue
				}
				value = c.expression(sub)
			}
			optNames = append(optNames, name)
			optValues = append(optValues, value)
		default:
			if call.Callee == nil {
				call.Callee = c.expression(child)
			}
		}
	}
	if len(optNames) > 0 {
		call.Callee = &ast.CallOptions{
			Span:   c.span(n),
			Callee: call.Callee,
			Names:  optNames,
			Values: optValues,
		}
	}
	return call
}

// callArguments flattens a call_arguments node. Named arguments
// (`f({a: 1, b: 2})`) record their names into names when provided; positional
// calls leave it untouched.
func (c *converter) callArguments(n *sitter.Node, names *[]string) []ast.Expression {
	var args []ast.Expression
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "call_struct_argument" || child.Kind() == "struct_field_assignment" {
			var name string
			var value ast.Expression
			for j := uint(0); j < child.NamedChildCount(); j++ {
				sub := child.NamedChild(j)
				if sub == nil {
					continue
				}
				if sub.Kind() == "identifier" && name == "" {
					name = c.text(sub)
					continue
				}
				value = c.expression(sub)
			}
			if names != nil {
				*names = append(*names, name)
			}
			args = append(args, value)
			continue
		}
		args = append(args, c.expression(child))
	}
	return args
}

// numberLiteral splits a trailing denomination word (wei, ether, days, ...)
// from the numeric text.
func (c *converter) numberLiteral(n *sitter.Node) *ast.NumberLiteral {
	lit := &ast.NumberLiteral{Span: c.span(n)}
	text := strings.TrimSpace(c.text(n))
	if idx := strings.LastIndexAny(text, " \t"); idx >= 0 {
		unit := text[idx+1:]
		switch unit {
		case "wei", "gwei", "ether", "seconds", "minutes", "hours", "days", "weeks":
			lit.Value = strings.TrimSpace(text[:idx])
			lit.Unit = unit
			return lit
		}
	}
	lit.Value = text
	return lit
}

func (c *converter) namedExpressions(n *sitter.Node) []ast.Expression {
	var out []ast.Expression
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		out = append(out, c.expression(child))
	}
	return out
}

// operatorBetween recovers the operator token of an augmented assignment when
// the grammar exposes no operator field: the first anonymous child between
// left and right operands.
func (c *converter) operatorBetween(n *sitter.Node) string {
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || child.IsNamed() {
			continue
		}
		text := c.text(child)
		if strings.HasSuffix(text, "=") {
			return text
		}
	}
	return "="
}
