package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/slvDev/solwatch/internal/engine/ast"
)

// block converts a function_body or block_statement node. An `unchecked`
// keyword child marks the whole block.
func (c *converter) block(n *sitter.Node) *ast.Block {
	b := &ast.Block{Span: c.span(n)}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "unchecked" {
			b.Unchecked = true
			continue
		}
		if !child.IsNamed() {
			continue
		}
		if s := c.statement(child); s != nil {
			b.Stmts = append(b.Stmts, s)
		}
	}
	return b
}

func (c *converter) statement(n *sitter.Node) ast.Statement {
	switch n.Kind() {
	case "block_statement", "function_body":
		return c.block(n)
	case "expression_statement":
		stmt := &ast.ExprStmt{Span: c.span(n)}
		if child := firstNamedChild(n); child != nil {
			stmt.Expr = c.expression(child)
		}
		return stmt
	case "variable_declaration_statement":
		return c.varDeclStatement(n)
	case "if_statement":
		return c.ifStatement(n)
	case "for_statement":
		return c.forStatement(n)
	case "while_statement":
		stmt := &ast.WhileStmt{Span: c.span(n)}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			stmt.Cond = c.expression(cond)
		}
		if body := n.ChildByFieldName("body"); body != nil {
			stmt.Body = c.statement(body)
		}
		c.fillCondBody(n, &stmt.Cond, &stmt.Body)
		return stmt
	case "do_while_statement":
		stmt := &ast.DoWhileStmt{Span: c.span(n)}
		if body := n.ChildByFieldName("body"); body != nil {
			stmt.Body = c.statement(body)
		}
		if cond := n.ChildByFieldName("condition"); cond != nil {
			stmt.Cond = c.expression(cond)
		}
		if stmt.Body == nil || stmt.Cond == nil {
			for i := uint(0); i < n.NamedChildCount(); i++ {
				child := n.NamedChild(i)
				if child == nil {
					continue
				}
				if stmt.Body == nil && isStatementKind(child.Kind()) {
					stmt.Body = c.statement(child)
				} else if stmt.Cond == nil {
					stmt.Cond = c.expression(child)
				}
			}
		}
		return stmt
	case "return_statement":
		stmt := &ast.ReturnStmt{Span: c.span(n)}
		if child := firstNamedChild(n); child != nil {
			stmt.Value = c.expression(child)
		}
		return stmt
	case "emit_statement":
		stmt := &ast.EmitStmt{Span: c.span(n)}
		call := &ast.CallExpr{Span: c.span(n)}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "call_arguments":
				call.Args = c.callArguments(child, &call.ArgNames)
			default:
				if call.Callee == nil {
					call.Callee = c.expression(child)
				}
			}
		}
		stmt.Call = call
		return stmt
	case "revert_statement":
		stmt := &ast.RevertStmt{Span: c.span(n)}
		call := &ast.CallExpr{Span: c.span(n)}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "revert_arguments", "call_arguments":
				call.Args = c.callArguments(child, &call.ArgNames)
			default:
				if call.Callee == nil {
					call.Callee = c.expression(child)
				}
			}
		}
		if call.Callee != nil || len(call.Args) > 0 {
			stmt.ErrorCall = call
		}
		return stmt
	case "try_statement":
		return c.tryStatement(n)
	case "continue_statement":
		return &ast.ContinueStmt{Span: c.span(n)}
	case "break_statement":
		return &ast.BreakStmt{Span: c.span(n)}
	case "assembly_statement":
		return &ast.AssemblyStmt{Span: c.span(n), Body: c.text(n)}
	}
	// Modifier placeholder `_;` surfaces as an expression statement over a
	// bare underscore identifier in some grammar versions; anything else
	// unknown degrades to an opaque statement at the right span.
	if strings.TrimSpace(c.text(n)) == "_;" {
		return &ast.PlaceholderStmt{Span: c.span(n)}
	}
	if child := firstNamedChild(n); child != nil && isStatementKind(child.Kind()) {
		return c.statement(child)
	}
	return &ast.ExprStmt{Span: c.span(n), Expr: c.expression(n)}
}

func isStatementKind(kind string) bool {
	switch kind {
	case "block_statement", "function_body", "expression_statement",
		"variable_declaration_statement", "if_statement", "for_statement",
		"while_statement", "do_while_statement", "return_statement",
		"emit_statement", "revert_statement", "try_statement",
		"continue_statement", "break_statement", "assembly_statement":
		return true
	}
	return false
}

func (c *converter) varDeclStatement(n *sitter.Node) *ast.VarDeclStmt {
	stmt := &ast.VarDeclStmt{Span: c.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "variable_declaration":
			stmt.Decls = append(stmt.Decls, c.localVar(child))
		case "variable_declaration_tuple":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				sub := child.NamedChild(j)
				if sub != nil && sub.Kind() == "variable_declaration" {
					stmt.Decls = append(stmt.Decls, c.localVar(sub))
				}
			}
		default:
			stmt.Value = c.expression(child)
		}
	}
	return stmt
}

func (c *converter) localVar(n *sitter.Node) *ast.LocalVar {
	lv := &ast.LocalVar{Span: c.span(n)}
	if ty := n.ChildByFieldName("type"); ty != nil {
		lv.Type = c.typeName(ty)
	}
	if name := n.ChildByFieldName("name"); name != nil {
		lv.Name = c.text(name)
	}
	return lv
}

func (c *converter) ifStatement(n *sitter.Node) *ast.IfStmt {
	stmt := &ast.IfStmt{Span: c.span(n)}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		stmt.Cond = c.expression(cond)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		stmt.Then = c.statement(body)
	}
	if els := n.ChildByFieldName("else"); els != nil {
		stmt.Else = c.statement(els)
	}
	if stmt.Cond != nil && stmt.Then != nil {
		return stmt
	}
	// Field names vary between grammar versions; fall back to positional
	// named children: condition, then-branch, optional else-branch.
	stmt.Cond, stmt.Then, stmt.Else = nil, nil, nil
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch {
		case stmt.Cond == nil && !isStatementKind(child.Kind()):
			stmt.Cond = c.expression(child)
		case stmt.Then == nil:
			stmt.Then = c.statement(child)
		case stmt.Else == nil:
			stmt.Else = c.statement(child)
		}
	}
	return stmt
}

func (c *converter) fillCondBody(n *sitter.Node, cond *ast.Expression, body *ast.Statement) {
	if *cond != nil && *body != nil {
		return
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if isStatementKind(child.Kind()) {
			if *body == nil {
				*body = c.statement(child)
			}
		} else if *cond == nil {
			*cond = c.expression(child)
		}
	}
}

func (c *converter) forStatement(n *sitter.Node) *ast.ForStmt {
	stmt := &ast.ForStmt{Span: c.span(n)}
	if init := n.ChildByFieldName("initial"); init != nil {
		stmt.Init = c.statement(init)
	}
	if cond := n.ChildByFieldName("condition"); cond != nil {
		// The condition slot is an expression_statement in this grammar.
		if cond.Kind() == "expression_statement" {
			if inner := firstNamedChild(cond); inner != nil {
				stmt.Cond = c.expression(inner)
			}
		} else {
			stmt.Cond = c.expression(cond)
		}
	}
	if post := n.ChildByFieldName("update"); post != nil {
		stmt.Post = c.expression(post)
	}
	if body := n.ChildByFieldName("body"); body != nil {
		stmt.Body = c.statement(body)
	}
	if stmt.Body == nil {
		// Last named child is the body when field lookup fails.
		for i := n.NamedChildCount(); i > 0; i-- {
			if child := n.NamedChild(i - 1); child != nil {
				stmt.Body = c.statement(child)
				break
			}
		}
	}
	return stmt
}

func (c *converter) tryStatement(n *sitter.Node) *ast.TryStmt {
	stmt := &ast.TryStmt{Span: c.span(n)}
	seenBody := false
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "parameter":
			if !seenBody {
				stmt.Returns = append(stmt.Returns, c.parameter(child))
			}
		case "block_statement", "function_body":
			stmt.Body = c.block(child)
			seenBody = true
		case "catch_clause":
			stmt.Catches = append(stmt.Catches, c.catchClause(child))
		default:
			if stmt.Expr == nil {
				stmt.Expr = c.expression(child)
			}
		}
	}
	return stmt
}

func (c *converter) catchClause(n *sitter.Node) *ast.CatchClause {
	clause := &ast.CatchClause{Span: c.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			clause.Identifier = c.text(child)
		case "parameter":
			clause.Params = append(clause.Params, c.parameter(child))
		case "block_statement", "function_body":
			clause.Body = c.block(child)
		}
	}
	return clause
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if child := n.NamedChild(i); child != nil {
			return child
		}
	}
	return nil
}
