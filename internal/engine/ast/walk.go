package ast

// Inspect walks the subtree rooted at n in pre-order, calling f for every
// non-nil node. If f returns false the node's children are skipped. Rules use
// this for local pattern scans (for example "does this loop body contain a
// delegatecall"); the engine-wide traversal lives in the visitor package.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) {
		return
	}
	if !f(n) {
		return
	}
	for _, child := range Children(n) {
		Inspect(child, f)
	}
}

// Children enumerates the direct child nodes of n. Every node kind that can
// nest expressions or statements is listed here; leaves return nil.
func Children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, c := range ns {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}

	switch t := n.(type) {
	case *SourceUnit:
		for _, p := range t.Parts {
			add(p)
		}

	case *PragmaDirective, *ImportDirective:
	case *ContractDefinition:
		for _, b := range t.Bases {
			for _, a := range b.Args {
				add(a)
			}
		}
		for _, p := range t.Parts {
			add(p)
		}
	case *FunctionDefinition:
		for _, p := range t.Params {
			add(p.Type)
		}
		for _, r := range t.Returns {
			add(r.Type)
		}
		for _, m := range t.Modifiers {
			for _, a := range m.Args {
				add(a)
			}
		}
		add(t.Body)
	case *VariableDeclaration:
		add(t.Type, t.Value)
	case *StructDefinition:
		for _, f := range t.Fields {
			add(f.Type)
		}
	case *EnumDefinition:
	case *EventDefinition:
		for _, p := range t.Params {
			add(p.Type)
		}
	case *ErrorDefinition:
		for _, p := range t.Params {
			add(p.Type)
		}
	case *UsingDirective:
		add(t.Target)
	case *TypeDefinition:
		add(t.Underlying)

	case *Block:
		for _, s := range t.Stmts {
			add(s)
		}
	case *IfStmt:
		add(t.Cond, t.Then, t.Else)
	case *WhileStmt:
		add(t.Cond, t.Body)
	case *DoWhileStmt:
		add(t.Body, t.Cond)
	case *ForStmt:
		add(t.Init, t.Cond, t.Post, t.Body)
	case *ExprStmt:
		add(t.Expr)
	case *VarDeclStmt:
		for _, d := range t.Decls {
			add(d.Type)
		}
		add(t.Value)
	case *ReturnStmt:
		add(t.Value)
	case *EmitStmt:
		add(t.Call)
	case *RevertStmt:
		add(t.ErrorCall)
	case *TryStmt:
		add(t.Expr)
		for _, r := range t.Returns {
			add(r.Type)
		}
		add(t.Body)
		for _, c := range t.Catches {
			for _, p := range c.Params {
				add(p.Type)
			}
			add(c.Body)
		}
	case *ContinueStmt, *BreakStmt, *AssemblyStmt, *PlaceholderStmt:

	case *Identifier, *BoolLiteral, *NumberLiteral, *StringLiteral, *HexLiteral:
	case *ArrayLiteral:
		for _, e := range t.Elems {
			add(e)
		}
	case *TupleExpr:
		for _, e := range t.Elems {
			add(e)
		}
	case *BinaryExpr:
		add(t.Left, t.Right)
	case *UnaryExpr:
		add(t.Operand)
	case *AssignExpr:
		add(t.Left, t.Right)
	case *ConditionalExpr:
		add(t.Cond, t.Then, t.Else)
	case *CallExpr:
		add(t.Callee)
		for _, a := range t.Args {
			add(a)
		}
	case *CallOptions:
		add(t.Callee)
		for _, v := range t.Values {
			add(v)
		}
	case *MemberAccess:
		add(t.Expr)
	case *IndexAccess:
		add(t.Base, t.Index)
	case *SliceAccess:
		add(t.Base, t.Start, t.End)
	case *NewExpr:
		add(t.TypeExpr)
	case *MetaType:
		add(t.TypeExpr)
	case *ParenExpr:
		add(t.Inner)
	case *ElementaryType, *FunctionType:
	case *MappingType:
		add(t.Key, t.Value)
	case *ArrayType:
		add(t.Elem, t.Len)
	}

	return out
}

// ContainsCallNamed reports whether the subtree contains a call whose callee
// is the given bare identifier or a member access ending in it.
func ContainsCallNamed(n Node, name string) bool {
	found := false
	Inspect(n, func(c Node) bool {
		if found {
			return false
		}
		call, ok := c.(*CallExpr)
		if !ok {
			return true
		}
		switch callee := call.Callee.(type) {
		case *Identifier:
			if callee.Name == name {
				found = true
			}
		case *MemberAccess:
			if callee.Member == name {
				found = true
			}
		}
		return !found
	})
	return found
}

// ContainsMemberAccess reports whether the subtree accesses `.member` on any
// expression.
func ContainsMemberAccess(n Node, member string) bool {
	found := false
	Inspect(n, func(c Node) bool {
		if found {
			return false
		}
		if ma, ok := c.(*MemberAccess); ok && ma.Member == member {
			found = true
		}
		return !found
	})
	return found
}

// isNilNode guards against typed-nil interface values; the only optional
// child stored through a concrete pointer type is *Block.
func isNilNode(n Node) bool {
	if b, ok := n.(*Block); ok {
		return b == nil
	}
	return false
}
