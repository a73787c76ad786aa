package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/slvDev/solwatch/internal/engine/ast"
)

// converter maps tree-sitter-solidity CST nodes onto the typed AST. The kind
// strings follow the JoranHonig/tree-sitter-solidity grammar.
type converter struct {
	src []byte
}

func (c *converter) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

func (c *converter) span(n *sitter.Node) ast.Span {
	return ast.Span{Start: int(n.StartByte()), End: int(n.EndByte())}
}

func (c *converter) sourceUnit(root *sitter.Node) *ast.SourceUnit {
	unit := &ast.SourceUnit{Span: c.span(root)}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		if part := c.unitPart(child); part != nil {
			unit.Parts = append(unit.Parts, part)
		}
	}
	return unit
}

func (c *converter) unitPart(n *sitter.Node) ast.UnitPart {
	switch n.Kind() {
	case "pragma_directive":
		return c.pragma(n)
	case "import_directive":
		return c.importDirective(n)
	case "contract_declaration":
		return c.contract(n, ast.KindContract)
	case "interface_declaration":
		return c.contract(n, ast.KindInterface)
	case "library_declaration":
		return c.contract(n, ast.KindLibrary)
	case "function_definition":
		return c.function(n, ast.FnFunction)
	case "constant_variable_declaration", "state_variable_declaration":
		return c.stateVariable(n)
	case "struct_declaration":
		return c.structDef(n)
	case "enum_declaration":
		return c.enumDef(n)
	case "event_definition":
		return c.eventDef(n)
	case "error_declaration":
		return c.errorDef(n)
	case "using_directive":
		return c.usingDirective(n)
	case "user_defined_type_definition":
		return c.typeDef(n)
	}
	return nil
}

// pragma extracts name and requirement from the raw directive text; the
// grammar tokenizes version constraints too finely to be worth walking.
func (c *converter) pragma(n *sitter.Node) *ast.PragmaDirective {
	raw := strings.TrimSuffix(strings.TrimSpace(c.text(n)), ";")
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "pragma"))
	name, value := raw, ""
	if idx := strings.IndexAny(raw, " \t"); idx >= 0 {
		name = raw[:idx]
		value = strings.TrimSpace(raw[idx:])
	}
	return &ast.PragmaDirective{Span: c.span(n), Name: name, Value: value}
}

func (c *converter) importDirective(n *sitter.Node) *ast.ImportDirective {
	imp := &ast.ImportDirective{Span: c.span(n)}

	inBraces := false
	var pendingSymbol *ast.ImportSymbol
	afterAs := false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "{":
			inBraces = true
		case "}":
			if pendingSymbol != nil {
				imp.Symbols = append(imp.Symbols, *pendingSymbol)
				pendingSymbol = nil
			}
			inBraces = false
		case ",":
			if pendingSymbol != nil {
				imp.Symbols = append(imp.Symbols, *pendingSymbol)
				pendingSymbol = nil
			}
			afterAs = false
		case "as":
			afterAs = true
		case "string":
			imp.Path = unquote(c.text(child))
		case "identifier":
			name := c.text(child)
			switch {
			case inBraces && afterAs && pendingSymbol != nil:
				pendingSymbol.Alias = name
				afterAs = false
			case inBraces:
				pendingSymbol = &ast.ImportSymbol{Name: name}
			case afterAs:
				imp.Alias = name
				afterAs = false
			}
		}
	}
	if pendingSymbol != nil {
		imp.Symbols = append(imp.Symbols, *pendingSymbol)
	}
	return imp
}

func (c *converter) contract(n *sitter.Node, kind ast.ContractKind) *ast.ContractDefinition {
	def := &ast.ContractDefinition{Span: c.span(n), Kind: kind}

	if kind == ast.KindContract {
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child != nil && child.Kind() == "abstract" {
				def.Kind = ast.KindAbstract
				break
			}
		}
	}

	if name := n.ChildByFieldName("name"); name != nil {
		def.Name = c.text(name)
		def.NameSpan = c.span(name)
	}

	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "inheritance_specifier":
			def.Bases = append(def.Bases, c.baseSpec(child))
		case "contract_body":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				member := child.NamedChild(j)
				if member == nil {
					continue
				}
				if part := c.contractPart(member); part != nil {
					def.Parts = append(def.Parts, part)
				}
			}
		}
	}
	return def
}

func (c *converter) baseSpec(n *sitter.Node) *ast.BaseSpec {
	base := &ast.BaseSpec{Span: c.span(n)}
	if ancestor := n.ChildByFieldName("ancestor"); ancestor != nil {
		base.Name = c.text(ancestor)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "user_defined_type", "identifier":
			if base.Name == "" {
				base.Name = c.text(child)
			}
		case "call_arguments":
			base.Args = append(base.Args, c.callArguments(child, nil)...)
		}
	}
	return base
}

func (c *converter) contractPart(n *sitter.Node) ast.ContractPart {
	switch n.Kind() {
	case "function_definition":
		return c.function(n, ast.FnFunction)
	case "modifier_definition":
		return c.function(n, ast.FnModifier)
	case "constructor_definition":
		return c.function(n, ast.FnConstructor)
	case "fallback_receive_definition":
		kind := ast.FnFallback
		if strings.HasPrefix(strings.TrimSpace(c.text(n)), "receive") {
			kind = ast.FnReceive
		}
		return c.function(n, kind)
	case "state_variable_declaration", "constant_variable_declaration":
		return c.stateVariable(n)
	case "struct_declaration":
		return c.structDef(n)
	case "enum_declaration":
		return c.enumDef(n)
	case "event_definition":
		return c.eventDef(n)
	case "error_declaration":
		return c.errorDef(n)
	case "using_directive":
		return c.usingDirective(n)
	case "user_defined_type_definition":
		return c.typeDef(n)
	}
	return nil
}

func (c *converter) function(n *sitter.Node, kind ast.FunctionKind) *ast.FunctionDefinition {
	fn := &ast.FunctionDefinition{Span: c.span(n), Kind: kind}

	if name := n.ChildByFieldName("name"); name != nil {
		fn.Name = c.text(name)
		fn.NameSpan = c.span(name)
	}

	seenReturns := false
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "returns":
			seenReturns = true
		case "parameter":
			p := c.parameter(child)
			if seenReturns {
				fn.Returns = append(fn.Returns, p)
			} else {
				fn.Params = append(fn.Params, p)
			}
		case "visibility":
			switch c.text(child) {
			case "public":
				fn.Visibility = ast.VisibilityPublic
			case "private":
				fn.Visibility = ast.VisibilityPrivate
			case "internal":
				fn.Visibility = ast.VisibilityInternal
			case "external":
				fn.Visibility = ast.VisibilityExternal
			}
		case "state_mutability":
			switch c.text(child) {
			case "payable":
				fn.Mutability = ast.Payable
			case "view":
				fn.Mutability = ast.View
			case "pure":
				fn.Mutability = ast.Pure
			}
		case "payable":
			fn.Mutability = ast.Payable
		case "virtual":
			fn.Virtual = true
		case "override_specifier":
			fn.Override = true
		case "modifier_invocation":
			fn.Modifiers = append(fn.Modifiers, c.modifierInvocation(child))
		case "function_body", "block_statement":
			fn.Body = c.block(child)
		}
	}
	return fn
}

func (c *converter) modifierInvocation(n *sitter.Node) *ast.ModifierInvocation {
	mi := &ast.ModifierInvocation{Span: c.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier", "user_defined_type":
			if mi.Name == "" {
				mi.Name = c.text(child)
			}
		case "call_arguments":
			mi.Args = append(mi.Args, c.callArguments(child, nil)...)
		}
	}
	return mi
}

func (c *converter) parameter(n *sitter.Node) *ast.Parameter {
	p := &ast.Parameter{Span: c.span(n)}
	if ty := n.ChildByFieldName("type"); ty != nil {
		p.Type = c.typeName(ty)
	}
	if name := n.ChildByFieldName("name"); name != nil {
		p.Name = c.text(name)
	}
	if loc := n.ChildByFieldName("location"); loc != nil {
		p.Location = c.text(loc)
	}
	return p
}

func (c *converter) stateVariable(n *sitter.Node) *ast.VariableDeclaration {
	v := &ast.VariableDeclaration{Span: c.span(n)}
	if ty := n.ChildByFieldName("type"); ty != nil {
		v.Type = c.typeName(ty)
	}
	if name := n.ChildByFieldName("name"); name != nil {
		v.Name = c.text(name)
		v.NameSpan = c.span(name)
	}
	if val := n.ChildByFieldName("value"); val != nil {
		v.Value = c.expression(val)
	}
	if n.Kind() == "constant_variable_declaration" {
		v.Mutability = ast.Constant
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "visibility":
			switch c.text(child) {
			case "public":
				v.Visibility = ast.VisibilityPublic
			case "private":
				v.Visibility = ast.VisibilityPrivate
			case "internal":
				v.Visibility = ast.VisibilityInternal
			}
		case "constant":
			v.Mutability = ast.Constant
		case "immutable":
			v.Mutability = ast.Immutable
		}
	}
	return v
}

func (c *converter) structDef(n *sitter.Node) *ast.StructDefinition {
	def := &ast.StructDefinition{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		def.Name = c.text(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() != "struct_member" {
			continue
		}
		field := &ast.Parameter{Span: c.span(child)}
		if ty := child.ChildByFieldName("type"); ty != nil {
			field.Type = c.typeName(ty)
		}
		if name := child.ChildByFieldName("name"); name != nil {
			field.Name = c.text(name)
		}
		def.Fields = append(def.Fields, field)
	}
	return def
}

func (c *converter) enumDef(n *sitter.Node) *ast.EnumDefinition {
	def := &ast.EnumDefinition{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		def.Name = c.text(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Kind() == "enum_value" || (child.Kind() == "identifier" && c.text(child) != def.Name) {
			def.Values = append(def.Values, c.text(child))
		}
	}
	return def
}

func (c *converter) eventDef(n *sitter.Node) *ast.EventDefinition {
	def := &ast.EventDefinition{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		def.Name = c.text(name)
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "anonymous":
			def.Anonymous = true
		case "event_paramater", "event_parameter":
			// The grammar historically misspells this kind; accept both.
			p := &ast.EventParameter{Span: c.span(child)}
			if ty := child.ChildByFieldName("type"); ty != nil {
				p.Type = c.typeName(ty)
			}
			if name := child.ChildByFieldName("name"); name != nil {
				p.Name = c.text(name)
			}
			for j := uint(0); j < child.ChildCount(); j++ {
				if sub := child.Child(j); sub != nil && sub.Kind() == "indexed" {
					p.Indexed = true
				}
			}
			def.Params = append(def.Params, p)
		}
	}
	return def
}

func (c *converter) errorDef(n *sitter.Node) *ast.ErrorDefinition {
	def := &ast.ErrorDefinition{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		def.Name = c.text(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Kind() != "error_parameter" {
			continue
		}
		p := &ast.Parameter{Span: c.span(child)}
		if ty := child.ChildByFieldName("type"); ty != nil {
			p.Type = c.typeName(ty)
		}
		if name := child.ChildByFieldName("name"); name != nil {
			p.Name = c.text(name)
		}
		def.Params = append(def.Params, p)
	}
	return def
}

func (c *converter) usingDirective(n *sitter.Node) *ast.UsingDirective {
	u := &ast.UsingDirective{Span: c.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "user_defined_type", "identifier":
			if u.Library == "" {
				u.Library = c.text(child)
			}
		case "type_alias", "primitive_type", "mapping", "array_type":
			u.Target = c.typeName(child)
		case "any_source_type":
			// using L for *; target stays nil
		}
	}
	return u
}

func (c *converter) typeDef(n *sitter.Node) *ast.TypeDefinition {
	def := &ast.TypeDefinition{Span: c.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		def.Name = c.text(name)
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child != nil && child.Kind() == "primitive_type" {
			def.Underlying = c.typeName(child)
		}
	}
	return def
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

func (c *converter) typeName(n *sitter.Node) ast.Expression {
	switch n.Kind() {
	case "type_name":
		// Wrapper node; unwrap to the single concrete child, handling the
		// inline array form `T[...]` which has no dedicated child kind.
		if isInlineArrayType(c.text(n)) {
			return c.arrayTypeFromChildren(n)
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if child := n.NamedChild(i); child != nil {
				return c.typeName(child)
			}
		}
		return &ast.ElementaryType{Span: c.span(n), Name: strings.TrimSpace(c.text(n))}
	case "primitive_type":
		return &ast.ElementaryType{Span: c.span(n), Name: c.text(n)}
	case "user_defined_type", "identifier":
		return c.dottedIdentifier(n)
	case "mapping":
		m := &ast.MappingType{Span: c.span(n)}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			child := n.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "mapping_key":
				for j := uint(0); j < child.NamedChildCount(); j++ {
					if sub := child.NamedChild(j); sub != nil {
						m.Key = c.typeName(sub)
						break
					}
				}
			case "type_name", "primitive_type", "user_defined_type", "mapping", "array_type":
				if m.Key == nil {
					m.Key = c.typeName(child)
				} else if m.Value == nil {
					m.Value = c.typeName(child)
				}
			}
		}
		return m
	case "array_type":
		return c.arrayTypeFromChildren(n)
	case "function_type":
		return &ast.FunctionType{Span: c.span(n), Raw: c.text(n)}
	}
	return &ast.ElementaryType{Span: c.span(n), Name: strings.TrimSpace(c.text(n))}
}

func (c *converter) arrayTypeFromChildren(n *sitter.Node) ast.Expression {
	at := &ast.ArrayType{Span: c.span(n)}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "type_name", "primitive_type", "user_defined_type", "mapping", "array_type":
			if at.Elem == nil {
				at.Elem = c.typeName(child)
			}
		default:
			if at.Elem != nil && at.Len == nil {
				at.Len = c.expression(child)
			}
		}
	}
	if at.Elem == nil {
		return &ast.ElementaryType{Span: c.span(n), Name: strings.TrimSpace(c.text(n))}
	}
	return at
}

// dottedIdentifier flattens user_defined_type (a.b.c) into nested member
// accesses so ancestry names like `Lib.Base` keep their structure.
func (c *converter) dottedIdentifier(n *sitter.Node) ast.Expression {
	text := c.text(n)
	parts := strings.Split(text, ".")
	var expr ast.Expression = &ast.Identifier{Span: c.span(n), Name: strings.TrimSpace(parts[0])}
	for _, part := range parts[1:] {
		expr = &ast.MemberAccess{Span: c.span(n), Expr: expr, Member: strings.TrimSpace(part)}
	}
	return expr
}

func isInlineArrayType(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasSuffix(trimmed, "]") && strings.Contains(trimmed, "[")
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
