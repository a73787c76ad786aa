// Package visitor is the traversal dispatch layer: a pre-order walk over one
// file's syntax tree that invokes registered callbacks per node category.
// Callbacks are pure; they return their findings and the visitor owns
// accumulation, so traversal order alone determines output order.
package visitor

import (
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/scope"
)

type (
	SourceUnitCallback   func(*ast.SourceUnit, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	UnitPartCallback     func(ast.UnitPart, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	ContractCallback     func(*ast.ContractDefinition, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	ContractPartCallback func(ast.ContractPart, *ast.ContractDefinition, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	FunctionCallback     func(*ast.FunctionDefinition, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	VariableCallback     func(*ast.VariableDeclaration, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	ExpressionCallback   func(ast.Expression, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
	StatementCallback    func(ast.Statement, *scope.SourceFile, *scope.AnalysisContext) []findings.RuleFinding
)

// Visitor holds the registered callbacks, one ordered list per category.
// Registration order is preserved within a category.
type Visitor struct {
	sourceUnitCbs   []SourceUnitCallback
	unitPartCbs     []UnitPartCallback
	contractCbs     []ContractCallback
	contractPartCbs []ContractPartCallback
	functionCbs     []FunctionCallback
	variableCbs     []VariableCallback
	expressionCbs   []ExpressionCallback
	statementCbs    []StatementCallback
}

func New() *Visitor {
	return &Visitor{}
}

func (v *Visitor) OnSourceUnit(cb SourceUnitCallback)     { v.sourceUnitCbs = append(v.sourceUnitCbs, cb) }
func (v *Visitor) OnUnitPart(cb UnitPartCallback)         { v.unitPartCbs = append(v.unitPartCbs, cb) }
func (v *Visitor) OnContract(cb ContractCallback)         { v.contractCbs = append(v.contractCbs, cb) }
func (v *Visitor) OnContractPart(cb ContractPartCallback) { v.contractPartCbs = append(v.contractPartCbs, cb) }
func (v *Visitor) OnFunction(cb FunctionCallback)         { v.functionCbs = append(v.functionCbs, cb) }
func (v *Visitor) OnVariable(cb VariableCallback)         { v.variableCbs = append(v.variableCbs, cb) }
func (v *Visitor) OnExpression(cb ExpressionCallback)     { v.expressionCbs = append(v.expressionCbs, cb) }
func (v *Visitor) OnStatement(cb StatementCallback)       { v.statementCbs = append(v.statementCbs, cb) }

// Traverse walks one file pre-order and returns all callback findings in
// traversal order. The context must be linked; traversal never mutates it.
func (v *Visitor) Traverse(file *scope.SourceFile, ctx *scope.AnalysisContext) []findings.RuleFinding {
	w := &walker{v: v, file: file, ctx: ctx}

	for _, cb := range v.sourceUnitCbs {
		w.collect(cb(file.Unit, file, ctx))
	}
	for _, part := range file.Unit.Parts {
		w.unitPart(part)
	}
	return w.out
}

type walker struct {
	v    *Visitor
	file *scope.SourceFile
	ctx  *scope.AnalysisContext
	out  []findings.RuleFinding
}

func (w *walker) collect(fs []findings.RuleFinding) {
	w.out = append(w.out, fs...)
}

func (w *walker) unitPart(part ast.UnitPart) {
	for _, cb := range w.v.unitPartCbs {
		w.collect(cb(part, w.file, w.ctx))
	}
	switch p := part.(type) {
	case *ast.ContractDefinition:
		w.contract(p)
	case *ast.FunctionDefinition:
		w.function(p)
	case *ast.VariableDeclaration:
		w.variable(p)
	default:
		w.nestedExpressions(part)
	}
}

func (w *walker) contract(def *ast.ContractDefinition) {
	for _, cb := range w.v.contractCbs {
		w.collect(cb(def, w.file, w.ctx))
	}
	for _, base := range def.Bases {
		for _, arg := range base.Args {
			w.expression(arg)
		}
	}
	for _, part := range def.Parts {
		for _, cb := range w.v.contractPartCbs {
			w.collect(cb(part, def, w.file, w.ctx))
		}
		switch p := part.(type) {
		case *ast.FunctionDefinition:
			w.function(p)
		case *ast.VariableDeclaration:
			w.variable(p)
		default:
			w.nestedExpressions(part)
		}
	}
}

func (w *walker) function(fn *ast.FunctionDefinition) {
	for _, cb := range w.v.functionCbs {
		w.collect(cb(fn, w.file, w.ctx))
	}
	for _, p := range fn.Params {
		w.expression(p.Type)
	}
	for _, r := range fn.Returns {
		w.expression(r.Type)
	}
	for _, m := range fn.Modifiers {
		for _, arg := range m.Args {
			w.expression(arg)
		}
	}
	if fn.Body != nil {
		w.statement(fn.Body)
	}
}

func (w *walker) variable(decl *ast.VariableDeclaration) {
	for _, cb := range w.v.variableCbs {
		w.collect(cb(decl, w.file, w.ctx))
	}
	w.expression(decl.Type)
	w.expression(decl.Value)
}

// statement dispatches statement callbacks and recurses. Every child of a
// statement is either a statement or an expression; both are covered, so no
// sub-tree goes unvisited.
func (w *walker) statement(s ast.Statement) {
	if s == nil || isNilBlock(s) {
		return
	}
	for _, cb := range w.v.statementCbs {
		w.collect(cb(s, w.file, w.ctx))
	}
	for _, child := range ast.Children(s) {
		switch c := child.(type) {
		case ast.Statement:
			w.statement(c)
		case ast.Expression:
			w.expression(c)
		}
	}
}

func (w *walker) expression(e ast.Expression) {
	if e == nil {
		return
	}
	for _, cb := range w.v.expressionCbs {
		w.collect(cb(e, w.file, w.ctx))
	}
	for _, child := range ast.Children(e) {
		if c, ok := child.(ast.Expression); ok {
			w.expression(c)
		}
	}
}

// nestedExpressions covers declaration kinds that carry type or argument
// expressions but no statements: structs, events, errors, using directives,
// user-defined value types.
func (w *walker) nestedExpressions(n ast.Node) {
	for _, child := range ast.Children(n) {
		if c, ok := child.(ast.Expression); ok {
			w.expression(c)
		}
	}
}

func isNilBlock(s ast.Statement) bool {
	b, ok := s.(*ast.Block)
	return ok && b == nil
}
