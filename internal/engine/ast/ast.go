// Package ast defines the typed Solidity syntax tree the rest of the engine
// operates on. The tree-sitter CST produced by the parser is converted into
// these nodes once per file; everything downstream (context, visitor, rules)
// is independent of the concrete parser.
package ast

// Span is a half-open byte range [Start, End) into the owning file's source.
type Span struct {
	Start int
	End   int
}

func (s Span) Pos() Span { return s }

type Node interface {
	Pos() Span
}

// SourceUnit is the root of one parsed file.
type SourceUnit struct {
	Span
	Parts []UnitPart
}

// UnitPart is a top-level item of a source unit.
type UnitPart interface {
	Node
	unitPart()
}

// ContractPart is an item inside a contract body.
type ContractPart interface {
	Node
	contractPart()
}

type Expression interface {
	Node
	expr()
}

type Statement interface {
	Node
	stmt()
}

type ContractKind int

const (
	KindContract ContractKind = iota
	KindInterface
	KindLibrary
	KindAbstract
)

func (k ContractKind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindInterface:
		return "interface"
	case KindLibrary:
		return "library"
	case KindAbstract:
		return "abstract contract"
	}
	return "unknown"
}

type Visibility int

const (
	VisibilityUnspecified Visibility = iota
	VisibilityPublic
	VisibilityPrivate
	VisibilityInternal
	VisibilityExternal
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	case VisibilityInternal:
		return "internal"
	case VisibilityExternal:
		return "external"
	}
	return ""
}

// Mutability of a state variable.
type Mutability int

const (
	Mutable Mutability = iota
	Constant
	Immutable
)

func (m Mutability) String() string {
	switch m {
	case Constant:
		return "constant"
	case Immutable:
		return "immutable"
	}
	return "mutable"
}

type FunctionKind int

const (
	FnFunction FunctionKind = iota
	FnConstructor
	FnModifier
	FnFallback
	FnReceive
)

func (k FunctionKind) String() string {
	switch k {
	case FnConstructor:
		return "constructor"
	case FnModifier:
		return "modifier"
	case FnFallback:
		return "fallback"
	case FnReceive:
		return "receive"
	}
	return "function"
}

type StateMutability int

const (
	NonPayable StateMutability = iota
	Payable
	View
	Pure
)

func (m StateMutability) String() string {
	switch m {
	case Payable:
		return "payable"
	case View:
		return "view"
	case Pure:
		return "pure"
	}
	return ""
}

// ---------------------------------------------------------------------------
// Unit parts
// ---------------------------------------------------------------------------

// PragmaDirective such as `pragma solidity ^0.8.20;`.
type PragmaDirective struct {
	Span
	Name  string // "solidity", "abicoder", ...
	Value string // raw version/requirement text
}

type ImportSymbol struct {
	Name  string
	Alias string
}

// ImportDirective covers `import "x.sol";`, `import "x.sol" as y;` and
// `import {A as B, C} from "x.sol";`.
type ImportDirective struct {
	Span
	Path    string
	Alias   string
	Symbols []ImportSymbol
}

// BaseSpec is one entry of a contract's inheritance list, in source order.
type BaseSpec struct {
	Span
	Name string // as written, possibly dotted (Lib.Base)
	Args []Expression
}

type ContractDefinition struct {
	Span
	Kind     ContractKind
	Name     string
	NameSpan Span
	Bases    []*BaseSpec
	Parts    []ContractPart
}

type Parameter struct {
	Span
	Type     Expression
	Name     string
	Location string // "memory", "storage", "calldata" or empty
}

type ModifierInvocation struct {
	Span
	Name string
	Args []Expression
}

type FunctionDefinition struct {
	Span
	Kind       FunctionKind
	Name       string
	NameSpan   Span
	Params     []*Parameter
	Returns    []*Parameter
	Visibility Visibility
	Mutability StateMutability
	Virtual    bool
	Override   bool
	Modifiers  []*ModifierInvocation
	Body       *Block // nil for declarations without a body
}

// VariableDeclaration is a state variable or a file-level constant.
type VariableDeclaration struct {
	Span
	Type       Expression
	Name       string
	NameSpan   Span
	Visibility Visibility
	Mutability Mutability
	Value      Expression // nil without initializer
}

type StructDefinition struct {
	Span
	Name   string
	Fields []*Parameter
}

type EnumDefinition struct {
	Span
	Name   string
	Values []string
}

type EventParameter struct {
	Span
	Type    Expression
	Indexed bool
	Name    string
}

type EventDefinition struct {
	Span
	Name      string
	Params    []*EventParameter
	Anonymous bool
}

type ErrorDefinition struct {
	Span
	Name   string
	Params []*Parameter
}

// UsingDirective: `using SafeERC20 for IERC20;`.
type UsingDirective struct {
	Span
	Library string
	Target  Expression // nil for `using ... for *;`
}

// TypeDefinition: `type Price is uint128;`.
type TypeDefinition struct {
	Span
	Name       string
	Underlying Expression
}

func (*PragmaDirective) unitPart()     {}
func (*ImportDirective) unitPart()     {}
func (*ContractDefinition) unitPart()  {}
func (*FunctionDefinition) unitPart()  {}
func (*VariableDeclaration) unitPart() {}
func (*StructDefinition) unitPart()    {}
func (*EnumDefinition) unitPart()      {}
func (*EventDefinition) unitPart()     {}
func (*ErrorDefinition) unitPart()     {}
func (*UsingDirective) unitPart()      {}
func (*TypeDefinition) unitPart()      {}

func (*FunctionDefinition) contractPart()  {}
func (*VariableDeclaration) contractPart() {}
func (*StructDefinition) contractPart()    {}
func (*EnumDefinition) contractPart()      {}
func (*EventDefinition) contractPart()     {}
func (*ErrorDefinition) contractPart()     {}
func (*UsingDirective) contractPart()      {}
func (*TypeDefinition) contractPart()      {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

type Block struct {
	Span
	Unchecked bool
	Stmts     []Statement
}

type IfStmt struct {
	Span
	Cond Expression
	Then Statement
	Else Statement // nil without else branch
}

type WhileStmt struct {
	Span
	Cond Expression
	Body Statement
}

type DoWhileStmt struct {
	Span
	Body Statement
	Cond Expression
}

type ForStmt struct {
	Span
	Init Statement  // nil when omitted
	Cond Expression // nil when omitted
	Post Expression // nil when omitted
	Body Statement
}

type ExprStmt struct {
	Span
	Expr Expression
}

type LocalVar struct {
	Span
	Type Expression // nil inside tuple holes
	Name string
}

// VarDeclStmt covers `uint x = 1;` and `(uint a, , uint c) = f();`.
type VarDeclStmt struct {
	Span
	Decls []*LocalVar
	Value Expression // nil without initializer
}

type ReturnStmt struct {
	Span
	Value Expression // nil for bare return
}

type EmitStmt struct {
	Span
	Call Expression
}

// RevertStmt: `revert;`, `revert("msg");` handled as ExprStmt(CallExpr) by the
// grammar; this covers `revert Err(args);`.
type RevertStmt struct {
	Span
	ErrorCall Expression // nil for bare revert
}

type CatchClause struct {
	Span
	Identifier string // "Error", "Panic" or empty
	Params     []*Parameter
	Body       *Block
}

type TryStmt struct {
	Span
	Expr    Expression
	Returns []*Parameter
	Body    *Block
	Catches []*CatchClause
}

type ContinueStmt struct{ Span }

type BreakStmt struct{ Span }

// AssemblyStmt keeps the Yul body opaque; rules that care match on the raw
// text.
type AssemblyStmt struct {
	Span
	Body string
}

// PlaceholderStmt is the `_;` inside a modifier body.
type PlaceholderStmt struct{ Span }

func (*Block) stmt()           {}
func (*IfStmt) stmt()          {}
func (*WhileStmt) stmt()       {}
func (*DoWhileStmt) stmt()     {}
func (*ForStmt) stmt()         {}
func (*ExprStmt) stmt()        {}
func (*VarDeclStmt) stmt()     {}
func (*ReturnStmt) stmt()      {}
func (*EmitStmt) stmt()        {}
func (*RevertStmt) stmt()      {}
func (*TryStmt) stmt()         {}
func (*ContinueStmt) stmt()    {}
func (*BreakStmt) stmt()       {}
func (*AssemblyStmt) stmt()    {}
func (*PlaceholderStmt) stmt() {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

type Identifier struct {
	Span
	Name string
}

type BoolLiteral struct {
	Span
	Value bool
}

type NumberLiteral struct {
	Span
	Value string // raw text, including hex and scientific notation
	Unit  string // "wei", "ether", "days", ... or empty
}

type StringLiteral struct {
	Span
	Value string
}

type HexLiteral struct {
	Span
	Value string
}

type ArrayLiteral struct {
	Span
	Elems []Expression
}

// TupleExpr covers parenthesized tuples; Elems may contain nils for holes.
type TupleExpr struct {
	Span
	Elems []Expression
}

type BinaryExpr struct {
	Span
	Op    string // "+", "==", "&&", ...
	Left  Expression
	Right Expression
}

// UnaryExpr covers prefix (!x, -x, ++x, delete x) and postfix (x++, x--)
// operators.
type UnaryExpr struct {
	Span
	Op      string
	Prefix  bool
	Operand Expression
}

type AssignExpr struct {
	Span
	Op    string // "=", "+=", "|=", ...
	Left  Expression
	Right Expression
}

type ConditionalExpr struct {
	Span
	Cond Expression
	Then Expression
	Else Expression
}

type CallExpr struct {
	Span
	Callee   Expression
	Args     []Expression
	ArgNames []string // parallel to Args for named-argument calls, else nil
}

// CallOptions wraps a callee with {value: ..., gas: ...} options.
type CallOptions struct {
	Span
	Callee Expression
	Names  []string
	Values []Expression
}

type MemberAccess struct {
	Span
	Expr   Expression
	Member string
}

type IndexAccess struct {
	Span
	Base  Expression
	Index Expression // nil in type contexts like uint[]
}

type SliceAccess struct {
	Span
	Base  Expression
	Start Expression // nil when omitted
	End   Expression // nil when omitted
}

type NewExpr struct {
	Span
	TypeExpr Expression
}

// MetaType is `type(X)`.
type MetaType struct {
	Span
	TypeExpr Expression
}

type ParenExpr struct {
	Span
	Inner Expression
}

// ElementaryType: uint256, address, bool, bytes32, string, ...
type ElementaryType struct {
	Span
	Name string
}

type MappingType struct {
	Span
	Key   Expression
	Value Expression
}

type ArrayType struct {
	Span
	Elem Expression
	Len  Expression // nil for dynamic arrays
}

// FunctionType keeps `function(...) ... returns (...)` types opaque.
type FunctionType struct {
	Span
	Raw string
}

func (*Identifier) expr()      {}
func (*BoolLiteral) expr()     {}
func (*NumberLiteral) expr()   {}
func (*StringLiteral) expr()   {}
func (*HexLiteral) expr()      {}
func (*ArrayLiteral) expr()    {}
func (*TupleExpr) expr()       {}
func (*BinaryExpr) expr()      {}
func (*UnaryExpr) expr()       {}
func (*AssignExpr) expr()      {}
func (*ConditionalExpr) expr() {}
func (*CallExpr) expr()        {}
func (*CallOptions) expr()     {}
func (*MemberAccess) expr()    {}
func (*IndexAccess) expr()     {}
func (*SliceAccess) expr()     {}
func (*NewExpr) expr()         {}
func (*MetaType) expr()        {}
func (*ParenExpr) expr()       {}
func (*ElementaryType) expr()  {}
func (*MappingType) expr()     {}
func (*ArrayType) expr()       {}
func (*FunctionType) expr()    {}

// TypeText renders a type expression back to compact source-ish text, used
// for state-variable type reporting.
func TypeText(e Expression) string {
	switch t := e.(type) {
	case nil:
		return ""
	case *ElementaryType:
		return t.Name
	case *Identifier:
		return t.Name
	case *MemberAccess:
		return TypeText(t.Expr) + "." + t.Member
	case *MappingType:
		return "mapping(" + TypeText(t.Key) + " => " + TypeText(t.Value) + ")"
	case *ArrayType:
		if t.Len == nil {
			return TypeText(t.Elem) + "[]"
		}
		if n, ok := t.Len.(*NumberLiteral); ok {
			return TypeText(t.Elem) + "[" + n.Value + "]"
		}
		return TypeText(t.Elem) + "[...]"
	case *FunctionType:
		return t.Raw
	}
	return "<type>"
}
