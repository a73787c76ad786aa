package scope

import (
	"github.com/slvDev/solwatch/internal/engine/ast"
)

// StateVariable is the storage-relevant summary of one state variable.
type StateVariable struct {
	Name       string
	Type       string
	Mutability ast.Mutability
	Visibility ast.Visibility
	Span       ast.Span
}

// FunctionSignature summarizes a declared function or modifier.
type FunctionSignature struct {
	Name       string
	Kind       ast.FunctionKind
	Visibility ast.Visibility
	Virtual    bool
	Override   bool
	HasBody    bool
}

// ContractDeclaration is the registry entry for one contract. Everything is
// fixed at load time except InheritanceChain, which Link writes exactly once:
// qualified ancestor names ordered most-base to most-derived, mirroring
// on-chain storage slot order.
type ContractDeclaration struct {
	QualifiedName string // "<file-path>:<name>"
	Name          string
	File          string
	Kind          ast.ContractKind
	Bases         []string // direct base names as written, base to derived
	StateVars     []StateVariable
	Functions     []FunctionSignature
	Events        []string

	InheritanceChain []string

	Def *ast.ContractDefinition
}

// QualifiedName builds the registry key for a contract declaration.
func QualifiedName(filePath, contractName string) string {
	return filePath + ":" + contractName
}

// SimpleName strips the file-path prefix from a qualified name.
func SimpleName(qualified string) string {
	for i := len(qualified) - 1; i >= 0; i-- {
		if qualified[i] == ':' {
			return qualified[i+1:]
		}
	}
	return qualified
}

func newContractDeclaration(file *SourceFile, def *ast.ContractDefinition) *ContractDeclaration {
	decl := &ContractDeclaration{
		QualifiedName: QualifiedName(file.Path, def.Name),
		Name:          def.Name,
		File:          file.Path,
		Kind:          def.Kind,
		Def:           def,
	}
	for _, base := range def.Bases {
		decl.Bases = append(decl.Bases, base.Name)
	}
	for _, part := range def.Parts {
		switch p := part.(type) {
		case *ast.VariableDeclaration:
			decl.StateVars = append(decl.StateVars, StateVariable{
				Name:       p.Name,
				Type:       ast.TypeText(p.Type),
				Mutability: p.Mutability,
				Visibility: p.Visibility,
				Span:       p.Span,
			})
		case *ast.FunctionDefinition:
			decl.Functions = append(decl.Functions, FunctionSignature{
				Name:       p.Name,
				Kind:       p.Kind,
				Visibility: p.Visibility,
				Virtual:    p.Virtual,
				Override:   p.Override,
				HasBody:    p.Body != nil,
			})
		case *ast.EventDefinition:
			decl.Events = append(decl.Events, p.Name)
		}
	}
	return decl
}
