// Package parser turns raw Solidity source into the typed AST consumed by
// the engine. Parsing itself is delegated to the tree-sitter Solidity
// grammar; this package owns the CST-to-AST extraction.
package parser

import (
	"time"

	tree_sitter_solidity "github.com/JoranHonig/tree-sitter-solidity/bindings/go"
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/shared/observability"
)

type Parser struct {
	language *sitter.Language
}

func NewParser() *Parser {
	return &Parser{
		language: sitter.NewLanguage(tree_sitter_solidity.Language()),
	}
}

// Parse converts one file's source into an ast.SourceUnit. A syntax error
// anywhere in the file is a hard PARSE_ERROR: ancestry linking needs a
// complete declaration set, so partially-extracted files are never returned.
func (p *Parser) Parse(path string, content []byte) (*ast.SourceUnit, error) {
	started := time.Now()
	defer func() {
		observability.ParsingDuration.Observe(time.Since(started).Seconds())
	}()

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "set solidity grammar")
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.AddContext(
			errors.New(errors.CodeParseError, "parse returned no tree"),
			errors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstErrorPosition(root)
		return nil, errors.AddContext(
			errors.Newf(errors.CodeParseError, "syntax error at %d:%d", line, col),
			errors.CtxPath, path)
	}

	c := &converter{src: content}
	return c.sourceUnit(root), nil
}

// firstErrorPosition locates the first error or missing node, 1-based line
// and column for operator-facing messages.
func firstErrorPosition(node *sitter.Node) (int, int) {
	if node.IsError() || node.IsMissing() {
		pos := node.StartPosition()
		return int(pos.Row) + 1, int(pos.Column) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if line, col := firstErrorPosition(child); line > 0 {
			return line, col
		}
	}
	if node.HasError() {
		pos := node.StartPosition()
		return int(pos.Row) + 1, int(pos.Column) + 1
	}
	return 0, 0
}
