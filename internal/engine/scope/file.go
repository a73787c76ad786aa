// Package scope owns the program model: loaded source files, the
// qualified-name contract registry, and linearized inheritance. Files are
// loaded once, linked once, then queried read-only by rules.
package scope

import (
	"sort"
	"strings"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/ast"
)

// FallbackSnippet replaces code excerpts whose span cannot be mapped back to
// the source text.
const FallbackSnippet = "<code snippet unavailable>"

// SourceFile is one parsed Solidity file. Immutable after construction; the
// context mutates only the contract declarations registered from it.
type SourceFile struct {
	Path            string
	Content         []byte
	Unit            *ast.SourceUnit
	SolidityVersion string
	Contracts       []string // declared contract names, in source order
	Imports         []*ast.ImportDirective

	lineOffsets []int // byte offset of each line start
}

func NewSourceFile(path string, content []byte, unit *ast.SourceUnit) *SourceFile {
	f := &SourceFile{
		Path:    path,
		Content: content,
		Unit:    unit,
	}
	f.lineOffsets = computeLineOffsets(content)
	f.extractMetadata()
	return f
}

func (f *SourceFile) extractMetadata() {
	for _, part := range f.Unit.Parts {
		switch p := part.(type) {
		case *ast.PragmaDirective:
			if p.Name == "solidity" && f.SolidityVersion == "" {
				f.SolidityVersion = p.Value
			}
		case *ast.ImportDirective:
			f.Imports = append(f.Imports, p)
		case *ast.ContractDefinition:
			f.Contracts = append(f.Contracts, p.Name)
		}
	}
}

func computeLineOffsets(content []byte) []int {
	offsets := []int{0}
	for i, b := range content {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// OffsetToLineCol maps a byte offset to a 1-based line and 0-based column.
func (f *SourceFile) OffsetToLineCol(offset int) (int, int) {
	if offset > len(f.Content) {
		offset = len(f.Content)
	}
	line := sort.Search(len(f.lineOffsets), func(i int) bool {
		return f.lineOffsets[i] > offset
	})
	return line, offset - f.lineOffsets[line-1]
}

// Location maps a span onto a report location with a best-effort snippet.
func (f *SourceFile) Location(span ast.Span) findings.Location {
	line, col := f.OffsetToLineCol(span.Start)
	endLine, endCol := f.OffsetToLineCol(span.End)

	snippet := FallbackSnippet
	if span.Start >= 0 && span.End >= span.Start && span.End <= len(f.Content) {
		if s := strings.TrimSpace(string(f.Content[span.Start:span.End])); s != "" {
			snippet = s
		}
	}

	return findings.Location{
		File:      f.Path,
		Line:      line,
		Column:    col,
		LineEnd:   endLine,
		ColumnEnd: endCol,
		Snippet:   snippet,
	}
}

// LineText returns the full source line containing the given byte offset.
func (f *SourceFile) LineText(offset int) string {
	line, _ := f.OffsetToLineCol(offset)
	start := f.lineOffsets[line-1]
	end := len(f.Content)
	if line < len(f.lineOffsets) {
		end = f.lineOffsets[line] - 1
	}
	return string(f.Content[start:end])
}
