// Package report renders an analysis report into the supported output
// formats: markdown for review documents, JSON for tooling, SARIF for code
// scanning integrations, and a styled terminal summary.
package report

import (
	"strings"

	"github.com/slvDev/solwatch/internal/core/errors"
)

type Format int

const (
	FormatMarkdown Format = iota
	FormatJSON
	FormatSARIF
	FormatTerminal
)

func (f Format) String() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	case FormatTerminal:
		return "terminal"
	}
	return "unknown"
}

// Extension is the file extension used when writing the format to disk.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatSARIF:
		return ".sarif"
	}
	return ".txt"
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	case "terminal", "term":
		return FormatTerminal, nil
	}
	return FormatMarkdown, errors.Newf(errors.CodeValidationError, "unknown report format %q", s)
}
