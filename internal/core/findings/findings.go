// Package findings holds the shared output model: severities, source
// locations and findings as they flow from rules through the engine to the
// report renderers.
package findings

import "sort"

type Severity int

// Ordered High > Medium > Low > Gas > NC.
const (
	SeverityNC Severity = iota
	SeverityGas
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	case SeverityGas:
		return "Gas"
	case SeverityNC:
		return "NC"
	}
	return "Unknown"
}

// ParseSeverity maps a config/CLI string to a Severity. The second return is
// false for unknown names.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "high", "High", "HIGH":
		return SeverityHigh, true
	case "medium", "Medium", "MEDIUM":
		return SeverityMedium, true
	case "low", "Low", "LOW":
		return SeverityLow, true
	case "gas", "Gas", "GAS":
		return SeverityGas, true
	case "nc", "NC", "Nc":
		return SeverityNC, true
	}
	return SeverityNC, false
}

// Severities lists all severities in report order (most severe first).
func Severities() []Severity {
	return []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityGas, SeverityNC}
}

// Location is one source position a finding points at. Line is 1-based,
// Column 0-based, both ends inclusive. Snippet is best-effort and degrades to
// a fixed placeholder when the offsets cannot be mapped.
type Location struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	LineEnd   int    `json:"line_end"`
	ColumnEnd int    `json:"column_end"`
	Snippet   string `json:"snippet,omitempty"`
}

// RuleFinding is the raw unit a dispatcher callback returns: a rule id and
// where it matched. Rule metadata is attached later by the engine.
type RuleFinding struct {
	RuleID   string
	Location Location
}

// Finding is one reported rule match with metadata attached, possibly
// spanning several locations.
type Finding struct {
	RuleID      string     `json:"rule_id"`
	Severity    Severity   `json:"severity"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Example     string     `json:"example,omitempty"`
	GasSavings  string     `json:"gas_savings,omitempty"`
	Locations   []Location `json:"locations"`
}

// SortRuleFindings orders raw findings by the deterministic merge key
// (rule id, file, line, column). Detect-phase workers may finish in any
// order; this makes the output independent of scheduling.
func SortRuleFindings(fs []RuleFinding) {
	sort.Slice(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		return a.Location.Column < b.Location.Column
	})
}
