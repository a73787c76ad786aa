package report

import (
	"encoding/json"
	"path/filepath"

	"github.com/slvDev/solwatch/internal/core/app"
	"github.com/slvDev/solwatch/internal/core/findings"
)

// SARIF v2.1.0 schema - see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// RenderSARIF builds a SARIF v2.1.0 document. File URIs are made relative to
// the project root; absolute paths are never included so that reports are
// safe to share.
func RenderSARIF(r *app.Report) ([]byte, error) {
	rules := make([]sarifRule, 0, len(r.Findings))
	results := make([]sarifResult, 0)

	for _, f := range r.Findings {
		rules = append(rules, sarifRule{
			ID:               f.RuleID,
			Name:             f.Title,
			ShortDescription: sarifMessage{Text: f.Description},
			DefaultConfig:    sarifRuleDefaultConfig{Level: severityToLevel(f.Severity)},
		})
		for _, loc := range f.Locations {
			result := sarifResult{
				RuleID:  f.RuleID,
				Level:   severityToLevel(f.Severity),
				Message: sarifMessage{Text: f.Title},
			}
			if loc.File != "" {
				sl := sarifLocation{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{
							URI:       relativeURI(r.ProjectRoot, loc.File),
							URIBaseID: "%SRCROOT%",
						},
					},
				}
				if loc.Line > 0 {
					sl.PhysicalLocation.Region = &sarifRegion{
						StartLine: loc.Line,
						// SARIF columns are 1-based.
						StartColumn: loc.Column + 1,
						EndLine:     loc.LineEnd,
						EndColumn:   loc.ColumnEnd + 1,
					}
				}
				result.Locations = []sarifLocation{sl}
			}
			results = append(results, result)
		}
	}

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "solwatch",
						Version: r.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(doc, "", "  ")
}

// severityToLevel maps finding severities to the three SARIF levels.
func severityToLevel(s findings.Severity) string {
	switch s {
	case findings.SeverityHigh:
		return "error"
	case findings.SeverityMedium, findings.SeverityLow:
		return "warning"
	default:
		return "note"
	}
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative or projectRoot is
// empty, the original path (with forward slashes) is returned.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		if rel, err := filepath.Rel(projectRoot, filePath); err == nil {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}
