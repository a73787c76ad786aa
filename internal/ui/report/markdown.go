package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/slvDev/solwatch/internal/core/app"
	"github.com/slvDev/solwatch/internal/core/findings"
)

// RenderMarkdown produces the review document: frontmatter, severity summary,
// then one section per finding with its locations grouped by file. Files
// inside a group are sorted so the document is stable across runs.
func RenderMarkdown(r *app.Report) string {
	var b strings.Builder

	b.WriteString("---\n")
	b.WriteString("title: Smart Contract Analysis Report\n")
	b.WriteString("generated_at: " + r.GeneratedAt.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + nonEmpty(r.Version, "unknown") + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Smart Contract Analysis Report\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Severity | Count |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| High | %d |\n", r.Summary.High)
	fmt.Fprintf(&b, "| Medium | %d |\n", r.Summary.Medium)
	fmt.Fprintf(&b, "| Low | %d |\n", r.Summary.Low)
	fmt.Fprintf(&b, "| Gas | %d |\n", r.Summary.Gas)
	fmt.Fprintf(&b, "| NC | %d |\n", r.Summary.NC)
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", r.Summary.Total)

	fmt.Fprintf(&b, "Analyzed %d files, %d contracts.\n\n", r.Files, r.Contracts)

	if len(r.MissingContracts) > 0 {
		b.WriteString("## Unresolved Base Contracts\n\n")
		b.WriteString("The following base contracts could not be located; inheritance-aware checks ran on an incomplete model:\n\n")
		for _, name := range r.MissingContracts {
			b.WriteString("- `" + name + "`\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Findings\n\n")
	if len(r.Findings) == 0 {
		b.WriteString("No issues found.\n")
		return b.String()
	}

	for i, f := range r.Findings {
		fmt.Fprintf(&b, "### %d. %s (%s)\n\n", i+1, f.Title, f.Severity)
		fmt.Fprintf(&b, "**Description**:\n%s\n\n", f.Description)
		if f.GasSavings != "" {
			fmt.Fprintf(&b, "**Gas Savings**: %s\n\n", f.GasSavings)
		}
		if f.Example != "" {
			fmt.Fprintf(&b, "**Recommendation**:\n%s\n\n", f.Example)
		}
		writeLocations(&b, f.Locations)
		b.WriteString("---\n\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func writeLocations(b *strings.Builder, locs []findings.Location) {
	if len(locs) == 0 {
		return
	}

	byFile := make(map[string][]findings.Location)
	for _, loc := range locs {
		byFile[loc.File] = append(byFile[loc.File], loc)
	}
	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	fmt.Fprintf(b, "<details>\n<summary><i>%d %s in %d %s</i></summary>\n\n",
		len(locs), plural(len(locs), "instance"), len(files), plural(len(files), "file"))

	for _, file := range files {
		b.WriteString("```solidity\n")
		fmt.Fprintf(b, "File: %s\n\n", file)
		for _, loc := range byFile[file] {
			snippet := loc.Snippet
			if snippet == "" {
				snippet = "..."
			}
			fmt.Fprintf(b, "%d: %s\n", loc.Line, snippet)
		}
		b.WriteString("```\n\n")
	}

	b.WriteString("</details>\n\n")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
