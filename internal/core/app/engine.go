// Package app hosts the analysis engine: load the scope, link ancestry, run
// every registered rule over every file, and merge the results into one
// deterministic report.
package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/parser"
	"github.com/slvDev/solwatch/internal/engine/resolver"
	"github.com/slvDev/solwatch/internal/engine/rules"
	"github.com/slvDev/solwatch/internal/engine/scope"
	"github.com/slvDev/solwatch/internal/engine/visitor"
	"github.com/slvDev/solwatch/internal/shared/observability"
	"github.com/slvDev/solwatch/internal/shared/version"
)

// Options configures one engine instance. Remappings and library paths are
// read-only after construction.
type Options struct {
	ProjectRoot  string
	Paths        []string
	Excludes     []string
	Remappings   []resolver.Remapping
	LibraryPaths []string

	// Workers bounds the detect-phase pool; 0 means GOMAXPROCS.
	Workers int

	Build version.Info
}

// Summary counts findings per severity.
type Summary struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Gas    int `json:"gas"`
	NC     int `json:"nc"`
	Total  int `json:"total"`
}

// Report is the full outcome of one analysis run.
type Report struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	ProjectRoot string    `json:"project_root"`

	Files     int `json:"files"`
	Contracts int `json:"contracts"`

	Findings []findings.Finding `json:"findings"`
	Summary  Summary            `json:"summary"`

	// MissingContracts surfaces bases that stayed unresolved; non-empty
	// means ancestry-sensitive findings ran on a degraded model.
	MissingContracts []string      `json:"missing_contracts,omitempty"`
	Duration         time.Duration `json:"-"`
}

// Engine ties a rule registry to an analysis scope.
type Engine struct {
	registry *rules.Registry
	opts     Options
	log      *slog.Logger
}

func NewEngine(registry *rules.Registry, opts Options, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{registry: registry, opts: opts, log: log}
}

// Analyze runs the three phases: sequential load and link, then parallel
// detect. The merged finding list is sorted by (rule id, file, line, column)
// so repeated runs over an unchanged scope are byte-identical.
func (e *Engine) Analyze(ctx context.Context) (*Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "engine.Analyze", trace.WithAttributes(
		attribute.Int("rules", e.registry.Len()),
	))
	defer span.End()

	started := time.Now()

	res := resolver.NewResolver(e.opts.ProjectRoot)
	res.SetRemappings(e.opts.Remappings)
	res.AddLibraryPaths(e.opts.LibraryPaths...)

	actx := scope.NewAnalysisContext(parser.NewParser(), res, e.log)

	if err := e.load(ctx, actx); err != nil {
		return nil, err
	}
	if err := e.link(ctx, actx); err != nil {
		return nil, err
	}
	raw, err := e.detect(ctx, actx)
	if err != nil {
		return nil, err
	}

	report := e.assemble(actx, raw)
	report.Duration = time.Since(started)

	observability.AnalysisRunsTotal.Inc()
	e.log.Info("analysis complete",
		"files", report.Files,
		"contracts", report.Contracts,
		"findings", report.Summary.Total,
		"duration", report.Duration)
	return report, nil
}

func (e *Engine) load(ctx context.Context, actx *scope.AnalysisContext) error {
	_, span := observability.Tracer.Start(ctx, "engine.load")
	defer span.End()

	timer := time.Now()
	if err := actx.Load(e.opts.Paths, e.resolveExcludes()); err != nil {
		return err
	}
	observability.AnalysisDuration.WithLabelValues("load").Observe(time.Since(timer).Seconds())
	observability.FilesAnalyzed.Set(float64(len(actx.Files)))
	return nil
}

// resolveExcludes anchors relative path excludes to the project root so that
// config entries like "src/mocks" match the absolute paths the loader walks.
// Glob patterns are matched against the full path and pass through untouched.
func (e *Engine) resolveExcludes() []string {
	resolved := make([]string, 0, len(e.opts.Excludes))
	for _, pattern := range e.opts.Excludes {
		if !filepath.IsAbs(pattern) && !strings.ContainsAny(pattern, "*?[{") {
			pattern = filepath.ToSlash(filepath.Join(e.opts.ProjectRoot, pattern))
		}
		resolved = append(resolved, pattern)
	}
	return resolved
}

func (e *Engine) link(ctx context.Context, actx *scope.AnalysisContext) error {
	_, span := observability.Tracer.Start(ctx, "engine.link")
	defer span.End()

	timer := time.Now()
	if err := actx.Link(); err != nil {
		return err
	}
	observability.AnalysisDuration.WithLabelValues("link").Observe(time.Since(timer).Seconds())
	observability.ContractsLinked.Set(float64(len(actx.Contracts)))
	observability.MissingContracts.Set(float64(len(actx.MissingContracts)))
	return nil
}

// detect traverses every file with all rule callbacks active. The context is
// read-only after linking, so files are fanned out across a bounded pool;
// per-file result slots keep the merge allocation-free of locks.
func (e *Engine) detect(ctx context.Context, actx *scope.AnalysisContext) ([]findings.RuleFinding, error) {
	_, span := observability.Tracer.Start(ctx, "engine.detect")
	defer span.End()

	timer := time.Now()

	v := visitor.New()
	e.registry.RegisterAllCallbacks(v)

	results := make([][]findings.RuleFinding, len(actx.Files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < e.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = v.Traverse(actx.Files[i], actx)
			}
		}()
	}
	for i := range actx.Files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, errors.Wrap(ctx.Err(), errors.CodeInternal, "analysis canceled")
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	var merged []findings.RuleFinding
	for _, rs := range results {
		merged = append(merged, rs...)
	}
	findings.SortRuleFindings(merged)

	observability.AnalysisDuration.WithLabelValues("detect").Observe(time.Since(timer).Seconds())
	return merged, nil
}

// assemble groups raw findings by rule id and attaches rule metadata. Groups
// are ordered by severity (highest first) then rule id; locations inside a
// group keep their sorted order.
func (e *Engine) assemble(actx *scope.AnalysisContext, raw []findings.RuleFinding) *Report {
	byRule := make(map[string][]findings.Location)
	for _, rf := range raw {
		byRule[rf.RuleID] = append(byRule[rf.RuleID], rf.Location)
	}

	ids := make([]string, 0, len(byRule))
	for id := range byRule {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := e.registry.Get(ids[i])
		b, _ := e.registry.Get(ids[j])
		if a.Severity() != b.Severity() {
			return a.Severity() > b.Severity()
		}
		return ids[i] < ids[j]
	})

	report := &Report{
		Version:          e.opts.Build.Version,
		GeneratedAt:      time.Now().UTC(),
		ProjectRoot:      e.opts.ProjectRoot,
		Files:            len(actx.Files),
		Contracts:        len(actx.Contracts),
		MissingContracts: actx.MissingContracts,
	}
	for _, id := range ids {
		rule, ok := e.registry.Get(id)
		if !ok {
			continue
		}
		f := findings.Finding{
			RuleID:      rule.ID(),
			Severity:    rule.Severity(),
			Title:       rule.Name(),
			Description: rule.Description(),
			Example:     rule.Example(),
			GasSavings:  rule.GasSavings(),
			Locations:   byRule[id],
		}
		report.Findings = append(report.Findings, f)

		n := len(f.Locations)
		observability.FindingsTotal.WithLabelValues(f.Severity.String()).Add(float64(n))
		switch f.Severity {
		case findings.SeverityHigh:
			report.Summary.High += n
		case findings.SeverityMedium:
			report.Summary.Medium += n
		case findings.SeverityLow:
			report.Summary.Low += n
		case findings.SeverityGas:
			report.Summary.Gas += n
		case findings.SeverityNC:
			report.Summary.NC += n
		}
		report.Summary.Total += n
	}
	return report
}
