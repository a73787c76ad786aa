package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slvDev/solwatch/internal/core/app"
	"github.com/slvDev/solwatch/internal/core/config"
	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/data/history"
	"github.com/slvDev/solwatch/internal/engine/rules"
	"github.com/slvDev/solwatch/internal/engine/rules/builtin"
	"github.com/slvDev/solwatch/internal/shared/version"
	"github.com/slvDev/solwatch/internal/ui/report"
	"github.com/slvDev/solwatch/internal/watcher"
)

// App wires config, registry, engine and the optional watch-mode services.
type App struct {
	cfg      *config.Config
	settings *config.ProjectSettings
	registry *rules.Registry
	format   report.Format
	output   string
	log      *slog.Logger

	store *history.Store
}

func NewApp(cfg *config.Config, settings *config.ProjectSettings, format report.Format, output string, log *slog.Logger) (*App, error) {
	registry := rules.NewRegistry(cfg.Severity())
	excluded := make(map[string]bool, len(cfg.ExcludeRules))
	for _, id := range cfg.ExcludeRules {
		excluded[id] = true
	}
	for _, r := range builtin.All() {
		if excluded[r.ID()] {
			continue
		}
		if err := registry.Register(r); err != nil {
			return nil, err
		}
	}

	a := &App{
		cfg:      cfg,
		settings: settings,
		registry: registry,
		format:   format,
		output:   output,
		log:      log,
	}

	if cfg.HistoryPath != "" {
		store, err := history.Open(historyPath(settings.Root, cfg.HistoryPath))
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	return a, nil
}

func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// scopePaths resolves the configured scope against the project root, falling
// back to the detected default source directory.
func (a *App) scopePaths() []string {
	scope := a.cfg.Scope
	if len(scope) == 0 {
		scope = a.settings.DefaultScope
	}

	paths := make([]string, 0, len(scope))
	for _, p := range scope {
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.settings.Root, p)
		}
		paths = append(paths, p)
	}
	return paths
}

func (a *App) newEngine() *app.Engine {
	opts := app.Options{
		ProjectRoot:  a.settings.Root,
		Paths:        a.scopePaths(),
		Excludes:     a.cfg.Exclude,
		Remappings:   a.settings.Remappings,
		LibraryPaths: a.settings.LibraryPaths,
		Workers:      a.cfg.Workers,
		Build:        version.Current(),
	}
	return app.NewEngine(a.registry, opts, a.log)
}

// RunOnce performs one analysis and emits the report. The returned report
// lets watch mode reuse the same path.
func (a *App) RunOnce(ctx context.Context) (*app.Report, error) {
	result, err := a.newEngine().Analyze(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.emit(result); err != nil {
		return nil, err
	}

	if a.store != nil {
		key := projectKey(a.settings.Root)
		if prev, err := a.store.LatestRun(key); err == nil && prev != nil {
			a.log.Info("findings trend",
				"total", result.Summary.Total,
				"delta", result.Summary.Total-prev.Total,
				"high", result.Summary.High)
		}
		if err := a.store.SaveRun(key, history.NewRunRecord(result)); err != nil {
			a.log.Warn("failed to save run history", "error", err)
		}
	}
	return result, nil
}

func (a *App) emit(result *app.Report) error {
	var rendered []byte
	switch a.format {
	case report.FormatJSON:
		buf, err := report.RenderJSON(result)
		if err != nil {
			return err
		}
		rendered = buf
	case report.FormatSARIF:
		buf, err := report.RenderSARIF(result)
		if err != nil {
			return err
		}
		rendered = buf
	case report.FormatTerminal:
		rendered = []byte(report.RenderTerminal(result))
	default:
		rendered = []byte(report.RenderMarkdown(result))
	}

	if a.output == "" {
		fmt.Println(string(rendered))
		return nil
	}

	path := a.output
	if filepath.Ext(path) == "" {
		path += a.format.Extension()
	}
	if err := os.WriteFile(path, rendered, 0o644); err != nil {
		return err
	}
	a.log.Info("report written", "path", path, "format", a.format.String())
	return nil
}

// RunWatch analyzes once, then re-analyzes on every debounced batch of
// Solidity file changes until the context is canceled. Re-analysis is always
// whole-scope: ancestry can cross any file boundary, so partial reloads would
// link against stale declarations.
func (a *App) RunWatch(ctx context.Context) error {
	if _, err := a.RunOnce(ctx); err != nil {
		return err
	}

	runs := make(chan []string, 1)
	w, err := watcher.NewWatcher(a.cfg.Watch.Debounce, a.cfg.Exclude, func(paths []string) {
		select {
		case runs <- paths:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.scopePaths()); err != nil {
		return err
	}
	a.log.Info("watching for changes", "paths", a.scopePaths(), "debounce", a.cfg.Watch.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-runs:
			a.log.Info("changes detected", "count", len(paths))
			start := time.Now()
			if _, err := a.RunOnce(ctx); err != nil {
				a.log.Error("re-analysis failed", "error", err)
				continue
			}
			a.log.Info("re-analysis complete", "duration", time.Since(start).Round(time.Millisecond))
		}
	}
}

// historyTrend loads the recorded runs for this project and derives the
// trend report. A zero window covers all recorded runs.
func (a *App) historyTrend(window time.Duration) (history.TrendReport, error) {
	if a.store == nil {
		return history.TrendReport{}, errors.New(errors.CodeValidationError,
			"run history is not enabled; set history_path in solwatch.toml")
	}

	since := time.Time{}
	if window > 0 {
		since = time.Now().Add(-window)
	}
	runs, err := a.store.LoadRuns(projectKey(a.settings.Root), since)
	if err != nil {
		return history.TrendReport{}, err
	}
	return history.BuildTrendReport(projectKey(a.settings.Root), runs, window)
}

// PrintHistory renders the run-history trend, as JSON when the JSON format
// is selected and as a table otherwise.
func (a *App) PrintHistory(window time.Duration) error {
	trend, err := a.historyTrend(window)
	if err != nil {
		return err
	}

	if a.format == report.FormatJSON {
		buf, err := json.MarshalIndent(trend, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
		return nil
	}

	fmt.Printf("Run history for %s (%d runs, %s .. %s)\n\n",
		trend.ProjectKey, trend.RunCount,
		trend.Since.Format(time.RFC3339), trend.Until.Format(time.RFC3339))
	fmt.Printf("%-25s %6s %6s %6s %6s %9s\n", "TIMESTAMP", "TOTAL", "DELTA", "HIGH", "FILES", "AVG TOTAL")
	for _, p := range trend.Points {
		fmt.Printf("%-25s %6d %+6d %6d %6d %9.2f\n",
			p.Timestamp.Format(time.RFC3339), p.Total, p.DeltaTotal, p.High, p.Files, p.AvgTotal)
	}
	return nil
}

// PrintRules lists every registered rule in report order.
func (a *App) PrintRules() {
	for _, r := range a.registry.All() {
		fmt.Printf("%-28s %-7s %s\n", r.ID(), r.Severity().String(), r.Name())
	}
}

func historyPath(root, configured string) string {
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(root, configured)
}

// projectKey identifies a project in the shared history database by its
// directory name.
func projectKey(root string) string {
	base := filepath.Base(root)
	if base == "." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return "default"
	}
	return base
}
