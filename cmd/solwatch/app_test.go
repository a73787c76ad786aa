package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/slvDev/solwatch/internal/core/config"
	"github.com/slvDev/solwatch/internal/ui/report"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	source := `// SPDX-License-Identifier: MIT
pragma solidity 0.8.20;

contract Auth {
    address owner;

    function check() external view {
        require(tx.origin == owner);
    }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Auth.sol"), []byte(source), 0o644))
	return root
}

func newTestApp(t *testing.T, root string, cfg *config.Config, format report.Format, output string) *App {
	t.Helper()
	settings, err := config.DetectProject(root, cfg.Remappings)
	require.NoError(t, err)

	a, err := NewApp(cfg, settings, format, output, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestRunOnceWritesMarkdownReport(t *testing.T) {
	root := writeTestProject(t)
	output := filepath.Join(t.TempDir(), "report")

	a := newTestApp(t, root, config.Default(), report.FormatMarkdown, output)
	result, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.Files)

	// Extension is appended from the format.
	data, err := os.ReadFile(output + ".md")
	require.NoError(t, err)
	require.Contains(t, string(data), "tx.origin")
	require.Contains(t, string(data), "# Smart Contract Analysis Report")
}

func TestRunOnceSavesHistory(t *testing.T) {
	root := writeTestProject(t)
	cfg := config.Default()
	cfg.HistoryPath = ".solwatch/history.db"

	output := filepath.Join(t.TempDir(), "report.json")
	a := newTestApp(t, root, cfg, report.FormatJSON, output)

	_, err := a.RunOnce(context.Background())
	require.NoError(t, err)

	latest, err := a.store.LatestRun(projectKey(root))
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.Equal(t, 1, latest.Files)
	require.Greater(t, latest.Total, 0)
}

func TestHistoryTrendAfterRuns(t *testing.T) {
	root := writeTestProject(t)
	cfg := config.Default()
	cfg.HistoryPath = ".solwatch/history.db"

	output := filepath.Join(t.TempDir(), "report.json")
	a := newTestApp(t, root, cfg, report.FormatJSON, output)

	_, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	_, err = a.RunOnce(context.Background())
	require.NoError(t, err)

	trend, err := a.historyTrend(0)
	require.NoError(t, err)
	require.Equal(t, 2, trend.RunCount)
	require.Equal(t, projectKey(root), trend.ProjectKey)

	// Same tree twice, so the second run changes nothing.
	second := trend.Points[1]
	require.Zero(t, second.DeltaTotal)
	require.Zero(t, second.DeltaFiles)
	require.Greater(t, second.Total, 0)
}

func TestPrintHistoryRequiresStore(t *testing.T) {
	root := writeTestProject(t)
	a := newTestApp(t, root, config.Default(), report.FormatJSON, filepath.Join(t.TempDir(), "r.json"))

	require.Error(t, a.PrintHistory(0))
}

func TestExcludeRulesAreNotRegistered(t *testing.T) {
	root := writeTestProject(t)
	cfg := config.Default()
	cfg.ExcludeRules = []string{"tx-origin-usage"}

	output := filepath.Join(t.TempDir(), "report.json")
	a := newTestApp(t, root, cfg, report.FormatJSON, output)

	_, ok := a.registry.Get("tx-origin-usage")
	require.False(t, ok)

	result, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	for _, f := range result.Findings {
		require.NotEqual(t, "tx-origin-usage", f.RuleID)
	}
}

func TestScopePathsDefaultsToDetectedSource(t *testing.T) {
	root := writeTestProject(t)
	a := newTestApp(t, root, config.Default(), report.FormatJSON, filepath.Join(t.TempDir(), "r.json"))

	paths := a.scopePaths()
	require.Equal(t, []string{filepath.Join(root, "src")}, paths)
}

func TestRunWatchReanalyzesOnChange(t *testing.T) {
	root := writeTestProject(t)
	cfg := config.Default()
	cfg.Watch.Debounce = 100 * time.Millisecond
	cfg.HistoryPath = ".solwatch/history.db"

	output := filepath.Join(t.TempDir(), "report.json")
	a := newTestApp(t, root, cfg, report.FormatJSON, output)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunWatch(ctx) }()

	// Wait for the initial run to land in history.
	require.Eventually(t, func() bool {
		runs, err := a.store.LoadRuns(projectKey(root), time.Time{})
		return err == nil && len(runs) >= 1
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "Other.sol"),
		[]byte("pragma solidity 0.8.20;\ncontract Other {}\n"), 0o644))

	require.Eventually(t, func() bool {
		runs, err := a.store.LoadRuns(projectKey(root), time.Time{})
		return err == nil && len(runs) >= 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestProjectKey(t *testing.T) {
	tests := []struct {
		root string
		want string
	}{
		{"/home/dev/my-protocol", "my-protocol"},
		{"/", "default"},
		{".", "default"},
	}
	for _, tt := range tests {
		if got := projectKey(tt.root); got != tt.want {
			t.Errorf("projectKey(%q) = %q, want %q", tt.root, got, tt.want)
		}
	}
}
