package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slvDev/solwatch/internal/core/findings"
	"github.com/slvDev/solwatch/internal/engine/rules"
	"github.com/slvDev/solwatch/internal/engine/rules/builtin"
	"github.com/slvDev/solwatch/internal/shared/version"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestEngine(t *testing.T, root string, floor findings.Severity, workers int) *Engine {
	t.Helper()
	registry := rules.NewRegistry(floor)
	for _, r := range builtin.All() {
		require.NoError(t, registry.Register(r))
	}
	opts := Options{
		ProjectRoot: root,
		Paths:       []string{root},
		Workers:     workers,
		Build:       version.Info{Version: "test"},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(registry, opts, log)
}

const vulnerableSource = `// SPDX-License-Identifier: MIT
pragma solidity ^0.8.20;

contract Executor {
    address owner;

    function batch(address[] calldata targets, bytes[] calldata data) external {
        for (uint i = 0; i < targets.length; i++) {
            (bool ok, ) = targets[i].delegatecall(data[i]);
            require(ok);
        }
    }

    function auth() external view {
        require(tx.origin == owner);
    }
}
`

const gasSource = `// SPDX-License-Identifier: MIT
pragma solidity 0.8.20;

contract Counter {
    uint256 total;

    function bump(uint256 n) external {
        require(n > 0);
        total += n;
    }
}
`

func TestAnalyzeProducesGroupedReport(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Executor.sol": vulnerableSource,
		"src/Counter.sol":  gasSource,
	})
	engine := newTestEngine(t, root, findings.SeverityNC, 4)

	report, err := engine.Analyze(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, report.Files)
	require.Equal(t, 2, report.Contracts)
	require.Equal(t, "test", report.Version)
	require.Empty(t, report.MissingContracts)

	byID := make(map[string]findings.Finding)
	for _, f := range report.Findings {
		byID[f.RuleID] = f
	}
	require.Contains(t, byID, "delegatecall-in-loop")
	require.Contains(t, byID, "array-length-in-loop")
	require.Contains(t, byID, "tx-origin-usage")
	require.Contains(t, byID, "floating-pragma")
	require.Contains(t, byID, "gt-zero-comparison")
	require.Contains(t, byID, "post-increment-in-loop")

	dc := byID["delegatecall-in-loop"]
	require.Equal(t, findings.SeverityHigh, dc.Severity)
	require.Len(t, dc.Locations, 1)
	require.Equal(t, 9, dc.Locations[0].Line)
	require.Contains(t, dc.Locations[0].File, "Executor.sol")

	// Groups run from highest severity down, rule id breaking ties.
	for i := 1; i < len(report.Findings); i++ {
		prev, cur := report.Findings[i-1], report.Findings[i]
		if prev.Severity == cur.Severity {
			require.Less(t, prev.RuleID, cur.RuleID)
		} else {
			require.Greater(t, prev.Severity, cur.Severity)
		}
	}

	total := 0
	for _, f := range report.Findings {
		total += len(f.Locations)
	}
	require.Equal(t, total, report.Summary.Total)
	require.Equal(t, report.Summary.Total,
		report.Summary.High+report.Summary.Medium+report.Summary.Low+report.Summary.Gas+report.Summary.NC)
	require.GreaterOrEqual(t, report.Summary.High, 2)
	require.GreaterOrEqual(t, report.Summary.Gas, 2)
}

func TestAnalyzeSeverityFloorFiltersRules(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Executor.sol": vulnerableSource,
	})
	engine := newTestEngine(t, root, findings.SeverityMedium, 1)

	report, err := engine.Analyze(context.Background())
	require.NoError(t, err)

	for _, f := range report.Findings {
		require.GreaterOrEqual(t, f.Severity, findings.SeverityMedium)
	}
	require.Zero(t, report.Summary.Gas)
	require.Zero(t, report.Summary.NC)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	files := map[string]string{
		"src/Executor.sol": vulnerableSource,
		"src/Counter.sol":  gasSource,
		"src/More.sol": `pragma solidity ^0.8.0;
contract More {
    bool flag;
    uint256 constant small = 1;
}
`,
	}
	root := writeProject(t, files)

	// Different worker counts exercise different detect-phase schedules; the
	// sorted output must not depend on either.
	var snapshots [][]byte
	for _, workers := range []int{1, 8, 8} {
		engine := newTestEngine(t, root, findings.SeverityNC, workers)
		report, err := engine.Analyze(context.Background())
		require.NoError(t, err)
		buf, err := json.Marshal(report.Findings)
		require.NoError(t, err)
		snapshots = append(snapshots, buf)
	}
	require.Equal(t, string(snapshots[0]), string(snapshots[1]))
	require.Equal(t, string(snapshots[1]), string(snapshots[2]))
}

func TestAnalyzeParseErrorIsFatal(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Broken.sol": "contract Broken {",
	})
	engine := newTestEngine(t, root, findings.SeverityNC, 2)

	_, err := engine.Analyze(context.Background())
	require.Error(t, err)
}

func TestAnalyzeRelativeExcludes(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Counter.sol":      gasSource,
		"src/mocks/Broken.sol": "not solidity {{{",
	})

	engine := newTestEngine(t, root, findings.SeverityNC, 1)
	engine.opts.Excludes = []string{"src/mocks"}

	report, err := engine.Analyze(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Files)
}

func TestAnalyzeReportsMissingContracts(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/Child.sol": `pragma solidity ^0.8.0;
contract Child is Phantom {
    uint x;
}
`,
	})
	engine := newTestEngine(t, root, findings.SeverityNC, 1)

	report, err := engine.Analyze(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Phantom"}, report.MissingContracts)
}
