package history

import (
	"testing"
	"time"
)

func trendRuns() []RunRecord {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return []RunRecord{
		{RunID: "r1", Timestamp: base, Files: 10, High: 2, Gas: 8, Total: 10},
		{RunID: "r2", Timestamp: base.Add(1 * time.Hour), Files: 11, High: 3, Gas: 9, Total: 12},
		{RunID: "r3", Timestamp: base.Add(30 * time.Hour), Files: 11, High: 1, Gas: 9, Total: 10},
	}
}

func TestBuildTrendReportEmpty(t *testing.T) {
	if _, err := BuildTrendReport("proj", nil, time.Hour); err == nil {
		t.Fatal("expected error for empty run list")
	}
}

func TestBuildTrendReportDeltas(t *testing.T) {
	runs := trendRuns()
	report, err := BuildTrendReport("proj", runs, 24*time.Hour)
	if err != nil {
		t.Fatalf("BuildTrendReport: %v", err)
	}

	if report.RunCount != 3 || len(report.Points) != 3 {
		t.Fatalf("run count = %d, points = %d, want 3", report.RunCount, len(report.Points))
	}
	if report.ProjectKey != "proj" {
		t.Errorf("project key = %q", report.ProjectKey)
	}
	if !report.Since.Equal(runs[0].Timestamp) || !report.Until.Equal(runs[2].Timestamp) {
		t.Errorf("range = %v..%v", report.Since, report.Until)
	}

	first := report.Points[0]
	if first.DeltaTotal != 0 || first.TotalGrowthPct != 0 {
		t.Errorf("first point carries deltas: %+v", first)
	}

	second := report.Points[1]
	if second.DeltaTotal != 2 || second.DeltaHigh != 1 || second.DeltaFiles != 1 {
		t.Errorf("second point deltas = %+v", second)
	}
	if second.TotalGrowthPct != 20 {
		t.Errorf("growth = %v, want 20", second.TotalGrowthPct)
	}

	third := report.Points[2]
	if third.DeltaTotal != -2 || third.DeltaHigh != -2 {
		t.Errorf("third point deltas = %+v", third)
	}
}

func TestBuildTrendReportMovingAverages(t *testing.T) {
	runs := trendRuns()
	report, err := BuildTrendReport("proj", runs, 24*time.Hour)
	if err != nil {
		t.Fatalf("BuildTrendReport: %v", err)
	}

	// First two runs are an hour apart, so the second averages both; the
	// third run is outside the window of everything before it.
	if got := report.Points[1].AvgTotal; got != 11 {
		t.Errorf("avg total = %v, want 11", got)
	}
	if got := report.Points[1].AvgHigh; got != 2.5 {
		t.Errorf("avg high = %v, want 2.5", got)
	}
	if got := report.Points[2].AvgTotal; got != 10 {
		t.Errorf("window should only cover the last run, avg total = %v", got)
	}
}

func TestBuildTrendReportZeroWindow(t *testing.T) {
	runs := trendRuns()
	report, err := BuildTrendReport("proj", runs, 0)
	if err != nil {
		t.Fatalf("BuildTrendReport: %v", err)
	}
	for i, p := range report.Points {
		if p.AvgTotal != float64(runs[i].Total) || p.AvgHigh != float64(runs[i].High) {
			t.Errorf("point %d averages = %v/%v, want the run's own counts", i, p.AvgTotal, p.AvgHigh)
		}
	}
}
