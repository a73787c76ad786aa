package history

import (
	"fmt"
	"math"
	"time"
)

// TrendPoint is one analysis run with deltas against the previous run and
// moving averages over the trailing window.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`

	Files     int `json:"files"`
	Contracts int `json:"contracts"`
	Missing   int `json:"missing"`

	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Gas    int `json:"gas"`
	NC     int `json:"nc"`
	Total  int `json:"total"`

	DeltaHigh   int `json:"delta_high"`
	DeltaMedium int `json:"delta_medium"`
	DeltaLow    int `json:"delta_low"`
	DeltaGas    int `json:"delta_gas"`
	DeltaNC     int `json:"delta_nc"`
	DeltaTotal  int `json:"delta_total"`
	DeltaFiles  int `json:"delta_files"`

	TotalGrowthPct float64 `json:"total_growth_pct"`
	AvgTotal       float64 `json:"avg_total"`
	AvgHigh        float64 `json:"avg_high"`
	WindowHours    float64 `json:"window_hours"`
}

// TrendReport summarizes how a project's findings evolved across runs.
type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}

// BuildTrendReport derives per-run deltas and moving averages from runs in
// ascending timestamp order, as LoadRuns returns them.
func BuildTrendReport(projectKey string, runs []RunRecord, window time.Duration) (TrendReport, error) {
	if len(runs) == 0 {
		return TrendReport{}, fmt.Errorf("no runs recorded for project %s", projectKey)
	}

	points := make([]TrendPoint, 0, len(runs))
	for i, current := range runs {
		point := TrendPoint{
			Timestamp: current.Timestamp,
			RunID:     current.RunID,
			Version:   current.Version,
			Files:     current.Files,
			Contracts: current.Contracts,
			Missing:   current.Missing,
			High:      current.High,
			Medium:    current.Medium,
			Low:       current.Low,
			Gas:       current.Gas,
			NC:        current.NC,
			Total:     current.Total,
		}

		if i > 0 {
			prev := runs[i-1]
			point.DeltaHigh = current.High - prev.High
			point.DeltaMedium = current.Medium - prev.Medium
			point.DeltaLow = current.Low - prev.Low
			point.DeltaGas = current.Gas - prev.Gas
			point.DeltaNC = current.NC - prev.NC
			point.DeltaTotal = current.Total - prev.Total
			point.DeltaFiles = current.Files - prev.Files
			if prev.Total > 0 {
				point.TotalGrowthPct = round2((float64(point.DeltaTotal) / float64(prev.Total)) * 100)
			}
		}

		avgTotal, avgHigh := movingAverages(runs, i, window)
		point.AvgTotal = round2(avgTotal)
		point.AvgHigh = round2(avgHigh)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    projectKey,
		Since:         runs[0].Timestamp,
		Until:         runs[len(runs)-1].Timestamp,
		Window:        window.String(),
		RunCount:      len(points),
		Points:        points,
	}, nil
}

// movingAverages averages total and high counts over runs inside the window
// ending at index. A non-positive window degenerates to the run itself.
func movingAverages(runs []RunRecord, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(runs[index].Total), float64(runs[index].High)
	}

	cutoff := runs[index].Timestamp.Add(-window)
	var totalSum, highSum, count int
	for i := index; i >= 0; i-- {
		if runs[i].Timestamp.Before(cutoff) {
			break
		}
		totalSum += runs[i].Total
		highSum += runs[i].High
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(totalSum) / float64(count), float64(highSum) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
