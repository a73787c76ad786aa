package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "solwatch_parsing_seconds",
		Help:    "Time spent parsing a Solidity source file.",
		Buckets: prometheus.DefBuckets,
	})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solwatch_analysis_seconds",
		Help:    "Time spent in one analysis phase.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	FilesAnalyzed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solwatch_files_analyzed",
		Help: "Number of source files in the last analyzed scope.",
	})

	ContractsLinked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solwatch_contracts_linked",
		Help: "Number of contracts in the last linked registry.",
	})

	MissingContracts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "solwatch_missing_contracts",
		Help: "Base contracts left unresolved after the last link phase.",
	})

	FindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "solwatch_findings_total",
		Help: "Findings reported, by severity.",
	}, []string{"severity"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solwatch_watcher_events_total",
		Help: "File system events received by the watcher.",
	})

	AnalysisRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "solwatch_analysis_runs_total",
		Help: "Completed analysis runs.",
	})
)
