package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/slvDev/solwatch/internal/core/config"
	"github.com/slvDev/solwatch/internal/shared/observability"
	"github.com/slvDev/solwatch/internal/shared/version"
	"github.com/slvDev/solwatch/internal/ui/report"
)

var (
	configPath   = flag.String("config", "", "Path to config file (default <root>/solwatch.toml)")
	projectRoot  = flag.String("root", ".", "Project root directory")
	formatFlag   = flag.String("format", "", "Report format: markdown, json, sarif, terminal")
	outputPath   = flag.String("output", "", "Write the report to a file instead of stdout")
	minSeverity  = flag.String("min-severity", "", "Lowest rule severity to run: high, medium, low, gas, nc")
	excludeFlag  = flag.String("exclude", "", "Comma-separated exclude patterns, added to the config")
	remapFlag    = flag.String("remap", "", "Comma-separated prefix=target remappings, highest precedence")
	watchMode    = flag.Bool("watch", false, "Re-analyze on file changes")
	listRules    = flag.Bool("rules", false, "List available rules and exit")
	showHistory  = flag.Bool("history", false, "Show the run-history trend and exit")
	trendWindow  = flag.Duration("window", 0, "History window for -history (0 = all runs)")
	workers      = flag.Int("workers", 0, "Detect-phase worker count (0 = GOMAXPROCS)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	printVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *printVersion {
		fmt.Printf("solwatch %s\n", version.Current())
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	root, err := filepath.Abs(*projectRoot)
	if err != nil {
		return err
	}

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFileName)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	settings, err := config.DetectProject(root, cfg.Remappings)
	if err != nil {
		return err
	}
	logger.Debug("project detected", "type", settings.Type, "remappings", len(settings.Remappings))

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	a, err := NewApp(cfg, settings, format, *outputPath, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if *listRules {
		a.PrintRules()
		return nil
	}
	if *showHistory {
		return a.PrintHistory(*trendWindow)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, "solwatch", version.Version)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	if !*watchMode {
		_, err := a.RunOnce(ctx)
		return err
	}

	var obs *observability.Server
	if cfg.Observability.Addr != "" {
		obs = observability.NewServer(cfg.Observability.Addr, version.Version)
		obs.Start()
		defer obs.Stop(context.Background())
	}

	return a.RunWatch(ctx)
}

// applyFlags layers CLI overrides on top of the loaded config. Positional
// arguments replace the scope entirely.
func applyFlags(cfg *config.Config) {
	if *minSeverity != "" {
		cfg.MinSeverity = *minSeverity
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *excludeFlag != "" {
		cfg.Exclude = append(cfg.Exclude, splitList(*excludeFlag)...)
	}
	if *remapFlag != "" {
		cfg.Remappings = append(splitList(*remapFlag), cfg.Remappings...)
	}
	if args := flag.Args(); len(args) > 0 {
		cfg.Scope = args
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
