// Package config loads solwatch.toml and auto-detects the surrounding
// project layout (Foundry, Hardhat, Truffle) so analysis can run without any
// configuration at all.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/core/findings"
)

const DefaultFileName = "solwatch.toml"

type Config struct {
	// Scope lists the paths to analyze, relative to the project root.
	// Empty means the detected project's source directory.
	Scope   []string `toml:"scope"`
	Exclude []string `toml:"exclude"`

	// MinSeverity is the lowest severity of rules to run.
	MinSeverity string `toml:"min_severity"`
	Format      string `toml:"format"`

	// Remappings use the foundry "prefix=target" form and take precedence
	// over everything detected from the project.
	Remappings   []string `toml:"remappings"`
	ExcludeRules []string `toml:"exclude_rules"`

	Workers     int    `toml:"workers"`
	HistoryPath string `toml:"history_path"`

	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	// Addr enables the /metrics and /health server when non-empty.
	Addr string `toml:"addr"`
	// OTLPEndpoint enables trace export when non-empty.
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

func Default() *Config {
	return &Config{
		MinSeverity: "nc",
		Format:      "markdown",
		Watch:       Watch{Debounce: 500 * time.Millisecond},
	}
}

// Load reads a config file, falling back to defaults when the file does not
// exist. A present but malformed file is a hard error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeIOError, "read config file"),
			errors.CtxPath, path)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "parse config file"),
			errors.CtxPath, path)
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if _, ok := findings.ParseSeverity(cfg.MinSeverity); !ok {
		return nil, errors.Newf(errors.CodeValidationError, "unknown min_severity %q", cfg.MinSeverity)
	}

	return cfg, nil
}

// Severity returns the parsed severity floor.
func (c *Config) Severity() findings.Severity {
	sev, ok := findings.ParseSeverity(c.MinSeverity)
	if !ok {
		return findings.SeverityNC
	}
	return sev
}
