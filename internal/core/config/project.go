package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/engine/resolver"
)

type ProjectType string

const (
	ProjectFoundry ProjectType = "foundry"
	ProjectHardhat ProjectType = "hardhat"
	ProjectTruffle ProjectType = "truffle"
	ProjectCustom  ProjectType = "custom"
)

// ProjectSettings is what detection hands to the engine: where sources live,
// which prefixes remap where, and which directories act as library roots.
// Remappings are ordered by precedence, highest first, because the resolver
// applies the first matching prefix whose target exists.
type ProjectSettings struct {
	Type         ProjectType
	Root         string
	Remappings   []resolver.Remapping
	LibraryPaths []string
	DefaultScope []string
}

type foundryToml struct {
	Profile    foundryProfiles `toml:"profile"`
	Remappings []string        `toml:"remappings"`
}

type foundryProfiles struct {
	Default foundryProfile `toml:"default"`
}

type foundryProfile struct {
	Src        string   `toml:"src"`
	Libs       []string `toml:"libs"`
	Remappings []string `toml:"remappings"`
}

// DetectProject inspects the root for framework markers and assembles the
// project settings. Manual remappings from the config file win over anything
// detected on disk.
func DetectProject(root string, manualRemappings []string) (*ProjectSettings, error) {
	settings := &ProjectSettings{
		Type: detectProjectType(root),
		Root: root,
	}

	switch settings.Type {
	case ProjectFoundry:
		if err := applyFoundry(root, settings); err != nil {
			return nil, err
		}
	case ProjectHardhat:
		settings.LibraryPaths = []string{"node_modules"}
		settings.DefaultScope = []string{"contracts"}
	case ProjectTruffle:
		settings.LibraryPaths = []string{"node_modules"}
		settings.DefaultScope = []string{"contracts"}
	default:
		settings.LibraryPaths = []string{"lib", "node_modules"}
		settings.DefaultScope = []string{"src"}
	}

	// Highest precedence first: manual config, then remappings.txt, then
	// whatever the framework config declared, then convention defaults.
	ordered := parseRemappingList(manualRemappings)

	fromFile, err := resolver.LoadRemappingsFile(filepath.Join(root, "remappings.txt"))
	if err != nil {
		return nil, err
	}
	ordered = append(ordered, fromFile...)
	ordered = append(ordered, settings.Remappings...)
	ordered = append(ordered, conventionRemappings(root)...)

	settings.Remappings = ordered
	return settings, nil
}

func detectProjectType(root string) ProjectType {
	if fileExists(filepath.Join(root, "foundry.toml")) {
		return ProjectFoundry
	}
	if fileExists(filepath.Join(root, "hardhat.config.js")) ||
		fileExists(filepath.Join(root, "hardhat.config.ts")) {
		return ProjectHardhat
	}
	if fileExists(filepath.Join(root, "truffle-config.js")) {
		return ProjectTruffle
	}
	return ProjectCustom
}

func applyFoundry(root string, settings *ProjectSettings) error {
	path := filepath.Join(root, "foundry.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.AddContext(
			errors.Wrap(err, errors.CodeIOError, "read foundry.toml"),
			errors.CtxPath, path)
	}

	var ft foundryToml
	if _, err := toml.Decode(string(data), &ft); err != nil {
		return errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "parse foundry.toml"),
			errors.CtxPath, path)
	}

	profile := ft.Profile.Default

	src := profile.Src
	if src == "" {
		src = "src"
	}
	settings.DefaultScope = []string{src}

	if len(profile.Libs) > 0 {
		settings.LibraryPaths = profile.Libs
	} else {
		settings.LibraryPaths = []string{"lib"}
	}

	// Profile remappings shadow root-level ones for the same prefix.
	settings.Remappings = append(
		parseRemappingList(profile.Remappings),
		parseRemappingList(ft.Remappings)...)
	return nil
}

// conventionRemappings maps well-known library prefixes whose conventional
// install directory is actually present.
func conventionRemappings(root string) []resolver.Remapping {
	conventions := []resolver.Remapping{
		{Prefix: "@openzeppelin/", Target: "lib/openzeppelin-contracts/contracts/"},
		{Prefix: "@solmate/", Target: "lib/solmate/src/"},
		{Prefix: "ds-test/", Target: "lib/ds-test/src/"},
		{Prefix: "forge-std/", Target: "lib/forge-std/src/"},
	}

	out := make([]resolver.Remapping, 0, len(conventions))
	for _, r := range conventions {
		if dirExists(filepath.Join(root, r.Target)) {
			out = append(out, r)
		}
	}
	return out
}

func parseRemappingList(entries []string) []resolver.Remapping {
	out := make([]resolver.Remapping, 0, len(entries))
	for _, entry := range entries {
		prefix, target, ok := strings.Cut(entry, "=")
		if !ok || prefix == "" || target == "" {
			continue
		}
		out = append(out, resolver.Remapping{Prefix: prefix, Target: target})
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
