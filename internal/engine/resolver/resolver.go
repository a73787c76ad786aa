// Package resolver maps Solidity import strings to files on disk. Resolution
// tries four tiers in order: relative to the importing file, configured
// remappings, library directories (lib/, node_modules/), and finally the
// project root.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/slvDev/solwatch/internal/core/errors"
)

// Remapping rewrites an import prefix to a filesystem path, foundry-style:
// `@openzeppelin/ -> lib/openzeppelin-contracts/contracts/`.
type Remapping struct {
	Prefix string
	Target string
}

// Resolver resolves import paths against one project root. Remappings are
// consulted in declaration order; the first prefix match whose target file
// exists wins, so resolution is deterministic across runs.
type Resolver struct {
	projectRoot  string
	remappings   []Remapping
	libraryPaths []string
}

func NewResolver(projectRoot string) *Resolver {
	return &Resolver{
		projectRoot:  projectRoot,
		libraryPaths: []string{"lib", "node_modules"},
	}
}

// SetRemappings replaces the remapping table. Order is preserved.
func (r *Resolver) SetRemappings(remappings []Remapping) {
	r.remappings = remappings
}

// AddLibraryPaths appends extra library search directories, relative to the
// project root.
func (r *Resolver) AddLibraryPaths(paths ...string) {
	r.libraryPaths = append(r.libraryPaths, paths...)
}

func (r *Resolver) Remappings() []Remapping { return r.remappings }

func (r *Resolver) LibraryPaths() []string { return r.libraryPaths }

// Resolve turns an import string from currentFile into a canonical file path.
// A missing target is a recoverable IMPORT_NOT_FOUND error; a target that
// exists but cannot be canonicalized is a hard IO_ERROR.
func (r *Resolver) Resolve(importPath, currentFile string) (string, error) {
	if resolved, err := r.resolveRelative(importPath, currentFile); err != nil || resolved != "" {
		return resolved, err
	}
	if resolved, err := r.resolveRemapped(importPath); err != nil || resolved != "" {
		return resolved, err
	}
	if resolved, err := r.resolveLibrary(importPath); err != nil || resolved != "" {
		return resolved, err
	}
	if resolved, err := r.resolveProjectRoot(importPath); err != nil || resolved != "" {
		return resolved, err
	}
	return "", errors.AddContext(
		errors.Newf(errors.CodeImportNotFound, "import not found: %s", importPath),
		errors.CtxImport, importPath)
}

func (r *Resolver) resolveRelative(importPath, currentFile string) (string, error) {
	if !strings.HasPrefix(importPath, "./") && !strings.HasPrefix(importPath, "../") {
		return "", nil
	}
	dir := filepath.Dir(currentFile)
	if dir == "" || dir == currentFile {
		return "", errors.AddContext(
			errors.Newf(errors.CodeInvalidPath, "cannot determine parent directory of %s", currentFile),
			errors.CtxPath, currentFile)
	}
	return r.canonicalizeIfExists(filepath.Join(dir, importPath))
}

func (r *Resolver) resolveRemapped(importPath string) (string, error) {
	for _, m := range r.remappings {
		if !strings.HasPrefix(importPath, m.Prefix) {
			continue
		}
		target := m.Target
		if !filepath.IsAbs(target) {
			target = filepath.Join(r.projectRoot, target)
		}
		resolved, err := r.canonicalizeIfExists(filepath.Join(target, importPath[len(m.Prefix):]))
		if err != nil {
			return "", err
		}
		if resolved != "" {
			return resolved, nil
		}
	}
	return "", nil
}

func (r *Resolver) resolveLibrary(importPath string) (string, error) {
	for _, lib := range r.libraryPaths {
		resolved, err := r.canonicalizeIfExists(filepath.Join(r.projectRoot, lib, importPath))
		if err != nil {
			return "", err
		}
		if resolved != "" {
			return resolved, nil
		}
	}
	return "", nil
}

func (r *Resolver) resolveProjectRoot(importPath string) (string, error) {
	return r.canonicalizeIfExists(filepath.Join(r.projectRoot, importPath))
}

// canonicalizeIfExists returns "" for paths that do not exist so the caller
// can try the next tier. Symlinks are followed.
func (r *Resolver) canonicalizeIfExists(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrap(err, errors.CodeIOError, "stat "+path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeIOError, "canonicalize "+path)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeIOError, "canonicalize "+path)
	}
	return abs, nil
}

// LoadRemappingsFile parses a foundry remappings.txt: one `prefix=target`
// per line, comments and blanks skipped. Missing file yields no remappings.
func LoadRemappingsFile(path string) ([]Remapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeIOError, "read "+path)
	}
	var out []Remapping
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prefix, target, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out = append(out, Remapping{
			Prefix: strings.TrimSpace(prefix),
			Target: strings.TrimSpace(target),
		})
	}
	return out, nil
}
