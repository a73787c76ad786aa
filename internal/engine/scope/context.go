package scope

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/slvDev/solwatch/internal/core/errors"
	"github.com/slvDev/solwatch/internal/engine/ast"
	"github.com/slvDev/solwatch/internal/engine/resolver"
)

// Parser is the syntax front-end the context loads files through.
type Parser interface {
	Parse(path string, content []byte) (*ast.SourceUnit, error)
}

// State tracks the context lifecycle. Loading mutates shared registries;
// once Linked the context is read-only and safe to share across goroutines.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateLinked
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLinked:
		return "linked"
	}
	return "empty"
}

// AnalysisContext owns the file collection and the contract registry, keyed
// by qualified name. Load registers declarations, Link resolves ancestry,
// and everything after that is query-only.
type AnalysisContext struct {
	Files     []*SourceFile
	Contracts map[string]*ContractDeclaration

	// MissingContracts lists base names that stayed unresolved after lazy
	// import discovery. Non-empty means ancestry-sensitive rules ran on a
	// degraded model.
	MissingContracts []string

	filesByPath   map[string]*SourceFile
	contractOrder []string
	parser        Parser
	resolver      *resolver.Resolver
	log           *slog.Logger

	excludeGlobs    []glob.Glob
	excludePrefixes []string

	state    State
	warnings []error
}

func NewAnalysisContext(p Parser, r *resolver.Resolver, log *slog.Logger) *AnalysisContext {
	if log == nil {
		log = slog.Default()
	}
	return &AnalysisContext{
		Contracts:   make(map[string]*ContractDeclaration),
		filesByPath: make(map[string]*SourceFile),
		parser:      p,
		resolver:    r,
		log:         log,
	}
}

func (c *AnalysisContext) State() State { return c.state }

// Warnings returns the recoverable conditions recorded during load and link:
// unresolved imports, missing bases, linearization fallbacks.
func (c *AnalysisContext) Warnings() []error { return c.warnings }

// Load enumerates the given paths, parses every Solidity file not matched by
// an exclude entry, and registers its contract declarations. Read and parse
// failures are fatal: ancestry linking needs a complete declaration set.
func (c *AnalysisContext) Load(paths []string, excludes []string) error {
	if c.state == StateLinked {
		return errors.New(errors.CodeInternal, "context already linked")
	}
	c.state = StateLoading

	for _, pattern := range excludes {
		g, err := glob.Compile(pattern)
		if err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern "+pattern)
		}
		c.excludeGlobs = append(c.excludeGlobs, g)
		c.excludePrefixes = append(c.excludePrefixes, strings.TrimSuffix(pattern, "/"))
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return errors.Wrap(err, errors.CodeIOError, "stat "+path)
		}
		if info.IsDir() {
			if err := c.loadDirectory(path); err != nil {
				return err
			}
			continue
		}
		if isSolidityFile(path) && !c.excluded(path) {
			if _, err := c.loadFile(path); err != nil {
				return err
			}
		}
	}

	c.log.Debug("scope loaded", "files", len(c.Files), "contracts", len(c.Contracts))
	return nil
}

func (c *AnalysisContext) loadDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.CodeIOError, "read directory "+dir)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if c.excluded(path) {
			continue
		}
		if entry.IsDir() {
			if err := c.loadDirectory(path); err != nil {
				return err
			}
			continue
		}
		if isSolidityFile(path) {
			if _, err := c.loadFile(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *AnalysisContext) loadFile(path string) (*SourceFile, error) {
	if f, ok := c.filesByPath[path]; ok {
		return f, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIOError, "read "+path)
	}
	unit, err := c.parser.Parse(path, content)
	if err != nil {
		return nil, err
	}

	file := NewSourceFile(path, content, unit)
	c.Files = append(c.Files, file)
	c.filesByPath[path] = file
	c.registerContracts(file)
	return file, nil
}

// AddFile registers an already-parsed file, bypassing the filesystem. Test
// helpers use this to assemble in-memory scopes.
func (c *AnalysisContext) AddFile(file *SourceFile) {
	if _, ok := c.filesByPath[file.Path]; ok {
		return
	}
	if c.state == StateEmpty {
		c.state = StateLoading
	}
	c.Files = append(c.Files, file)
	c.filesByPath[file.Path] = file
	c.registerContracts(file)
}

func (c *AnalysisContext) registerContracts(file *SourceFile) {
	for _, part := range file.Unit.Parts {
		def, ok := part.(*ast.ContractDefinition)
		if !ok {
			continue
		}
		decl := newContractDeclaration(file, def)
		if _, exists := c.Contracts[decl.QualifiedName]; exists {
			continue
		}
		c.Contracts[decl.QualifiedName] = decl
		c.contractOrder = append(c.contractOrder, decl.QualifiedName)
	}
}

func (c *AnalysisContext) excluded(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, prefix := range c.excludePrefixes {
		if normalized == prefix || strings.HasPrefix(normalized, prefix+"/") {
			return true
		}
	}
	for _, g := range c.excludeGlobs {
		if g.Match(normalized) {
			return true
		}
	}
	return false
}

func isSolidityFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".sol")
}

// Link resolves every contract's ancestry. Unknown base names trigger lazy
// import-driven discovery: the importing file's import graph is searched and
// newly found files are loaded and registered on the way. Bases that stay
// unresolved land in MissingContracts and are dropped from linearization; an
// inheritance cycle aborts the run with no chain written anywhere.
func (c *AnalysisContext) Link() error {
	if c.state == StateLinked {
		return errors.New(errors.CodeInternal, "context already linked")
	}

	memo := make(map[string][]string)
	inProgress := make(map[string]bool)

	// Lazy discovery appends to contractOrder while we iterate.
	for i := 0; i < len(c.contractOrder); i++ {
		if _, err := c.chainFor(c.contractOrder[i], memo, inProgress); err != nil {
			return err
		}
	}

	for qualified, chain := range memo {
		c.Contracts[qualified].InheritanceChain = chain
	}

	sort.Strings(c.MissingContracts)
	c.MissingContracts = dedupeSorted(c.MissingContracts)
	c.state = StateLinked

	c.log.Debug("scope linked",
		"contracts", len(c.Contracts),
		"missing", len(c.MissingContracts))
	return nil
}

func (c *AnalysisContext) chainFor(qualified string, memo map[string][]string, inProgress map[string]bool) ([]string, error) {
	if chain, ok := memo[qualified]; ok {
		return chain, nil
	}
	if inProgress[qualified] {
		return nil, errors.AddContext(
			errors.Newf(errors.CodeCircularInheritance, "circular inheritance involving %s", SimpleName(qualified)),
			errors.CtxContract, qualified)
	}
	inProgress[qualified] = true
	defer delete(inProgress, qualified)

	decl := c.Contracts[qualified]
	var baseQualified []string
	for _, baseName := range decl.Bases {
		bq, err := c.resolveBase(decl, baseName)
		if err != nil {
			return nil, err
		}
		if bq == "" {
			c.recordMissing(baseName)
			continue
		}
		if _, err := c.chainFor(bq, memo, inProgress); err != nil {
			return nil, err
		}
		baseQualified = append(baseQualified, bq)
	}

	lookup := func(name string) ([]string, error) { return memo[name], nil }
	chain, err := Linearize(qualified, baseQualified, lookup)
	if err != nil {
		if !errors.IsCode(err, errors.CodeInconsistentHierarchy) {
			return nil, err
		}
		c.warnings = append(c.warnings, err)
		c.log.Warn("inconsistent hierarchy, using fallback chain", "contract", qualified)
		chain = FallbackChain(baseQualified, lookup)
	}
	memo[qualified] = chain
	return chain, nil
}

// resolveBase maps a direct-base name to a qualified name: same file first,
// then the importing file's import graph, loading files on demand. Returns
// "" when the base cannot be found anywhere reachable.
func (c *AnalysisContext) resolveBase(decl *ContractDeclaration, baseName string) (string, error) {
	// `is Lib.Base` refers to the contract by its last path segment.
	if idx := strings.LastIndex(baseName, "."); idx >= 0 {
		baseName = baseName[idx+1:]
	}

	if _, ok := c.Contracts[QualifiedName(decl.File, baseName)]; ok {
		return QualifiedName(decl.File, baseName), nil
	}

	file := c.filesByPath[decl.File]
	if file == nil {
		return "", nil
	}
	return c.searchImports(file, baseName, map[string]bool{file.Path: true})
}

func (c *AnalysisContext) searchImports(file *SourceFile, name string, visited map[string]bool) (string, error) {
	for _, imp := range file.Imports {
		target := name
		if len(imp.Symbols) > 0 {
			matched := false
			for _, sym := range imp.Symbols {
				if sym.Alias == name {
					target = sym.Name
					matched = true
					break
				}
				if sym.Alias == "" && sym.Name == name {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}

		resolved, err := c.resolver.Resolve(imp.Path, file.Path)
		if err != nil {
			if errors.IsFatal(err) {
				return "", err
			}
			c.warnings = append(c.warnings, err)
			c.log.Warn("unresolved import", "file", file.Path, "import", imp.Path)
			continue
		}
		if visited[resolved] {
			continue
		}
		visited[resolved] = true

		if c.excluded(resolved) {
			continue
		}
		imported, err := c.loadFile(resolved)
		if err != nil {
			return "", err
		}

		if _, ok := c.Contracts[QualifiedName(imported.Path, target)]; ok {
			return QualifiedName(imported.Path, target), nil
		}
		// Re-exports: keep searching through the imported file's imports.
		if found, err := c.searchImports(imported, target, visited); err != nil || found != "" {
			return found, err
		}
	}
	return "", nil
}

func (c *AnalysisContext) recordMissing(name string) {
	c.MissingContracts = append(c.MissingContracts, name)
	c.warnings = append(c.warnings, errors.AddContext(
		errors.Newf(errors.CodeMissingContract, "base contract not found: %s", name),
		errors.CtxContract, name))
}

func dedupeSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || in[i-1] != s {
			out = append(out, s)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Query surface, valid after Link.
// ---------------------------------------------------------------------------

// Contract looks up a declaration by qualified name.
func (c *AnalysisContext) Contract(qualified string) (*ContractDeclaration, bool) {
	decl, ok := c.Contracts[qualified]
	return decl, ok
}

// FileByPath returns the loaded file for a path, if any.
func (c *AnalysisContext) FileByPath(path string) (*SourceFile, bool) {
	f, ok := c.filesByPath[path]
	return f, ok
}

// QualifiedNameFor resolves a bare contract name seen in file to its registry
// key: the file's own declaration wins, otherwise the first registered
// declaration with that name.
func (c *AnalysisContext) QualifiedNameFor(file *SourceFile, name string) string {
	if _, ok := c.Contracts[QualifiedName(file.Path, name)]; ok {
		return QualifiedName(file.Path, name)
	}
	for _, qualified := range c.contractOrder {
		if SimpleName(qualified) == name {
			return qualified
		}
	}
	return QualifiedName(file.Path, name)
}

// InheritanceChain returns the linearized ancestry, most base first.
func (c *AnalysisContext) InheritanceChain(qualified string) []string {
	if decl, ok := c.Contracts[qualified]; ok {
		return decl.InheritanceChain
	}
	return nil
}

// AllStateVariables lists state variables in storage-slot order: each
// ancestor's own variables in chain order, then the contract's own.
func (c *AnalysisContext) AllStateVariables(qualified string) []StateVariable {
	decl, ok := c.Contracts[qualified]
	if !ok {
		return nil
	}
	var vars []StateVariable
	for _, ancestor := range decl.InheritanceChain {
		if a, ok := c.Contracts[ancestor]; ok {
			vars = append(vars, a.StateVars...)
		}
	}
	return append(vars, decl.StateVars...)
}

// InheritsFrom reports whether any linearized ancestor's simple name matches
// the pattern. Glob metacharacters are honored; a plain word matches as a
// substring, so "Upgradeable" catches ERC20Upgradeable.
func (c *AnalysisContext) InheritsFrom(qualified, pattern string) bool {
	decl, ok := c.Contracts[qualified]
	if !ok {
		return false
	}
	var g glob.Glob
	if strings.ContainsAny(pattern, "*?[{") {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return false
		}
		g = compiled
	}
	for _, ancestor := range decl.InheritanceChain {
		name := SimpleName(ancestor)
		if g != nil {
			if g.Match(name) {
				return true
			}
		} else if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// DefinesFunction reports whether the contract or any ancestor declares a
// function with the given name.
func (c *AnalysisContext) DefinesFunction(qualified, name string) bool {
	decl, ok := c.Contracts[qualified]
	if !ok {
		return false
	}
	for _, fn := range decl.Functions {
		if fn.Name == name {
			return true
		}
	}
	for _, ancestor := range decl.InheritanceChain {
		a, ok := c.Contracts[ancestor]
		if !ok {
			continue
		}
		for _, fn := range a.Functions {
			if fn.Name == name {
				return true
			}
		}
	}
	return false
}
