package filters

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	mapset "github.com/deckarep/golang-set/v2"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/prefsync/prefsync/internal/client/settings"
	"github.com/prefsync/prefsync/internal/utils"
)

const ignoreFileName = "syncignore"

var defaultIgnoreLines = []string{
	// merge leftovers
	"**/*.orig",
	"**/*.rej",
	// editor droppings
	"*.tmp",
	"*.swp",
	"*~",
	// OS-specific
	".DS_Store",
	"Thumbs.db",
}

// Filters is the merged view of what syncs: the resource rules file, the
// ignored key patterns from user settings, and the syncignore path excludes.
type Filters struct {
	baseDir string
	store   *settings.Store
	mu      sync.RWMutex
	enabled mapset.Set[Resource]
	rules   *Config
	ignore  *gitignore.GitIgnore
}

func New(baseDir string, store *settings.Store) *Filters {
	return &Filters{
		baseDir: baseDir,
		store:   store,
		enabled: mapset.NewSet[Resource](),
		rules:   DefaultConfig(),
	}
}

// Load reads the rules file and the syncignore file and recomputes the
// enabled resource set. Safe to call again to pick up edits.
func (f *Filters) Load() error {
	rules, err := Load(filepath.Join(f.baseDir, FileName))
	if err != nil {
		return err
	}

	enabled := mapset.NewSet[Resource]()
	for _, resource := range AllResources() {
		if rules.ActionFor(resource) == ActionAllow {
			enabled.Add(resource)
		}
	}

	ignore := f.loadIgnoreFile()

	f.mu.Lock()
	f.rules = rules
	f.enabled = enabled
	f.ignore = ignore
	f.mu.Unlock()

	slog.Debug("filters loaded", "enabled", enabled.Cardinality())
	return nil
}

func (f *Filters) loadIgnoreFile() *gitignore.GitIgnore {
	ignorePath := filepath.Join(f.baseDir, ignoreFileName)
	ignoreLines := defaultIgnoreLines

	// read the syncignore file if it exists
	if utils.FileExists(ignorePath) {
		rules := 0
		file, err := os.Open(ignorePath)
		if err != nil {
			slog.Warn("failed to open syncignore file", "path", ignorePath, "error", err)
		} else {
			defer file.Close()

			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				line := scanner.Text()
				if line != "" {
					ignoreLines = append(ignoreLines, line)
					rules++
				}
			}
			if err := scanner.Err(); err != nil {
				slog.Warn("error reading syncignore file", "path", ignorePath, "error", err)
			} else {
				slog.Debug("loaded syncignore file", "path", ignorePath, "rules", rules)
			}
		}
	}

	return gitignore.CompileIgnoreLines(ignoreLines...)
}

// Rules returns the loaded resource rules.
func (f *Filters) Rules() *Config {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.rules
}

// ResourceEnabled reports whether a resource takes part in sync.
func (f *Filters) ResourceEnabled(resource Resource) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.enabled.Contains(resource)
}

// EnabledResources returns the enabled resources in the canonical order.
func (f *Filters) EnabledResources() []Resource {
	f.mu.RLock()
	defer f.mu.RUnlock()

	resources := make([]Resource, 0, f.enabled.Cardinality())
	for _, resource := range AllResources() {
		if f.enabled.Contains(resource) {
			resources = append(resources, resource)
		}
	}
	return resources
}

// IgnoredKey reports whether a setting key is excluded from sync. Patterns
// use doublestar globs over dotted key paths, e.g. "editor.*" or
// "workbench.**".
func (f *Filters) IgnoredKey(key string) bool {
	for _, pattern := range f.store.IgnoredKeys() {
		ok, err := doublestar.Match(pattern, key)
		if err != nil {
			slog.Warn("bad ignored key pattern", "pattern", pattern, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// ShouldIgnorePath reports whether a resource file path is excluded.
func (f *Filters) ShouldIgnorePath(path string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.ignore == nil {
		return false
	}
	return f.ignore.MatchesPath(path)
}

// IgnoredKeyPatterns returns the raw ignored key patterns for engine
// requests.
func (f *Filters) IgnoredKeyPatterns() []string {
	return f.store.IgnoredKeys()
}

// ResourceNames returns the enabled resources as plain strings for engine
// requests.
func (f *Filters) ResourceNames() []string {
	resources := f.EnabledResources()
	names := make([]string, len(resources))
	for i, resource := range resources {
		names[i] = string(resource)
	}
	return names
}
