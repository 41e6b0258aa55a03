// Package icon implements freedesktop.org icon theme loading and icon
// lookup.
package icon

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
	"github.com/0xADE/ade-xdgd/internal/xdg/ini"
)

const (
	themeGroup = "Icon Theme"
	indexFile  = "index.theme"

	// FallbackTheme is searched after the requested theme chain.
	FallbackTheme = "hicolor"
)

// Theme is a loaded icon theme together with its parents.
type Theme struct {
	Name string
	// Dirs are every base dir joined with Name, existing or not. All of them
	// take part in lookups.
	Dirs []string
	// BaseDirs are the unthemed icon base directories.
	BaseDirs  []string
	ExtraDirs []string
	Env       basedir.Env

	// IndexPath is the index.theme the configuration was read from, empty
	// for an invalid theme.
	IndexPath   string
	DisplayName string
	Subdirs     []Subdir
	Parents     []*Theme
}

// LoadTheme loads the theme called name and, recursively, the themes it
// inherits from. A theme without any index.theme is returned as invalid
// rather than as an error; errors are reserved for malformed index files.
func LoadTheme(name string, extraDirs []string, env basedir.Env) (*Theme, error) {
	return loadTheme(name, extraDirs, env, map[string]bool{})
}

func loadTheme(name string, extraDirs []string, env basedir.Env, visited map[string]bool) (*Theme, error) {
	visited[name] = true

	baseDirs := basedir.IconBaseDirs(env, extraDirs)
	t := &Theme{
		Name:      name,
		BaseDirs:  baseDirs,
		ExtraDirs: extraDirs,
		Env:       env,
	}
	for _, dir := range baseDirs {
		t.Dirs = append(t.Dirs, filepath.Join(dir, name))
	}

	for _, dir := range t.Dirs {
		path := filepath.Join(dir, indexFile)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			t.IndexPath = path
			break
		}
	}
	if t.IndexPath == "" {
		slog.Debug("icon: theme has no index", "theme", name)
		return t, nil
	}

	file, err := ini.ParseFile(t.IndexPath)
	if err != nil {
		return nil, err
	}
	group := file.Group(themeGroup)
	if group == nil {
		return nil, file.Errorf("", "", "missing [%s] group", themeGroup)
	}
	t.DisplayName = group.Value("Name")

	dirs := ini.SplitList(group.Value("Directories"), ",")
	dirs = append(dirs, ini.SplitList(group.Value("ScaledDirectories"), ",")...)
	for _, dir := range dirs {
		sd, err := parseSubdir(file, dir)
		if err != nil {
			return nil, err
		}
		t.Subdirs = append(t.Subdirs, sd)
	}

	for _, parent := range ini.SplitList(group.Value("Inherits"), ",") {
		if visited[parent] {
			slog.Warn("icon: skipping repeated theme in inheritance", "theme", name, "parent", parent)
			continue
		}
		p, err := loadTheme(parent, extraDirs, env, visited)
		if err != nil {
			return nil, err
		}
		t.Parents = append(t.Parents, p)
	}

	return t, nil
}

// Valid reports whether an index.theme was found for the theme.
func (t *Theme) Valid() bool {
	return t.IndexPath != ""
}

// Chain returns the theme followed by its ancestors, depth-first in
// declaration order.
func (t *Theme) Chain() []*Theme {
	chain := []*Theme{t}
	for _, p := range t.Parents {
		chain = append(chain, p.Chain()...)
	}
	return chain
}
