// Package basedir computes the ordered XDG search roots for desktop
// entries, directory entries and icons.
package basedir

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
)

// Kind is the subdirectory convention joined onto every data root.
type Kind string

const (
	Applications       Kind = "applications"
	DesktopDirectories Kind = "desktop-directories"
	Icons              Kind = "icons"
	Pixmaps            Kind = "pixmaps"
)

const (
	DefaultDataHome = "~/.local/share"
	DefaultDataDirs = "/usr/local/share/:/usr/share/"

	// PixmapsDir is always consulted last for icons.
	PixmapsDir = "/usr/share/pixmaps"
)

// Env carries the environment values the roots are derived from. Empty
// fields fall back to the XDG defaults.
type Env struct {
	Home     string `envconfig:"HOME"`
	DataHome string `envconfig:"XDG_DATA_HOME"`
	DataDirs string `envconfig:"XDG_DATA_DIRS"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return Env{}, err
	}
	return env, nil
}

// Expand replaces a leading ~ with the configured home directory.
func (e Env) Expand(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	if e.Home != "" {
		return filepath.Join(e.Home, strings.TrimPrefix(path, "~"))
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// DataRoots returns the environment-derived data roots: the user data
// directory first, then the system data directories in configured order.
// Relative entries and entries with a ".." segment are dropped.
func (e Env) DataRoots() []string {
	dataHome := e.DataHome
	if dataHome == "" {
		dataHome = DefaultDataHome
	}
	dataDirs := e.DataDirs
	if dataDirs == "" {
		dataDirs = DefaultDataDirs
	}

	raw := append([]string{dataHome}, strings.Split(dataDirs, ":")...)
	roots := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" || hasParentSegment(p) {
			continue
		}
		p = e.Expand(p)
		if !filepath.IsAbs(p) {
			continue
		}
		roots = append(roots, filepath.Clean(p))
	}
	return roots
}

// Roots returns the search roots for kind. Extra directories come first in
// the order given, followed by the environment-derived roots. Duplicates
// are removed keeping the first occurrence. Nonexistent directories are
// not filtered.
func Roots(env Env, kind Kind, extraDirs []string) []string {
	roots := make([]string, 0, len(extraDirs)+4)
	for _, dir := range extraDirs {
		if dir == "" {
			continue
		}
		roots = append(roots, filepath.Join(env.Expand(dir), string(kind)))
	}
	for _, dir := range env.DataRoots() {
		roots = append(roots, filepath.Join(dir, string(kind)))
	}
	return dedupe(roots)
}

// IconBaseDirs returns the base directories icon themes live in: extra
// icon dirs, ~/.icons, the XDG icon dirs, every pixmaps dir and finally
// /usr/share/pixmaps.
func IconBaseDirs(env Env, extraDirs []string) []string {
	var dirs []string
	for _, dir := range extraDirs {
		if dir == "" {
			continue
		}
		dirs = append(dirs, filepath.Join(env.Expand(dir), string(Icons)))
	}
	dirs = append(dirs, env.Expand("~/.icons"))
	for _, dir := range env.DataRoots() {
		dirs = append(dirs, filepath.Join(dir, string(Icons)))
	}
	dirs = append(dirs, Roots(env, Pixmaps, extraDirs)...)
	dirs = append(dirs, PixmapsDir)
	return dedupe(dirs)
}

func hasParentSegment(path string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..")
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	result := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}
