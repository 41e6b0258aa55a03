package icon

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
)

// ErrNotFound is returned when no probe succeeded anywhere in the
// fallback chain.
var ErrNotFound = errors.New("icon not found")

// Extensions are probed in this order for every candidate file.
var Extensions = []string{"png", "svg", "svgz", "xpm"}

// Resolver looks up icon files. The zero value is ready to use.
type Resolver struct {
	// Extensions overrides the probed extensions when non-empty.
	Extensions []string
}

func (r *Resolver) extensions() []string {
	if len(r.Extensions) > 0 {
		return r.Extensions
	}
	return Extensions
}

// Resolve finds the file for icon at size and scale. It searches the theme
// chain, then hicolor, then the unthemed base directories.
func (r *Resolver) Resolve(icon string, size, scale int, theme *Theme) (string, error) {
	if scale < 1 {
		scale = 1
	}

	chain := theme.Chain()
	if path, ok := r.lookupChain(chain, icon, size, scale); ok {
		return path, nil
	}

	// A broken hicolor install must not hide the unthemed icons.
	if !containsTheme(chain, FallbackTheme) {
		hicolor, err := LoadTheme(FallbackTheme, theme.ExtraDirs, theme.Env)
		if err != nil {
			slog.Warn("icon: skipping fallback theme", "theme", FallbackTheme, "error", err)
		} else if path, ok := r.lookupChain(hicolor.Chain(), icon, size, scale); ok {
			return path, nil
		}
	}

	if path, ok := r.lookupFallback(theme.BaseDirs, icon); ok {
		return path, nil
	}

	slog.Debug("icon: not found", "icon", icon, "size", size, "scale", scale, "theme", theme.Name)
	return "", ErrNotFound
}

// lookupChain first looks for an exact size match anywhere in the chain
// and only then for the closest one.
func (r *Resolver) lookupChain(chain []*Theme, icon string, size, scale int) (string, bool) {
	for _, t := range chain {
		for _, dir := range t.Dirs {
			for _, sd := range t.Subdirs {
				if !sd.Matches(size, scale) {
					continue
				}
				if path, ok := r.probe(filepath.Join(dir, sd.Path), icon); ok {
					slog.Debug("icon: exact match", "icon", icon, "path", path)
					return path, true
				}
			}
		}
	}

	closest := ""
	minimal := math.MaxInt
	for _, t := range chain {
		for _, dir := range t.Dirs {
			for _, sd := range t.Subdirs {
				for _, ext := range r.extensions() {
					path := filepath.Join(dir, sd.Path, icon+"."+ext)
					if !exists(path) {
						continue
					}
					if d := sd.Distance(size, scale); d < minimal {
						closest, minimal = path, d
					}
				}
			}
		}
	}
	if closest != "" {
		slog.Debug("icon: closest match", "icon", icon, "path", closest, "distance", minimal)
	}
	return closest, closest != ""
}

func (r *Resolver) lookupFallback(baseDirs []string, icon string) (string, bool) {
	for _, dir := range baseDirs {
		if path, ok := r.probe(dir, icon); ok {
			slog.Debug("icon: unthemed match", "icon", icon, "path", path)
			return path, true
		}
	}
	return "", false
}

func (r *Resolver) probe(dir, icon string) (string, bool) {
	for _, ext := range r.extensions() {
		path := filepath.Join(dir, icon+"."+ext)
		if exists(path) {
			return path, true
		}
	}
	return "", false
}

// FindIcon loads themeName and resolves icon against it.
func FindIcon(icon string, size, scale int, themeName string, extraDirs []string, env basedir.Env) (string, error) {
	theme, err := LoadTheme(themeName, extraDirs, env)
	if err != nil {
		return "", err
	}
	var r Resolver
	return r.Resolve(icon, size, scale, theme)
}

func containsTheme(chain []*Theme, name string) bool {
	for _, t := range chain {
		if t.Name == name {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
