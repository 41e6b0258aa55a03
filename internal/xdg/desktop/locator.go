package desktop

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
)

// ErrAmbiguous is returned by TreeSource when more than one file matches.
var ErrAmbiguous = errors.New("ambiguous desktop file")

// Kind selects the file convention to search for.
type Kind struct {
	Subdir    basedir.Kind
	Extension string
}

var (
	Applications     = Kind{Subdir: basedir.Applications, Extension: ".desktop"}
	DirectoryEntries = Kind{Subdir: basedir.DesktopDirectories, Extension: ".directory"}
)

// KindByName maps "applications" and "desktop-directories" to a Kind.
func KindByName(name string) (Kind, bool) {
	switch basedir.Kind(name) {
	case basedir.Applications:
		return Applications, true
	case basedir.DesktopDirectories:
		return DirectoryEntries, true
	}
	return Kind{}, false
}

// Source decides where desktop files live.
type Source interface {
	// Lookup returns the path of the file for id (which carries its
	// extension), or ErrNotFound.
	Lookup(kind Kind, id string) (string, error)
}

// XDGSource searches the XDG data roots, extra directories first.
type XDGSource struct {
	Env       basedir.Env
	ExtraDirs []string
}

// Lookup tries every expanded candidate against every root, candidates in
// the outer loop, and returns the first regular file found.
func (s XDGSource) Lookup(kind Kind, id string) (string, error) {
	roots := basedir.Roots(s.Env, kind.Subdir, s.ExtraDirs)
	for _, candidate := range Expand(id) {
		for _, root := range roots {
			path := filepath.Join(root, candidate)
			if isFile(path) {
				slog.Debug("desktop: match", "id", id, "path", path)
				return path, nil
			}
		}
	}
	return "", ErrNotFound
}

// TreeSource searches an unpacked source tree, where the file may sit at any
// depth. Exactly one match is required.
type TreeSource struct {
	Dir string
}

func (s TreeSource) Lookup(kind Kind, id string) (string, error) {
	name := filepath.Base(id)
	var matches []string
	err := filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != s.Dir {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() && d.Name() == name {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("walking %s: %w", s.Dir, err)
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s: %s", ErrAmbiguous, name, strings.Join(matches, ", "))
	}
}

// Locator finds and parses desktop files of one kind from one source.
type Locator struct {
	Kind   Kind
	Source Source
}

// NewLocator returns a locator over the XDG data roots.
func NewLocator(kind Kind, env basedir.Env, extraDirs []string) *Locator {
	return &Locator{Kind: kind, Source: XDGSource{Env: env, ExtraDirs: extraDirs}}
}

// FindPath returns the path of the desktop file for id or ErrNotFound.
func (l *Locator) FindPath(id string) (string, error) {
	if !strings.HasSuffix(id, l.Kind.Extension) {
		id += l.Kind.Extension
	}
	return l.Source.Lookup(l.Kind, id)
}

// Find locates and parses the desktop file for id. A missing file yields
// ErrNotFound; malformed content yields an *ini.ParseError.
func (l *Locator) Find(id string) (*Desktop, error) {
	path, err := l.FindPath(id)
	if err != nil {
		return nil, err
	}
	return Parse(path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
