package desktop

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/0xADE/ade-xdgd/internal/xdg/basedir"
)

// DesktopID derives the desktop file ID of path relative to root:
// root/org/kde/foo.desktop becomes org-kde-foo.
func DesktopID(root, path string, kind Kind) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if !strings.HasSuffix(rel, kind.Extension) {
		return "", false
	}
	rel = strings.TrimSuffix(rel, kind.Extension)
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "-"), true
}

// Scan lists the desktop IDs installed under every root of kind. An ID
// provided by a higher priority root shadows the same ID further down.
func Scan(env basedir.Env, extraDirs []string, kind Kind) []string {
	var ids []string
	seen := make(map[string]struct{})

	for _, root := range basedir.Roots(env, kind.Subdir, extraDirs) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Skip unreadable or missing directories.
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			id, ok := DesktopID(root, path, kind)
			if !ok {
				return nil
			}
			if _, dup := seen[id]; dup {
				return nil
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			return nil
		})
	}

	return ids
}
