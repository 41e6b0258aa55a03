// Package category maps freedesktop main categories to their menu
// directory entries.
package category

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/0xADE/ade-xdgd/internal/xdg/desktop"
)

// DefaultMap is the KDE main menu layout: category -> .directory id.
var DefaultMap = map[string]string{
	"AudioVideo":  "kf5-multimedia.directory",
	"Audio":       "kf5-multimedia.directory",
	"Video":       "kf5-multimedia.directory",
	"Development": "kf5-development.directory",
	"Education":   "kf5-education.directory",
	"Game":        "kf5-games.directory",
	"Graphics":    "kf5-graphics.directory",
	"Network":     "kf5-internet.directory",
	"Office":      "kf5-office.directory",
	"Settings":    "kf5-settingsmenu.directory",
	"System":      "kf5-system.directory",
	"Utility":     "kf5-utilities.directory",
}

// Registry holds the directory entry of every main category. It is built
// once and read-only afterwards.
type Registry struct {
	mapping map[string]string
	entries map[string]*desktop.Desktop
}

// Load locates the directory entry of every category in mapping. Entries
// that cannot be found or parsed are reported in the returned error, which
// aggregates all failures; the registry is usable regardless and falls
// back to the raw category name for them.
func Load(locator *desktop.Locator, mapping map[string]string) (*Registry, error) {
	if mapping == nil {
		mapping = DefaultMap
	}
	r := &Registry{
		mapping: mapping,
		entries: make(map[string]*desktop.Desktop, len(mapping)),
	}

	loaded := make(map[string]*desktop.Desktop)
	var result *multierror.Error
	for category, id := range mapping {
		if d, ok := loaded[id]; ok {
			r.entries[category] = d
			continue
		}
		d, err := locator.Find(id)
		if err != nil {
			if errors.Is(err, desktop.ErrNotFound) {
				slog.Debug("category: directory entry missing", "category", category, "id", id)
			}
			result = multierror.Append(result, fmt.Errorf("category %s (%s): %w", category, id, err))
			continue
		}
		loaded[id] = d
		r.entries[category] = d
	}

	return r, result.ErrorOrNil()
}

// Main reports whether category is one of the registry's main categories.
func (r *Registry) Main(category string) bool {
	_, ok := r.mapping[category]
	return ok
}

// Categories returns the known main categories.
func (r *Registry) Categories() []string {
	result := make([]string, 0, len(r.mapping))
	for category := range r.mapping {
		result = append(result, category)
	}
	return result
}

// Entry returns the directory entry for category, if it was loaded.
func (r *Registry) Entry(category string) (*desktop.Desktop, bool) {
	d, ok := r.entries[category]
	return d, ok
}

// Name returns the display name of category. Unloaded categories map to
// themselves.
func (r *Registry) Name(category string) string {
	if d, ok := r.entries[category]; ok {
		if name := d.Name(); name != "" {
			return name
		}
	}
	return category
}

// LocalizedName is Name in the given POSIX locale.
func (r *Registry) LocalizedName(category, locale string) string {
	if d, ok := r.entries[category]; ok {
		if name := d.LocalizedValue("Name", locale); name != "" {
			return name
		}
	}
	return category
}

// Icon returns the icon name of the category's directory entry.
func (r *Registry) Icon(category string) string {
	if d, ok := r.entries[category]; ok {
		return d.Icon()
	}
	return ""
}

// MainCategories filters categories down to main ones, keeping their order
// and dropping duplicates.
func (r *Registry) MainCategories(categories []string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, c := range categories {
		if !r.Main(c) || seen[c] {
			continue
		}
		seen[c] = true
		result = append(result, c)
	}
	return result
}

// Names maps the main categories among categories to their display names.
// Categories sharing a directory entry collapse into one name.
func (r *Registry) Names(categories []string, locale string) []string {
	var result []string
	seen := make(map[string]bool)
	for _, c := range r.MainCategories(categories) {
		name := r.LocalizedName(c, locale)
		if seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	return result
}
