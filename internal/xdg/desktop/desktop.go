// Package desktop locates and parses freedesktop.org desktop entry files.
package desktop

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/0xADE/ade-xdgd/internal/xdg/ini"
)

const entryGroup = "Desktop Entry"

// ErrNotFound is returned when no candidate path exists in any root.
var ErrNotFound = errors.New("desktop file not found")

// boolKeys must hold "true" or "false" when present.
var boolKeys = []string{"NoDisplay", "Hidden", "Terminal", "StartupNotify", "DBusActivatable"}

// Desktop is a parsed .desktop or .directory file.
type Desktop struct {
	path  string
	file  *ini.File
	entry *ini.Group
}

// Parse reads and validates the desktop entry file at path.
func Parse(path string) (*Desktop, error) {
	file, err := ini.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(file)
}

// New wraps an already parsed file.
func New(file *ini.File) (*Desktop, error) {
	entry := file.Group(entryGroup)
	if entry == nil {
		return nil, file.Errorf("", "", "missing [%s] group", entryGroup)
	}
	for _, key := range boolKeys {
		v, ok := entry.Get(key)
		if ok && v != "true" && v != "false" {
			return nil, file.Errorf(entryGroup, key, "invalid boolean %q", v)
		}
	}
	return &Desktop{path: file.Path, file: file, entry: entry}, nil
}

// Path returns the file the entry was read from.
func (d *Desktop) Path() string {
	return d.path
}

// Value returns the raw value of key in the [Desktop Entry] group.
func (d *Desktop) Value(key string) string {
	return d.entry.Value(key)
}

// Group exposes any other group of the file, e.g. desktop actions.
func (d *Desktop) Group(name string) *ini.Group {
	return d.file.Group(name)
}

func (d *Desktop) Name() string {
	return d.entry.Value("Name")
}

// Icon returns the bare icon name.
func (d *Desktop) Icon() string {
	return d.entry.Value("Icon")
}

// Categories returns the Categories list, empty when absent.
func (d *Desktop) Categories() []string {
	return ini.SplitList(d.entry.Value("Categories"), ";")
}

func (d *Desktop) OnlyShowIn() []string {
	return uniq(ini.SplitList(d.entry.Value("OnlyShowIn"), ";"))
}

func (d *Desktop) NotShowIn() []string {
	return uniq(ini.SplitList(d.entry.Value("NotShowIn"), ";"))
}

// Display is true unless NoDisplay is literally "true".
func (d *Desktop) Display() bool {
	return d.entry.Value("NoDisplay") != "true"
}

// Hidden is true iff Hidden is literally "true".
func (d *Desktop) Hidden() bool {
	return d.entry.Value("Hidden") == "true"
}

// ShowIn reports whether the entry should be shown in the desktop
// environment env. A name may not appear in both OnlyShowIn and NotShowIn.
func (d *Desktop) ShowIn(env string) bool {
	if slices.Contains(d.NotShowIn(), env) {
		return false
	}
	if only := d.OnlyShowIn(); len(only) > 0 {
		return slices.Contains(only, env)
	}
	return true
}

// Visible combines ShowIn, Display and Hidden.
func (d *Desktop) Visible(env string) bool {
	return d.ShowIn(env) && d.Display() && !d.Hidden()
}

// Localized returns every variant of key by language tag. The unsuffixed
// key is reported under "C".
func (d *Desktop) Localized(key string) map[string]string {
	return d.entry.Localized(key)
}

// LocalizedValue picks the best variant of key for a POSIX locale such as
// "sr_YU@Latn", trying lang_COUNTRY@MODIFIER, lang_COUNTRY, lang@MODIFIER,
// lang and finally the unlocalized value.
func (d *Desktop) LocalizedValue(key, locale string) string {
	return PickLocale(d.Localized(key), locale)
}

// PickLocale selects from values, as returned by Localized, the best match
// for the POSIX locale, falling back to the "C" value.
func PickLocale(values map[string]string, locale string) string {
	for _, candidate := range localeCandidates(locale) {
		if v, ok := values[candidate]; ok {
			return v
		}
	}
	return values["C"]
}

func (d *Desktop) String() string {
	return fmt.Sprintf("Desktop(%s)", d.path)
}

func localeCandidates(locale string) []string {
	locale = strings.ReplaceAll(locale, "-", "_")
	lang, modifier, _ := strings.Cut(locale, "@")
	// Strip the encoding, e.g. de_DE.UTF-8@euro.
	if dot := strings.IndexByte(lang, '.'); dot >= 0 {
		lang = lang[:dot]
	}
	lang, country, _ := strings.Cut(lang, "_")
	if lang == "" || lang == "C" || lang == "POSIX" {
		return nil
	}

	var candidates []string
	if country != "" && modifier != "" {
		candidates = append(candidates, lang+"_"+country+"@"+modifier)
	}
	if country != "" {
		candidates = append(candidates, lang+"_"+country)
	}
	if modifier != "" {
		candidates = append(candidates, lang+"@"+modifier)
	}
	return append(candidates, lang)
}

func uniq(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(result, item) {
			result = append(result, item)
		}
	}
	return result
}
