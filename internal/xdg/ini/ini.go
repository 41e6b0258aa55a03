// Package ini parses the INI dialect shared by .desktop, .directory and
// index.theme files.
//
// Grammar:
//
//	file    = { blank | comment | group | entry }
//	comment = "#" ...               (only at the start of a line)
//	group   = "[" name "]"
//	entry   = key [ "[" locale "]" ] "=" value
//
// Values are taken verbatim after trimming surrounding whitespace; ';',
// '#' and quotes inside a value carry no meaning to the parser.
package ini

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineSize = 1024 * 1024

// ParseError reports malformed input or an invalid value. Group and Key
// are set when the error concerns a specific entry.
type ParseError struct {
	File  string
	Line  int
	Group string
	Key   string
	Msg   string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.File)
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Group != "" {
		fmt.Fprintf(&b, " [%s]", e.Group)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " %s", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

// Entry is a single key=value line.
type Entry struct {
	Key    string // Key as written, including any [locale] suffix
	Base   string // Key without locale suffix
	Locale string // Locale suffix, empty for the unlocalized key
	Value  string
}

// Group is a named section holding its entries in file order.
type Group struct {
	Name    string
	Entries []Entry
}

// Get returns the value of the exact key. Later duplicates win.
func (g *Group) Get(key string) (string, bool) {
	for i := len(g.Entries) - 1; i >= 0; i-- {
		if g.Entries[i].Key == key {
			return g.Entries[i].Value, true
		}
	}
	return "", false
}

// Value returns the value of key or an empty string.
func (g *Group) Value(key string) string {
	v, _ := g.Get(key)
	return v
}

// Localized returns all variants of key mapped by locale. The unlocalized
// key is mapped to "C".
func (g *Group) Localized(key string) map[string]string {
	result := make(map[string]string)
	for _, e := range g.Entries {
		if e.Base != key {
			continue
		}
		if e.Locale == "" {
			result["C"] = e.Value
		} else {
			result[e.Locale] = e.Value
		}
	}
	return result
}

// File is a parsed INI document.
type File struct {
	Path   string
	Groups []*Group
}

// Group returns the named group or nil.
func (f *File) Group(name string) *Group {
	for _, g := range f.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Errorf builds a ParseError bound to this file.
func (f *File) Errorf(group, key, format string, args ...any) *ParseError {
	return &ParseError{File: f.Path, Group: group, Key: key, Msg: fmt.Sprintf(format, args...)}
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(path, file)
}

// Parse parses r. name is only used for error reporting.
func Parse(name string, r io.Reader) (*File, error) {
	f := &File{Path: name}
	var current *Group

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") || len(line) < 3 {
				return nil, &ParseError{File: name, Line: lineNo, Msg: fmt.Sprintf("malformed group header %q", line)}
			}
			groupName := line[1 : len(line)-1]
			if strings.ContainsAny(groupName, "[]") {
				return nil, &ParseError{File: name, Line: lineNo, Msg: fmt.Sprintf("malformed group header %q", line)}
			}
			if f.Group(groupName) != nil {
				return nil, &ParseError{File: name, Line: lineNo, Group: groupName, Msg: "duplicate group"}
			}
			current = &Group{Name: groupName}
			f.Groups = append(f.Groups, current)
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &ParseError{File: name, Line: lineNo, Msg: fmt.Sprintf("expected key=value, got %q", line)}
		}
		key = strings.TrimSpace(key)
		if current == nil {
			return nil, &ParseError{File: name, Line: lineNo, Key: key, Msg: "entry outside of any group"}
		}
		entry, err := parseKey(key)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Group: current.Name, Key: key, Msg: err.Error()}
		}
		entry.Value = strings.TrimSpace(value)
		current.Entries = append(current.Entries, entry)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{File: name, Line: lineNo + 1, Msg: fmt.Sprintf("line exceeds %d bytes", maxLineSize)}
		}
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return f, nil
}

func parseKey(key string) (Entry, error) {
	if key == "" {
		return Entry{}, fmt.Errorf("empty key")
	}
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.ContainsRune(key, ']') {
			return Entry{}, fmt.Errorf("unbalanced locale brackets")
		}
		return Entry{Key: key, Base: key}, nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") || open+2 > len(key)-1 {
		return Entry{}, fmt.Errorf("malformed localized key")
	}
	locale := key[open+1 : len(key)-1]
	if strings.ContainsAny(locale, "[]") {
		return Entry{}, fmt.Errorf("malformed localized key")
	}
	return Entry{Key: key, Base: key[:open], Locale: locale}, nil
}

// SplitList splits a sep-delimited value, trimming items and dropping
// empty ones.
func SplitList(value string, sep string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
