package icon

import (
	"fmt"
	"math"
	"strconv"

	"github.com/0xADE/ade-xdgd/internal/xdg/ini"
)

// SizeType is the size-matching policy of a theme subdirectory.
type SizeType string

const (
	Fixed     SizeType = "Fixed"
	Scalable  SizeType = "Scalable"
	Threshold SizeType = "Threshold"
)

// Subdir describes one directory declared in index.theme.
type Subdir struct {
	Path      string
	Size      int
	Scale     int
	Context   string
	Type      SizeType
	MinSize   int
	MaxSize   int
	Threshold int
}

// parseSubdir reads the group describing dir, applying the defaults:
// Scale 1, Type Threshold, MinSize/MaxSize = Size, Threshold 2.
func parseSubdir(file *ini.File, dir string) (Subdir, error) {
	group := file.Group(dir)
	if group == nil {
		return Subdir{}, file.Errorf(dir, "", "declared directory has no group")
	}

	sd := Subdir{
		Path:      dir,
		Scale:     1,
		Context:   group.Value("Context"),
		Type:      Threshold,
		Threshold: 2,
	}

	if v, ok := group.Get("Type"); ok {
		switch t := SizeType(v); t {
		case Fixed, Scalable, Threshold:
			sd.Type = t
		default:
			return Subdir{}, file.Errorf(dir, "Type", "unknown type %q", v)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"Size", &sd.Size},
		{"Scale", &sd.Scale},
		{"Threshold", &sd.Threshold},
	}
	for _, i := range ints {
		if err := readInt(file, group, i.key, i.dst); err != nil {
			return Subdir{}, err
		}
	}
	if _, ok := group.Get("Size"); !ok && sd.Type != Scalable {
		return Subdir{}, file.Errorf(dir, "Size", "missing required key")
	}

	sd.MinSize, sd.MaxSize = sd.Size, sd.Size
	if err := readInt(file, group, "MinSize", &sd.MinSize); err != nil {
		return Subdir{}, err
	}
	if err := readInt(file, group, "MaxSize", &sd.MaxSize); err != nil {
		return Subdir{}, err
	}

	return sd, nil
}

func readInt(file *ini.File, group *ini.Group, key string, dst *int) error {
	v, ok := group.Get(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return file.Errorf(group.Name, key, "invalid integer %q", v)
	}
	*dst = n
	return nil
}

// Matches reports whether icons in this directory fit size at scale
// exactly. A directory of unknown type never matches.
func (s Subdir) Matches(size, scale int) bool {
	if scale != s.Scale {
		return false
	}
	switch s.Type {
	case Fixed:
		return s.Size == size
	case Scalable:
		return s.MinSize <= size && size <= s.MaxSize
	case Threshold:
		return s.Size-s.Threshold <= size && size <= s.Size+s.Threshold
	}
	return false
}

// Distance measures, in device pixels, how far this directory is from
// size at scale. For Threshold directories the window is the threshold
// around Size, but the distance is measured to MinSize/MaxSize. Unknown
// types are infinitely far away.
func (s Subdir) Distance(size, scale int) int {
	iconSize := size * scale
	dirSize := s.Size * s.Scale
	dirMin := s.MinSize * s.Scale
	dirMax := s.MaxSize * s.Scale

	switch s.Type {
	case Fixed:
		return abs(dirSize - iconSize)
	case Scalable:
		switch {
		case iconSize < dirMin:
			return dirMin - iconSize
		case iconSize > dirMax:
			return iconSize - dirMax
		}
		return 0
	case Threshold:
		switch {
		case iconSize < (s.Size-s.Threshold)*s.Scale:
			return dirMin - iconSize
		case iconSize > (s.Size+s.Threshold)*s.Scale:
			return iconSize - dirMax
		}
		return 0
	}
	return math.MaxInt
}

func (s Subdir) String() string {
	return fmt.Sprintf("%s (%s %d@%d)", s.Path, s.Type, s.Size, s.Scale)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
