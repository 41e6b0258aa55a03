package desktop

import (
	"strings"
)

// Expand returns the candidate relative paths for a desktop identifier.
// Each hyphen may stand for a directory separator, so org-kde-foo may be
// installed as org/kde/foo, org/kde-foo or org-kde/foo. The literal
// identifier always comes first; the result holds no duplicates.
//
// For each split depth i, three variants are generated:
//
//	a-b-c-d  i=0 => a/b-c-d, a-b-c/d, a/b-c/d
//	         i=1 => a/b/c-d, a-b/c/d, a/b/c/d
//	         i=2 => a/b/c/d (three times)
func Expand(id string) []string {
	if id == "" {
		return nil
	}

	hyphens := strings.Count(id, "-")
	candidates := make([]string, 0, 1+3*hyphens)
	candidates = append(candidates, id)
	for i := 0; i < hyphens; i++ {
		n := 2 + i
		front := splitFront(id, n)
		candidates = append(candidates,
			front,
			splitBack(id, n),
			splitBack(front, n),
		)
	}

	seen := make(map[string]struct{}, len(candidates))
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}

// splitFront turns the first n-1 hyphens into slashes.
func splitFront(s string, n int) string {
	return strings.Join(strings.SplitN(s, "-", n), "/")
}

// splitBack turns the last n-1 hyphens into slashes.
func splitBack(s string, n int) string {
	return reverse(splitFront(reverse(s), n))
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
