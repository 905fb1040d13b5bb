package fs

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Expand resolves input patterns to regular files. Patterns support ** for
// recursive matching; a pattern without glob metacharacters names a single
// file. Matches of each pattern are sorted, patterns keep their order, and a
// file matched twice is listed once.
func Expand(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		matches, err := expandOne(p)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func expandOne(pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(slashed) {
		return nil, fmt.Errorf("fs: invalid glob pattern: %s", pattern)
	}

	base, rest := doublestar.SplitPattern(slashed)
	base = filepath.FromSlash(base)
	info, err := os.Stat(filepath.Join(base, filepath.FromSlash(rest)))
	if err == nil && !info.IsDir() {
		return []string{filepath.Clean(pattern)}, nil
	}

	var matches []string
	err = doublestar.GlobWalk(os.DirFS(base), rest, func(path string, d iofs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, filepath.Join(base, filepath.FromSlash(path)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs: error matching %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, pattern)
	}
	sort.Strings(matches)
	return matches, nil
}
