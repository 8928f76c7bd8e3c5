package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-folder ignore file read when a folder is dropped.
const IgnoreFileName = ".icutignore"

// defaultIgnorePatterns apply to every folder expansion.
var defaultIgnorePatterns = []string{IgnoreFileName}

type ignorePattern struct {
	pattern   string
	matchPath bool // match the relative path instead of the basename
	dirOnly   bool // trailing '/': only prunes directories
}

// IgnoreMatcher checks paths found under a dropped folder against ignore
// patterns. Patterns without '/' match the basename, patterns with '/' match
// the path relative to the folder, and a trailing '/' restricts a pattern to
// directories.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw patterns. Blank lines and '#' comments are
// skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimRight(raw, "/")
		}
		p.pattern = raw
		p.matchPath = strings.Contains(raw, "/")
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether the file at relativePath is ignored.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	return m.match(relativePath, false)
}

// MatchDir reports whether the directory at relativePath is pruned.
func (m *IgnoreMatcher) MatchDir(relativePath string) bool {
	return m.match(relativePath, true)
}

func (m *IgnoreMatcher) match(relativePath string, isDir bool) bool {
	if relativePath == "" || len(m.patterns) == 0 {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		target := basename
		if p.matchPath {
			target = normalized
		}
		// filepath.Match only fails on malformed patterns; those never match.
		if matched, err := filepath.Match(p.pattern, target); err == nil && matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the raw lines of an ignore file, or nil when the
// file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
