package scanner

import (
	"path/filepath"
	"strings"
)

// PatternMatcher handles glob matching for file filtering.
type PatternMatcher struct{}

// NewPatternMatcher creates a new pattern matcher.
func NewPatternMatcher() *PatternMatcher {
	return &PatternMatcher{}
}

// ShouldIncludeFile determines if a file should be included based on
// patterns. Excludes take precedence; with include patterns present a file
// must match at least one of them.
func (pm *PatternMatcher) ShouldIncludeFile(
	relPath string,
	includePatterns []string,
	excludePatterns []string,
) bool {
	relPath = filepath.ToSlash(relPath)

	for _, pattern := range excludePatterns {
		if pm.matchesPattern(relPath, pattern) {
			return false
		}
	}

	if len(includePatterns) > 0 {
		for _, pattern := range includePatterns {
			if pm.matchesPattern(relPath, pattern) {
				return true
			}
		}
		return false
	}

	return true
}

// matchesPattern checks if a path matches a glob pattern. It supports basic
// glob patterns like *, ** and ?, plus trailing-slash directory patterns.
func (pm *PatternMatcher) matchesPattern(path, pattern string) bool {
	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		return strings.HasPrefix(path+"/", pattern+"/") || path == pattern
	}

	if strings.Contains(pattern, "**") {
		return pm.matchesRecursivePattern(path, pattern)
	}

	match, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return match
}

// matchesRecursivePattern handles patterns containing a ** wildcard.
func (pm *PatternMatcher) matchesRecursivePattern(path, pattern string) bool {
	parts := strings.SplitN(pattern, "**", 2)
	prefix, suffix := parts[0], parts[1]

	if !strings.HasPrefix(path, prefix) {
		return false
	}
	if suffix == "" {
		return true
	}
	return strings.HasSuffix(path, suffix)
}
