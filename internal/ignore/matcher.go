package ignore

import "strings"

// Matcher decides whether a filesystem path is excluded by a PatternSet.
//
// A path is excluded when any pattern equals a whole path segment or equals
// the basename of the path. Comparison is an exact, case-sensitive string
// match: there is no glob, negation, or anchoring support. Patterns that
// contain an internal separator are compared as opaque literals against
// single segments and therefore rarely match; that is accepted behavior.
type Matcher struct {
	patternSet PatternSet
}

// NewMatcher returns a Matcher over the provided pattern set.
func NewMatcher(patternSet PatternSet) Matcher {
	return Matcher{patternSet: patternSet}
}

// IsExcluded reports whether the path matches any exclusion pattern. The
// path may be absolute or relative to the scan root; backslash separators
// are normalized before segmentation. An empty pattern set excludes nothing.
func (matcher Matcher) IsExcluded(path string) bool {
	if matcher.patternSet.Len() == 0 {
		return false
	}

	normalizedPath := strings.ReplaceAll(path, "\\", patternSeparator)
	for _, pathSegment := range strings.Split(normalizedPath, patternSeparator) {
		if pathSegment == "" {
			continue
		}
		if matcher.patternSet.Contains(pathSegment) {
			return true
		}
	}
	return false
}
