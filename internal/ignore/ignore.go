// Package ignore resolves exclusion patterns and answers exclusion queries for paths.
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/avetisov/repoflat/internal/utils"
)

const (
	// commentPrefix marks gitignore-style comment lines.
	commentPrefix = "#"
	// patternSeparator is the canonical path separator inside patterns.
	patternSeparator = "/"
)

// PatternSet is an immutable, deduplicated collection of canonical exclusion
// patterns. It is built once per run and consumed read-only by the Matcher.
type PatternSet struct {
	members map[string]struct{}
}

// NewPatternSet canonicalizes and unions gitignore-style lines with manual
// exclusion tokens. Blank and comment lines never become patterns. When
// seedGitDirectory is true the literal pattern for the version-control
// metadata directory is always part of the set, whether or not the source
// lines mention it.
func NewPatternSet(gitignoreLines []string, manualTokens []string, seedGitDirectory bool) PatternSet {
	members := make(map[string]struct{})

	addCanonical := func(rawToken string) {
		canonicalPattern := Canonicalize(rawToken)
		if canonicalPattern == "" {
			return
		}
		members[canonicalPattern] = struct{}{}
	}

	for _, rawLine := range gitignoreLines {
		trimmedLine := strings.TrimSpace(rawLine)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		addCanonical(trimmedLine)
	}

	for _, manualToken := range manualTokens {
		addCanonical(manualToken)
	}

	if seedGitDirectory {
		members[utils.GitDirectoryName] = struct{}{}
	}

	return PatternSet{members: members}
}

// Canonicalize strips all trailing path separators and a single leading path
// separator from the raw token. The result never starts or ends with a
// separator; an empty or whitespace-only token canonicalizes to "".
func Canonicalize(rawToken string) string {
	canonicalPattern := strings.TrimSpace(rawToken)
	for strings.HasSuffix(canonicalPattern, patternSeparator) {
		canonicalPattern = strings.TrimSuffix(canonicalPattern, patternSeparator)
	}
	canonicalPattern = strings.TrimPrefix(canonicalPattern, patternSeparator)
	return canonicalPattern
}

// Contains reports whether the exact pattern is a member of the set.
func (patternSet PatternSet) Contains(pattern string) bool {
	_, exists := patternSet.members[pattern]
	return exists
}

// Len returns the number of distinct patterns.
func (patternSet PatternSet) Len() int {
	return len(patternSet.members)
}

// Patterns returns the members sorted alphabetically for display purposes.
// Order has no effect on matching semantics.
func (patternSet PatternSet) Patterns() []string {
	patterns := make([]string, 0, len(patternSet.members))
	for pattern := range patternSet.members {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// LoadGitignoreLines reads the raw lines of the gitignore file at the given
// path. A missing file is not an error: the returned boolean reports whether
// the file existed so the caller can surface a non-fatal warning.
//
// #nosec G304
func LoadGitignoreLines(gitignoreFilePath string) ([]string, bool, error) {
	fileHandle, openFileError := os.Open(gitignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("opening %s: %w", gitignoreFilePath, openFileError)
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", gitignoreFilePath, closeError)
		}
	}()

	var rawLines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		rawLines = append(rawLines, scanner.Text())
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, true, fmt.Errorf("reading %s: %w", gitignoreFilePath, scanError)
	}
	return rawLines, true, nil
}
