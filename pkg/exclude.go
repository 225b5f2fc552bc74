package finddups

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ExcludeFilter holds regular expressions for entries to skip while expanding directories
type ExcludeFilter struct {
	patterns []*regexp.Regexp
}

// NewExcludeFilter creates an empty filter
func NewExcludeFilter() *ExcludeFilter {
	return &ExcludeFilter{
		patterns: make([]*regexp.Regexp, 0),
	}
}

// AddPattern adds a new exclude pattern
func (ef *ExcludeFilter) AddPattern(patternStr string) error {
	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return fmt.Errorf("invalid regex pattern: %s - %w", patternStr, err)
	}

	ef.patterns = append(ef.patterns, pattern)
	return nil
}

// LoadFile reads one pattern per line from filePath
// Empty lines and lines starting with # are skipped.
func (ef *ExcludeFilter) LoadFile(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open exclude file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern, err := regexp.Compile(line)
		if err != nil {
			return fmt.Errorf("invalid regex pattern at %s:%d: %s - %w", filePath, lineNum, line, err)
		}

		ef.patterns = append(ef.patterns, pattern)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading exclude file: %w", err)
	}

	return nil
}

// Matches checks if a path should be excluded. A nil filter matches nothing.
func (ef *ExcludeFilter) Matches(path string) bool {
	if ef == nil {
		return false
	}

	normalisedPath := filepath.ToSlash(path)
	for _, pattern := range ef.patterns {
		if pattern.MatchString(normalisedPath) {
			return true
		}
	}

	return false
}

// HasPatterns returns true if there are any exclude patterns
func (ef *ExcludeFilter) HasPatterns() bool {
	return ef != nil && len(ef.patterns) > 0
}

// Patterns returns the source text of every pattern
func (ef *ExcludeFilter) Patterns() []string {
	if ef == nil {
		return nil
	}
	result := make([]string, 0, len(ef.patterns))
	for _, pattern := range ef.patterns {
		result = append(result, pattern.String())
	}
	return result
}
