// Package scope selects the design documents a run reads.
package scope

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	apierrors "github.com/PentesterFlow/apistats/internal/errors"
)

// Selector decides which files of a directory are input documents.
type Selector struct {
	mu             sync.RWMutex
	rules          Rules
	ignore         map[string]struct{}
	includeRegexps []*regexp.Regexp
	excludeRegexps []*regexp.Regexp
}

// NewSelector compiles rules into a selector.
func NewSelector(rules Rules) (*Selector, error) {
	s := &Selector{
		rules: Rules{
			Suffixes: append([]string(nil), rules.Suffixes...),
			Ignore:   append([]string(nil), rules.Ignore...),
		},
		ignore: make(map[string]struct{}),
	}

	for _, pattern := range rules.IncludePatterns {
		if err := s.AddIncludePattern(pattern); err != nil {
			return nil, err
		}
	}

	for _, pattern := range rules.ExcludePatterns {
		if err := s.AddExcludePattern(pattern); err != nil {
			return nil, err
		}
	}

	for _, name := range rules.Ignore {
		s.ignore[name] = struct{}{}
	}

	return s, nil
}

// Accepts reports whether a file name is an input document.
func (s *Selector) Accepts(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if _, ignored := s.ignore[name]; ignored {
		return false
	}

	if !s.hasSuffix(name) {
		return false
	}

	// Exclude patterns take priority
	for _, re := range s.excludeRegexps {
		if re.MatchString(name) {
			return false
		}
	}

	if len(s.includeRegexps) > 0 {
		for _, re := range s.includeRegexps {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}

	return true
}

func (s *Selector) hasSuffix(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range s.rules.Suffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// Select lists the input documents directly inside dir, sorted by name.
// Subdirectories are not descended into.
func (s *Selector) Select(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apierrors.NewScopeError(dir, "cannot read directory", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !s.Accepts(entry.Name()) {
			continue
		}
		if !entry.Type().IsRegular() {
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// AddIncludePattern adds an include pattern.
func (s *Selector) AddIncludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return apierrors.NewScopeError("", "invalid include pattern "+pattern, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.includeRegexps = append(s.includeRegexps, re)
	s.rules.IncludePatterns = append(s.rules.IncludePatterns, pattern)
	return nil
}

// AddExcludePattern adds an exclude pattern.
func (s *Selector) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return apierrors.NewScopeError("", "invalid exclude pattern "+pattern, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.excludeRegexps = append(s.excludeRegexps, re)
	s.rules.ExcludePatterns = append(s.rules.ExcludePatterns, pattern)
	return nil
}

// DocumentName is the identifier of a document in endpoints and reports:
// its base name without extension.
func DocumentName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DocumentNames maps each path to its document identifier. Documents whose
// names collide (users.md and users.html) keep their full base name so each
// stays a separate document.
func DocumentNames(paths []string) map[string]string {
	counts := make(map[string]int, len(paths))
	for _, path := range paths {
		counts[DocumentName(path)]++
	}

	names := make(map[string]string, len(paths))
	for _, path := range paths {
		name := DocumentName(path)
		if counts[name] > 1 {
			name = filepath.Base(path)
		}
		names[path] = name
	}
	return names
}
