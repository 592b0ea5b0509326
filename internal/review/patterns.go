package review

import (
	"strings"
	"sync"
)

// DefaultPatterns is the seed list of cheat-intent phrases shipped with the service.
var DefaultPatterns = []string{
	"答えを教えて",
	"give me the answer",
	"solution",
	"正解",
	"help me solve",
	"what is the answer",
	"solve this for me",
	"complete this code",
}

// PatternSet is an immutable, versioned snapshot of cheat-intent phrases.
type PatternSet struct {
	Version  uint64
	patterns []string
	lowered  []string
}

// NewPatternSet builds a snapshot from raw phrases, dropping blanks and case-insensitive duplicates.
func NewPatternSet(version uint64, patterns []string) PatternSet {
	set := PatternSet{Version: version}
	seen := make(map[string]struct{}, len(patterns))
	for _, pattern := range patterns {
		trimmed := strings.TrimSpace(pattern)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set.patterns = append(set.patterns, trimmed)
		set.lowered = append(set.lowered, key)
	}
	return set
}

// Patterns returns a copy of the phrases in enumeration order.
func (s PatternSet) Patterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// Len reports the number of phrases in the snapshot.
func (s PatternSet) Len() int {
	return len(s.patterns)
}

// Contains reports whether the phrase is present, ignoring case and surrounding whitespace.
func (s PatternSet) Contains(pattern string) bool {
	key := strings.ToLower(strings.TrimSpace(pattern))
	for _, lowered := range s.lowered {
		if lowered == key {
			return true
		}
	}
	return false
}

// Matches returns every phrase contained in text, compared case-insensitively.
func (s PatternSet) Matches(text string) []string {
	return s.matchLowered(strings.ToLower(text))
}

func (s PatternSet) matchLowered(lowered string) []string {
	var matched []string
	for i, pattern := range s.lowered {
		if strings.Contains(lowered, pattern) {
			matched = append(matched, s.patterns[i])
		}
	}
	return matched
}

// PatternStore holds the current snapshot and applies administrative mutations.
// Readers take a snapshot and never observe a partially applied change.
type PatternStore struct {
	mu      sync.RWMutex
	current PatternSet
}

// NewPatternStore constructs a store seeded with the given phrases at version 1.
func NewPatternStore(seed []string) *PatternStore {
	return &PatternStore{current: NewPatternSet(1, seed)}
}

// Snapshot returns the active pattern set.
func (s *PatternStore) Snapshot() PatternSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Add appends a phrase. It reports false when the phrase is blank or already present.
func (s *PatternStore) Add(pattern string) (PatternSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(pattern) == "" || s.current.Contains(pattern) {
		return s.current, false
	}
	next := append(s.current.Patterns(), pattern)
	s.current = NewPatternSet(s.current.Version+1, next)
	return s.current, true
}

// Remove deletes a phrase. It reports false when the phrase was not present.
func (s *PatternStore) Remove(pattern string) (PatternSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Contains(pattern) {
		return s.current, false
	}
	key := strings.ToLower(strings.TrimSpace(pattern))
	next := make([]string, 0, s.current.Len())
	for i, lowered := range s.current.lowered {
		if lowered != key {
			next = append(next, s.current.patterns[i])
		}
	}
	s.current = NewPatternSet(s.current.Version+1, next)
	return s.current, true
}

// Replace swaps in a full phrase list, used when reloading from persistent storage.
func (s *PatternStore) Replace(patterns []string) PatternSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = NewPatternSet(s.current.Version+1, patterns)
	return s.current
}
