// Package frequency aggregates classified errors by pattern.
//
// A Store is an explicit instance owned by its caller; there is no package
// level state. Buckets live until Clear is called. The per-bucket problem
// set is never trimmed, so a long-lived store grows with the number of
// distinct problems seen.
package frequency

import (
	"sort"
	"sync"
	"time"

	"github.com/harrison/verdict/internal/models"
)

const (
	// MaxExamples is the number of messages kept per pattern. The first
	// messages recorded are kept; later ones are not.
	MaxExamples = 3

	// MaxSimilarExamples caps the result of SimilarExamples.
	MaxSimilarExamples = 5

	// FallbackKey is the bucket consulted when a pattern has no bucket of its own.
	FallbackKey = "other"
)

// bucket is the mutable per-pattern aggregate.
type bucket struct {
	count    int
	lastSeen time.Time
	problems map[string]struct{}
	examples []string
}

// PatternCount is a snapshot of one bucket.
type PatternCount struct {
	Pattern  string    `json:"pattern"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"lastSeen"`
	Problems []string  `json:"problems"`
	Examples []string  `json:"examples"`
}

// Store counts analyses per pattern. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for lastSeen timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record adds an analysis to its pattern bucket. Analyses without a
// pattern are ignored.
func (s *Store) Record(a models.ErrorAnalysis) {
	s.RecordAt(a, s.now())
}

// RecordAt is Record with an explicit lastSeen time, used when replaying
// persisted analyses. A time earlier than the bucket's lastSeen is ignored
// for lastSeen but still counted.
func (s *Store) RecordAt(a models.ErrorAnalysis, at time.Time) {
	if !a.ErrorPattern.IsSet() {
		return
	}
	key := a.ErrorPattern.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{problems: make(map[string]struct{})}
		s.buckets[key] = b
	}

	b.count++
	if at.After(b.lastSeen) {
		b.lastSeen = at
	}
	if id := a.ProblemID(); id != "" {
		b.problems[id] = struct{}{}
	}
	if len(b.examples) < MaxExamples && a.ErrorMessage != "" {
		b.examples = append(b.examples, a.ErrorMessage)
	}
}

// TopPatterns returns every bucket ordered by descending count. Equal
// counts are ordered by pattern key.
func (s *Store) TopPatterns() []PatternCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PatternCount, 0, len(s.buckets))
	for key, b := range s.buckets {
		out = append(out, b.snapshot(key))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// Bucket returns a snapshot of the bucket for pattern.
func (s *Store) Bucket(pattern models.ErrorPattern) (PatternCount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[pattern.Key()]
	if !ok {
		return PatternCount{}, false
	}
	return b.snapshot(pattern.Key()), true
}

// SimilarExamples returns up to MaxSimilarExamples recorded messages for
// pattern, never including exclude. When pattern has no bucket, messages
// from the FallbackKey bucket are used instead.
func (s *Store) SimilarExamples(pattern models.ErrorPattern, exclude string) []string {
	key := pattern.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.buckets[key]; ok {
		return appendExamples(nil, b.examples, exclude, nil)
	}

	keys := make([]string, 0, len(s.buckets))
	for k := range s.buckets {
		if k == key || k == FallbackKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []string
	seen := make(map[string]struct{})
	for _, k := range keys {
		out = appendExamples(out, s.buckets[k].examples, exclude, seen)
		if len(out) >= MaxSimilarExamples {
			break
		}
	}
	return out
}

// appendExamples appends examples other than exclude to out, up to the
// MaxSimilarExamples cap. A non-nil seen set removes duplicates.
func appendExamples(out, examples []string, exclude string, seen map[string]struct{}) []string {
	for _, ex := range examples {
		if len(out) >= MaxSimilarExamples {
			break
		}
		if ex == exclude {
			continue
		}
		if seen != nil {
			if _, dup := seen[ex]; dup {
				continue
			}
			seen[ex] = struct{}{}
		}
		out = append(out, ex)
	}
	return out
}

// Len returns the number of buckets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

// Clear drops every bucket.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[string]*bucket)
}

func (b *bucket) snapshot(key string) PatternCount {
	problems := make([]string, 0, len(b.problems))
	for id := range b.problems {
		problems = append(problems, id)
	}
	sort.Strings(problems)

	examples := make([]string, len(b.examples))
	copy(examples, b.examples)

	return PatternCount{
		Pattern:  key,
		Count:    b.count,
		LastSeen: b.lastSeen,
		Problems: problems,
		Examples: examples,
	}
}
