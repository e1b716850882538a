// Package similarity scores how closely two error analyses are related.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/harrison/verdict/internal/models"
)

// Score weights, in tenths so the exact-match total is exactly 1.0.
const (
	typeWeight     = 3
	patternWeight  = 4
	categoryWeight = 2
	messageWeight  = 0.1
)

// Score returns a value in [0, 1]: 0.3 for a matching type, 0.4 for a
// matching pattern, 0.2 for a matching category, plus up to 0.1 scaled by
// the word overlap of the two error messages.
func Score(a, b models.ErrorAnalysis) float64 {
	tenths := 0
	if a.ErrorType == b.ErrorType {
		tenths += typeWeight
	}
	if a.ErrorPattern == b.ErrorPattern {
		tenths += patternWeight
	}
	if a.ErrorCategory == b.ErrorCategory {
		tenths += categoryWeight
	}

	score := float64(tenths)/10 + messageWeight*WordOverlap(a.ErrorMessage, b.ErrorMessage)
	return math.Max(0, math.Min(1, score))
}

// WordOverlap is the number of shared words divided by the number of
// distinct words across both messages. Words are lower-cased and split on
// whitespace. Two empty messages have no overlap.
func WordOverlap(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)

	union := len(wa)
	common := 0
	for w := range wb {
		if _, ok := wa[w]; ok {
			common++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Match is one ranked candidate.
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Rank scores every candidate against target and returns those scoring at
// least threshold, best first. Equal scores keep candidate order. A limit
// of 0 or less returns every match.
func Rank(target models.ErrorAnalysis, candidates []models.ErrorAnalysis, threshold float64, limit int) []Match {
	var matches []Match
	for i, c := range candidates {
		if s := Score(target, c); s >= threshold {
			matches = append(matches, Match{Index: i, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
