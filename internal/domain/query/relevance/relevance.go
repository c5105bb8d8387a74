// Package relevance ranks how strongly free-text fields match a search term.
package relevance

import "strings"

// Tier scores, summed across fields.
const (
	ExactScore    = 100
	PrefixScore   = 50
	ContainsScore = 25
	WordScore     = 10
)

// Score returns the case-insensitive relevance of term against fields.
// Each non-empty field earns the first tier it reaches: exact match, prefix,
// substring, or else WordScore for every (term word, field word) pair where the
// field word contains the term word.
func Score(term string, fields ...string) int {
	t := strings.ToLower(term)
	termWords := strings.Fields(t)

	total := 0
	for _, field := range fields {
		if field == "" {
			continue
		}
		f := strings.ToLower(field)
		switch {
		case f == t:
			total += ExactScore
		case strings.HasPrefix(f, t):
			total += PrefixScore
		case strings.Contains(f, t):
			total += ContainsScore
		default:
			total += wordScore(termWords, strings.Fields(f))
		}
	}
	return total
}

// wordScore is unbounded: repeated words in either input keep adding credit.
func wordScore(termWords, fieldWords []string) int {
	score := 0
	for _, tw := range termWords {
		for _, fw := range fieldWords {
			if strings.Contains(fw, tw) {
				score += WordScore
			}
		}
	}
	return score
}
