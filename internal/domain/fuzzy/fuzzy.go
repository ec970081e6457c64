// Package fuzzy implements the typo-tolerant term matching shared by the
// index recall query and the app-side scorer. The edit budget follows the
// usual full-text AUTO convention: terms shorter than 3 runes must match
// exactly, terms of 3-5 runes allow one edit, longer terms allow two.
package fuzzy

import (
	"strings"
	"unicode"
)

// MaxEdits is the largest edit budget any term is granted.
const MaxEdits = 2

// EditBudget returns the Levenshtein budget for a query term.
func EditBudget(term string) int {
	switch n := len([]rune(term)); {
	case n < 3:
		return 0
	case n <= 5:
		return 1
	default:
		return MaxEdits
	}
}

// Tokenize lowercases s and splits it on any non-letter, non-digit rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Match reports whether token is within term's edit budget of term.
func Match(term, token string) bool {
	budget := EditBudget(term)
	if budget == 0 {
		return term == token
	}
	return Distance(term, token, budget) <= budget
}

// Distance computes the Levenshtein distance between a and b, giving up
// early once the distance provably exceeds limit (it then returns limit+1).
func Distance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > limit {
		return limit + 1
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > limit {
			return limit + 1
		}
		prev, curr = curr, prev
	}

	return prev[lb]
}
