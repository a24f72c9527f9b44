package keywords

import (
	"strings"

	"github.com/jonathan/appycrew-ocr/internal/textnorm"
)

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// MaxDistance is the edit budget for a keyword. Keywords of up to three letters ("wc",
// "tv", "bed") must match exactly, up to six letters allow one edit, longer ones allow
// threshold edits.
func MaxDistance(keyword string, threshold int) int {
	n := len([]rune(keyword))
	switch {
	case n <= 3:
		return 0
	case n <= 6:
		return min(1, threshold)
	default:
		return max(0, threshold)
	}
}

// FuzzyMatch returns the first keyword, in list order, that either occurs in text as a
// whole word or is within MaxDistance of one of its whitespace-separated tokens. Multi-word
// keywords are also compared against the whole text.
func FuzzyMatch(text string, keywords []string, threshold int) (string, bool) {
	lower := strings.TrimSpace(textnorm.Fold(text))
	if lower == "" {
		return "", false
	}
	words := strings.Fields(lower)
	collapsed := strings.Join(words, " ")

	for _, keyword := range keywords {
		kw := textnorm.Fold(keyword)
		if strings.TrimSpace(kw) == "" {
			continue
		}
		if WordPattern(kw).MatchString(lower) {
			return keyword, true
		}
		budget := MaxDistance(kw, threshold)
		if strings.Contains(kw, " ") {
			if Levenshtein(collapsed, kw) <= budget {
				return keyword, true
			}
			continue
		}
		for _, word := range words {
			if Levenshtein(word, kw) <= budget {
				return keyword, true
			}
		}
	}
	return "", false
}
