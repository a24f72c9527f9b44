package extract

import (
	"strings"
	"unicode"

	"github.com/jonathan/appycrew-ocr/internal/textnorm"
)

// WordSet is a set of lowercased words to drop from a description.
type WordSet map[string]bool

func newWordSet() WordSet {
	return WordSet{}
}

// NewWordSet builds a WordSet from the words of each phrase.
func NewWordSet(phrases ...string) WordSet {
	s := newWordSet()
	s.addWords(phrases...)
	return s
}

func (s WordSet) addWords(phrases ...string) {
	for _, p := range phrases {
		for _, tok := range strings.Fields(p) {
			if core := coreWord(tok); core != "" {
				s[core] = true
			}
		}
	}
}

func (s WordSet) has(word string) bool {
	return s[word]
}

// coreWord folds a token and trims surrounding punctuation: "Oak," -> "oak".
func coreWord(tok string) string {
	return strings.TrimFunc(textnorm.Fold(tok), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
