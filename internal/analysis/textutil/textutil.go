// internal/analysis/textutil/textutil.go
package textutil

import (
	"strings"
	"unicode"
)

// KeywordLimit is the default number of keywords extracted for
// classification and sentiment output.
const KeywordLimit = 5

// SimilarityKeywordLimit is the wider cut used by the similarity engine.
const SimilarityKeywordLimit = 10

// Tokenize lowercases the text and splits it into word tokens. Runs of
// non-alphanumeric characters are treated as boundaries. Empty input
// yields an empty slice, never nil dereferences downstream.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractKeywords tokenizes the text and keeps the first limit tokens that
// are longer than two characters, purely alphabetic and not stopwords.
// Order follows first appearance in the text.
func ExtractKeywords(text string, isStopword func(string) bool, limit int) []string {
	keywords := []string{}
	for _, token := range Tokenize(text) {
		if len(token) <= 2 || isStopword(token) || !isAlphabetic(token) {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == limit {
			break
		}
	}
	return keywords
}

func isAlphabetic(token string) bool {
	for _, r := range token {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// ToSet returns the distinct tokens of the slice.
func ToSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

// Common returns the members of ordered that appear in set, preserving
// the original order.
func Common(ordered []string, set map[string]bool) []string {
	common := []string{}
	for _, tok := range ordered {
		if set[tok] {
			common = append(common, tok)
		}
	}
	return common
}
