// internal/analysis/textutil/textutil_test.go
package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"issue-analysis/internal/analysis/lexicon"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"simple sentence", "The WiFi is DOWN", []string{"the", "wifi", "is", "down"}},
		{"punctuation boundaries", "urgent!!! fix-it, now.", []string{"urgent", "fix", "it", "now"}},
		{"digits kept as tokens", "room 204 heater", []string{"room", "204", "heater"}},
		{"empty input", "", []string{}},
		{"whitespace only", "   \t\n", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.text))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	lex := lexicon.Default()

	t.Run("filters stopwords short and non-alphabetic tokens", func(t *testing.T) {
		got := ExtractKeywords("The wifi in room 204 is not working at all", lex.IsStopword, KeywordLimit)
		assert.Equal(t, []string{"wifi", "room", "not", "working", "all"}, got)
	})

	t.Run("caps at the limit preserving order", func(t *testing.T) {
		got := ExtractKeywords("alpha bravo charlie delta echo foxtrot golf", lex.IsStopword, KeywordLimit)
		assert.Len(t, got, KeywordLimit)
		assert.Equal(t, []string{"alpha", "bravo", "charlie", "delta", "echo"}, got)
	})

	t.Run("empty text yields empty slice", func(t *testing.T) {
		assert.Empty(t, ExtractKeywords("", lex.IsStopword, KeywordLimit))
	})

	t.Run("invariants hold for arbitrary text", func(t *testing.T) {
		got := ExtractKeywords("WiFi4U the a-b-c 0day is xx exam!!", lex.IsStopword, KeywordLimit)
		for _, kw := range got {
			assert.Greater(t, len(kw), 2)
			assert.False(t, lex.IsStopword(kw))
			assert.True(t, isAlphabetic(kw), "keyword %q must be purely alphabetic", kw)
		}
	})
}

func TestCommon(t *testing.T) {
	set := ToSet([]string{"wifi", "down", "hostel"})
	assert.Equal(t, []string{"wifi", "hostel"}, Common([]string{"wifi", "slow", "hostel"}, set))
	assert.Empty(t, Common([]string{"food"}, set))
}
