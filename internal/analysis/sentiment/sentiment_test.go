// internal/analysis/sentiment/sentiment_test.go
package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/models"
)

func TestAnalyze_EmptyInputReturnsNeutralDefault(t *testing.T) {
	a := New(lexicon.Default())

	for _, text := range []string{"", "   ", "\n\t"} {
		result := a.Analyze(text)
		assert.Equal(t, 0, result.Score)
		assert.Equal(t, models.SentimentNeutral, result.Sentiment)
		assert.Equal(t, models.LevelLow, result.Intensity)
		assert.Equal(t, models.LevelLow, result.Urgency)
		assert.Empty(t, result.Keywords)
		assert.Equal(t, 50.0, result.Confidence)
	}
}

func TestAnalyze_SentimentLabels(t *testing.T) {
	a := New(lexicon.Default())

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		// "helpful" and "supportive" carry dictionary weight 1 on top of
		// the positive-set hit, so two of them already clear the
		// very_positive bound.
		{"very positive", "the staff was helpful and supportive", models.SentimentVeryPositive},
		{"negative", "I am worried about the deadline", models.SentimentNegative},
		{"very negative", "terrible and disgusting mess hall", models.SentimentVeryNegative},
		{"neutral", "the projector in room five", models.SentimentNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Analyze(tt.text).Sentiment)
		})
	}
}

func TestAnalyze_UrgencyLevels(t *testing.T) {
	a := New(lexicon.Default())

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"three urgency hits", "this is urgent, an emergency, truly critical", models.LevelVeryHigh},
		{"two urgency hits", "urgent help needed asap", models.LevelHigh},
		{"one urgency hit", "please handle this quickly", models.LevelMedium},
		{"no urgency hits", "the lamp flickers sometimes", models.LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, a.Analyze(tt.text).Urgency)
		})
	}
}

func TestAnalyze_ConfidenceBands(t *testing.T) {
	a := New(lexicon.Default())

	short := a.Analyze("bad wifi")
	assert.Equal(t, 40.0, short.Confidence, "short text drops below base confidence")

	long := a.Analyze("the wifi in the hostel has been unstable for two weeks now and " +
		"nobody from the technical office has responded to our complaints")
	assert.Equal(t, 70.0, long.Confidence, "long text gains the length band")

	loaded := a.Analyze(strings.Repeat("terrible horrible awful ", 5))
	assert.Equal(t, 90.0, loaded.Confidence, "strong score adds the magnitude band")
	assert.LessOrEqual(t, loaded.Confidence, 95.0)
}

func TestAnalyze_KeywordInvariants(t *testing.T) {
	a := New(lexicon.Default())

	result := a.Analyze("The food was terrible and the canteen staff were unhelpful about it")
	assert.LessOrEqual(t, len(result.Keywords), 5)
	lex := lexicon.Default()
	for _, kw := range result.Keywords {
		assert.Greater(t, len(kw), 2)
		assert.False(t, lex.IsStopword(kw))
	}
}
