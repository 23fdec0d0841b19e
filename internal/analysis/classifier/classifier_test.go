// internal/analysis/classifier/classifier_test.go
package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"issue-analysis/internal/analysis/lexicon"
)

func TestClassify(t *testing.T) {
	c := New(lexicon.Default())

	tests := []struct {
		name             string
		title            string
		description      string
		expectedCategory string
		minConfidence    float64
	}{
		{
			name:             "food quality issue lands in facility",
			title:            "Food quality issue",
			description:      "The food in the cafeteria is not good quality and tastes bad",
			expectedCategory: "Facility",
			minConfidence:    1,
		},
		{
			name:             "exam complaint lands in academic",
			title:            "Exam schedule clash",
			description:      "Two exams for my course are scheduled in the same slot by the professor",
			expectedCategory: "Academic",
			minConfidence:    1,
		},
		{
			name:             "wifi outage lands in technical",
			title:            "WiFi not working",
			description:      "The hostel internet and wifi system has been down since Monday",
			expectedCategory: "Technical",
			minConfidence:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.title, tt.description)
			assert.Equal(t, tt.expectedCategory, result.Category)
			assert.GreaterOrEqual(t, result.Confidence, tt.minConfidence)
			assert.LessOrEqual(t, result.Confidence, 95.0)
		})
	}
}

func TestClassify_NoHitsFallsBackToOther(t *testing.T) {
	c := New(lexicon.Default())

	result := c.Classify("zzzz", "qqqq wwww")
	assert.Equal(t, "Other", result.Category)
	assert.Equal(t, 0.0, result.Confidence)
	for _, score := range result.Scores {
		assert.Equal(t, 0, score)
	}
}

func TestClassify_TieBreaksByDeclarationOrder(t *testing.T) {
	c := New(lexicon.Default())

	// "class" hits Academic, "system" hits Technical: one hit each, the
	// earlier declared category must win.
	result := c.Classify("class system", "")
	assert.Equal(t, 1, result.Scores["Academic"])
	assert.Equal(t, 1, result.Scores["Technical"])
	assert.Equal(t, "Academic", result.Category)
}

func TestClassify_ConfidenceCapsAt95(t *testing.T) {
	c := New(lexicon.Default())

	result := c.Classify(
		"academic study course lecture assignment exam",
		"grade learning education professor teacher class",
	)
	assert.Equal(t, "Academic", result.Category)
	assert.Equal(t, 95.0, result.Confidence)
	assert.Equal(t, 12, result.Scores["Academic"])
}

func TestClassify_CategoryAlwaysInLexicon(t *testing.T) {
	c := New(lexicon.Default())
	known := map[string]bool{}
	for _, name := range lexicon.Default().CategoryNames() {
		known[name] = true
	}

	for _, text := range []string{"", "wifi", "random nonsense", "exam food office"} {
		result := c.Classify(text, text)
		assert.True(t, known[result.Category], "category %q not in lexicon", result.Category)
		assert.LessOrEqual(t, len(result.SuggestedKeywords), 5)
	}
}
