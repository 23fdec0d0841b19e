// internal/analysis/priority/priority_test.go
package priority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/models"
)

func TestPredict_Tiers(t *testing.T) {
	p := New(lexicon.Default())

	tests := []struct {
		name     string
		in       Input
		expected string
	}{
		{
			// Academic doubles to 8 on its own; very_high urgency and
			// very_negative sentiment push the raw sum past the clamp.
			name: "academic crisis is critical",
			in: Input{
				Title:       "Exam registration blocked",
				Description: "I cannot register for my final exam and the deadline is tomorrow",
				Category:    "Academic",
				Sentiment:   models.SentimentVeryNegative,
				Urgency:     models.LevelVeryHigh,
			},
			expected: models.PriorityCritical,
		},
		{
			// Facility doubles to 4 and the neutral baselines add 2 more,
			// so even a calm report clears the high bound.
			name: "calm facility report is high",
			in: Input{
				Title:       "Broken chair",
				Description: "One chair in the common room wobbles",
				Category:    "Facility",
				Sentiment:   models.SentimentNeutral,
				Urgency:     models.LevelLow,
			},
			expected: models.PriorityHigh,
		},
		{
			name: "calm uncategorized report is medium",
			in: Input{
				Title:       "Noticeboard outdated",
				Description: "The notices from last month are still pinned up",
				Category:    "Other",
				Sentiment:   models.SentimentNeutral,
				Urgency:     models.LevelLow,
			},
			expected: models.PriorityMedium,
		},
		{
			name: "positive uncategorized note is low",
			in: Input{
				Title:       "Lamp flickers",
				Description: "ok",
				Category:    "Other",
				Sentiment:   models.SentimentPositive,
				Urgency:     models.LevelLow,
			},
			expected: models.PriorityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Predict(tt.in)
			assert.Equal(t, tt.expected, result.PriorityLevel)
			assert.GreaterOrEqual(t, result.Score, 1.0)
			assert.LessOrEqual(t, result.Score, 10.0)
		})
	}
}

func TestPredict_UnknownKeysFallBackToWeightOne(t *testing.T) {
	p := New(lexicon.Default())

	result := p.Predict(Input{
		Title:       "Lamp flickers",
		Description: "ok",
		Category:    "Sports",
		Sentiment:   "confused",
		Urgency:     "",
	})
	assert.Equal(t, 1.0, result.Factors["category"])
	assert.Equal(t, 1.0, result.Factors["urgency"])
	assert.Equal(t, 1.0, result.Factors["sentiment"])
}

func TestPredict_FactorCaps(t *testing.T) {
	p := New(lexicon.Default())

	// Important-term weights sum to 16 and time-factor weights to 7 here,
	// both well past their caps.
	result := p.Predict(Input{
		Title:       "emergency",
		Description: "urgent critical exam deadline",
		Category:    "Other",
		Sentiment:   models.SentimentNeutral,
		Urgency:     models.LevelLow,
	})
	assert.Equal(t, 5.0, result.Factors["keywords"])
	assert.Equal(t, 4.0, result.Factors["timeSensitivity"])

	long := p.Predict(Input{
		Title:       "Lamp flickers",
		Description: string(make([]byte, 500)),
		Category:    "Other",
		Sentiment:   models.SentimentNeutral,
		Urgency:     models.LevelLow,
	})
	assert.Equal(t, 2.0, long.Factors["length"])
}

func TestPredict_Confidence(t *testing.T) {
	p := New(lexicon.Default())

	// Six factors are always present, so the base lands at 80; urgency and
	// sentiment weights above 2 add the remaining bands.
	calm := p.Predict(Input{
		Title:    "Lamp flickers",
		Category: "Other", Sentiment: models.SentimentNeutral, Urgency: models.LevelLow,
	})
	assert.Equal(t, 80.0, calm.Confidence)

	upset := p.Predict(Input{
		Title:    "Lamp flickers",
		Category: "Other", Sentiment: models.SentimentVeryNegative, Urgency: models.LevelLow,
	})
	assert.Equal(t, 90.0, upset.Confidence)

	urgent := p.Predict(Input{
		Title:    "Lamp flickers",
		Category: "Other", Sentiment: models.SentimentVeryNegative, Urgency: models.LevelVeryHigh,
	})
	assert.Equal(t, 95.0, urgent.Confidence)
}

func TestPredict_Recommendations(t *testing.T) {
	p := New(lexicon.Default())

	critical := p.Predict(Input{
		Title:       "Exam system down",
		Description: "urgent emergency, the exam portal fails before the deadline",
		Category:    "Academic",
		Sentiment:   models.SentimentVeryNegative,
		Urgency:     models.LevelVeryHigh,
	})
	assert.Equal(t, models.PriorityCritical, critical.PriorityLevel)
	assert.Contains(t, critical.Recommendations, "Immediate attention required")
	assert.Contains(t, critical.Recommendations, "Category indicates high impact")
	assert.Contains(t, critical.Recommendations, "High urgency detected - expedite processing")

	low := p.Predict(Input{
		Title:    "Lamp flickers",
		Category: "Other", Sentiment: models.SentimentPositive, Urgency: models.LevelLow,
	})
	assert.Contains(t, low.Recommendations, "Routine processing")
	assert.NotContains(t, low.Recommendations, "Category indicates high impact")
}
