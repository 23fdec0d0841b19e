// internal/analysis/sentiment/sentiment.go
package sentiment

import (
	"strings"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/analysis/textutil"
	"issue-analysis/internal/models"
)

// Analyzer derives sentiment, intensity and urgency from keyword hits.
// Scores are heuristic lexicon sums, not calibrated probabilities.
type Analyzer struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Analyzer {
	return &Analyzer{lex: lex}
}

// Analyze scores the text against the positive, negative and urgency
// keyword sets, layering the signed weight dictionary on top of the raw
// hit counts. Empty input returns the neutral default record rather than
// an error: the analyzer is advisory and must never fail the caller.
func (a *Analyzer) Analyze(text string) models.SentimentResult {
	if strings.TrimSpace(text) == "" {
		return models.SentimentResult{
			Score:      0,
			Sentiment:  models.SentimentNeutral,
			Intensity:  models.LevelLow,
			Urgency:    models.LevelLow,
			Keywords:   []string{},
			Confidence: 50,
		}
	}

	score := 0
	urgencyHits := 0
	for _, token := range textutil.Tokenize(text) {
		if a.lex.IsPositive(token) {
			score++
		}
		if a.lex.IsNegative(token) {
			score--
		}
		if a.lex.IsUrgent(token) {
			urgencyHits++
		}
		score += a.lex.SentimentWeights[token]
	}

	return models.SentimentResult{
		Score:      score,
		Sentiment:  sentimentLabel(score),
		Intensity:  intensityLevel(abs(score)),
		Urgency:    urgencyLevel(urgencyHits),
		Keywords:   textutil.ExtractKeywords(text, a.lex.IsStopword, textutil.KeywordLimit),
		Confidence: confidence(text, score),
	}
}

func sentimentLabel(score int) string {
	switch {
	case score > 2:
		return models.SentimentVeryPositive
	case score > 0:
		return models.SentimentPositive
	case score < -2:
		return models.SentimentVeryNegative
	case score < 0:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func intensityLevel(magnitude int) string {
	switch {
	case magnitude > 5:
		return models.LevelVeryHigh
	case magnitude > 3:
		return models.LevelHigh
	case magnitude > 1:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

func urgencyLevel(hits int) string {
	switch {
	case hits >= 3:
		return models.LevelVeryHigh
	case hits >= 2:
		return models.LevelHigh
	case hits >= 1:
		return models.LevelMedium
	default:
		return models.LevelLow
	}
}

// confidence bands on text length and score magnitude, clamped to [0,95].
func confidence(text string, score int) float64 {
	c := 50.0
	switch {
	case len(text) > 100:
		c += 20
	case len(text) > 50:
		c += 10
	default:
		c -= 10
	}
	switch magnitude := abs(score); {
	case magnitude > 5:
		c += 20
	case magnitude > 2:
		c += 10
	}
	if c > 95 {
		c = 95
	}
	if c < 0 {
		c = 0
	}
	return c
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
