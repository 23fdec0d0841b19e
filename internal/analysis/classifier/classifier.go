// internal/analysis/classifier/classifier.go
package classifier

import (
	"strings"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/analysis/textutil"
	"issue-analysis/internal/models"
)

// Classifier scores issue text against the lexicon's category keyword
// sets. It holds no mutable state; one instance serves all requests.
type Classifier struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// Classify concatenates title and description and counts, per category,
// how many of its keywords occur in the text (substring containment, one
// hit per keyword). The best-scoring category wins; ties break toward the
// category declared first in the lexicon. Zero hits everywhere falls back
// to the lexicon's fallback category with confidence 0.
func (c *Classifier) Classify(title, description string) models.ClassificationResult {
	text := strings.ToLower(title + " " + description)

	scores := make(map[string]int, len(c.lex.Categories))
	bestCategory := ""
	bestScore := -1
	for _, cat := range c.lex.Categories {
		hits := 0
		for _, keyword := range cat.Keywords {
			if strings.Contains(text, keyword) {
				hits++
			}
		}
		scores[cat.Name] = hits
		if hits > bestScore {
			bestScore = hits
			bestCategory = cat.Name
		}
	}

	confidence := 0.0
	if bestScore > 0 {
		confidence = minFloat(float64(bestScore)/3*100, 95)
	} else {
		bestCategory = c.lex.FallbackCategory
	}

	return models.ClassificationResult{
		Category:          bestCategory,
		Confidence:        confidence,
		Scores:            scores,
		SuggestedKeywords: textutil.ExtractKeywords(text, c.lex.IsStopword, textutil.KeywordLimit),
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
