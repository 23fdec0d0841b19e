// internal/analysis/priority/priority.go
package priority

import (
	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/analysis/textutil"
	"issue-analysis/internal/models"
)

// Input carries the fields the predictor scores. Sentiment and Urgency
// are the labels produced upstream by the sentiment analyzer; the
// predictor trusts them and never re-derives them from the text.
type Input struct {
	Title       string
	Description string
	Category    string
	Sentiment   string
	Urgency     string
}

// Predictor combines weighted factors into a 1-10 priority score and a
// tier. All weights come from the lexicon's static tables.
type Predictor struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Predictor {
	return &Predictor{lex: lex}
}

// Predict sums the weighted factors, clamps the total into [1,10] and
// maps it onto a tier (>=8 critical, >=6 high, >=4 medium, else low).
// Unknown categories and labels fall back to weight 1 so that partial
// input still produces a usable prediction.
func (p *Predictor) Predict(in Input) models.PriorityResult {
	factors := map[string]float64{}

	categoryWeight := tableWeight(p.lex.CategoryWeights, in.Category)
	factors["category"] = categoryWeight

	urgencyWeight := tableWeight(p.lex.UrgencyImpact, in.Urgency)
	factors["urgency"] = urgencyWeight

	sentimentWeight := tableWeight(p.lex.SentimentImpact, in.Sentiment)
	factors["sentiment"] = sentimentWeight

	lengthFactor := float64(len(in.Description)) / 100
	if lengthFactor > 2 {
		lengthFactor = 2
	}
	factors["length"] = lengthFactor

	tokens := textutil.Tokenize(in.Title + " " + in.Description)
	factors["keywords"] = cappedTokenSum(tokens, p.lex.ImportantTerms, 5)
	factors["timeSensitivity"] = cappedTokenSum(tokens, p.lex.TimeFactors, 4)

	score := 2*categoryWeight + urgencyWeight + sentimentWeight +
		lengthFactor + factors["keywords"] + factors["timeSensitivity"]
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	level := tierFor(score)
	return models.PriorityResult{
		PriorityLevel:   level,
		Score:           score,
		Factors:         factors,
		Confidence:      confidence(factors),
		Recommendations: recommendations(level, factors),
	}
}

func tableWeight(table map[string]float64, key string) float64 {
	if w, ok := table[key]; ok {
		return w
	}
	return 1
}

func cappedTokenSum(tokens []string, table map[string]float64, cap float64) float64 {
	sum := 0.0
	for _, tok := range tokens {
		sum += table[tok]
	}
	if sum > cap {
		return cap
	}
	return sum
}

func tierFor(score float64) string {
	switch {
	case score >= 8:
		return models.PriorityCritical
	case score >= 6:
		return models.PriorityHigh
	case score >= 4:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func confidence(factors map[string]float64) float64 {
	c := 50.0
	if len(factors) > 3 {
		c += 20
	}
	if len(factors) > 5 {
		c += 10
	}
	if factors["urgency"] > 2 {
		c += 15
	}
	if factors["sentiment"] > 2 {
		c += 10
	}
	if c > 95 {
		c = 95
	}
	return c
}

func recommendations(level string, factors map[string]float64) []string {
	var recs []string
	switch level {
	case models.PriorityCritical:
		recs = append(recs,
			"Immediate attention required",
			"Consider escalating to senior admin",
			"Send urgent notification")
	case models.PriorityHigh:
		recs = append(recs,
			"Address within 24 hours",
			"Send priority notification")
	case models.PriorityMedium:
		recs = append(recs,
			"Address within 48 hours",
			"Standard processing")
	default:
		recs = append(recs,
			"Address within 1 week",
			"Routine processing")
	}

	if factors["category"] >= 3 {
		recs = append(recs, "Category indicates high impact")
	}
	if factors["urgency"] > 2 {
		recs = append(recs, "High urgency detected - expedite processing")
	}
	return recs
}
