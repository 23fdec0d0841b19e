// internal/analysis/lexicon/lexicon.go
package lexicon

import "issue-analysis/internal/models"

// CategorySet binds one category name to its keyword list. Order of the
// category slice is significant: classification ties break toward the
// earliest declared category.
type CategorySet struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// Lexicon is the full set of static scoring tables used by the analysis
// pipeline. Instances are immutable after construction and shared freely.
type Lexicon struct {
	Categories       []CategorySet      `json:"categories"`
	FallbackCategory string             `json:"fallbackCategory"`
	Positive         []string           `json:"positive"`
	Negative         []string           `json:"negative"`
	Urgent           []string           `json:"urgent"`
	SentimentWeights map[string]int     `json:"sentimentWeights"`
	CategoryWeights  map[string]float64 `json:"categoryWeights"`
	UrgencyImpact    map[string]float64 `json:"urgencyImpact"`
	SentimentImpact  map[string]float64 `json:"sentimentImpact"`
	ImportantTerms   map[string]float64 `json:"importantTerms"`
	TimeFactors      map[string]float64 `json:"timeFactors"`
	Stopwords        []string           `json:"stopwords"`
	StatusRank       map[string]int     `json:"statusRank"`

	stopwordSet map[string]bool
	positiveSet map[string]bool
	negativeSet map[string]bool
	urgentSet   map[string]bool
}

// Default returns the built-in lexicon for the college issue tracker.
func Default() *Lexicon {
	lex := &Lexicon{
		Categories: []CategorySet{
			{Name: "Academic", Keywords: []string{
				"academic", "study", "course", "lecture", "assignment", "exam",
				"grade", "learning", "education", "professor", "teacher", "class",
			}},
			{Name: "Technical", Keywords: []string{
				"technical", "computer", "software", "hardware", "internet",
				"wifi", "system", "technology", "digital", "online", "platform",
			}},
			{Name: "Facility", Keywords: []string{
				"facility", "building", "room", "equipment", "maintenance",
				"repair", "clean", "hygiene", "infrastructure", "amenity",
				"food", "canteen", "mess", "quality", "taste",
			}},
			{Name: "Administrative", Keywords: []string{
				"administrative", "admin", "office", "document", "form",
				"procedure", "policy", "bureaucracy", "paperwork", "official",
			}},
			{Name: "Other", Keywords: []string{
				"other", "general", "miscellaneous", "unknown", "personal", "misc",
			}},
		},
		FallbackCategory: "Other",
		Positive: []string{
			"good", "great", "excellent", "amazing", "wonderful", "satisfied",
			"happy", "pleased", "helpful", "supportive",
		},
		Negative: []string{
			"bad", "terrible", "awful", "horrible", "disgusting", "unacceptable",
			"frustrated", "annoyed", "disappointed", "worried",
		},
		Urgent: []string{
			"urgent", "emergency", "critical", "immediate", "asap", "now",
			"quickly", "fast", "hurry", "rush",
		},
		SentimentWeights: map[string]int{
			"terrible": -3, "awful": -3, "horrible": -3, "disgusting": -3,
			"unacceptable": -2, "frustrated": -2, "annoyed": -2,
			"disappointed": -2, "worried": -1, "concerned": -1,
			"excellent": 3, "amazing": 3, "wonderful": 3, "great": 2,
			"good": 1, "satisfied": 2, "happy": 2, "pleased": 2,
			"helpful": 1, "supportive": 1,
		},
		CategoryWeights: map[string]float64{
			"Academic": 4, "Technical": 3, "Facility": 2,
			"Administrative": 3, "Other": 1,
		},
		UrgencyImpact: map[string]float64{
			models.LevelVeryHigh: 5, models.LevelHigh: 3,
			models.LevelMedium: 2, models.LevelLow: 1,
		},
		SentimentImpact: map[string]float64{
			models.SentimentVeryNegative: 3, models.SentimentNegative: 2,
			models.SentimentNeutral: 1, models.SentimentPositive: 0,
			models.SentimentVeryPositive: 0,
		},
		ImportantTerms: map[string]float64{
			"exam": 3, "assignment": 2, "deadline": 3, "grade": 2, "fail": 3,
			"sick": 2, "health": 2, "emergency": 4, "urgent": 3, "critical": 3,
		},
		TimeFactors: map[string]float64{
			"exam": 4, "deadline": 3, "assignment": 2, "class": 2, "semester": 1,
		},
		Stopwords: []string{
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
			"for", "of", "with", "by", "is", "are", "was", "were", "be",
			"been", "being", "have", "has", "had", "do", "does", "did",
			"will", "would", "could", "should", "may", "might", "must",
			"can", "this", "that", "these", "those",
		},
		StatusRank: map[string]int{
			models.StatusResolved: 4,
			models.StatusApproved: 3,
			models.StatusPending:  2,
			models.StatusRejected: 1,
		},
	}
	lex.index()
	return lex
}

// index builds the lookup sets from the declared slices. Called once per
// construction; the sets are never mutated afterwards.
func (l *Lexicon) index() {
	l.stopwordSet = toSet(l.Stopwords)
	l.positiveSet = toSet(l.Positive)
	l.negativeSet = toSet(l.Negative)
	l.urgentSet = toSet(l.Urgent)
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsStopword reports whether the token is in the stopword set.
func (l *Lexicon) IsStopword(token string) bool { return l.stopwordSet[token] }

// IsPositive reports whether the token is a positive sentiment keyword.
func (l *Lexicon) IsPositive(token string) bool { return l.positiveSet[token] }

// IsNegative reports whether the token is a negative sentiment keyword.
func (l *Lexicon) IsNegative(token string) bool { return l.negativeSet[token] }

// IsUrgent reports whether the token is an urgency keyword.
func (l *Lexicon) IsUrgent(token string) bool { return l.urgentSet[token] }

// CategoryNames returns the category names in declaration order.
func (l *Lexicon) CategoryNames() []string {
	names := make([]string, 0, len(l.Categories))
	for _, c := range l.Categories {
		names = append(names, c.Name)
	}
	return names
}
