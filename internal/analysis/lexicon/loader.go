// internal/analysis/lexicon/loader.go
package lexicon

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile layers a JSON override file on top of the default lexicon.
// Only the fields present in the file replace their defaults; everything
// else keeps the built-in tables. Campus deployments use this to extend
// the category keyword sets without a rebuild.
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon file %s: %w", path, err)
	}
	return load(data)
}

func load(data []byte) (*Lexicon, error) {
	var override Lexicon
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parse lexicon file: %w", err)
	}

	base := Default()
	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}
	if override.FallbackCategory != "" {
		base.FallbackCategory = override.FallbackCategory
	}
	if len(override.Positive) > 0 {
		base.Positive = override.Positive
	}
	if len(override.Negative) > 0 {
		base.Negative = override.Negative
	}
	if len(override.Urgent) > 0 {
		base.Urgent = override.Urgent
	}
	if len(override.SentimentWeights) > 0 {
		base.SentimentWeights = override.SentimentWeights
	}
	if len(override.CategoryWeights) > 0 {
		base.CategoryWeights = override.CategoryWeights
	}
	if len(override.UrgencyImpact) > 0 {
		base.UrgencyImpact = override.UrgencyImpact
	}
	if len(override.SentimentImpact) > 0 {
		base.SentimentImpact = override.SentimentImpact
	}
	if len(override.ImportantTerms) > 0 {
		base.ImportantTerms = override.ImportantTerms
	}
	if len(override.TimeFactors) > 0 {
		base.TimeFactors = override.TimeFactors
	}
	if len(override.Stopwords) > 0 {
		base.Stopwords = override.Stopwords
	}
	if len(override.StatusRank) > 0 {
		base.StatusRank = override.StatusRank
	}
	base.index()

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return base, nil
}

// Validate checks structural invariants the pipeline relies on.
func (l *Lexicon) Validate() error {
	if len(l.Categories) == 0 {
		return fmt.Errorf("lexicon: at least one category is required")
	}
	seen := map[string]bool{}
	fallbackKnown := false
	for _, c := range l.Categories {
		if c.Name == "" {
			return fmt.Errorf("lexicon: category with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("lexicon: duplicate category %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Keywords) == 0 {
			return fmt.Errorf("lexicon: category %q has no keywords", c.Name)
		}
		if c.Name == l.FallbackCategory {
			fallbackKnown = true
		}
	}
	if !fallbackKnown {
		return fmt.Errorf("lexicon: fallback category %q is not declared", l.FallbackCategory)
	}
	return nil
}
