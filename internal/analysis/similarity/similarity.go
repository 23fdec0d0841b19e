// internal/analysis/similarity/similarity.go
package similarity

import (
	"sort"
	"strings"
	"time"

	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/analysis/textutil"
	"issue-analysis/internal/models"
)

// DefaultThreshold is the similarity score at which two issues are
// considered near-duplicates.
const DefaultThreshold = 0.7

const mergeSeparator = "\n\n--- Merged with related issue ---\n\n"

// Engine computes pairwise issue similarity from a weighted blend of
// exact token overlap, bigram fuzzy similarity, keyword overlap and
// category equality. It is stateless and safe for concurrent use.
type Engine struct {
	lex       *lexicon.Lexicon
	dice      *metrics.SorensenDice
	threshold float64
}

// New builds an engine with the default duplicate threshold.
func New(lex *lexicon.Lexicon) *Engine {
	return &Engine{
		lex:       lex,
		dice:      metrics.NewSorensenDice(),
		threshold: DefaultThreshold,
	}
}

// SetThreshold overrides the duplicate threshold, clamped to [0.1, 0.9].
// Call before the engine is shared between goroutines.
func (e *Engine) SetThreshold(threshold float64) {
	if threshold < 0.1 {
		threshold = 0.1
	}
	if threshold > 0.9 {
		threshold = 0.9
	}
	e.threshold = threshold
}

// Threshold returns the configured duplicate threshold.
func (e *Engine) Threshold() float64 { return e.threshold }

// Compare scores two issues against each other. The sub-metrics are
// weighted 0.4 exact, 0.3 fuzzy, 0.2 keyword, 0.1 category. Token and
// keyword overlaps run on unique sets so the score is symmetric in its
// arguments.
func (e *Engine) Compare(a, b *models.Issue) models.SimilarityScore {
	textA := strings.ToLower(a.Title + " " + a.Description)
	textB := strings.ToLower(b.Title + " " + b.Description)

	keywordsA := unique(textutil.ExtractKeywords(textA, e.lex.IsStopword, textutil.SimilarityKeywordLimit))
	keywordsB := unique(textutil.ExtractKeywords(textB, e.lex.IsStopword, textutil.SimilarityKeywordLimit))
	keywordSetB := textutil.ToSet(keywordsB)

	m := models.SimilarityMetrics{
		ExactMatch:   overlapRatio(textutil.Tokenize(textA), textutil.Tokenize(textB)),
		FuzzyMatch:   e.dice.Compare(textA, textB),
		KeywordMatch: keywordRatio(keywordsA, keywordsB, keywordSetB),
	}
	if a.Category == b.Category {
		m.CategoryMatch = 1
	}

	score := 0.4*m.ExactMatch + 0.3*m.FuzzyMatch + 0.2*m.KeywordMatch + 0.1*m.CategoryMatch

	return models.SimilarityScore{
		Score:          score,
		MatchType:      matchType(m),
		CommonKeywords: textutil.Common(keywordsA, keywordSetB),
		Confidence:     confidence(m),
		Metrics:        m,
	}
}

// FindSimilar compares the new issue against every candidate and keeps
// those at or above the threshold, sorted by descending similarity.
// A non-positive threshold falls back to the engine default.
func (e *Engine) FindSimilar(newIssue *models.Issue, candidates []models.Issue, threshold float64) models.SimilarityReport {
	if threshold <= 0 {
		threshold = e.threshold
	}

	matches := []models.SimilarityMatch{}
	for i := range candidates {
		candidate := &candidates[i]
		score := e.Compare(newIssue, candidate)
		if score.Score < threshold {
			continue
		}
		matches = append(matches, models.SimilarityMatch{
			IssueID:        candidate.ID,
			Issue:          candidate,
			Similarity:     score.Score,
			MatchType:      score.MatchType,
			CommonKeywords: score.CommonKeywords,
			Confidence:     score.Confidence,
		})
	}

	sortMatches(matches)

	report := models.SimilarityReport{
		SimilarIssues:  matches,
		HasDuplicates:  len(matches) > 0,
		DuplicateCount: len(matches),
	}
	if len(matches) > 0 {
		report.HighestSimilarity = matches[0].Similarity
	}
	return report
}

// GroupSimilar clusters issues with a single greedy pass: each
// unprocessed issue seeds a group and absorbs every later issue whose
// pairwise score clears the threshold. No transitive closure is
// attempted, so chained near-matches can land in separate groups.
// Singleton groups are discarded.
func (e *Engine) GroupSimilar(issues []models.Issue, threshold float64) []models.IssueGroup {
	if threshold <= 0 {
		threshold = e.threshold
	}

	groups := []models.IssueGroup{}
	processed := make([]bool, len(issues))
	for i := range issues {
		if processed[i] {
			continue
		}
		group := []models.Issue{issues[i]}
		processed[i] = true

		for j := i + 1; j < len(issues); j++ {
			if processed[j] {
				continue
			}
			if e.Compare(&issues[i], &issues[j]).Score >= threshold {
				group = append(group, issues[j])
				processed[j] = true
			}
		}

		if len(group) > 1 {
			groups = append(groups, models.IssueGroup{
				GroupID:             uuid.NewString(),
				Issues:              group,
				RepresentativeIssue: e.representative(group),
				SimilarityScore:     e.meanPairwise(group),
			})
		}
	}
	return groups
}

// representative picks the group member with the highest average
// similarity to the rest of the group.
func (e *Engine) representative(group []models.Issue) models.Issue {
	best := group[0]
	bestScore := 0.0
	for i := range group {
		total := 0.0
		for j := range group {
			if i == j {
				continue
			}
			total += e.Compare(&group[i], &group[j]).Score
		}
		avg := total / float64(len(group)-1)
		if avg > bestScore {
			bestScore = avg
			best = group[i]
		}
	}
	return best
}

func (e *Engine) meanPairwise(group []models.Issue) float64 {
	if len(group) < 2 {
		return 1
	}
	total := 0.0
	pairs := 0
	for i := range group {
		for j := i + 1; j < len(group); j++ {
			total += e.Compare(&group[i], &group[j]).Score
			pairs++
		}
	}
	return total / float64(pairs)
}

// SuggestMerge proposes a merge for two issues. Below the engine
// threshold it returns nil: the pair is not similar enough to bother
// the admin with.
func (e *Engine) SuggestMerge(a, b *models.Issue) *models.MergeSuggestion {
	score := e.Compare(a, b)
	if score.Score < e.threshold {
		return nil
	}
	return &models.MergeSuggestion{
		ShouldMerge:   score.Score > 0.8,
		Confidence:    score.Confidence,
		MergeStrategy: mergeStrategy(score.MatchType),
		MergedIssue:   e.mergeIssues(a, b),
	}
}

func mergeStrategy(matchType string) string {
	switch matchType {
	case models.MatchExact:
		return models.MergeAsDuplicate
	case models.MatchVerySimilar:
		return models.MergeCombineDesc
	default:
		return models.MergeLinkAsRelated
	}
}

// mergeIssues builds the merged record: longer title, concatenated
// descriptions, earlier creation time and the higher-ranked status.
func (e *Engine) mergeIssues(a, b *models.Issue) models.Issue {
	title := b.Title
	if len(a.Title) > len(b.Title) {
		title = a.Title
	}
	status := b.Status
	if e.lex.StatusRank[a.Status] > e.lex.StatusRank[b.Status] {
		status = a.Status
	}
	return models.Issue{
		Title:       title,
		Description: a.Description + mergeSeparator + b.Description,
		Category:    a.Category,
		Status:      status,
		StudentID:   a.StudentID,
		CreatedAt:   earlierCreatedAt(a.CreatedAt, b.CreatedAt),
	}
}

// earlierCreatedAt returns the older of the two RFC 3339 timestamps.
// Unparseable values lose to parseable ones; if neither parses, the
// first is kept as-is.
func earlierCreatedAt(a, b string) string {
	timeA, errA := time.Parse(time.RFC3339, a)
	timeB, errB := time.Parse(time.RFC3339, b)
	switch {
	case errA != nil && errB != nil:
		return a
	case errA != nil:
		return b
	case errB != nil:
		return a
	case timeB.Before(timeA):
		return b
	default:
		return a
	}
}

// Stats computes pairwise similarity statistics over a batch. Fewer
// than two issues yields a zeroed record.
func (e *Engine) Stats(issues []models.Issue) models.SimilarityStats {
	scores := []float64{}
	for i := range issues {
		for j := i + 1; j < len(issues); j++ {
			scores = append(scores, e.Compare(&issues[i], &issues[j]).Score)
		}
	}
	if len(scores) == 0 {
		return models.SimilarityStats{}
	}

	stats := models.SimilarityStats{
		MaxSimilarity: scores[0],
		MinSimilarity: scores[0],
	}
	total := 0.0
	for _, s := range scores {
		total += s
		if s > stats.MaxSimilarity {
			stats.MaxSimilarity = s
		}
		if s < stats.MinSimilarity {
			stats.MinSimilarity = s
		}
		if s >= e.threshold {
			stats.DuplicateCount++
		}
	}
	stats.AverageSimilarity = total / float64(len(scores))
	return stats
}

// overlapRatio is the share of unique tokens the two texts have in
// common, measured against the larger token set.
func overlapRatio(tokensA, tokensB []string) float64 {
	setA := textutil.ToSet(tokensA)
	setB := textutil.ToSet(tokensB)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	common := 0
	for tok := range setA {
		if setB[tok] {
			common++
		}
	}
	return float64(common) / float64(maxInt(len(setA), len(setB)))
}

func keywordRatio(keywordsA, keywordsB []string, setB map[string]bool) float64 {
	if len(keywordsA) == 0 || len(keywordsB) == 0 {
		return 0
	}
	common := len(textutil.Common(keywordsA, setB))
	return float64(common) / float64(maxInt(len(keywordsA), len(keywordsB)))
}

func matchType(m models.SimilarityMetrics) string {
	switch {
	case m.ExactMatch > 0.8:
		return models.MatchExact
	case m.FuzzyMatch > 0.8:
		return models.MatchVerySimilar
	case m.KeywordMatch > 0.6:
		return models.MatchKeyword
	case m.FuzzyMatch > 0.6:
		return models.MatchSimilar
	default:
		return models.MatchPartial
	}
}

// confidence builds additively from the sub-metric threshold bands,
// capped at 95.
func confidence(m models.SimilarityMetrics) float64 {
	c := 50.0
	switch {
	case m.ExactMatch > 0.8:
		c += 30
	case m.ExactMatch > 0.6:
		c += 20
	case m.ExactMatch > 0.4:
		c += 10
	}
	switch {
	case m.FuzzyMatch > 0.8:
		c += 20
	case m.FuzzyMatch > 0.6:
		c += 15
	case m.FuzzyMatch > 0.4:
		c += 10
	}
	switch {
	case m.KeywordMatch > 0.6:
		c += 15
	case m.KeywordMatch > 0.4:
		c += 10
	}
	if c > 95 {
		c = 95
	}
	return c
}

func sortMatches(matches []models.SimilarityMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
}

func unique(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := []string{}
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
