// internal/models/analysis.go
package models

import "time"

// Sentiment labels.
const (
	SentimentVeryPositive = "very_positive"
	SentimentPositive     = "positive"
	SentimentNeutral      = "neutral"
	SentimentNegative     = "negative"
	SentimentVeryNegative = "very_negative"
)

// Graded levels shared by intensity and urgency.
const (
	LevelLow      = "low"
	LevelMedium   = "medium"
	LevelHigh     = "high"
	LevelVeryHigh = "very_high"
)

// Priority tiers.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Similarity match types.
const (
	MatchExact       = "exact"
	MatchVerySimilar = "very_similar"
	MatchKeyword     = "keyword_match"
	MatchSimilar     = "similar"
	MatchPartial     = "partial"
)

// Merge strategies.
const (
	MergeAsDuplicate   = "merge_as_duplicate"
	MergeCombineDesc   = "merge_with_combined_description"
	MergeLinkAsRelated = "link_as_related"
)

// ClassificationResult is the output of the keyword classifier.
type ClassificationResult struct {
	Category          string         `json:"category"`
	Confidence        float64        `json:"confidence"`
	Scores            map[string]int `json:"scores"`
	SuggestedKeywords []string       `json:"suggestedKeywords"`
}

// SentimentResult is the output of the sentiment/urgency analyzer.
type SentimentResult struct {
	Score      int      `json:"score"`
	Sentiment  string   `json:"sentiment"`
	Intensity  string   `json:"intensity"`
	Urgency    string   `json:"urgency"`
	Keywords   []string `json:"keywords"`
	Confidence float64  `json:"confidence"`
}

// PriorityResult is the output of the priority predictor.
type PriorityResult struct {
	PriorityLevel   string             `json:"priorityLevel"`
	Score           float64            `json:"score"`
	Factors         map[string]float64 `json:"factors"`
	Confidence      float64            `json:"confidence"`
	Recommendations []string           `json:"recommendations"`
}

// SimilarityMetrics carries the four sub-metric values behind a pairwise
// similarity score.
type SimilarityMetrics struct {
	ExactMatch    float64 `json:"exactMatch"`
	FuzzyMatch    float64 `json:"fuzzyMatch"`
	KeywordMatch  float64 `json:"keywordMatch"`
	CategoryMatch float64 `json:"categoryMatch"`
}

// SimilarityScore is the result of comparing exactly two issues.
type SimilarityScore struct {
	Score          float64           `json:"score"`
	MatchType      string            `json:"matchType"`
	CommonKeywords []string          `json:"commonKeywords"`
	Confidence     float64           `json:"confidence"`
	Metrics        SimilarityMetrics `json:"metrics"`
}

// SimilarityMatch is one candidate issue that cleared the similarity
// threshold against a new issue.
type SimilarityMatch struct {
	IssueID        string   `json:"issueId"`
	Issue          *Issue   `json:"issue,omitempty"`
	Similarity     float64  `json:"similarity"`
	MatchType      string   `json:"matchType"`
	CommonKeywords []string `json:"commonKeywords"`
	Confidence     float64  `json:"confidence"`
}

// SimilarityReport aggregates the matches for one new issue against a
// candidate set, sorted by descending similarity.
type SimilarityReport struct {
	SimilarIssues     []SimilarityMatch `json:"similarIssues"`
	HasDuplicates     bool              `json:"hasDuplicates"`
	DuplicateCount    int               `json:"duplicateCount"`
	HighestSimilarity float64           `json:"highestSimilarity"`
}

// IssueGroup is a cluster of mutually similar issues.
type IssueGroup struct {
	GroupID             string  `json:"groupId"`
	Issues              []Issue `json:"issues"`
	RepresentativeIssue Issue   `json:"representativeIssue"`
	SimilarityScore     float64 `json:"similarityScore"`
}

// MergeSuggestion proposes how two similar issues could be merged.
type MergeSuggestion struct {
	ShouldMerge   bool    `json:"shouldMerge"`
	Confidence    float64 `json:"confidence"`
	MergeStrategy string  `json:"mergeStrategy"`
	MergedIssue   Issue   `json:"mergedIssue"`
}

// Recommendation is one advisory message attached to an analysis.
type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

// AnalysisResult is the orchestrator's per-issue output. When the pipeline
// fails internally, Error/Message are set instead and the sub-results stay
// nil; the caller never sees a hard failure.
type AnalysisResult struct {
	IssueID         string                `json:"issueId"`
	Timestamp       time.Time             `json:"timestamp"`
	Classification  *ClassificationResult `json:"classification"`
	Sentiment       *SentimentResult      `json:"sentiment"`
	Priority        *PriorityResult       `json:"priority"`
	Similarity      *SimilarityReport     `json:"similarity,omitempty"`
	Recommendations []Recommendation      `json:"recommendations"`
	Confidence      float64               `json:"confidence"`
	Error           string                `json:"error,omitempty"`
	Message         string                `json:"message,omitempty"`
}

// SentimentTrends summarizes sentiment across a batch of issues.
type SentimentTrends struct {
	Positive      int            `json:"positive"`
	Negative      int            `json:"negative"`
	Neutral       int            `json:"neutral"`
	AverageScore  float64        `json:"averageScore"`
	UrgencyLevels map[string]int `json:"urgencyLevels"`
}

// SimilarityStats summarizes pairwise similarity across a batch.
type SimilarityStats struct {
	AverageSimilarity float64 `json:"averageSimilarity"`
	MaxSimilarity     float64 `json:"maxSimilarity"`
	MinSimilarity     float64 `json:"minSimilarity"`
	DuplicateCount    int     `json:"duplicateCount"`
}

// Insights is the batch-level aggregate served to admins.
type Insights struct {
	TotalIssues                int              `json:"totalIssues"`
	ClassificationDistribution map[string]int   `json:"classificationDistribution"`
	SentimentTrends            SentimentTrends  `json:"sentimentTrends"`
	PriorityDistribution       map[string]int   `json:"priorityDistribution"`
	SimilarityStats            SimilarityStats  `json:"similarityStats"`
	Recommendations            []Recommendation `json:"recommendations"`
}
