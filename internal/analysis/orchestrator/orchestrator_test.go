package orchestrator

import (
	"context"
	"testing"
	"time"

	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrchestrator() *Orchestrator {
	return New(lexicon.Default(), logger.NewNoOpLogger())
}

func wifiIssue(id string) models.Issue {
	return models.Issue{
		ID:          id,
		Title:       "Wifi not working in hostel",
		Description: "The wifi connection keeps dropping in hostel block A, really frustrating",
		Category:    "Technology",
		Status:      models.StatusPending,
	}
}

func TestAnalyzeIssue_FullPipeline(t *testing.T) {
	o := newOrchestrator()
	issue := wifiIssue("new-1")
	candidates := []models.Issue{wifiIssue("old-1")}

	result := o.AnalyzeIssue(context.Background(), &issue, candidates)

	assert.Equal(t, "new-1", result.IssueID)
	assert.Empty(t, result.Error)
	require.NotNil(t, result.Classification)
	require.NotNil(t, result.Sentiment)
	require.NotNil(t, result.Priority)
	require.NotNil(t, result.Similarity)

	assert.Equal(t, "Technical", result.Classification.Category)
	assert.True(t, result.Similarity.HasDuplicates, "identical candidate must be flagged")
	assert.NotEmpty(t, result.Recommendations)
	assert.Greater(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 95.0)
}

func TestAnalyzeIssue_NoCandidatesSkipsSimilarity(t *testing.T) {
	o := newOrchestrator()
	issue := wifiIssue("new-1")

	result := o.AnalyzeIssue(context.Background(), &issue, nil)

	assert.Nil(t, result.Similarity)

	// With the similarity stage absent, confidence renormalizes over the
	// remaining three stages.
	expected := (result.Classification.Confidence*0.3 +
		result.Sentiment.Confidence*0.2 +
		result.Priority.Confidence*0.3) / 0.8
	assert.InDelta(t, expected, result.Confidence, 1e-9)
}

func TestAnalyzeIssue_EmptyIDBecomesNew(t *testing.T) {
	o := newOrchestrator()
	issue := wifiIssue("")

	result := o.AnalyzeIssue(context.Background(), &issue, nil)
	assert.Equal(t, "new", result.IssueID)
}

func TestAnalyzeIssue_RecommendationsSortedByRank(t *testing.T) {
	o := newOrchestrator()
	issue := models.Issue{
		ID:          "urgent-1",
		Title:       "Emergency: exam portal down",
		Description: "The exam portal crashed, this is urgent and critical, we need immediate help asap before the deadline",
	}

	result := o.AnalyzeIssue(context.Background(), &issue, []models.Issue{wifiIssue("old-1")})

	require.NotEmpty(t, result.Recommendations)
	for i := 1; i < len(result.Recommendations); i++ {
		prev := priorityRank(result.Recommendations[i-1].Priority)
		cur := priorityRank(result.Recommendations[i].Priority)
		assert.GreaterOrEqual(t, prev, cur, "recommendations must be ordered by rank")
	}
	assert.Equal(t, "urgent_response", result.Recommendations[0].Type)
}

func TestAnalyzeBatch_ComparesAgainstOthersOnly(t *testing.T) {
	o := newOrchestrator()
	issues := []models.Issue{wifiIssue("a"), wifiIssue("b")}

	results := o.AnalyzeBatch(context.Background(), issues)
	require.Len(t, results, 2)

	for _, result := range results {
		require.NotNil(t, result.Similarity)
		require.Len(t, result.Similarity.SimilarIssues, 1)
		assert.NotEqual(t, result.IssueID, result.Similarity.SimilarIssues[0].IssueID,
			"an issue must not match itself")
	}
}

func TestInsights_EmptyBatch(t *testing.T) {
	o := newOrchestrator()

	insights := o.Insights(context.Background(), nil)

	assert.Equal(t, 0, insights.TotalIssues)
	assert.NotNil(t, insights.ClassificationDistribution)
	assert.NotNil(t, insights.PriorityDistribution)
	assert.NotNil(t, insights.SentimentTrends.UrgencyLevels)
	assert.Empty(t, insights.Recommendations)
}

func TestInsights_AggregatesAndRecommends(t *testing.T) {
	o := newOrchestrator()
	issues := []models.Issue{
		{
			ID:          "a",
			Title:       "Emergency: exam portal down",
			Description: "The exam portal crashed, urgent and critical, deadline today, terrible situation",
			Category:    "Academic",
		},
		{
			ID:          "b",
			Title:       "Emergency: exam portal down",
			Description: "The exam portal crashed, urgent and critical, deadline today, terrible situation",
			Category:    "Academic",
		},
	}

	insights := o.Insights(context.Background(), issues)

	assert.Equal(t, 2, insights.TotalIssues)
	assert.Equal(t, 2, insights.ClassificationDistribution["Academic"])
	assert.Equal(t, 2, insights.SentimentTrends.Negative)
	assert.Equal(t, 1, insights.SimilarityStats.DuplicateCount)

	types := make(map[string]bool)
	for _, rec := range insights.Recommendations {
		types[rec.Type] = true
	}
	assert.True(t, types["category_trend"], "Academic is 100%% of the batch")
	assert.True(t, types["sentiment_trend"], "negative outweighs positive")
	assert.True(t, types["priority_alert"], "batch contains critical issues")
	assert.True(t, types["duplicate_alert"], "batch contains near-duplicates")
}

func TestStatus(t *testing.T) {
	o := newOrchestrator()

	status := o.Status()
	assert.Equal(t, Version, status.Version)
	assert.Equal(t, "active", status.Services["classifier"])
	assert.Equal(t, "active", status.Services["similarityEngine"])
	assert.WithinDuration(t, time.Now(), status.LastUpdate, time.Second)
}

func TestRecordFeedback(t *testing.T) {
	o := newOrchestrator()

	ack := o.RecordFeedback("issue-1", map[string]interface{}{"correctCategory": "Facility"})
	assert.True(t, ack.Success)
	assert.NotEmpty(t, ack.Message)
}

func TestSuggestMergeAndGroupPassThrough(t *testing.T) {
	o := newOrchestrator()
	a := wifiIssue("a")
	b := wifiIssue("b")

	suggestion := o.SuggestMerge(&a, &b)
	require.NotNil(t, suggestion)
	assert.True(t, suggestion.ShouldMerge)

	groups := o.GroupSimilar([]models.Issue{a, b, {
		ID:          "c",
		Title:       "Mess food is cold",
		Description: "Dinner served cold again in the mess hall",
	}})
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Issues, 2)
}
