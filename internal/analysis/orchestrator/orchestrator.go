// internal/analysis/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"issue-analysis/internal/analysis/classifier"
	"issue-analysis/internal/analysis/lexicon"
	"issue-analysis/internal/analysis/priority"
	"issue-analysis/internal/analysis/sentiment"
	"issue-analysis/internal/analysis/similarity"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"
)

// Version reported by ServiceStatus.
const Version = "1.0.0"

// Orchestrator composes the pipeline stages into one per-issue analysis
// and into batch-level insights. All stages are stateless, so a single
// orchestrator serves every request.
type Orchestrator struct {
	classifier *classifier.Classifier
	sentiment  *sentiment.Analyzer
	priority   *priority.Predictor
	similarity *similarity.Engine
	log        logger.Logger
	tracer     trace.Tracer
}

func New(lex *lexicon.Lexicon, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		classifier: classifier.New(lex),
		sentiment:  sentiment.New(lex),
		priority:   priority.New(lex),
		similarity: similarity.New(lex),
		log:        log,
		tracer:     otel.Tracer("issue-analysis/orchestrator"),
	}
}

// SetSimilarityThreshold adjusts the duplicate threshold used by the
// similarity stage. Call during startup, before serving traffic.
func (o *Orchestrator) SetSimilarityThreshold(threshold float64) {
	o.similarity.SetThreshold(threshold)
}

// AnalyzeIssue runs the full pipeline over one issue. The similarity
// stage only runs when candidates are supplied. Analysis is advisory:
// an internal panic is recovered into an error record on the result
// instead of propagating to the caller.
func (o *Orchestrator) AnalyzeIssue(ctx context.Context, issue *models.Issue, candidates []models.Issue) (result models.AnalysisResult) {
	_, span := o.tracer.Start(ctx, "analysis.issue",
		trace.WithAttributes(
			attribute.String("issue.id", issue.ID),
			attribute.Int("candidates.count", len(candidates)),
		))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Issue analysis failed", map[string]interface{}{
				"issue_id": issue.ID,
				"panic":    fmt.Sprintf("%v", r),
			})
			result = models.AnalysisResult{
				Error:     "analysis failed",
				Message:   fmt.Sprintf("%v", r),
				Timestamp: time.Now(),
			}
		}
	}()

	issueID := issue.ID
	if issueID == "" {
		issueID = "new"
	}
	result = models.AnalysisResult{
		IssueID:         issueID,
		Timestamp:       time.Now(),
		Recommendations: []models.Recommendation{},
	}

	classification := o.classifier.Classify(issue.Title, issue.Description)
	result.Classification = &classification

	sentimentResult := o.sentiment.Analyze(issue.Description)
	result.Sentiment = &sentimentResult

	priorityResult := o.priority.Predict(priority.Input{
		Title:       issue.Title,
		Description: issue.Description,
		Category:    issue.Category,
		Sentiment:   sentimentResult.Sentiment,
		Urgency:     sentimentResult.Urgency,
	})
	result.Priority = &priorityResult

	if len(candidates) > 0 {
		report := o.similarity.FindSimilar(issue, candidates, 0)
		result.Similarity = &report
	}

	result.Recommendations = recommendations(&result)
	result.Confidence = overallConfidence(&result)
	return result
}

// AnalyzeBatch analyzes each issue against the rest of the batch.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, issues []models.Issue) []models.AnalysisResult {
	ctx, span := o.tracer.Start(ctx, "analysis.batch",
		trace.WithAttributes(attribute.Int("issues.count", len(issues))))
	defer span.End()

	results := make([]models.AnalysisResult, 0, len(issues))
	for i := range issues {
		others := make([]models.Issue, 0, len(issues)-1)
		for j := range issues {
			if issues[j].ID != issues[i].ID {
				others = append(others, issues[j])
			}
		}
		results = append(results, o.AnalyzeIssue(ctx, &issues[i], others))
	}
	return results
}

// SuggestCategory classifies without running the rest of the pipeline.
func (o *Orchestrator) SuggestCategory(title, description string) models.ClassificationResult {
	return o.classifier.Classify(title, description)
}

// AnalyzeSentiment scores a free-text fragment.
func (o *Orchestrator) AnalyzeSentiment(text string) models.SentimentResult {
	return o.sentiment.Analyze(text)
}

// PredictPriority derives sentiment and urgency from the text first,
// then runs the predictor with those labels.
func (o *Orchestrator) PredictPriority(title, description, category string) models.PriorityResult {
	sentimentResult := o.sentiment.Analyze(description)
	return o.priority.Predict(priority.Input{
		Title:       title,
		Description: description,
		Category:    category,
		Sentiment:   sentimentResult.Sentiment,
		Urgency:     sentimentResult.Urgency,
	})
}

// FindSimilar compares one issue against the candidate set using the
// configured threshold.
func (o *Orchestrator) FindSimilar(issue *models.Issue, candidates []models.Issue) models.SimilarityReport {
	return o.similarity.FindSimilar(issue, candidates, 0)
}

// SuggestMerge proposes how two similar issues could be merged.
func (o *Orchestrator) SuggestMerge(a, b *models.Issue) *models.MergeSuggestion {
	return o.similarity.SuggestMerge(a, b)
}

// GroupSimilar clusters a batch of issues by pairwise similarity.
func (o *Orchestrator) GroupSimilar(issues []models.Issue) []models.IssueGroup {
	return o.similarity.GroupSimilar(issues, 0)
}

// Insights aggregates classification, sentiment, priority and
// similarity statistics across a batch. Empty input yields zeroed
// structures.
func (o *Orchestrator) Insights(ctx context.Context, issues []models.Issue) models.Insights {
	_, span := o.tracer.Start(ctx, "analysis.insights",
		trace.WithAttributes(attribute.Int("issues.count", len(issues))))
	defer span.End()

	insights := models.Insights{
		TotalIssues:                len(issues),
		ClassificationDistribution: map[string]int{},
		PriorityDistribution:       map[string]int{},
		SentimentTrends: models.SentimentTrends{
			UrgencyLevels: map[string]int{},
		},
		Recommendations: []models.Recommendation{},
	}
	if len(issues) == 0 {
		return insights
	}

	totalScore := 0
	for i := range issues {
		issue := &issues[i]

		classification := o.classifier.Classify(issue.Title, issue.Description)
		insights.ClassificationDistribution[classification.Category]++

		sentimentResult := o.sentiment.Analyze(issue.Description)
		totalScore += sentimentResult.Score
		switch sentimentResult.Sentiment {
		case models.SentimentPositive, models.SentimentVeryPositive:
			insights.SentimentTrends.Positive++
		case models.SentimentNegative, models.SentimentVeryNegative:
			insights.SentimentTrends.Negative++
		default:
			insights.SentimentTrends.Neutral++
		}
		insights.SentimentTrends.UrgencyLevels[sentimentResult.Urgency]++

		priorityResult := o.priority.Predict(priority.Input{
			Title:       issue.Title,
			Description: issue.Description,
			Category:    issue.Category,
			Sentiment:   sentimentResult.Sentiment,
			Urgency:     sentimentResult.Urgency,
		})
		insights.PriorityDistribution[priorityResult.PriorityLevel]++
	}
	insights.SentimentTrends.AverageScore = float64(totalScore) / float64(len(issues))
	insights.SimilarityStats = o.similarity.Stats(issues)
	insights.Recommendations = insightRecommendations(&insights)
	return insights
}

// ServiceStatus reports the pipeline stages and their health. All
// stages are in-process lookups, so they are active whenever the
// service is up.
type ServiceStatus struct {
	Services   map[string]string `json:"services"`
	LastUpdate time.Time         `json:"lastUpdate"`
	Version    string            `json:"version"`
}

func (o *Orchestrator) Status() ServiceStatus {
	return ServiceStatus{
		Services: map[string]string{
			"classifier":        "active",
			"sentimentAnalyzer": "active",
			"priorityPredictor": "active",
			"similarityEngine":  "active",
		},
		LastUpdate: time.Now(),
		Version:    Version,
	}
}

// FeedbackAck acknowledges a feedback submission.
type FeedbackAck struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordFeedback logs the feedback and acknowledges it. The pipeline is
// table-driven and does not learn from feedback.
func (o *Orchestrator) RecordFeedback(issueID string, feedback map[string]interface{}) FeedbackAck {
	o.log.Info("Analysis feedback recorded", map[string]interface{}{
		"issue_id": issueID,
		"feedback": feedback,
	})
	return FeedbackAck{
		Success:   true,
		Message:   "Feedback recorded for future tuning",
		Timestamp: time.Now(),
	}
}

// recommendations derives the advisory list from the assembled result,
// sorted by descending priority rank.
func recommendations(result *models.AnalysisResult) []models.Recommendation {
	recs := []models.Recommendation{}

	if c := result.Classification; c != nil {
		if c.Confidence > 80 {
			recs = append(recs, models.Recommendation{
				Type:     "auto_categorize",
				Message:  fmt.Sprintf("Auto-categorize as %q (%.1f%% confidence)", c.Category, c.Confidence),
				Priority: models.PriorityHigh,
			})
		} else if c.Confidence > 60 {
			recs = append(recs, models.Recommendation{
				Type:     "suggest_category",
				Message:  fmt.Sprintf("Consider categorizing as %q (%.1f%% confidence)", c.Category, c.Confidence),
				Priority: models.PriorityMedium,
			})
		}
	}

	if s := result.Sentiment; s != nil {
		if s.Urgency == models.LevelVeryHigh {
			recs = append(recs, models.Recommendation{
				Type:     "urgent_response",
				Message:  "Issue marked as very urgent - respond immediately",
				Priority: models.PriorityCritical,
			})
		} else if s.Sentiment == models.SentimentVeryNegative {
			recs = append(recs, models.Recommendation{
				Type:     "emotional_support",
				Message:  "Student appears very frustrated - consider empathetic response",
				Priority: models.PriorityHigh,
			})
		}
	}

	if p := result.Priority; p != nil {
		actionPriority := models.PriorityMedium
		if p.PriorityLevel == models.PriorityCritical {
			actionPriority = models.PriorityCritical
		}
		recs = append(recs, models.Recommendation{
			Type:     "priority_action",
			Message:  fmt.Sprintf("Predicted priority: %s", strings.ToUpper(p.PriorityLevel)),
			Priority: actionPriority,
		})
		for _, rec := range p.Recommendations {
			recs = append(recs, models.Recommendation{
				Type:     "priority_recommendation",
				Message:  rec,
				Priority: models.PriorityMedium,
			})
		}
	}

	if sim := result.Similarity; sim != nil && sim.HasDuplicates {
		if sim.HighestSimilarity > 0.9 {
			recs = append(recs, models.Recommendation{
				Type:     "duplicate_warning",
				Message:  fmt.Sprintf("Potential duplicate detected (%.1f%% similar)", sim.HighestSimilarity*100),
				Priority: models.PriorityHigh,
			})
		} else if sim.HighestSimilarity > 0.7 {
			recs = append(recs, models.Recommendation{
				Type:     "similar_issue",
				Message:  fmt.Sprintf("Similar issue found (%.1f%% similar) - consider linking", sim.HighestSimilarity*100),
				Priority: models.PriorityMedium,
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) > priorityRank(recs[j].Priority)
	})
	return recs
}

func priorityRank(priority string) int {
	switch priority {
	case models.PriorityCritical:
		return 4
	case models.PriorityHigh:
		return 3
	case models.PriorityMedium:
		return 2
	default:
		return 1
	}
}

// overallConfidence blends the stage confidences, renormalized over the
// stages that actually ran. The similarity part only counts when at
// least one match cleared the threshold.
func overallConfidence(result *models.AnalysisResult) float64 {
	total := 0.0
	weight := 0.0

	if result.Classification != nil {
		total += result.Classification.Confidence * 0.3
		weight += 0.3
	}
	if result.Sentiment != nil {
		total += result.Sentiment.Confidence * 0.2
		weight += 0.2
	}
	if result.Priority != nil {
		total += result.Priority.Confidence * 0.3
		weight += 0.3
	}
	if result.Similarity != nil && len(result.Similarity.SimilarIssues) > 0 {
		sum := 0.0
		for _, match := range result.Similarity.SimilarIssues {
			sum += match.Confidence
		}
		total += sum / float64(len(result.Similarity.SimilarIssues)) * 0.2
		weight += 0.2
	}

	if weight == 0 {
		return 0
	}
	return total / weight
}

// insightRecommendations derives the batch-level advisory list.
func insightRecommendations(insights *models.Insights) []models.Recommendation {
	recs := []models.Recommendation{}

	for _, category := range sortedKeys(insights.ClassificationDistribution) {
		count := insights.ClassificationDistribution[category]
		percentage := float64(count) / float64(insights.TotalIssues) * 100
		if percentage > 40 {
			recs = append(recs, models.Recommendation{
				Type:     "category_trend",
				Message:  fmt.Sprintf("%s issues represent %.1f%% of total issues - consider proactive measures", category, percentage),
				Priority: models.PriorityMedium,
			})
		}
	}

	if insights.SentimentTrends.Negative > insights.SentimentTrends.Positive {
		recs = append(recs, models.Recommendation{
			Type:     "sentiment_trend",
			Message:  "Negative sentiment is higher than positive - review response strategies",
			Priority: models.PriorityHigh,
		})
	}

	if critical := insights.PriorityDistribution[models.PriorityCritical]; critical > 0 {
		recs = append(recs, models.Recommendation{
			Type:     "priority_alert",
			Message:  fmt.Sprintf("%d critical issues detected - review immediately", critical),
			Priority: models.PriorityCritical,
		})
	}

	if insights.SimilarityStats.DuplicateCount > 0 {
		recs = append(recs, models.Recommendation{
			Type:     "duplicate_alert",
			Message:  fmt.Sprintf("%d potential duplicate issues detected", insights.SimilarityStats.DuplicateCount),
			Priority: models.PriorityMedium,
		})
	}

	return recs
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
