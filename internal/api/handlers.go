package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	stderrors "issue-analysis/internal/common/errors"
	"issue-analysis/internal/common/metrics"
	"issue-analysis/internal/common/validation"
	"issue-analysis/internal/models"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func (s *Server) handleAnalyzeIssue(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.AnalyzeIssueRequest)
	if !ok {
		return
	}

	var input models.IssueInput
	if err := json.Unmarshal(body, &input); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	issue := input.ToIssue()
	candidates, err := s.issues.Candidates(r.Context(), &issue)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result := s.orch.AnalyzeIssue(r.Context(), &issue, candidates)
	s.recordAnalysisMetrics(&result)

	if s.alerts != nil && result.Error == "" {
		// Alert failures are logged inside the notifier and must not
		// fail the analysis response.
		_ = s.alerts.NotifyAnalyzed(r.Context(), &issue, &result)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": result,
		"message":  "Issue analyzed successfully",
	})
}

func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.AnalyzeIssueRequest)
	if !ok {
		return
	}

	var input models.IssueInput
	if err := json.Unmarshal(body, &input); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	classification := s.orch.SuggestCategory(input.Title, input.Description)
	metrics.IssuesClassified.WithLabelValues(classification.Category).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"suggestion": map[string]interface{}{
			"category":   classification.Category,
			"confidence": classification.Confidence,
			"keywords":   classification.SuggestedKeywords,
		},
		"message": "Category suggestion generated successfully",
	})
}

func (s *Server) handleAnalyzeSentiment(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.SentimentRequest)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"sentiment": s.orch.AnalyzeSentiment(req.Text),
		"message":   "Sentiment analyzed successfully",
	})
}

func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.AnalyzeIssueRequest)
	if !ok {
		return
	}

	var input models.IssueInput
	if err := json.Unmarshal(body, &input); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	issue := input.ToIssue()
	candidates, err := s.issues.Candidates(r.Context(), &issue)
	if err != nil {
		s.writeError(w, err)
		return
	}

	report := s.orch.FindSimilar(&issue, candidates)
	if report.HasDuplicates {
		metrics.DuplicatesDetected.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"similarity": report,
		"message":    "Similar issues found successfully",
	})
}

func (s *Server) handlePredictPriority(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.PredictPriorityRequest)
	if !ok {
		return
	}

	var input models.IssueInput
	if err := json.Unmarshal(body, &input); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	priority := s.orch.PredictPriority(input.Title, input.Description, input.Category)
	metrics.PriorityPredictions.WithLabelValues(priority.PriorityLevel).Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"priority": priority,
		"message":  "Priority predicted successfully",
	})
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.AnalyzeBatchRequest)
	if !ok {
		return
	}

	var req struct {
		IssueIDs []string `json:"issueIds"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	issues, err := s.issues.ByIDs(r.Context(), req.IssueIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(issues) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": "No issues found",
		})
		return
	}

	results := s.orch.AnalyzeBatch(r.Context(), issues)
	for i := range results {
		s.recordAnalysisMetrics(&results[i])
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"analysis": results,
		"message":  "Batch analyzed successfully",
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r, validation.FeedbackRequest)
	if !ok {
		return
	}

	var req struct {
		IssueID  string                 `json:"issueId"`
		Feedback map[string]interface{} `json:"feedback"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return
	}

	ack := s.orch.RecordFeedback(req.IssueID, req.Feedback)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  ack,
		"message": "Feedback recorded successfully",
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.issues.CachedInsights(r.Context()); ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"insights": cached,
			"message":  "Insights retrieved successfully",
		})
		return
	}

	issues, err := s.issues.Recent(r.Context(), 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	insights := s.orch.Insights(r.Context(), issues)
	s.issues.StoreInsights(r.Context(), &insights)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"insights": insights,
		"message":  "Insights retrieved successfully",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  s.orch.Status(),
		"message": "Service status retrieved successfully",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.issues.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

// readBody drains and schema-validates the request body. On failure the
// error response has already been written.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, check func([]byte) error) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, stderrors.NewInvalidRequestBodyError(err))
		return nil, false
	}
	if err := check(body); err != nil {
		s.writeError(w, stderrors.NewRequestValidationError(err.Error()))
		return nil, false
	}
	return body, true
}

func (s *Server) recordAnalysisMetrics(result *models.AnalysisResult) {
	if result.Classification != nil {
		metrics.IssuesClassified.WithLabelValues(result.Classification.Category).Inc()
	}
	if result.Priority != nil {
		metrics.PriorityPredictions.WithLabelValues(result.Priority.PriorityLevel).Inc()
	}
	if result.Similarity != nil && result.Similarity.HasDuplicates {
		metrics.DuplicatesDetected.Inc()
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr, ok := err.(*stderrors.StandardError)
	if !ok {
		stdErr = stderrors.NewInternalError(err)
	}

	writeJSON(w, stderrors.HTTPStatus(stdErr.Code), map[string]interface{}{
		"success": false,
		"message": stdErr.Message,
		"error": map[string]interface{}{
			"code":      stdErr.Code,
			"details":   stdErr.Details,
			"retryable": stdErr.Retryable,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
