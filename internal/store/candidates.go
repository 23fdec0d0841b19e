package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"issue-analysis/internal/common/metrics"
	"issue-analysis/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	recentCandidatesKey = "analysis:candidates:recent"
	insightsKey         = "analysis:insights"
)

// Candidates returns the issues a new submission should be compared
// against. When Elasticsearch is available the set is narrowed to
// textually relevant issues; otherwise the newest issues are used.
func (s *IssueStore) Candidates(ctx context.Context, issue *models.Issue) ([]models.Issue, error) {
	if s.es != nil {
		candidates, err := s.searchCandidates(ctx, issue)
		if err == nil {
			return candidates, nil
		}
		s.log.Warn("Candidate search failed, falling back to recent issues", map[string]interface{}{"error": err.Error()})
	}
	return s.cachedRecent(ctx)
}

// cachedRecent serves the recent-issue candidate list through the Redis
// cache when one is configured.
func (s *IssueStore) cachedRecent(ctx context.Context) ([]models.Issue, error) {
	if s.cache == nil {
		metrics.CandidateCacheHits.WithLabelValues("disabled").Inc()
		return s.Recent(ctx, s.cfg.CandidateLimit)
	}

	raw, err := s.cache.Get(ctx, recentCandidatesKey)
	if err == nil {
		var cached []models.Issue
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			metrics.CandidateCacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.CandidateCacheHits.WithLabelValues("error").Inc()
	} else if err == redis.Nil {
		metrics.CandidateCacheHits.WithLabelValues("miss").Inc()
	} else {
		metrics.CandidateCacheHits.WithLabelValues("error").Inc()
		s.log.Warn("Candidate cache read failed", map[string]interface{}{"error": err.Error()})
	}

	issues, err := s.Recent(ctx, s.cfg.CandidateLimit)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(issues); err == nil {
		ttl := time.Duration(s.cfg.CandidateCacheTTL) * time.Millisecond
		if err := s.cache.Set(ctx, recentCandidatesKey, encoded, ttl); err != nil {
			s.log.Warn("Candidate cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return issues, nil
}

// InvalidateCandidates drops the cached candidate list, typically after
// an issue write elsewhere in the system.
func (s *IssueStore) InvalidateCandidates(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, recentCandidatesKey); err != nil {
		s.log.Warn("Candidate cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}

// searchCandidates asks Elasticsearch for issues textually close to the
// new one and hydrates the hits from Postgres.
func (s *IssueStore) searchCandidates(ctx context.Context, issue *models.Issue) ([]models.Issue, error) {
	query := map[string]interface{}{
		"size":    s.cfg.CandidateLimit,
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{"match": map[string]interface{}{"title": issue.Title}},
					map[string]interface{}{"match": map[string]interface{}{"description": issue.Description}},
				},
			},
		},
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, err
	}

	es := s.es.Client
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(s.esIndex()),
		es.Search.WithBody(&body),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search returned %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return s.ByIDs(ctx, ids)
}

func (s *IssueStore) esIndex() string {
	if s.esIndexName != "" {
		return s.esIndexName
	}
	return "issues"
}

// CachedInsights returns the cached batch insights, if present and
// fresh.
func (s *IssueStore) CachedInsights(ctx context.Context) (*models.Insights, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, insightsKey)
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Insights cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}

	var insights models.Insights
	if err := json.Unmarshal([]byte(raw), &insights); err != nil {
		return nil, false
	}
	return &insights, true
}

// StoreInsights caches the batch insights for the configured TTL.
func (s *IssueStore) StoreInsights(ctx context.Context, insights *models.Insights) {
	if s.cache == nil {
		return
	}

	encoded, err := json.Marshal(insights)
	if err != nil {
		return
	}

	ttl := time.Duration(s.cfg.InsightsCacheTTL) * time.Millisecond
	if err := s.cache.Set(ctx, insightsKey, encoded, ttl); err != nil {
		s.log.Warn("Insights cache write failed", map[string]interface{}{"error": err.Error()})
	}
}
