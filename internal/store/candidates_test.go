package store

import (
	"context"
	"regexp"
	"testing"

	"issue-analysis/internal/common/config"
	"issue-analysis/internal/common/database"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedStore(t *testing.T) (*IssueStore, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	cache := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	cfg := config.AnalysisConfig{
		CandidateLimit:    100,
		CandidateCacheTTL: 30000,
		InsightsCacheTTL:  60000,
	}
	s := New(&database.PostgresClient{DB: db}, nil, "", cache, cfg, logger.NewNoOpLogger())
	return s, mock, mr
}

func expectRecentQuery(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, category, status, student_id, created_at FROM issues ORDER BY created_at DESC LIMIT $1")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(issueRows).
			AddRow("issue-1", "Wifi down", "No wifi", "Technology", "Pending", "stu-1", nil))
}

func TestCandidates_MissThenHit(t *testing.T) {
	s, mock, mr := newCachedStore(t)
	ctx := context.Background()
	issue := &models.Issue{Title: "Wifi broken", Description: "hostel wifi"}

	expectRecentQuery(mock)

	first, err := s.Candidates(ctx, issue)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, mr.Exists(recentCandidatesKey))

	// Second call must be served from the cache; no further query is
	// registered with the mock.
	second, err := s.Candidates(ctx, issue)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidates_CorruptCacheFallsBackToDatabase(t *testing.T) {
	s, mock, mr := newCachedStore(t)
	require.NoError(t, mr.Set(recentCandidatesKey, "{not json"))

	expectRecentQuery(mock)

	issues, err := s.Candidates(context.Background(), &models.Issue{Title: "x", Description: "y"})
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateCandidates(t *testing.T) {
	s, mock, mr := newCachedStore(t)
	ctx := context.Background()

	expectRecentQuery(mock)
	_, err := s.Candidates(ctx, &models.Issue{Title: "x", Description: "y"})
	require.NoError(t, err)
	require.True(t, mr.Exists(recentCandidatesKey))

	s.InvalidateCandidates(ctx)
	assert.False(t, mr.Exists(recentCandidatesKey))
}

func TestInsightsCacheRoundTrip(t *testing.T) {
	s, _, _ := newCachedStore(t)
	ctx := context.Background()

	_, ok := s.CachedInsights(ctx)
	assert.False(t, ok)

	insights := &models.Insights{
		TotalIssues:                3,
		ClassificationDistribution: map[string]int{"Academic": 2, "Other": 1},
		PriorityDistribution:       map[string]int{"high": 1, "medium": 2},
	}
	s.StoreInsights(ctx, insights)

	cached, ok := s.CachedInsights(ctx)
	require.True(t, ok)
	assert.Equal(t, insights, cached)
}

func TestCandidates_NoCacheQueriesDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.AnalysisConfig{CandidateLimit: 100}
	s := New(&database.PostgresClient{DB: db}, nil, "", nil, cfg, logger.NewNoOpLogger())

	expectRecentQuery(mock)

	issues, err := s.Candidates(context.Background(), &models.Issue{Title: "x", Description: "y"})
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
