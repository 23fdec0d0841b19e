package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"issue-analysis/internal/common/config"
	"issue-analysis/internal/common/database"
	stderrors "issue-analysis/internal/common/errors"
	"issue-analysis/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issueRows = []string{"id", "title", "description", "category", "status", "student_id", "created_at"}

func newMockStore(t *testing.T) (*IssueStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.AnalysisConfig{CandidateLimit: 100}
	s := New(&database.PostgresClient{DB: db}, nil, "", nil, cfg, logger.NewNoOpLogger())
	return s, mock
}

func TestByID(t *testing.T) {
	s, mock := newMockStore(t)
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, category, status, student_id, created_at FROM issues WHERE id = $1")).
		WithArgs("issue-1").
		WillReturnRows(sqlmock.NewRows(issueRows).
			AddRow("issue-1", "Wifi down", "No wifi in hostel", "Technology", "Pending", "stu-1", created))

	issue, err := s.ByID(context.Background(), "issue-1")
	require.NoError(t, err)
	assert.Equal(t, "issue-1", issue.ID)
	assert.Equal(t, "Technology", issue.Category)
	assert.Equal(t, "2025-03-10T09:00:00Z", issue.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestByID_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, category, status, student_id, created_at FROM issues WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(issueRows))

	_, err := s.ByID(context.Background(), "missing")
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeIssueNotFound, stdErr.Code)
}

func TestByIDs(t *testing.T) {
	s, mock := newMockStore(t)
	ids := []string{"issue-1", "issue-2", "issue-3"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, category, status, student_id, created_at FROM issues WHERE id = ANY($1)")).
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows(issueRows).
			AddRow("issue-1", "a", "aa", nil, nil, nil, nil).
			AddRow("issue-3", "c", "cc", "Facility", "Resolved", "stu-2", time.Now()))

	issues, err := s.ByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, issues, 2, "unknown ids are skipped")
	assert.Equal(t, "issue-1", issues[0].ID)
	assert.Empty(t, issues[0].Category)
	assert.Equal(t, "issue-3", issues[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestByIDs_EmptyInput(t *testing.T) {
	s, _ := newMockStore(t)

	issues, err := s.ByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, issues)
}

func TestRecent_CapsLimit(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, category, status, student_id, created_at FROM issues ORDER BY created_at DESC LIMIT $1")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(issueRows).
			AddRow("issue-1", "a", "aa", nil, nil, nil, nil))

	issues, err := s.Recent(context.Background(), 5000)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecent_QueryFailureIsStandardError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, category, status, student_id, created_at FROM issues ORDER BY created_at DESC LIMIT $1")).
		WithArgs(25).
		WillReturnError(assert.AnError)

	_, err := s.Recent(context.Background(), 25)
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeQueryExecutionFailed, stdErr.Code)
	assert.True(t, stderrors.IsRetryable(err))
}
