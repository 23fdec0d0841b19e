// Package store loads issues for the analysis pipeline. Postgres is the
// system of record; Elasticsearch and Redis are optional accelerators
// for candidate lookup and the store degrades to plain SQL without them.
package store

import (
	"context"
	"database/sql"
	"time"

	"issue-analysis/internal/common/config"
	"issue-analysis/internal/common/database"
	stderrors "issue-analysis/internal/common/errors"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"

	"github.com/lib/pq"
)

const issueColumns = "id, title, description, category, status, student_id, created_at"

// IssueStore reads tracked issues from the backing stores.
type IssueStore struct {
	pg          *database.PostgresClient
	es          *database.ElasticsearchClient
	esIndexName string
	cache       *database.RedisClient
	cfg         config.AnalysisConfig
	log         logger.Logger
}

// New builds an IssueStore. The Elasticsearch and Redis clients may be
// nil when those backends are disabled.
func New(pg *database.PostgresClient, es *database.ElasticsearchClient, esIndex string, cache *database.RedisClient, cfg config.AnalysisConfig, log logger.Logger) *IssueStore {
	return &IssueStore{pg: pg, es: es, esIndexName: esIndex, cache: cache, cfg: cfg, log: log}
}

// ByID loads a single issue.
func (s *IssueStore) ByID(ctx context.Context, id string) (*models.Issue, error) {
	row := s.pg.QueryRow(ctx,
		"SELECT "+issueColumns+" FROM issues WHERE id = $1", id)

	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, stderrors.NewIssueNotFoundError(id)
	}
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("issue_by_id", err)
	}
	return issue, nil
}

// ByIDs loads the named issues. Unknown IDs are silently skipped, so the
// result may be shorter than the input.
func (s *IssueStore) ByIDs(ctx context.Context, ids []string) ([]models.Issue, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pg.Query(ctx,
		"SELECT "+issueColumns+" FROM issues WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("issues_by_ids", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// Recent returns the newest issues, capped at the configured candidate
// limit.
func (s *IssueStore) Recent(ctx context.Context, limit int) ([]models.Issue, error) {
	if limit <= 0 || limit > s.cfg.CandidateLimit {
		limit = s.cfg.CandidateLimit
	}

	rows, err := s.pg.Query(ctx,
		"SELECT "+issueColumns+" FROM issues ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("recent_issues", err)
	}
	defer rows.Close()

	return collectIssues(rows)
}

// Ping checks the primary store.
func (s *IssueStore) Ping(ctx context.Context) error {
	return s.pg.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	var (
		issue     models.Issue
		category  sql.NullString
		status    sql.NullString
		studentID sql.NullString
		createdAt sql.NullTime
	)

	err := row.Scan(&issue.ID, &issue.Title, &issue.Description, &category, &status, &studentID, &createdAt)
	if err != nil {
		return nil, err
	}

	issue.Category = category.String
	issue.Status = status.String
	issue.StudentID = studentID.String
	if createdAt.Valid {
		issue.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
	}
	return &issue, nil
}

func collectIssues(rows *sql.Rows) ([]models.Issue, error) {
	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, stderrors.NewQueryExecutionFailedError("scan_issue", err)
		}
		issues = append(issues, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, stderrors.NewQueryExecutionFailedError("iterate_issues", err)
	}
	return issues, nil
}
