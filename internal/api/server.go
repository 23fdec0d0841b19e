// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"issue-analysis/internal/analysis/orchestrator"
	"issue-analysis/internal/common/config"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IssueSource provides the persisted issues the handlers analyze. It is
// satisfied by store.IssueStore.
type IssueSource interface {
	Candidates(ctx context.Context, issue *models.Issue) ([]models.Issue, error)
	ByIDs(ctx context.Context, ids []string) ([]models.Issue, error)
	Recent(ctx context.Context, limit int) ([]models.Issue, error)
	CachedInsights(ctx context.Context) (*models.Insights, bool)
	StoreInsights(ctx context.Context, insights *models.Insights)
	Ping(ctx context.Context) error
}

// AlertSink receives finished analyses for admin alerting. Satisfied by
// notify.Notifier.
type AlertSink interface {
	NotifyAnalyzed(ctx context.Context, issue *models.Issue, result *models.AnalysisResult) error
}

// Server is the HTTP front of the analysis service.
type Server struct {
	orch    *orchestrator.Orchestrator
	issues  IssueSource
	alerts  AlertSink
	cfg     config.ServerConfig
	log     logger.Logger
	handler http.Handler
}

// NewServer wires the routes. alerts may be nil when notifications are
// disabled.
func NewServer(orch *orchestrator.Orchestrator, issues IssueSource, alerts AlertSink, cfg config.ServerConfig, log logger.Logger) *Server {
	s := &Server{
		orch:   orch,
		issues: issues,
		alerts: alerts,
		cfg:    cfg,
		log:    log,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/ml/analyze-issue", s.instrument("analyze_issue", s.handleAnalyzeIssue))
	mux.Handle("POST /api/ml/suggest-category", s.instrument("suggest_category", s.handleSuggestCategory))
	mux.Handle("POST /api/ml/analyze-sentiment", s.instrument("analyze_sentiment", s.handleAnalyzeSentiment))
	mux.Handle("POST /api/ml/find-similar", s.instrument("find_similar", s.handleFindSimilar))
	mux.Handle("POST /api/ml/predict-priority", s.instrument("predict_priority", s.handlePredictPriority))
	mux.Handle("POST /api/ml/analyze-batch", s.instrument("analyze_batch", s.handleAnalyzeBatch))
	mux.Handle("POST /api/ml/feedback", s.instrument("feedback", s.handleFeedback))
	mux.Handle("GET /api/ml/insights", s.instrument("insights", s.handleInsights))
	mux.Handle("GET /api/ml/status", s.instrument("status", s.handleStatus))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)

	return s.withRequestID(s.withRecovery(s.withLogging(mux)))
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Millisecond,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(s.cfg.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	s.log.Info("Shutting down HTTP server", nil)
	return srv.Shutdown(shutdownCtx)
}
