package notify

import (
	"context"
	"errors"
	"testing"

	"issue-analysis/internal/common/config"
	stderrors "issue-analysis/internal/common/errors"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	sent    int
	subject string
	body    string
	to      string
	err     error
}

func (f *fakeEmail) SendPlainEmail(_ context.Context, _, to, subject, body string) error {
	f.sent++
	f.to = to
	f.subject = subject
	f.body = body
	return f.err
}

type fakeSMS struct {
	sent    int
	phone   string
	message string
	err     error
}

func (f *fakeSMS) SendSMS(_ context.Context, phone, message string) error {
	f.sent++
	f.phone = phone
	f.message = message
	return f.err
}

func alertConfig() config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "alerts@campus.edu"
	cfg.Email.AdminEmail = "admin@campus.edu"
	cfg.SMS.Enabled = true
	cfg.SMS.AdminPhone = "+15550100"
	cfg.SMS.PriorityThreshold = models.PriorityCritical
	return cfg
}

func criticalResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		IssueID: "issue-1",
		Priority: &models.PriorityResult{
			PriorityLevel:   models.PriorityCritical,
			Score:           9.2,
			Recommendations: []string{"Immediate attention required"},
		},
		Classification: &models.ClassificationResult{Category: "Academic"},
		Sentiment:      &models.SentimentResult{Sentiment: models.SentimentVeryNegative, Urgency: models.LevelVeryHigh},
	}
}

func TestNotifyAnalyzed_CriticalSendsBothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(alertConfig(), email, sms, logger.NewNoOpLogger())

	issue := &models.Issue{ID: "issue-1", Title: "Exam portal down before finals"}
	err := n.NotifyAnalyzed(context.Background(), issue, criticalResult())
	require.NoError(t, err)

	assert.Equal(t, 1, email.sent)
	assert.Equal(t, "admin@campus.edu", email.to)
	assert.Contains(t, email.subject, "CRITICAL")
	assert.Contains(t, email.subject, issue.Title)
	assert.Contains(t, email.body, "Category: Academic")
	assert.Contains(t, email.body, "Immediate attention required")

	assert.Equal(t, 1, sms.sent)
	assert.Equal(t, "+15550100", sms.phone)
	assert.Contains(t, sms.message, "CRITICAL")
}

func TestNotifyAnalyzed_HighSendsEmailOnly(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(alertConfig(), email, sms, logger.NewNoOpLogger())

	result := criticalResult()
	result.Priority.PriorityLevel = models.PriorityHigh

	err := n.NotifyAnalyzed(context.Background(), &models.Issue{ID: "issue-1", Title: "Broken AC"}, result)
	require.NoError(t, err)

	assert.Equal(t, 1, email.sent)
	assert.Equal(t, 0, sms.sent, "sms threshold is critical")
}

func TestNotifyAnalyzed_MediumIsSilent(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(alertConfig(), email, sms, logger.NewNoOpLogger())

	result := criticalResult()
	result.Priority.PriorityLevel = models.PriorityMedium

	err := n.NotifyAnalyzed(context.Background(), &models.Issue{ID: "issue-1", Title: "Slow wifi"}, result)
	require.NoError(t, err)
	assert.Equal(t, 0, email.sent)
	assert.Equal(t, 0, sms.sent)
}

func TestNotifyAnalyzed_SMSThresholdHigh(t *testing.T) {
	cfg := alertConfig()
	cfg.SMS.PriorityThreshold = models.PriorityHigh
	sms := &fakeSMS{}
	n := New(cfg, &fakeEmail{}, sms, logger.NewNoOpLogger())

	result := criticalResult()
	result.Priority.PriorityLevel = models.PriorityHigh

	err := n.NotifyAnalyzed(context.Background(), &models.Issue{ID: "issue-1", Title: "Hostel water outage"}, result)
	require.NoError(t, err)
	assert.Equal(t, 1, sms.sent)
}

func TestNotifyAnalyzed_DisabledChannels(t *testing.T) {
	cfg := alertConfig()
	cfg.Email.Enabled = false
	cfg.SMS.Enabled = false
	email := &fakeEmail{}
	sms := &fakeSMS{}
	n := New(cfg, email, sms, logger.NewNoOpLogger())

	err := n.NotifyAnalyzed(context.Background(), &models.Issue{ID: "issue-1", Title: "Anything"}, criticalResult())
	require.NoError(t, err)
	assert.Equal(t, 0, email.sent)
	assert.Equal(t, 0, sms.sent)
}

func TestNotifyAnalyzed_SendFailureIsReported(t *testing.T) {
	email := &fakeEmail{err: errors.New("ses throttled")}
	sms := &fakeSMS{}
	n := New(alertConfig(), email, sms, logger.NewNoOpLogger())

	err := n.NotifyAnalyzed(context.Background(), &models.Issue{ID: "issue-1", Title: "Portal down"}, criticalResult())
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "email")
	assert.Equal(t, 1, sms.sent, "sms still attempted after email failure")
}

func TestNotifyAnalyzed_SkipsFailedAnalyses(t *testing.T) {
	email := &fakeEmail{}
	n := New(alertConfig(), email, &fakeSMS{}, logger.NewNoOpLogger())

	result := criticalResult()
	result.Error = "analysis failed"

	err := n.NotifyAnalyzed(context.Background(), &models.Issue{ID: "issue-1", Title: "x"}, result)
	require.NoError(t, err)
	assert.Equal(t, 0, email.sent)
}
