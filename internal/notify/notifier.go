// Package notify sends admin alerts for issues whose analysis crossed
// the configured priority bar. Email goes out for high and critical
// tiers, SMS only at or above the configured threshold tier.
package notify

import (
	"context"
	"fmt"
	"strings"

	"issue-analysis/internal/common/config"
	"issue-analysis/internal/common/errors"
	"issue-analysis/internal/common/logger"
	"issue-analysis/internal/models"
)

// EmailSender is satisfied by the SES wrapper.
type EmailSender interface {
	SendPlainEmail(ctx context.Context, from, to, subject, body string) error
}

// SMSSender is satisfied by the SNS wrapper.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

var tierRank = map[string]int{
	models.PriorityLow:      1,
	models.PriorityMedium:   2,
	models.PriorityHigh:     3,
	models.PriorityCritical: 4,
}

// Notifier fans analysis alerts out to the configured channels.
type Notifier struct {
	cfg   config.NotificationConfig
	email EmailSender
	sms   SMSSender
	log   logger.Logger
}

// New builds a Notifier. Either sender may be nil when the channel is
// disabled in config.
func New(cfg config.NotificationConfig, email EmailSender, sms SMSSender, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, email: email, sms: sms, log: log}
}

// NotifyAnalyzed inspects a finished analysis and alerts admins when the
// predicted priority warrants it. Send failures are logged and returned
// but never abort the caller's request path.
func (n *Notifier) NotifyAnalyzed(ctx context.Context, issue *models.Issue, result *models.AnalysisResult) error {
	if result == nil || result.Error != "" || result.Priority == nil {
		return nil
	}

	level := result.Priority.PriorityLevel
	rank := tierRank[level]

	var firstErr error

	if n.emailDue(rank) {
		if err := n.sendEmail(ctx, issue, result); err != nil {
			n.log.Error("Failed to send priority alert", map[string]interface{}{
				"issueId": result.IssueID,
				"channel": "email",
				"error":   err.Error(),
			})
			firstErr = errors.NewNotificationSendFailedError("email", err)
		}
	}

	if n.smsDue(rank) {
		if err := n.sms.SendSMS(ctx, n.cfg.SMS.AdminPhone, smsText(issue, level)); err != nil {
			n.log.Error("Failed to send priority alert", map[string]interface{}{
				"issueId": result.IssueID,
				"channel": "sms",
				"error":   err.Error(),
			})
			if firstErr == nil {
				firstErr = errors.NewNotificationSendFailedError("sms", err)
			}
		}
	}

	return firstErr
}

func (n *Notifier) emailDue(rank int) bool {
	return n.cfg.Email.Enabled && n.email != nil && rank >= tierRank[models.PriorityHigh]
}

func (n *Notifier) smsDue(rank int) bool {
	if !n.cfg.SMS.Enabled || n.sms == nil {
		return false
	}
	threshold, ok := tierRank[n.cfg.SMS.PriorityThreshold]
	if !ok {
		threshold = tierRank[models.PriorityCritical]
	}
	return rank >= threshold
}

func (n *Notifier) sendEmail(ctx context.Context, issue *models.Issue, result *models.AnalysisResult) error {
	subject := fmt.Sprintf("[%s] Issue alert: %s", strings.ToUpper(result.Priority.PriorityLevel), issue.Title)
	return n.email.SendPlainEmail(ctx, n.cfg.Email.FromEmail, n.cfg.Email.AdminEmail, subject, emailBody(issue, result))
}

func emailBody(issue *models.Issue, result *models.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Issue %s was flagged %s (score %.2f).\n\n", result.IssueID, result.Priority.PriorityLevel, result.Priority.Score)
	fmt.Fprintf(&b, "Title: %s\n", issue.Title)
	if result.Classification != nil {
		fmt.Fprintf(&b, "Category: %s\n", result.Classification.Category)
	}
	if result.Sentiment != nil {
		fmt.Fprintf(&b, "Sentiment: %s, urgency %s\n", result.Sentiment.Sentiment, result.Sentiment.Urgency)
	}
	if result.Similarity != nil && result.Similarity.HasDuplicates {
		fmt.Fprintf(&b, "Possible duplicates: %d\n", result.Similarity.DuplicateCount)
	}

	if len(result.Priority.Recommendations) > 0 {
		b.WriteString("\nRecommended actions:\n")
		for _, rec := range result.Priority.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	return b.String()
}

func smsText(issue *models.Issue, level string) string {
	title := issue.Title
	if len(title) > 80 {
		title = title[:77] + "..."
	}
	return fmt.Sprintf("%s priority issue: %s", strings.ToUpper(level), title)
}
