// internal/models/issue.go
package models

// Issue statuses as used by the tracker.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusResolved = "Resolved"
)

// Issue is the read-only view of a tracked student issue that the
// analysis pipeline consumes. Timestamps are RFC3339 strings.
type Issue struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`
	StudentID   string `json:"studentId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// IssueInput is the payload accepted by the analysis endpoints before an
// issue has been persisted anywhere.
type IssueInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	StudentID   string `json:"studentId,omitempty"`
}

// ToIssue lifts an input payload into an Issue with no identity.
func (in IssueInput) ToIssue() Issue {
	return Issue{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		StudentID:   in.StudentID,
	}
}
