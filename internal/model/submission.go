package model

import "time"

// ToolSubmission is a user-proposed catalog addition awaiting review.
type ToolSubmission struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	UserID      int64     `json:"user_id"`
	UserName    string    `json:"user_name,omitempty"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// Submission statuses.
const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Submission review actions, as used in the review endpoint path.
const (
	ReviewApprove = "approve"
	ReviewReject  = "reject"
)
