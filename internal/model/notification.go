package model

import "time"

// NotificationType identifies what kind of event a notification reports.
type NotificationType string

const (
	NotificationCampaignAssignment NotificationType = "campaign_assignment"
	NotificationExecutionValidated NotificationType = "execution_validated"
	NotificationAnomalyReported    NotificationType = "anomaly_reported"
	NotificationCommentPosted      NotificationType = "comment_posted"
)

// Notification is an alert created server-side and surfaced to the
// user in the notification popover. The client only reads it and flips
// IsRead after the backend acknowledges a mark-read call.
type Notification struct {
	ID int64 `json:"id"`

	// Type drives click-to-navigate routing. Unrecognized values are
	// legal and simply do not navigate.
	Type NotificationType `json:"type"`

	Title   string `json:"title"`
	Message string `json:"message"`
	IsRead  bool   `json:"is_read"`

	// RelatedObjectID points at the campaign, execution, anomaly or
	// comment the notification is about. Zero when absent.
	RelatedObjectID int64 `json:"related_object_id"`

	CreatedAt time.Time `json:"created_at"`
}
