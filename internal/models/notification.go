// internal/models/notification.go
package models

// Notification is a user-visible notification record. Sending is
// fire-and-forget; the list screen that renders them lives elsewhere.
type Notification struct {
	ID          string                 `json:"id"`
	RecipientID string                 `json:"recipientId"`
	Type        string                 `json:"type"` // "match_found", "lost_report_created"
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	Read        bool                   `json:"read"`
	CreatedAt   string                 `json:"createdAt"`
}

// Notification types
const (
	NotificationMatchFound        = "match_found"
	NotificationLostReportCreated = "lost_report_created"
)
