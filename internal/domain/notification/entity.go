package notification

import "time"

// Kind labels what a notification is about.
type Kind string

const (
	KindAnnouncement Kind = "announcement"
	KindPromotion    Kind = "promotion"
	KindMaintenance  Kind = "maintenance"
	KindConversion   Kind = "conversion_done"
)

// Notification is one row in a user's inbox. Every row written by a single
// Broadcast call shares a CampaignID so read/response rates can be grouped
// downstream.
type Notification struct {
	ID         int64     `gorm:"column:id;primaryKey" json:"id"`
	UserID     int64     `gorm:"column:user_id;index:idx_notifications_user_unread" json:"user_id"`
	CampaignID string    `gorm:"column:campaign_id;index" json:"campaign_id"`
	Kind       Kind      `gorm:"column:kind" json:"kind"`
	Title      string    `gorm:"column:title" json:"title"`
	Message    string    `gorm:"column:message" json:"message"`
	Link       *string   `gorm:"column:link" json:"link,omitempty"`
	IsRead     bool      `gorm:"column:is_read;index:idx_notifications_user_unread" json:"is_read"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
