package models

import (
	"time"
)

// NodeSubscription is the persisted webhook subscription of one trigger node
// instance. A row exists only while the remote registration is believed to
// exist.
type NodeSubscription struct {
	NodeID    string `gorm:"primaryKey;size:255" json:"nodeId"`
	WebhookID string `gorm:"not null;size:255" json:"webhookId"`
	BlogID    string `gorm:"not null;size:255" json:"blogId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (NodeSubscription) TableName() string {
	return "node_subscriptions"
}
