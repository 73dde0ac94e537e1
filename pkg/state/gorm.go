package state

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hashicorp-forge/dropinblog/pkg/models"
)

// GormBackend stores subscriptions in the node_subscriptions table.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Store(nodeID string) SubscriptionStore {
	return &GormStore{db: b.db, nodeID: nodeID}
}

// GormStore is a SubscriptionStore backed by one node_subscriptions row.
type GormStore struct {
	db     *gorm.DB
	nodeID string
}

func (s *GormStore) Load(ctx context.Context) (*Subscription, error) {
	var row models.NodeSubscription
	err := s.db.WithContext(ctx).
		Where("node_id = ?", s.nodeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription for node %q: %w", s.nodeID, err)
	}

	return &Subscription{WebhookID: row.WebhookID, BlogID: row.BlogID}, nil
}

func (s *GormStore) Save(ctx context.Context, sub Subscription) error {
	if err := sub.validate(); err != nil {
		return err
	}

	row := models.NodeSubscription{
		NodeID:    s.nodeID,
		WebhookID: sub.WebhookID,
		BlogID:    sub.BlogID,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "node_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"webhook_id", "blog_id", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save subscription for node %q: %w", s.nodeID, err)
	}
	return nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Where("node_id = ?", s.nodeID).
		Delete(&models.NodeSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear subscription for node %q: %w", s.nodeID, err)
	}
	return nil
}
