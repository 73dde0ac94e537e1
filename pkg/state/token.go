package state

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hashicorp-forge/dropinblog/pkg/models"
)

// DefaultTokenName is the credential name used when none is configured.
const DefaultTokenName = "default"

// GormTokenStore keeps a named OAuth2 token in the oauth_tokens table. It
// implements dropinblog.TokenStore.
type GormTokenStore struct {
	db   *gorm.DB
	name string
}

func NewGormTokenStore(db *gorm.DB, name string) *GormTokenStore {
	if name == "" {
		name = DefaultTokenName
	}
	return &GormTokenStore{db: db, name: name}
}

func (s *GormTokenStore) LoadToken(ctx context.Context) (*oauth2.Token, error) {
	var row models.OAuthToken
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token %q: %w", s.name, err)
	}
	return row.Token(), nil
}

func (s *GormTokenStore) SaveToken(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.New("token has no access token")
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token", "refresh_token", "token_type", "expiry", "updated_at",
			}),
		}).
		Create(models.NewOAuthToken(s.name, tok)).Error
	if err != nil {
		return fmt.Errorf("failed to save token %q: %w", s.name, err)
	}
	return nil
}
