package models

import (
	"time"

	"golang.org/x/oauth2"
)

// OAuthToken stores an OAuth2 token under a credential name.
type OAuthToken struct {
	Name         string    `gorm:"primaryKey;size:255" json:"name"`
	AccessToken  string    `gorm:"not null" json:"-"`
	RefreshToken string    `json:"-"`
	TokenType    string    `gorm:"size:50" json:"tokenType"`
	Expiry       time.Time `json:"expiry"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (OAuthToken) TableName() string {
	return "oauth_tokens"
}

// Token converts the row to an oauth2.Token.
func (t *OAuthToken) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// NewOAuthToken builds a row from tok.
func NewOAuthToken(name string, tok *oauth2.Token) *OAuthToken {
	return &OAuthToken{
		Name:         name,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}
