// Package post runs the DropInBlog action node's post operations.
package post

import (
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	OpCreate = "create"
	OpGet    = "get"
	OpSearch = "search"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"

	minLimit = 1
	maxLimit = 50
)

// Operation is one of Create, Get or Search.
type Operation interface {
	// Name returns the operation name used in input items.
	Name() string

	validation.Validatable
	isOperation()
}

// Create creates a post. Nil optional fields are left out of the request.
type Create struct {
	BlogID  string `json:"blogId"`
	Title   string `json:"title"`
	Content string `json:"content"`

	AuthorName     *string `json:"author_name"`
	CategoryNames  *string `json:"category_names"` // comma-separated, sent as-is
	FeaturedImage  *string `json:"featured_image"`
	Keyword        *string `json:"keyword"`
	SEOTitle       *string `json:"seo_title"`
	SEODescription *string `json:"seo_description"`
	Slug           *string `json:"slug"`
	StatusID       *int64  `json:"status_id"`
}

// Get fetches one post by numeric id or slug.
type Get struct {
	BlogID         string `json:"blogId"`
	PostIdentifier string `json:"postIdentifier"`
}

// Search searches a blog's posts.
type Search struct {
	BlogID string  `json:"blogId"`
	Search string  `json:"search"`
	Status *string `json:"status"`
	Limit  *int    `json:"limit"`
}

func (Create) Name() string { return OpCreate }
func (Get) Name() string    { return OpGet }
func (Search) Name() string { return OpSearch }

func (Create) isOperation() {}
func (Get) isOperation()    {}
func (Search) isOperation() {}

func (c Create) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BlogID, validation.Required),
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Content, validation.Required),
	)
}

func (g Get) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.BlogID, validation.Required),
		validation.Field(&g.PostIdentifier, validation.Required),
	)
}

func (s Search) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.BlogID, validation.Required),
		validation.Field(&s.Search, validation.Required),
		validation.Field(&s.Status, validation.In(StatusDraft, StatusPublished)),
		validation.Field(&s.Limit, validation.Min(minLimit), validation.Max(maxLimit)),
	)
}

// Body returns the request body: title and content plus the optional fields
// that are set.
func (c Create) Body() map[string]any {
	body := map[string]any{
		"title":   c.Title,
		"content": c.Content,
	}

	optional := []struct {
		key   string
		value *string
	}{
		{"author_name", c.AuthorName},
		{"category_names", c.CategoryNames},
		{"featured_image", c.FeaturedImage},
		{"keyword", c.Keyword},
		{"seo_title", c.SEOTitle},
		{"seo_description", c.SEODescription},
		{"slug", c.Slug},
	}
	for _, f := range optional {
		if f.value != nil && *f.value != "" {
			body[f.key] = *f.value
		}
	}
	if c.StatusID != nil {
		body["status_id"] = *c.StatusID
	}
	return body
}

// Query returns the search query string. search is always present; status
// and limit only when set.
func (s Search) Query() url.Values {
	q := url.Values{"search": {s.Search}}
	if s.Status != nil && *s.Status != "" {
		q.Set("status", *s.Status)
	}
	if s.Limit != nil && *s.Limit != 0 {
		q.Set("limit", strconv.Itoa(*s.Limit))
	}
	return q
}
