package post

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
)

type call struct {
	method     string
	blogID     string
	identifier string
	body       map[string]any
	query      url.Values
}

type fakeAPI struct {
	calls []call

	// responses are returned in call order; calls past the end get "{}".
	responses []string
	errs      map[int]error
}

func (f *fakeAPI) next() (json.RawMessage, error) {
	n := len(f.calls) - 1
	if err, ok := f.errs[n]; ok {
		return nil, err
	}
	if n < len(f.responses) {
		return json.RawMessage(f.responses[n]), nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, blogID string, body map[string]any) (json.RawMessage, error) {
	f.calls = append(f.calls, call{method: "create", blogID: blogID, body: body})
	return f.next()
}

func (f *fakeAPI) GetPost(ctx context.Context, blogID, identifier string) (json.RawMessage, error) {
	f.calls = append(f.calls, call{method: "get", blogID: blogID, identifier: identifier})
	return f.next()
}

func (f *fakeAPI) SearchPosts(ctx context.Context, blogID string, query url.Values) (json.RawMessage, error) {
	f.calls = append(f.calls, call{method: "search", blogID: blogID, query: query})
	return f.next()
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		want    Operation
		wantErr string
	}{
		{
			name: "create with flat fields",
			item: Item{Operation: "create", Parameters: map[string]any{
				"blogId": "b1", "title": "T", "content": "C", "slug": "t",
			}},
			want: Create{BlogID: "b1", Title: "T", Content: "C", Slug: ptr("t")},
		},
		{
			name: "create with nested additional fields",
			item: Item{Resource: "post", Operation: "create", Parameters: map[string]any{
				"blogId": "b1", "title": "T", "content": "C",
				"additionalFields": map[string]any{"status_id": "3", "keyword": "", "seo_title": nil},
			}},
			want: Create{BlogID: "b1", Title: "T", Content: "C", StatusID: ptr(int64(3))},
		},
		{
			name: "get",
			item: Item{Operation: "get", Parameters: map[string]any{"blogId": "b1", "postIdentifier": "42"}},
			want: Get{BlogID: "b1", PostIdentifier: "42"},
		},
		{
			name: "search with zero limit",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go",
				"searchFilters": map[string]any{"limit": float64(0), "status": ""},
			}},
			want: Search{BlogID: "b1", Search: "go"},
		},
		{
			name: "search with filters",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "status": "draft", "limit": float64(10),
			}},
			want: Search{BlogID: "b1", Search: "go", Status: ptr("draft"), Limit: ptr(10)},
		},
		{
			name:    "missing title",
			item:    Item{Operation: "create", Parameters: map[string]any{"blogId": "b1", "content": "C"}},
			wantErr: "title",
		},
		{
			name:    "empty blog id",
			item:    Item{Operation: "get", Parameters: map[string]any{"blogId": "", "postIdentifier": "x"}},
			wantErr: "blogId",
		},
		{
			name: "limit too large",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "limit": float64(51),
			}},
			wantErr: "limit",
		},
		{
			name: "fractional limit above range",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "limit": 50.9,
			}},
			wantErr: "whole number",
		},
		{
			name: "fractional limit below range",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "limit": 0.5,
			}},
			wantErr: "limit",
		},
		{
			name: "negative limit",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "limit": float64(-3),
			}},
			wantErr: "limit",
		},
		{
			name: "limit as numeric string",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "limit": "25",
			}},
			want: Search{BlogID: "b1", Search: "go", Limit: ptr(25)},
		},
		{
			name: "fractional status id",
			item: Item{Operation: "create", Parameters: map[string]any{
				"blogId": "b1", "title": "T", "content": "C",
				"additionalFields": map[string]any{"status_id": 3.9},
			}},
			wantErr: "status_id",
		},
		{
			name: "whole float status id",
			item: Item{Operation: "create", Parameters: map[string]any{
				"blogId": "b1", "title": "T", "content": "C",
				"additionalFields": map[string]any{"status_id": float64(4)},
			}},
			want: Create{BlogID: "b1", Title: "T", Content: "C", StatusID: ptr(int64(4))},
		},
		{
			name: "bool author name",
			item: Item{Operation: "create", Parameters: map[string]any{
				"blogId": "b1", "title": "T", "content": "C",
				"additionalFields": map[string]any{"author_name": true},
			}},
			wantErr: "author_name",
		},
		{
			name: "unknown status",
			item: Item{Operation: "search", Parameters: map[string]any{
				"blogId": "b1", "search": "go", "status": "archived",
			}},
			wantErr: "status",
		},
		{
			name:    "unknown operation",
			item:    Item{Operation: "delete"},
			wantErr: "unsupported operation",
		},
		{
			name:    "unknown resource",
			item:    Item{Resource: "author", Operation: "get"},
			wantErr: "unsupported resource",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := Decode(tt.item)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
		})
	}
}

func TestCreateBodyOmitsUnsetFields(t *testing.T) {
	c := Create{
		BlogID:        "b1",
		Title:         "Hello",
		Content:       "<p>hi</p>",
		CategoryNames: ptr("go, testing"),
		Keyword:       ptr(""),
	}

	assert.Equal(t, map[string]any{
		"title":          "Hello",
		"content":        "<p>hi</p>",
		"category_names": "go, testing",
	}, c.Body())
}

func TestSearchQuery(t *testing.T) {
	tests := []struct {
		name   string
		search Search
		want   url.Values
	}{
		{
			name:   "search only",
			search: Search{Search: "go"},
			want:   url.Values{"search": {"go"}},
		},
		{
			name:   "empty status and zero limit",
			search: Search{Search: "go", Status: ptr(""), Limit: ptr(0)},
			want:   url.Values{"search": {"go"}},
		},
		{
			name:   "all filters",
			search: Search{Search: "go", Status: ptr("published"), Limit: ptr(5)},
			want:   url.Values{"search": {"go"}, "status": {"published"}, "limit": {"5"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.search.Query())
		})
	}
}

func TestExecuteSplitsArrayResponses(t *testing.T) {
	api := &fakeAPI{responses: []string{`[{"id":1},{"id":2}]`, `{"id":3}`, ``}}
	e := NewExecutor(api, Abort, nil)

	records, err := e.Execute(context.Background(), Search{BlogID: "b1", Search: "go"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":2}`, string(records[1]))

	records, err = e.Execute(context.Background(), Get{BlogID: "b1", PostIdentifier: "3"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = e.Execute(context.Background(), Get{BlogID: "b1", PostIdentifier: "4"})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func threeItems() []Item {
	return []Item{
		{Operation: "get", Parameters: map[string]any{"blogId": "b1", "postIdentifier": "1"}},
		{Operation: "get", Parameters: map[string]any{"blogId": "b1", "postIdentifier": "2"}},
		{Operation: "get", Parameters: map[string]any{"blogId": "b1", "postIdentifier": "3"}},
	}
}

func TestRunContinueOnFailure(t *testing.T) {
	api := &fakeAPI{
		responses: []string{`{"id":1}`, ``, `{"id":3}`},
		errs:      map[int]error{1: &dropinblog.APIError{StatusCode: 404, Method: "GET", Message: "post not found"}},
	}
	e := NewExecutor(api, Continue, nil)

	records, err := e.Run(context.Background(), threeItems())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 0, records[0].Item)
	assert.JSONEq(t, `{"id":1}`, string(records[0].JSON))

	assert.Equal(t, 1, records[1].Item)
	var errRec map[string]string
	require.NoError(t, json.Unmarshal(records[1].JSON, &errRec))
	assert.Contains(t, errRec["error"], "post not found")

	assert.Equal(t, 2, records[2].Item)
	assert.JSONEq(t, `{"id":3}`, string(records[2].JSON))
}

func TestRunAbortsOnFirstFailure(t *testing.T) {
	apiErr := &dropinblog.APIError{StatusCode: 500, Method: "GET"}
	api := &fakeAPI{errs: map[int]error{1: apiErr}}
	e := NewExecutor(api, Abort, nil)

	records, err := e.Run(context.Background(), threeItems())
	require.Error(t, err)

	var itemErr *ItemError
	require.True(t, errors.As(err, &itemErr))
	assert.Equal(t, 1, itemErr.Index)
	assert.ErrorIs(t, err, apiErr)

	assert.Len(t, records, 1)
	assert.Len(t, api.calls, 2, "item 2 must not run")
}

func TestRunValidationErrorIsPerItem(t *testing.T) {
	api := &fakeAPI{}
	e := NewExecutor(api, Continue, nil)

	items := threeItems()
	items[0].Parameters = map[string]any{"blogId": "b1"}

	records, err := e.Run(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Contains(t, string(records[0].JSON), "postIdentifier")
	assert.Len(t, api.calls, 2)
}

func TestRunCredentialErrorAlwaysAborts(t *testing.T) {
	api := &fakeAPI{errs: map[int]error{0: &dropinblog.CredentialError{Err: errors.New("revoked")}}}
	e := NewExecutor(api, Continue, nil)

	_, err := e.Run(context.Background(), threeItems())
	var credErr *dropinblog.CredentialError
	assert.True(t, errors.As(err, &credErr))
	assert.Len(t, api.calls, 1)
}

func TestRunSendsCreateRequest(t *testing.T) {
	api := &fakeAPI{responses: []string{`{"id":9}`}}
	e := NewExecutor(api, Abort, nil)

	_, err := e.Run(context.Background(), []Item{{
		Operation: "create",
		Parameters: map[string]any{
			"blogId":           "b1",
			"title":            "T",
			"content":          "C",
			"additionalFields": map[string]any{"author_name": "Ada", "slug": ""},
		},
	}})
	require.NoError(t, err)
	require.Len(t, api.calls, 1)
	assert.Equal(t, "b1", api.calls[0].blogID)
	assert.Equal(t, map[string]any{"title": "T", "content": "C", "author_name": "Ada"}, api.calls[0].body)
}

func ptr[T any](v T) *T {
	return &v
}
