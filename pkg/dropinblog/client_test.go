package dropinblog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&Config{BaseURL: srv.URL}, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: "test-token",
		TokenType:   "Bearer",
	}), nil)
	require.NoError(t, err)
	return client
}

func TestClientSendsBearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "/v2/automations/blogs", r.URL.Path)
		w.Write([]byte(`[{"id":"b1","name":"Main"},{"id":42,"name":"Numeric"}]`))
	}))

	blogs, err := client.ListBlogs(context.Background())
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	assert.Equal(t, Blog{ID: "b1", Name: "Main"}, blogs[0])
	assert.Equal(t, ID("42"), blogs[1].ID)
}

func TestClientAPIError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "message field",
			status:      http.StatusUnprocessableEntity,
			body:        `{"message":"title is required"}`,
			wantMessage: "title is required",
		},
		{
			name:        "error field",
			status:      http.StatusUnauthorized,
			body:        `{"error":"invalid_token"}`,
			wantMessage: "invalid_token",
		},
		{
			name:        "plain body",
			status:      http.StatusBadGateway,
			body:        `upstream down`,
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := client.GetPost(context.Background(), "b1", "slug")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, http.MethodGet, apiErr.Method)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, string(apiErr.Body))
		})
	}
}

func TestGetPostEscapesIdentifier(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/automations/b1/posts/my%20post%2Fslug", r.URL.EscapedPath())
		w.Write([]byte(`{"id":7}`))
	}))

	resp, err := client.GetPost(context.Background(), "b1", "my post/slug")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7}`, string(resp))
}

func TestCreatePostSendsBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/blog/b1/posts", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"title":"Hello","content":"<p>hi</p>"}`, string(body))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1,"title":"Hello"}`))
	}))

	resp, err := client.CreatePost(context.Background(), "b1", map[string]any{
		"title":   "Hello",
		"content": "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Hello"}`, string(resp))
}

func TestSearchPostsQuery(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/automations/b1/posts/search", r.URL.Path)
		assert.Equal(t, url.Values{"search": {"go"}, "limit": {"5"}}, r.URL.Query())
		w.Write([]byte(`[]`))
	}))

	_, err := client.SearchPosts(context.Background(), "b1", url.Values{
		"search": {"go"},
		"limit":  {"5"},
	})
	require.NoError(t, err)
}

func TestCreateWebhookDoubleEncodesEvents(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/blog/b1/webhooks", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://hooks.example.com/webhook/n1", body["hookUrl"])
		assert.Equal(t, `["post.published"]`, body["events"])
		assert.Equal(t, "n8n", body["source"])

		w.Write([]byte(`{"hookId":981,"status":"active"}`))
	}))

	events, err := EncodeEvents("post.published")
	require.NoError(t, err)

	hook, err := client.CreateWebhook(context.Background(), "b1", WebhookRequest{
		HookURL: "https://hooks.example.com/webhook/n1",
		Events:  events,
		Source:  WebhookSource,
	})
	require.NoError(t, err)
	assert.Equal(t, ID("981"), hook.HookID)
	assert.JSONEq(t, `{"hookId":981,"status":"active"}`, string(hook.Raw))
}

func TestCreateWebhookWithoutHookID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))

	hook, err := client.CreateWebhook(context.Background(), "b1", WebhookRequest{})
	require.NoError(t, err)
	assert.Empty(t, hook.HookID)
}

func TestDeleteWebhook(t *testing.T) {
	var called bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v2/blog/b1/webhooks/981", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteWebhook(context.Background(), "b1", "981"))
	assert.True(t, called)
}

func TestCredentialErrorFromTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the API")
	}))
	defer srv.Close()

	client, err := NewClient(&Config{BaseURL: srv.URL}, failingSource{}, nil)
	require.NoError(t, err)

	err = client.Ping(context.Background())
	require.Error(t, err)

	var credErr *CredentialError
	assert.True(t, errors.As(err, &credErr))
}

func TestNewClientRequiresTokenSource(t *testing.T) {
	_, err := NewClient(DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`"abc"`, "abc"},
		{`123`, "123"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
		assert.Equal(t, tt.want, id)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &id))
}

type failingSource struct{}

func (failingSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("refresh token revoked")
}
