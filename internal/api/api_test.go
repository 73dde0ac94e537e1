package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/dropinblog/internal/server"
	"github.com/hashicorp-forge/dropinblog/pkg/database"
	"github.com/hashicorp-forge/dropinblog/pkg/dropinblog"
	"github.com/hashicorp-forge/dropinblog/pkg/metrics"
	"github.com/hashicorp-forge/dropinblog/pkg/node/trigger"
	"github.com/hashicorp-forge/dropinblog/pkg/output"
	"github.com/hashicorp-forge/dropinblog/pkg/state"
)

type noopAPI struct{}

func (noopAPI) CreateWebhook(ctx context.Context, blogID string, req dropinblog.WebhookRequest) (*dropinblog.Webhook, error) {
	return &dropinblog.Webhook{HookID: "1"}, nil
}

func (noopAPI) DeleteWebhook(ctx context.Context, blogID, hookID string) error {
	return nil
}

func newTestServer(t *testing.T, out *bytes.Buffer) *server.Server {
	t.Helper()

	m, err := trigger.NewManager(trigger.Options{
		NodeID:     "main-blog",
		WebhookURL: "http://127.0.0.1:8000/webhook/main-blog",
		Parameters: trigger.Parameters{BlogID: "b1"},
		API:        noopAPI{},
		Store:      state.NewMemoryStore(),
		Sink:       output.NewJSONLines(out),
	})
	require.NoError(t, err)

	return &server.Server{
		Logger:   hclog.NewNullLogger(),
		Triggers: map[string]*trigger.Manager{"main-blog": m},
	}
}

func TestWebhookDeliversBodyVerbatim(t *testing.T) {
	var out bytes.Buffer
	router := NewRouter(newTestServer(t, &out))

	body := `{"event":"post.published",  "post":{"id":7,"title":"Hello"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/main-blog", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Workflow was started"}`, rec.Body.String())
	assert.Equal(t, body+"\n", out.String())
}

func TestWebhookEveryDeliveryIsOneRecord(t *testing.T) {
	var out bytes.Buffer
	router := NewRouter(newTestServer(t, &out))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhook/main-blog", strings.NewReader(`{"id":1}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 3, strings.Count(out.String(), "\n"))
}

func TestWebhookUnknownTrigger(t *testing.T) {
	var out bytes.Buffer
	router := NewRouter(newTestServer(t, &out))

	req := httptest.NewRequest(http.MethodPost, "/webhook/other", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, out.String())
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	var out bytes.Buffer
	router := NewRouter(newTestServer(t, &out))

	req := httptest.NewRequest(http.MethodGet, "/webhook/main-blog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	db, err := database.Connect(database.Config{DSN: ":memory:"}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	srv := newTestServer(t, &out)
	srv.DB = db

	rec := httptest.NewRecorder()
	NewRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.Equal(t, 1, resp.Triggers)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RegisterDefault()

	var out bytes.Buffer
	router := NewRouter(newTestServer(t, &out))

	req := httptest.NewRequest(http.MethodPost, "/webhook/main-blog", strings.NewReader(`{}`))
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dropinblog_webhook_deliveries_total{node="main-blog",outcome="success"}`)
}
