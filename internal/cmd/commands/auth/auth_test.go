package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    bool
		wantResult bool
	}{
		{
			name:       "code",
			query:      "state=s1&code=abc",
			wantStatus: http.StatusOK,
			wantCode:   "abc",
			wantResult: true,
		},
		{
			name:       "wrong state",
			query:      "state=other&code=abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "denied",
			query:      "state=s1&error=access_denied",
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			wantResult: true,
		},
		{
			name:       "missing code",
			query:      "state=s1",
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			wantResult: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callbackResult, 1)
			rec := httptest.NewRecorder()
			callbackHandler("s1", results)(rec, httptest.NewRequest(http.MethodGet, "/oauth/callback?"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if !tt.wantResult {
				assert.Empty(t, results)
				return
			}

			require.Len(t, results, 1)
			res := <-results
			assert.Equal(t, tt.wantCode, res.code)
			assert.Equal(t, tt.wantErr, res.err != nil)
		})
	}
}

func TestRedirectPath(t *testing.T) {
	u, _ := url.Parse("http://127.0.0.1:8000")
	assert.Equal(t, "/", redirectPath(u))

	u, _ = url.Parse("http://127.0.0.1:8000/oauth/callback")
	assert.Equal(t, "/oauth/callback", redirectPath(u))
}
