package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubKeyStore struct {
	activeKeys map[string]bool
	lookupErr  error
}

func (s *stubKeyStore) CreateJob(ctx context.Context, job *model.Job, targetLanguages []string) error {
	return nil
}

func (s *stubKeyStore) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	return nil, domain.ErrJobNotFound
}

func (s *stubKeyStore) GetJobFiles(ctx context.Context, jobID string) ([]model.File, error) {
	return nil, nil
}

func (s *stubKeyStore) CreateAPIKey(ctx context.Context, key *model.APIKey) error { return nil }

func (s *stubKeyStore) GetActiveAPIKey(ctx context.Context, key string) (*model.APIKey, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if !s.activeKeys[key] {
		return nil, domain.ErrAPIKeyNotFound
	}
	return &model.APIKey{Key: key, IsActive: true}, nil
}

func (s *stubKeyStore) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) { return nil, nil }

func (s *stubKeyStore) DeactivateAPIKey(ctx context.Context, key string) error { return nil }

func newAuthTestRouter(store *stubKeyStore, adminKey string) *gin.Engine {
	logger := slog.New(slog.DiscardHandler)
	r := gin.New()

	authed := r.Group("")
	authed.Use(APIKeyAuthMiddleware(logger, store, adminKey))
	authed.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	admin := authed.Group("/admin")
	admin.Use(RequireAdminMiddleware())
	admin.GET("/only", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func doAuthRequest(r *gin.Engine, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["detail"]
}

func TestAPIKeyAuthMiddleware(t *testing.T) {
	store := &stubKeyStore{activeKeys: map[string]bool{"issued-key": true}}
	r := newAuthTestRouter(store, "admin-secret")

	tests := []struct {
		name       string
		apiKey     string
		wantStatus int
		wantDetail string
	}{
		{"missing key", "", http.StatusUnauthorized, "API Key missing"},
		{"unknown key", "bogus", http.StatusUnauthorized, "Invalid or inactive API key"},
		{"issued key", "issued-key", http.StatusOK, ""},
		{"admin key", "admin-secret", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAuthRequest(r, "/protected", tt.apiKey)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, detailOf(t, w))
			}
		})
	}
}

func TestRequireAdminMiddleware(t *testing.T) {
	store := &stubKeyStore{activeKeys: map[string]bool{"issued-key": true}}
	r := newAuthTestRouter(store, "admin-secret")

	w := doAuthRequest(r, "/admin/only", "admin-secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doAuthRequest(r, "/admin/only", "issued-key")
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", detailOf(t, w))
}

func TestAuthMiddlewareLookupFailure(t *testing.T) {
	store := &stubKeyStore{lookupErr: assert.AnError}
	r := newAuthTestRouter(store, "admin-secret")

	w := doAuthRequest(r, "/protected", "some-key")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Authorization check failed", detailOf(t, w))
}
