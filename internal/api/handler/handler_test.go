package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/translation-api/internal/api/domain"
	"github.com/cuongbtq/translation-api/internal/api/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	jobs           map[string]*model.Job
	files          map[string][]model.File
	keys           map[string]*model.APIKey
	createdJobs    []*model.Job
	createdTargets [][]string
	createJobErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:  make(map[string]*model.Job),
		files: make(map[string][]model.File),
		keys:  make(map[string]*model.APIKey),
	}
}

func (s *fakeStore) CreateJob(ctx context.Context, job *model.Job, targetLanguages []string) error {
	if s.createJobErr != nil {
		return s.createJobErr
	}
	s.jobs[job.JobID] = job
	s.createdJobs = append(s.createdJobs, job)
	s.createdTargets = append(s.createdTargets, targetLanguages)
	return nil
}

func (s *fakeStore) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (s *fakeStore) GetJobFiles(ctx context.Context, jobID string) ([]model.File, error) {
	return s.files[jobID], nil
}

func (s *fakeStore) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	s.keys[key.Key] = key
	return nil
}

func (s *fakeStore) GetActiveAPIKey(ctx context.Context, key string) (*model.APIKey, error) {
	record, ok := s.keys[key]
	if !ok || !record.IsActive {
		return nil, domain.ErrAPIKeyNotFound
	}
	return record, nil
}

func (s *fakeStore) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	keys := make([]model.APIKey, 0, len(s.keys))
	for _, record := range s.keys {
		keys = append(keys, *record)
	}
	return keys, nil
}

func (s *fakeStore) DeactivateAPIKey(ctx context.Context, key string) error {
	record, ok := s.keys[key]
	if !ok {
		return domain.ErrAPIKeyNotFound
	}
	record.IsActive = false
	return nil
}

type fakePublisher struct {
	published [][]byte
	err       error
}

func (p *fakePublisher) PublishWithRetry(ctx context.Context, body []byte, contentType string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, body)
	return nil
}

type fakeTextTranslator struct {
	err error
}

func (t *fakeTextTranslator) TranslateText(ctx context.Context, text, target, source string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return fmt.Sprintf("[%s] %s", target, text), nil
}

func (t *fakeTextTranslator) TranslateMulti(ctx context.Context, text string, targets []string, source string) (map[string]string, error) {
	if t.err != nil {
		return nil, t.err
	}
	out := make(map[string]string, len(targets))
	for _, target := range targets {
		out[target] = fmt.Sprintf("[%s] %s", target, text)
	}
	return out, nil
}

type testEnv struct {
	store      *fakeStore
	publisher  *fakePublisher
	translator *fakeTextTranslator
	router     *gin.Engine
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:      newFakeStore(),
		publisher:  &fakePublisher{},
		translator: &fakeTextTranslator{},
	}

	h := NewTranslationHandler(&Dependencies{
		Logger:      slog.New(slog.DiscardHandler),
		Storage:     env.store,
		Publisher:   env.publisher,
		Translator:  env.translator,
		MaxFileSize: 1 << 20,
	})

	r := gin.New()
	r.GET("/languages", h.ListLanguages)
	r.GET("/languages/flat", h.ListLanguagesFlat)
	r.POST("/translate/text", h.TranslateText)
	r.POST("/translate/multi", h.TranslateMulti)
	r.POST("/translate/file", h.TranslateFile)
	r.POST("/translate/file/multi", h.TranslateFileMulti)
	r.GET("/translation/status/:job_id", h.GetStatus)
	r.GET("/download/:job_id", h.Download)
	r.POST("/admin/generate-key", h.GenerateKey)
	r.GET("/admin/list-keys", h.ListKeys)
	r.POST("/admin/deactivate-key", h.DeactivateKey)
	env.router = r

	return env
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postFile(t *testing.T, path, filename, content string, fields map[string][]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for field, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(field, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListLanguages(t *testing.T) {
	env := newTestEnv()

	w := env.get(t, "/languages")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body, "Europe")
	assert.Contains(t, body, "East_Asia")

	w = env.get(t, "/languages/flat")
	require.Equal(t, http.StatusOK, w.Code)
	flat := decodeBody(t, w)
	assert.Equal(t, "hi", flat["hindi"])
}

func TestTranslateText(t *testing.T) {
	tests := []struct {
		name          string
		body          any
		translatorErr error
		wantStatus    int
		wantDetail    string
	}{
		{
			name:       "success",
			body:       map[string]any{"text": "Hello world", "target_language": "hindi"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing target language",
			body:       map[string]any{"text": "Hello world"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "required",
		},
		{
			name:       "blank text",
			body:       map[string]any{"text": "   ", "target_language": "hindi"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "text must not be empty",
		},
		{
			name:       "unsupported target",
			body:       map[string]any{"text": "Hello", "target_language": "klingon"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "not supported",
		},
		{
			name:          "backend failure",
			body:          map[string]any{"text": "Hello", "target_language": "hindi"},
			translatorErr: errors.New("backend unavailable"),
			wantStatus:    http.StatusInternalServerError,
			wantDetail:    "Translation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.translator.err = tt.translatorErr

			w := env.postJSON(t, "/translate/text", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)

			body := decodeBody(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "[hindi] Hello world", body["translated_text"])
				assert.Equal(t, "auto", body["source_language"])
			} else {
				assert.Contains(t, body["detail"], tt.wantDetail)
			}
		})
	}
}

func TestTranslateMulti(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON(t, "/translate/multi", map[string]any{
		"text":             "Hello world",
		"target_languages": []string{"hindi", "spanish_mexico"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	translations := body["translations"].(map[string]any)
	assert.Len(t, translations, 2)
	assert.Equal(t, "[hindi] Hello world", translations["hindi"])
	assert.Equal(t, "Hello world", body["original_text"])
}

func TestTranslateMultiRejectsBadTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets []string
		detail  string
	}{
		{"too many", []string{"hi", "es", "fr", "de", "ja", "ko"}, "maximum 5"},
		{"unsupported", []string{"hindi", "klingon"}, "not supported"},
		{"duplicate alias", []string{"hindi", "hi"}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			w := env.postJSON(t, "/translate/multi", map[string]any{
				"text":             "Hello",
				"target_languages": tt.targets,
			})
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w)["detail"], tt.detail)
		})
	}
}

func TestTranslateMultiFailsWhole(t *testing.T) {
	env := newTestEnv()
	env.translator.err = errors.New("translation failed for es: backend unavailable")

	w := env.postJSON(t, "/translate/multi", map[string]any{
		"text":             "Hello",
		"target_languages": []string{"hindi", "spanish_mexico"},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decodeBody(t, w)
	assert.Contains(t, body["detail"], "Translation failed")
	assert.NotContains(t, body, "translations")
}

func TestTranslateFile(t *testing.T) {
	env := newTestEnv()

	w := env.postFile(t, "/translate/file", "report.txt", "Quarterly results exceeded expectations.",
		map[string][]string{"target_language": {"hindi"}})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Translation job started", body["message"])
	assert.NotEmpty(t, body["job_id"])

	require.Len(t, env.store.createdJobs, 1)
	job := env.store.createdJobs[0]
	assert.Equal(t, "report.txt", job.OriginalFilename)
	assert.Equal(t, "auto", job.SourceLanguage)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Equal(t, "Quarterly results exceeded expectations.", job.SourceText)
	assert.Equal(t, []string{"hindi"}, env.store.createdTargets[0])

	require.Len(t, env.publisher.published, 1)
	assert.Contains(t, string(env.publisher.published[0]), job.JobID)
}

func TestTranslateFileMulti(t *testing.T) {
	env := newTestEnv()

	w := env.postFile(t, "/translate/file/multi", "report.txt", "Some document text.",
		map[string][]string{"target_languages": {"hindi", "spanish_mexico", "french"}})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.store.createdTargets, 1)
	assert.Equal(t, []string{"hindi", "spanish_mexico", "french"}, env.store.createdTargets[0])
}

func TestTranslateFileRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		fields   map[string][]string
		detail   string
	}{
		{
			name:   "missing file",
			fields: map[string][]string{"target_language": {"hindi"}},
			detail: "file is required",
		},
		{
			name:     "wrong extension",
			filename: "report.pdf",
			content:  "text",
			fields:   map[string][]string{"target_language": {"hindi"}},
			detail:   "only .txt files",
		},
		{
			name:     "empty file",
			filename: "report.txt",
			content:  "   ",
			fields:   map[string][]string{"target_language": {"hindi"}},
			detail:   "empty",
		},
		{
			name:     "missing target",
			filename: "report.txt",
			content:  "text",
			fields:   map[string][]string{},
			detail:   "target_language is required",
		},
		{
			name:     "unsupported source",
			filename: "report.txt",
			content:  "text",
			fields:   map[string][]string{"target_language": {"hindi"}, "source_language": {"klingon"}},
			detail:   "not supported",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			w := env.postFile(t, "/translate/file", tt.filename, tt.content, tt.fields)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody(t, w)["detail"], tt.detail)
			assert.Empty(t, env.store.createdJobs)
			assert.Empty(t, env.publisher.published)
		})
	}
}

func TestTranslateFilePublishFailure(t *testing.T) {
	env := newTestEnv()
	env.publisher.err = errors.New("broker unreachable")

	w := env.postFile(t, "/translate/file", "report.txt", "Some text.",
		map[string][]string{"target_language": {"hindi"}})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "enqueue")
}

func seedJob(env *testEnv) *model.Job {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	job := &model.Job{
		JobID:              "7f6e9a40-31cd-4c1a-9a9b-0d2f4f6f8a21",
		OriginalFilename:   "report.txt",
		SourceLanguage:     "auto",
		Status:             domain.JobStatusCompletedWithErrors,
		TotalLanguages:     2,
		ProcessedLanguages: 2,
		ErrorMessage:       sql.NullString{String: "translation failed for es: backend unavailable", Valid: true},
		CreatedAt:          now,
		UpdatedAt:          now.Add(90 * time.Second),
	}
	env.store.jobs[job.JobID] = job
	env.store.files[job.JobID] = []model.File{
		{
			JobID:       job.JobID,
			Language:    "hi",
			Status:      domain.FileStatusCompleted,
			DownloadURL: sql.NullString{String: "https://files.example.com/translations/2026-03-14/report_hi_abc.txt", Valid: true},
		},
		{
			JobID:        job.JobID,
			Language:     "es",
			Status:       domain.FileStatusFailed,
			ErrorMessage: sql.NullString{String: "backend unavailable", Valid: true},
		},
		{
			JobID:       job.JobID,
			Language:    domain.OriginalLanguage,
			Status:      domain.FileStatusCompleted,
			DownloadURL: sql.NullString{String: "https://files.example.com/translations/2026-03-14/report_original_abc.txt", Valid: true},
		},
	}
	return job
}

func TestGetStatus(t *testing.T) {
	env := newTestEnv()
	job := seedJob(env)

	w := env.get(t, "/translation/status/"+job.JobID)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, job.JobID, body["job_id"])
	assert.Equal(t, domain.JobStatusCompletedWithErrors, body["status"])
	assert.Equal(t, float64(2), body["total_languages"])
	assert.Equal(t, float64(2), body["processed_languages"])
	assert.Contains(t, body["error_message"], "backend unavailable")

	perLanguage := body["per_language_status"].(map[string]any)
	assert.Equal(t, domain.FileStatusCompleted, perLanguage["hi"])
	assert.Equal(t, domain.FileStatusFailed, perLanguage["es"])
	assert.NotContains(t, perLanguage, domain.OriginalLanguage)

	files := body["files"].([]any)
	assert.Len(t, files, 3)
}

func TestGetStatusErrors(t *testing.T) {
	env := newTestEnv()

	w := env.get(t, "/translation/status/not-a-uuid")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "UUID")

	w = env.get(t, "/translation/status/11111111-2222-3333-4444-555555555555")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Job not found", decodeBody(t, w)["detail"])
}

func TestDownloadListsAllFiles(t *testing.T) {
	env := newTestEnv()
	job := seedJob(env)

	w := env.get(t, "/download/"+job.JobID)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	files := body["files"].([]any)
	require.Len(t, files, 3)

	byLanguage := make(map[string]map[string]any)
	for _, f := range files {
		entry := f.(map[string]any)
		byLanguage[entry["language"].(string)] = entry
	}
	assert.Contains(t, byLanguage["hi"]["download_url"], "report_hi_")
	assert.Nil(t, byLanguage["es"]["download_url"])
}

func TestDownloadSingleLanguage(t *testing.T) {
	env := newTestEnv()
	job := seedJob(env)

	w := env.get(t, "/download/"+job.JobID+"?language=hi")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "hi", body["language"])
	assert.Contains(t, body["download_url"], "report_hi_")

	w = env.get(t, "/download/"+job.JobID+"?language=es")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "not ready")

	w = env.get(t, "/download/"+job.JobID+"?language=fr")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "not part of this job")
}

func TestGenerateKey(t *testing.T) {
	env := newTestEnv()

	w := env.postJSON(t, "/admin/generate-key", map[string]any{
		"description": "ci pipeline",
		"created_by":  "ops",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	key := body["key"].(string)
	assert.GreaterOrEqual(t, len(key), 43)
	assert.Equal(t, true, body["is_active"])
	assert.Contains(t, env.store.keys, key)
}

func TestListKeys(t *testing.T) {
	env := newTestEnv()
	env.store.keys["key-a"] = &model.APIKey{Key: "key-a", Description: "ci", IsActive: true}
	env.store.keys["key-b"] = &model.APIKey{Key: "key-b", Description: "retired", IsActive: false}

	req := httptest.NewRequest(http.MethodGet, "/admin/list-keys", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var keys []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &keys))
	assert.Len(t, keys, 2)
}

func TestDeactivateKey(t *testing.T) {
	env := newTestEnv()
	env.store.keys["existing-key"] = &model.APIKey{Key: "existing-key", IsActive: true}

	w := env.postJSON(t, "/admin/deactivate-key", map[string]any{"api_key": "existing-key"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.store.keys["existing-key"].IsActive)

	w = env.postJSON(t, "/admin/deactivate-key", map[string]any{"api_key": "unknown"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "API key not found", decodeBody(t, w)["detail"])
}

func TestReadUploadRejectsOversize(t *testing.T) {
	env := newTestEnv()
	big := strings.Repeat("a", (1<<20)+1)

	w := env.postFile(t, "/translate/file", "report.txt", big,
		map[string][]string{"target_language": {"hindi"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "maximum allowed size")
}
