package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackathon-judge/internal/metrics"
	"hackathon-judge/internal/models"
	"hackathon-judge/internal/session"
	"hackathon-judge/pkg/logger"
)

type fakeHarvester struct {
	projects []models.Project
	err      error
}

func (f *fakeHarvester) Harvest(context.Context, string) ([]models.Project, error) {
	return f.projects, f.err
}

type fakeRubrics struct {
	gotDoc   string
	gotModel string
	gotCred  string
	err      error
}

func (f *fakeRubrics) Extract(_ context.Context, doc []byte, _, model, cred string) ([]models.Criterion, error) {
	f.gotDoc, f.gotModel, f.gotCred = string(doc), model, cred
	if f.err != nil {
		return nil, f.err
	}
	return []models.Criterion{{Name: "Tech", Weight: 1}}, nil
}

type fakeScorer struct{ cred string }

func (f *fakeScorer) ScoreAll(_ context.Context, projects []models.Project, _ []models.Criterion, _, cred string) []models.ProjectResult {
	f.cred = cred
	out := make([]models.ProjectResult, 0, len(projects))
	for _, p := range projects {
		out = append(out, models.ProjectResult{Name: p.Name, URL: p.URL, Items: []models.ScoreItem{}, Error: "fetch failed"})
	}
	return out
}

type harness struct {
	mux       *http.ServeMux
	harvester *fakeHarvester
	rubrics   *fakeRubrics
	scorer    *fakeScorer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := session.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harness{
		mux:       http.NewServeMux(),
		harvester: &fakeHarvester{projects: []models.Project{{Name: "Foo", URL: "https://x.test/project/1"}}},
		rubrics:   &fakeRubrics{},
		scorer:    &fakeScorer{},
	}
	NewServer(h.harvester, h.rubrics, h.scorer, store, logger.Nop(), metrics.New(), 1<<20).Register(h.mux)
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestScrapeGallery(t *testing.T) {
	h := newHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodGet, "/scrape-gallery", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/scrape-gallery?url=https://x.test/gallery", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decodeBody(t, rec)["projects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "Foo", projects[0].(map[string]any)["name"])

	h.harvester.err = errors.New("fetch https://x.test/gallery: http status 403")
	rec = h.do(httptest.NewRequest(http.MethodGet, "/scrape-gallery?url=https://x.test/gallery", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "403")
}

func multipartReq(t *testing.T, field, content string, extra map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "rubric.txt")
		require.NoError(t, err)
		_, _ = fw.Write([]byte(content))
	}
	for k, v := range extra {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/parse-rubric", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseRubric(t *testing.T) {
	h := newHarness(t)

	rec := h.do(multipartReq(t, "", "", map[string]string{"model": "m"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := multipartReq(t, "rubric", "Tech 100%", map[string]string{"model": "gemini-x"})
	req.Header.Set(CredentialHeader, "header-key")
	rec = h.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody(t, rec)["rubric"], 1)
	assert.Equal(t, "Tech 100%", h.rubrics.gotDoc)
	assert.Equal(t, "gemini-x", h.rubrics.gotModel)
	assert.Equal(t, "header-key", h.rubrics.gotCred)

	h.rubrics.err = errors.New("decode model output: boom")
	rec = h.do(multipartReq(t, "rubric", "x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestScore(t *testing.T) {
	h := newHarness(t)

	post := func(body string) *httptest.ResponseRecorder {
		return h.do(httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body)))
	}

	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"projects":[],"rubric":[{"name":"T","weight":1}]}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"projects":[{"name":"a","url":"u"}]}`).Code)

	rec := post(`{"projects":[{"name":"a","url":"u1"},{"name":"b","url":"u2"}],"rubric":[{"name":"T","weight":1}],"apiKey":"body-key"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	results := decodeBody(t, rec)["results"].([]any)
	assert.Len(t, results, 2)
	assert.Equal(t, "fetch failed", results[0].(map[string]any)["error"])
	assert.Equal(t, "body-key", h.scorer.cred)
}

func TestScoreBodyLimit(t *testing.T) {
	h := newHarness(t)

	body := `{"projects":[{"name":"` + strings.Repeat("a", 1<<20) + `","url":"u"}],"rubric":[{"name":"T","weight":1}],"apiKey":"k"}`
	rec := h.do(httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "exceeds")
	assert.Empty(t, h.scorer.cred, "oversized requests never reach the scorer")
}

func TestSessions(t *testing.T) {
	h := newHarness(t)

	rec := h.do(httptest.NewRequest(http.MethodPost, "/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	put := httptest.NewRequest(http.MethodPut, "/sessions/"+id, strings.NewReader(`{"galleryUrl":"https://x.test/gallery","rubric":[{"name":"Tech","weight":1}]}`))
	require.Equal(t, http.StatusOK, h.do(put).Code)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "https://x.test/gallery", body["galleryUrl"])
	assert.Len(t, body["rubric"], 1)

	rec = h.do(httptest.NewRequest(http.MethodGet, "/sessions/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusOK, h.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	h.do(httptest.NewRequest(http.MethodGet, "/scrape-gallery", nil))
	rec := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `judge_http_requests_total{code="400",endpoint="scrape-gallery",method="GET"} 1`)
}

func TestWrongMethod(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/score", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
