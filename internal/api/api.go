// Package api serves the judge's HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hackathon-judge/internal/metrics"
	"hackathon-judge/internal/models"
	"hackathon-judge/internal/session"
	"hackathon-judge/pkg/logger"
)

// CredentialHeader lets a caller supply their own Gemini key per request.
const CredentialHeader = "X-Gemini-Api-Key"

type Harvester interface {
	Harvest(ctx context.Context, pageURL string) ([]models.Project, error)
}

type RubricExtractor interface {
	Extract(ctx context.Context, doc []byte, filename, model, credential string) ([]models.Criterion, error)
}

type Scorer interface {
	ScoreAll(ctx context.Context, projects []models.Project, rubric []models.Criterion, model, credential string) []models.ProjectResult
}

type Server struct {
	harvester Harvester
	rubrics   RubricExtractor
	scorer    Scorer
	sessions  session.Store
	log       *logger.Logger
	metrics   *metrics.Metrics
	maxUpload int64
}

// NewServer wires the handlers. sessions and m may be nil; without a store the
// /sessions routes are not registered.
func NewServer(h Harvester, r RubricExtractor, s Scorer, sessions session.Store, l *logger.Logger, m *metrics.Metrics, maxUpload int64) *Server {
	return &Server{harvester: h, rubrics: r, scorer: s, sessions: sessions, log: l, metrics: m, maxUpload: maxUpload}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /scrape-gallery", s.metrics.Middleware("scrape-gallery", s.handleScrape))
	mux.HandleFunc("POST /parse-rubric", s.metrics.Middleware("parse-rubric", s.handleParseRubric))
	mux.HandleFunc("POST /score", s.metrics.Middleware("score", s.handleScore))
	if s.sessions != nil {
		mux.HandleFunc("POST /sessions", s.metrics.Middleware("sessions", s.handleCreateSession))
		mux.HandleFunc("GET /sessions/{id}", s.metrics.Middleware("sessions", s.handleGetSession))
		mux.HandleFunc("PUT /sessions/{id}", s.metrics.Middleware("sessions", s.handlePutSession))
	}
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// GET /scrape-gallery?url=https://...
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	pageURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if pageURL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}
	projects, err := s.harvester.Harvest(r.Context(), pageURL)
	if err != nil {
		s.log.Errorf("scrape %s: %v", pageURL, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RecordGallery(len(projects))
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// POST /parse-rubric (multipart: rubric=<file>, model=<optional>)
func (s *Server) handleParseRubric(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "multipart parse error")
		return
	}
	f, hdr, err := r.FormFile("rubric")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part 'rubric' required")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	rubric, err := s.rubrics.Extract(r.Context(), data, hdr.Filename, r.FormValue("model"), credential(r, r.FormValue("apiKey")))
	if err != nil {
		s.log.Errorf("parse rubric %s: %v", hdr.Filename, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rubric": rubric})
}

type scoreReq struct {
	Projects []models.Project   `json:"projects"`
	Rubric   []models.Criterion `json:"rubric"`
	Model    string             `json:"model,omitempty"`
	APIKey   string             `json:"apiKey,omitempty"`
}

// POST /score  { "projects": [...], "rubric": [...], "model": "..." }
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Errorf("score: %v", rec)
			writeError(w, http.StatusInternalServerError, fmt.Sprint(rec))
		}
	}()

	var req scoreReq
	if !s.decodeBody(w, r, &req) {
		return
	}
	if len(req.Projects) == 0 || len(req.Rubric) == 0 {
		writeError(w, http.StatusBadRequest, "projects and rubric are required")
		return
	}

	start := time.Now()
	results := s.scorer.ScoreAll(r.Context(), req.Projects, req.Rubric, req.Model, credential(r, req.APIKey))
	s.log.Infow("scored projects", "projects", len(req.Projects), "elapsed", time.Since(start).String())
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Save(r.Context(), session.NewState())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	st, err := s.sessions.Load(r.Context(), r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	var st session.State
	if !s.decodeBody(w, r, &st) {
		return
	}
	st.ID = r.PathValue("id")
	saved, err := s.sessions.Save(r.Context(), st)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// decodeBody reads a JSON body of at most maxUpload bytes into v and writes the
// error response itself when it cannot.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("payload exceeds %d bytes", tooBig.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

// credential prefers the header, then the request field.
func credential(r *http.Request, field string) string {
	if h := strings.TrimSpace(r.Header.Get(CredentialHeader)); h != "" {
		return h
	}
	return strings.TrimSpace(field)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// LogRequests logs method, path and latency for every request.
func LogRequests(l *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		l.Infof("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
