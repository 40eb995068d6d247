package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hackathon-judge/internal/api"
	"hackathon-judge/internal/config"
	"hackathon-judge/internal/crawler"
	"hackathon-judge/internal/document"
	"hackathon-judge/internal/gallery"
	"hackathon-judge/internal/llm"
	"hackathon-judge/internal/metrics"
	"hackathon-judge/internal/parser"
	"hackathon-judge/internal/rubric"
	"hackathon-judge/internal/scoring"
	"hackathon-judge/internal/session"
	"hackathon-judge/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	if cfg.GeminiAPIKey == "" {
		l.Warnf("no GEMINI_API_KEY configured; requests must supply their own key")
	}

	m := metrics.New()
	client := crawler.NewHTTPClient(cfg.FetchTimeout(), cfg.DialTimeout(), cfg.SizeCapBytes, cfg.UserAgent)
	par := parser.New()
	gen := llm.New(llm.Config{APIKey: cfg.GeminiAPIKey, DefaultModel: cfg.DefaultModel}, l)
	gen.OnOutcome(m.RecordGenerate)

	var sessions session.Store
	if cfg.SessionDB != "" {
		store, err := session.OpenSQLite(context.Background(), cfg.SessionDB)
		if err != nil {
			l.Errorf("session store disabled: %v", err)
		} else {
			defer store.Close()
			sessions = store
		}
	}

	srvAPI := api.NewServer(
		gallery.NewHarvester(client, par, l),
		rubric.NewExtractor(document.New(), gen, cfg.RubricCharLimit, l),
		scoring.NewScorer(client, par, gen, cfg.DescriptionCharLimit, l, m),
		sessions, l, m, cfg.MaxUploadBytes,
	)
	mux := http.NewServeMux()
	srvAPI.Register(mux)

	// Scoring a whole gallery is sequential and can take minutes, so there is
	// no write timeout.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LogRequests(l, mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		l.Infof("server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Infof("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Infof("bye")
}
