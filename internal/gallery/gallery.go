// Package gallery discovers project links on a hackathon gallery listing.
package gallery

import (
	"context"
	"io"
	"time"

	"hackathon-judge/internal/models"
	"hackathon-judge/internal/parser"
	"hackathon-judge/pkg/logger"
)

// Fetcher is satisfied by *crawler.HTTPClient.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error)
}

type Harvester struct {
	fetcher Fetcher
	parser  *parser.Parser
	log     *logger.Logger
}

func NewHarvester(f Fetcher, p *parser.Parser, l *logger.Logger) *Harvester {
	return &Harvester{fetcher: f, parser: p, log: l}
}

// Harvest fetches pageURL and returns the project links found on it, deduplicated
// by absolute URL. This is a heuristic and may miss projects on unusual markup.
func (h *Harvester) Harvest(ctx context.Context, pageURL string) ([]models.Project, error) {
	body, _, ct, fetchDur, err := h.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	// Relative links resolve against the requested URL, not the redirect target.
	projects, err := h.parser.ProjectLinks(body, ct, pageURL)
	if err != nil {
		return nil, err
	}
	h.log.Infow("gallery harvested", "url", pageURL, "projects", len(projects), "fetchMs", fetchDur.Milliseconds())
	return projects, nil
}
