// Package scoring scores gallery projects against a rubric, one at a time.
//
// Each project is fault-isolated: whatever goes wrong while fetching, parsing or
// scoring it becomes an error placeholder in the results, and the batch goes on.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"hackathon-judge/internal/classifier"
	"hackathon-judge/internal/decode"
	"hackathon-judge/internal/llm"
	"hackathon-judge/internal/metrics"
	"hackathon-judge/internal/models"
	"hackathon-judge/internal/parser"
	"hackathon-judge/internal/prompt"
	"hackathon-judge/pkg/logger"
)

var validator = decode.MustValidator("score", decode.ScoreSchema)

// ErrBlockedPage means the host served a bot challenge or sign-in wall instead
// of the project page.
var ErrBlockedPage = errors.New("project page is blocked")

// Fetcher is satisfied by *crawler.HTTPClient.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error)
}

type Scorer struct {
	fetcher   Fetcher
	parser    *parser.Parser
	cls       *classifier.Classifier
	gen       llm.Generator
	charLimit int
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewScorer builds the flow. charLimit bounds the description sent per project;
// m may be nil.
func NewScorer(f Fetcher, p *parser.Parser, gen llm.Generator, charLimit int, l *logger.Logger, m *metrics.Metrics) *Scorer {
	return &Scorer{fetcher: f, parser: p, cls: classifier.New(), gen: gen, charLimit: charLimit, log: l, metrics: m}
}

// ScoreAll returns exactly one result per project, ranked by total descending.
// Projects are processed sequentially. Once ctx is done the remaining projects
// get placeholders carrying the context error.
func (s *Scorer) ScoreAll(ctx context.Context, projects []models.Project, rubric []models.Criterion, model, credential string) []models.ProjectResult {
	results := make([]models.ProjectResult, 0, len(projects))
	for _, p := range projects {
		if err := ctx.Err(); err != nil {
			results = append(results, Failed(p, err))
			continue
		}

		start := time.Now()
		res, err := s.scoreOne(ctx, p, rubric, model, credential)
		if err != nil {
			s.log.Warnw("project scoring failed", "url", p.URL, "error", err.Error())
			res = Failed(p, err)
		}
		s.metrics.RecordProject(err != nil, time.Since(start))
		results = append(results, res)
	}
	Rank(results)
	return results
}

func (s *Scorer) scoreOne(ctx context.Context, p models.Project, rubric []models.Criterion, model, credential string) (res models.ProjectResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error scoring %s: %v", p.URL, rec)
		}
	}()

	body, _, ct, _, err := s.fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return models.ProjectResult{}, err
	}
	defer body.Close()

	page, err := s.parser.ProjectPage(body, ct, p.Name)
	if err != nil {
		return models.ProjectResult{}, fmt.Errorf("parse %s: %w", p.URL, err)
	}
	switch c := s.cls.Classify(page, p.Name); {
	case c.Label == classifier.LabelBlocked:
		return models.ProjectResult{}, fmt.Errorf("%w: %s (%s)", ErrBlockedPage, p.URL, c.Summary())
	case c.Label == classifier.LabelEmpty:
		s.log.Warnw("project page has no text; scoring on title only", "url", p.URL)
	case len(c.Reason) > 0:
		s.log.Warnw("project page mentions interstitial markers; scoring anyway", "url", p.URL, "markers", c.Summary())
	}

	text, err := prompt.Score(rubric, p, page, s.charLimit)
	if err != nil {
		return models.ProjectResult{}, fmt.Errorf("render score prompt: %w", err)
	}

	raw, err := s.gen.Generate(ctx, model, text, credential)
	if err != nil {
		return models.ProjectResult{}, err
	}

	payload, err := decode.Decode(raw)
	if err != nil {
		return models.ProjectResult{}, err
	}
	if verr := validator.Check(payload); verr != nil {
		s.log.Warnw("score payload does not match schema", "url", p.URL, "error", verr.Error())
	}

	items := Items(payload, rubric)
	total := decode.Number(payload["total"])
	if total == 0 {
		total = WeightedTotal(items)
	}

	name := p.Name
	if name == "" {
		name = page.Title
	}
	return models.ProjectResult{Name: name, URL: p.URL, Items: items, Total: total}, nil
}

// Items coerces the "items" field. An item with a zero weight borrows it from
// the rubric criterion with the same name. An unnamed item borrows name and
// weight from the criterion at the same position. A named item the rubric does
// not define keeps what the model sent. Scores and feedback pass through.
func Items(p decode.Payload, rubric []models.Criterion) []models.ScoreItem {
	raw := decode.Objects(p["items"])
	items := make([]models.ScoreItem, 0, len(raw))
	for i, it := range raw {
		item := models.ScoreItem{
			Name:     decode.String(it["name"]),
			Weight:   decode.Number(it["weight"]),
			Score:    decode.Number(it["score"]),
			Feedback: decode.String(it["feedback"]),
		}
		if c, ok := criterionFor(item.Name, i, rubric); ok {
			if item.Name == "" {
				item.Name = c.Name
			}
			if item.Weight == 0 {
				item.Weight = c.Weight
			}
		}
		items = append(items, item)
	}
	return items
}

func criterionFor(name string, idx int, rubric []models.Criterion) (models.Criterion, bool) {
	if name != "" {
		for _, c := range rubric {
			if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
				return c, true
			}
		}
		return models.Criterion{}, false
	}
	if idx < len(rubric) {
		return rubric[idx], true
	}
	return models.Criterion{}, false
}

// WeightedTotal is Σ weight × score.
func WeightedTotal(items []models.ScoreItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Weight * it.Score
	}
	return total
}

// Failed is the placeholder for a project whose processing failed.
func Failed(p models.Project, err error) models.ProjectResult {
	return models.ProjectResult{
		Name:  p.Name,
		URL:   p.URL,
		Items: []models.ScoreItem{},
		Total: 0,
		Error: err.Error(),
	}
}

// Rank sorts results by total, highest first. Ties keep their input order.
func Rank(results []models.ProjectResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total > results[j].Total
	})
}
