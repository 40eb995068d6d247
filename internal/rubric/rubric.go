// Package rubric extracts weighted judging criteria from an uploaded document.
package rubric

import (
	"context"
	"fmt"

	"hackathon-judge/internal/decode"
	"hackathon-judge/internal/document"
	"hackathon-judge/internal/llm"
	"hackathon-judge/internal/models"
	"hackathon-judge/internal/prompt"
	"hackathon-judge/pkg/logger"
)

var validator = decode.MustValidator("rubric", decode.RubricSchema)

type Extractor struct {
	docs      document.Extractor
	gen       llm.Generator
	charLimit int
	log       *logger.Logger
}

// NewExtractor builds the flow. charLimit bounds how much document text reaches
// the prompt.
func NewExtractor(docs document.Extractor, gen llm.Generator, charLimit int, l *logger.Logger) *Extractor {
	return &Extractor{docs: docs, gen: gen, charLimit: charLimit, log: l}
}

// Extract returns the criteria found in doc, possibly none. Any failure along the
// way is returned as is; there is no partial result.
func (e *Extractor) Extract(ctx context.Context, doc []byte, filename, model, credential string) ([]models.Criterion, error) {
	text, err := e.docs.ExtractText(doc, filename)
	if err != nil {
		return nil, fmt.Errorf("extract rubric text: %w", err)
	}

	p, err := prompt.Rubric(text, e.charLimit)
	if err != nil {
		return nil, fmt.Errorf("render rubric prompt: %w", err)
	}

	raw, err := e.gen.Generate(ctx, model, p, credential)
	if err != nil {
		return nil, err
	}

	payload, err := decode.Decode(raw)
	if err != nil {
		return nil, err
	}
	if verr := validator.Check(payload); verr != nil {
		e.log.Warnw("rubric payload does not match schema", "file", filename, "error", verr.Error())
	}

	return Criteria(payload), nil
}

// Criteria coerces a decoded payload into criteria. A missing or malformed
// "criteria" field yields an empty rubric.
func Criteria(p decode.Payload) []models.Criterion {
	entries := decode.Objects(p["criteria"])
	out := make([]models.Criterion, 0, len(entries))
	for _, c := range entries {
		out = append(out, models.Criterion{
			Name:   decode.String(c["name"]),
			Weight: decode.Number(c["weight"]),
		})
	}
	return out
}
