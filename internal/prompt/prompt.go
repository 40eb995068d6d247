// Package prompt renders the instructions sent to the generation service.
package prompt

import (
	"bytes"
	"strconv"
	"text/template"
	"unicode/utf8"

	"hackathon-judge/internal/models"
)

var rubricTmpl = template.Must(template.New("rubric").Parse(`You are helping hackathon judges. Read the judging rubric document below and extract its scoring criteria.

Return STRICT JSON only, with no prose, in exactly this shape:
{"criteria": [{"name": "<criterion name>", "weight": <number between 0 and 1>}]}

Rules:
- One entry per distinct criterion, in the order the document lists them.
- Weights must sum to approximately 1. Convert percentages or points into fractions.
- If the document gives no weights, split them evenly.

Rubric document:
"""
{{.Document}}
"""
`))

var scoreTmpl = template.Must(template.New("score").Funcs(template.FuncMap{
	"weight": func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
}).Parse(`You are a fair, strict hackathon judge. Score the project below against each rubric criterion.

Rubric (use these names and weights exactly as given; do NOT renormalize the weights):
{{range .Rubric}}- {{.Name}} (weight {{weight .Weight}})
{{end}}
Project:
Title: {{.Title}}
URL: {{.URL}}
Description:
"""
{{.Description}}
"""

Return STRICT JSON only, with no prose, in exactly this shape:
{"items": [{"name": "<criterion name>", "weight": <weight as given>, "score": <0-100>, "feedback": "<one or two sentences>"}], "total": <sum of weight*score>}

Every score must be a number from 0 to 100. Include one item per rubric criterion, in rubric order.
`))

// Rubric renders the rubric extraction prompt. document is cut to limit characters.
func Rubric(document string, limit int) (string, error) {
	var buf bytes.Buffer
	err := rubricTmpl.Execute(&buf, struct{ Document string }{Document: Truncate(document, limit)})
	return buf.String(), err
}

// Score renders the per-project scoring prompt. description is cut to limit characters.
func Score(rubric []models.Criterion, project models.Project, page models.ProjectPage, limit int) (string, error) {
	var buf bytes.Buffer
	err := scoreTmpl.Execute(&buf, struct {
		Rubric      []models.Criterion
		Title       string
		URL         string
		Description string
	}{
		Rubric:      rubric,
		Title:       page.Title,
		URL:         project.URL,
		Description: Truncate(page.Description, limit),
	})
	return buf.String(), err
}

// Truncate keeps the first n characters (runes) of s. Longer input is cut silently.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
