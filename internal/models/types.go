package models

// Project is a gallery entry. URL is its identity.
type Project struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Criterion is one weighted rubric line. Weights are expected to sum to about 1
// but nothing enforces it.
type Criterion struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type ScoreItem struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// ProjectResult is the outcome of scoring one project. A non-empty Error marks
// a placeholder: Items is empty and Total is 0.
type ProjectResult struct {
	Name  string      `json:"name"`
	URL   string      `json:"url"`
	Items []ScoreItem `json:"items"`
	Total float64     `json:"total"`
	Error string      `json:"error,omitempty"`
}

// ProjectPage is what the scorer reads off a project's page.
type ProjectPage struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// DocumentTitle is the <title> text, kept for interstitial detection.
	DocumentTitle string `json:"documentTitle,omitempty"`
}
