
package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"hackathon-judge/internal/models"
)

// ReadProjects reads projects from a CSV (header with "url" and optional "name")
// or NDJSON file. If ext cannot be determined, tries CSV first then NDJSON.
// Repeated URLs are dropped, first occurrence wins.
func ReadProjects(path string) ([]models.Project, error) {
	var (
		projects []models.Project
		err      error
	)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		projects, err = readCSV(path)
	case ".ndjson", ".jsonl":
		projects, err = readNDJSON(path)
	default:
		// try csv then ndjson
		if projects, err = readCSV(path); err != nil || len(projects) == 0 {
			projects, err = readNDJSON(path)
		}
	}
	if err != nil {
		return nil, err
	}
	return dedupe(projects), nil
}

func readCSV(path string) ([]models.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}
	urlCol, nameCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "url":
			urlCol = i
		case "name":
			nameCol = i
		}
	}
	if urlCol == -1 {
		return nil, errors.New("csv must contain a 'url' header column")
	}
	var out []models.Project
	for _, row := range rows[1:] {
		if urlCol >= len(row) {
			continue
		}
		p := models.Project{URL: strings.TrimSpace(row[urlCol])}
		if p.URL == "" {
			continue
		}
		if nameCol >= 0 && nameCol < len(row) {
			p.Name = strings.TrimSpace(row[nameCol])
		}
		out = append(out, p)
	}
	return out, nil
}

func readNDJSON(path string) ([]models.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []models.Project
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// allow raw url or {"name": "...", "url": "..."}
		if strings.HasPrefix(line, "{") {
			var p models.Project
			if err := json.Unmarshal([]byte(line), &p); err == nil && p.URL != "" {
				out = append(out, p)
				continue
			}
		}
		out = append(out, models.Project{URL: line})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no projects found in ndjson")
	}
	return out, nil
}

func dedupe(in []models.Project) []models.Project {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Project, 0, len(in))
	for _, p := range in {
		if _, dup := seen[p.URL]; dup {
			continue
		}
		seen[p.URL] = struct{}{}
		out = append(out, p)
	}
	return out
}

// WriteNDJSON writes each element of items as one JSON line.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// WriteResultsCSV writes one row per result: rank, name, url, total, error,
// then one score column per rubric criterion.
func WriteResultsCSV(w io.Writer, rubric []models.Criterion, results []models.ProjectResult) error {
	cw := csv.NewWriter(w)
	header := []string{"rank", "name", "url", "total", "error"}
	for _, c := range rubric {
		header = append(header, c.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, r := range results {
		row := []string{strconv.Itoa(i + 1), r.Name, r.URL, formatScore(r.Total), r.Error}
		scores := make(map[string]float64, len(r.Items))
		for _, it := range r.Items {
			scores[strings.ToLower(it.Name)] = it.Score
		}
		for _, c := range rubric {
			if s, ok := scores[strings.ToLower(c.Name)]; ok {
				row = append(row, formatScore(s))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProjectsCSV writes name,url rows.
func WriteProjectsCSV(w io.Writer, projects []models.Project) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "url"}); err != nil {
		return err
	}
	for _, p := range projects {
		if err := cw.Write([]string{p.Name, p.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
