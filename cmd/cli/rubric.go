package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"hackathon-judge/internal/models"
)

var rubricFile string

var rubricCmd = &cobra.Command{
	Use:   "rubric",
	Short: "Extract weighted criteria from a rubric document (PDF or text)",
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := loadRubric(cmd, rubricFile)
		if err != nil {
			return err
		}
		w, _, err := openOutput()
		if err != nil {
			return err
		}
		defer w.Close()
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"rubric": criteria})
	},
}

func init() {
	rubricCmd.Flags().StringVarP(&rubricFile, "file", "f", "", "rubric document")
	_ = rubricCmd.MarkFlagRequired("file")
}

// loadRubric accepts either a document to extract from or a JSON file that is
// already a rubric ({"rubric": [...]}, as written by this command).
func loadRubric(cmd *cobra.Command, path string) ([]models.Criterion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rubric: %w", err)
	}
	if filepath.Ext(path) == ".json" {
		var saved struct {
			Rubric []models.Criterion `json:"rubric"`
		}
		if err := json.Unmarshal(data, &saved); err == nil && len(saved.Rubric) > 0 {
			return saved.Rubric, nil
		}
	}
	criteria, err := newRubricExtractor().Extract(cmd.Context(), data, filepath.Base(path), model, apiKey)
	if err != nil {
		return nil, err
	}
	log.Infof("extracted %d criteria from %s", len(criteria), path)
	return criteria, nil
}
