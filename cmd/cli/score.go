package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hackathon-judge/internal/ioformats"
	"hackathon-judge/internal/models"
)

var (
	scoreGallery  string
	scoreProjects string
	scoreRubric   string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score every project and print a ranked table",
	Example: `  judge score --gallery https://myhack.devpost.com/project-gallery --rubric rubric.pdf -o results.csv
  judge score --projects projects.csv --rubric rubric.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (scoreGallery == "") == (scoreProjects == "") {
			return errors.New("exactly one of --gallery or --projects is required")
		}

		var (
			projects []models.Project
			err      error
		)
		if scoreGallery != "" {
			projects, err = newHarvester().Harvest(cmd.Context(), scoreGallery)
		} else {
			projects, err = ioformats.ReadProjects(scoreProjects)
		}
		if err != nil {
			return fmt.Errorf("load projects: %w", err)
		}
		if len(projects) == 0 {
			return errors.New("no projects found")
		}

		criteria, err := loadRubric(cmd, scoreRubric)
		if err != nil {
			return err
		}
		if len(criteria) == 0 {
			return errors.New("rubric has no criteria")
		}

		results := newScorer().ScoreAll(cmd.Context(), projects, criteria, model, apiKey)

		w, asCSV, err := openOutput()
		if err != nil {
			return err
		}
		defer w.Close()
		if asCSV {
			return ioformats.WriteResultsCSV(w, criteria, results)
		}
		return ioformats.WriteNDJSON(w, results)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreGallery, "gallery", "", "gallery page URL to harvest")
	scoreCmd.Flags().StringVar(&scoreProjects, "projects", "", "CSV or NDJSON file of projects (name,url)")
	scoreCmd.Flags().StringVar(&scoreRubric, "rubric", "", "rubric document, or a rubric JSON written by 'judge rubric'")
	_ = scoreCmd.MarkFlagRequired("rubric")
}
