package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hackathon-judge/internal/ioformats"
)

var scrapeURL string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "List the projects linked from a gallery page",
	Example: `  judge scrape --url https://myhack.devpost.com/project-gallery
  judge scrape --url https://myhack.devpost.com/project-gallery -o projects.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := newHarvester().Harvest(cmd.Context(), scrapeURL)
		if err != nil {
			return err
		}
		w, asCSV, err := openOutput()
		if err != nil {
			return err
		}
		defer w.Close()
		if asCSV {
			err = ioformats.WriteProjectsCSV(w, projects)
		} else {
			err = ioformats.WriteNDJSON(w, projects)
		}
		if err != nil {
			return fmt.Errorf("write projects: %w", err)
		}
		log.Infof("found %d projects", len(projects))
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "gallery page URL")
	_ = scrapeCmd.MarkFlagRequired("url")
}
