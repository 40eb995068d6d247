package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hackathon-judge/internal/config"
	"hackathon-judge/internal/crawler"
	"hackathon-judge/internal/document"
	"hackathon-judge/internal/gallery"
	"hackathon-judge/internal/llm"
	"hackathon-judge/internal/parser"
	"hackathon-judge/internal/rubric"
	"hackathon-judge/internal/scoring"
	"hackathon-judge/pkg/logger"
)

var (
	verbose bool
	model   string
	apiKey  string
	output  string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "judge",
	Short: "Score hackathon gallery projects against a rubric",
	Long: `judge harvests project links from a hackathon gallery, extracts a weighted
rubric from a document, and asks Gemini to score each project against it.

The API key comes from --api-key, GEMINI_API_KEY or JUDGE_GEMINI_API_KEY.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log, err = logger.New(level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "generation model (default from config)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output file; .csv writes CSV, anything else NDJSON/JSON (default stdout)")

	rootCmd.AddCommand(scrapeCmd, rubricCmd, scoreCmd)
}

func main() {
	// Ctrl-C stops scoring; projects not yet reached are reported as cancelled.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// deps builds the shared pipeline pieces from the loaded config.
func deps() (*crawler.HTTPClient, *parser.Parser, *llm.Client) {
	client := crawler.NewHTTPClient(cfg.FetchTimeout(), cfg.DialTimeout(), cfg.SizeCapBytes, cfg.UserAgent)
	gen := llm.New(llm.Config{APIKey: cfg.GeminiAPIKey, DefaultModel: cfg.DefaultModel}, log)
	return client, parser.New(), gen
}

func newHarvester() *gallery.Harvester {
	client, par, _ := deps()
	return gallery.NewHarvester(client, par, log)
}

func newRubricExtractor() *rubric.Extractor {
	_, _, gen := deps()
	return rubric.NewExtractor(document.New(), gen, cfg.RubricCharLimit, log)
}

func newScorer() *scoring.Scorer {
	client, par, gen := deps()
	return scoring.NewScorer(client, par, gen, cfg.DescriptionCharLimit, log, nil)
}

// openOutput returns stdout or the --output file, and whether CSV was asked for.
func openOutput() (io.WriteCloser, bool, error) {
	if output == "" {
		return nopCloser{os.Stdout}, false, nil
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, false, fmt.Errorf("create output: %w", err)
	}
	return f, strings.EqualFold(filepath.Ext(output), ".csv"), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
