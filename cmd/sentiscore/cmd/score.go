package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mfenderov/sentiscore/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	scoreFormat   string
	scoreStrategy string
	scoreNotify   bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [keyword]",
	Short: "Score a single keyword",
	Long: `Fetch the review page for a keyword and print its score together with
the rating of every extracted fragment.

Examples:
  # Score a business
  sentiscore score tartine-bakery-san-francisco

  # Try another extraction strategy
  sentiscore score tartine-bakery-san-francisco --strategy comment-class/v2

  # JSON output for scripting
  sentiscore score tartine-bakery-san-francisco --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreFormat, "format", "text", "Output format: text or json")
	scoreCmd.Flags().StringVar(&scoreStrategy, "strategy", "", "Extraction strategy (overrides extractor.strategy)")
	scoreCmd.Flags().BoolVar(&scoreNotify, "notify", false, "Send the configured e-mail notification")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	if scoreStrategy != "" {
		cfg.Extractor.Strategy = scoreStrategy
	}

	a, err := buildApp(cfg, scoreNotify)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(ctx, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.KindOf(err), err)
	}

	out := cmd.OutOrStdout()
	if scoreFormat == "json" {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Keyword:   %s\n", result.Keyword)
	fmt.Fprintf(out, "URL:       %s\n", result.URL)
	fmt.Fprintf(out, "Strategy:  %s\n", result.Strategy)
	fmt.Fprintf(out, "Score:     %.2f / 10 (%d fragments)\n\n", result.Score, len(result.Ratings))
	for i, rating := range result.Ratings {
		text := []rune(result.Fragments[i])
		if len(text) > 100 {
			text = append(text[:100], []rune("...")...)
		}
		fmt.Fprintf(out, "[%d] %s\n", rating, string(text))
	}
	return nil
}
