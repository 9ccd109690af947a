package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/config"
	"github.com/nnarahchibuike/final-ds-task-ai-news/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "newsai",
	Short: "AI news ingestion and recommendation service",
	Long: "newsai pulls articles from RSS feeds, enriches them with AI summaries,\n" +
		"indexes them in a Redis vector store, and serves similarity-based\n" +
		"recommendations over HTTP.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("newsai %s (commit: %s)\n", version.Version, version.Commit)
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run one ingestion pass: fetch, enrich, index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.GetEnv())
		if err != nil {
			return err
		}
		defer a.close()

		run, err := a.pipeline.Run(withLogger(cmd.Context(), a.logger))
		if err != nil {
			return fmt.Errorf("pipeline run %s: %w", run.RunID, err)
		}
		fmt.Printf("run %s: fetched %d, stored %d (%d duplicates, %d feed errors)\n",
			run.RunID, run.Fetched, run.Stored, run.Duplicates, run.FeedErrors)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every indexed article and reset the seen-set",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.GetEnv())
		if err != nil {
			return err
		}
		defer a.close()

		n, err := a.index.Clear(withLogger(cmd.Context(), a.logger))
		if err != nil {
			return err
		}
		if err := a.seen.Reset(); err != nil {
			return err
		}
		fmt.Printf("deleted %d articles\n", n)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
