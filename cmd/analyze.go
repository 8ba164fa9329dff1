package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xhad/conceptube/internal/models"
	"github.com/xhad/conceptube/pkg/llm"
)

func analyzeCMD(cfgPath *string) *cobra.Command {
	var (
		sampleSize int
		summary    bool
		quiet      bool
	)
	var analyze = &cobra.Command{
		Use:   "analyze <youtube-url>",
		Short: "Extract key concepts from a video and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("sample-size") {
				sampleSize = cfg.Concepts.SampleSize
			}
			verbose := cfg.Concepts.Verbose && !quiet
			logger := newLogger(cfg.Log.Level)

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, logger, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			color.Blue("\nFetching transcript for %s\n", args[0])
			docs, err := a.retriever.Retrieve(ctx, args[0], verbose)
			if err != nil {
				return err
			}
			color.Green("✓ Split transcript into %d documents\n", len(docs))

			found, err := a.extractor.Extract(ctx, docs, sampleSize, verbose)
			if err != nil {
				return err
			}
			printConcepts(found)

			if summary {
				color.Blue("\nSummarizing transcript...\n")
				text := llm.NewSummarizer(a.engine, logger).Summarize(ctx, docs)
				if text == nil {
					color.Red("No summary available")
					return nil
				}
				color.Cyan("\nSummary:")
				fmt.Println(*text)
			}
			return nil
		},
	}
	analyze.Flags().IntVarP(&sampleSize, "sample-size", "s", 0, "number of groups to split the transcript into (0 = five)")
	analyze.Flags().BoolVar(&summary, "summary", false, "also print a summary of the whole transcript")
	analyze.Flags().BoolVarP(&quiet, "quiet", "q", false, "skip metadata and cost logging")

	return analyze
}

func printConcepts(groups []models.ConceptMap) {
	if len(groups) == 0 {
		color.Yellow("No key concepts found")
		return
	}

	name := color.New(color.FgGreen, color.Bold).SprintFunc()
	for i, concepts := range groups {
		color.Cyan("\nGroup %d", i+1)
		keys := make([]string, 0, len(concepts))
		for k := range concepts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", name(k), concepts[k])
		}
	}
}
