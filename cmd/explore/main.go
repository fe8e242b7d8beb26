package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Sachin7123/mindguard/config"
	"github.com/Sachin7123/mindguard/internal/aggregate"
	"github.com/Sachin7123/mindguard/internal/dataset"
	"github.com/Sachin7123/mindguard/internal/db"
	"github.com/Sachin7123/mindguard/internal/logging"
	"github.com/Sachin7123/mindguard/internal/models"
)

func main() {
	model := flag.String("model", "lexicon", "active sentiment model: lexicon or neural")
	subreddits := flag.String("subreddits", "", "comma-separated subreddit filter (default: all)")
	keyword := flag.String("keyword", "", "case-insensitive keyword match against titles")
	top := flag.Int("top", 25, "preview size")
	export := flag.String("export", "", "write the filtered set to this CSV path")
	fromDynamo := flag.Bool("from-dynamodb", false, "load the dataset from DynamoDB instead of the merged CSV")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ds, err := loadDataset(*fromDynamo)
	if err != nil {
		slog.Error("[Explore] Failed to load merged dataset",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	view := models.ViewConfig{
		Model:   models.SentimentModel(*model),
		Keyword: *keyword,
	}
	for _, subreddit := range strings.Split(*subreddits, ",") {
		if subreddit = strings.TrimSpace(subreddit); subreddit != "" {
			view.Subreddits = append(view.Subreddits, subreddit)
		}
	}

	summary, err := aggregate.Aggregate(ds, view)
	if err != nil {
		var schemaErr *dataset.SchemaError
		if errors.As(err, &schemaErr) {
			slog.Error("[Explore] Dataset does not carry the requested column",
				slog.String("column", schemaErr.Column))
		} else {
			slog.Error("[Explore] Aggregation failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	printSummary(summary, *top)

	if *export != "" {
		file, err := os.Create(*export)
		if err != nil {
			slog.Error("[Explore] Failed to create export file",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer file.Close()

		if err := summary.Export(file); err != nil {
			slog.Error("[Explore] Export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("[Explore] Filtered set exported",
			slog.String("path", *export),
			slog.Int("records", summary.Total))
	}
}

func loadDataset(fromDynamo bool) (*dataset.Dataset, error) {
	if fromDynamo {
		db.InitDynamoDB()
		return db.ScanMergedRecords(context.Background())
	}

	path := os.Getenv("MERGED_DATASET_PATH")
	if path == "" {
		path = "data/reddit_sentiment.csv"
	}
	return dataset.ReadMerged(path)
}

func printSummary(summary *aggregate.Summary, top int) {
	positive, negative, other := summary.Grouped()

	fmt.Printf("Model: %s\n", summary.Model)
	fmt.Printf("Total: %d  Positive: %d  Negative: %d  Other: %d\n\n",
		summary.Total, positive, negative, other)

	fmt.Println("Label distribution:")
	for label, count := range summary.Counts {
		fmt.Printf("  %-10s %d\n", label, count)
	}

	fmt.Printf("\nMost recent posts (top %d):\n", top)
	for _, record := range summary.TopRecent(top) {
		timestamp := "-"
		if !record.CreatedUTC.IsZero() {
			timestamp = record.CreatedUTC.Format("2006-01-02 15:04")
		}
		label := record.LexiconLabel
		if summary.Model == models.ModelNeural {
			label = record.NeuralLabel
		}
		fmt.Printf("  [%s] %-8s r/%-14s %s\n", timestamp, label, record.Subreddit, record.Title)
	}

	fmt.Printf("\nModel comparison (first %d):\n", top)
	for _, row := range summary.Comparison(top) {
		fmt.Printf("  lexicon=%-8s neural=%-8s r/%-14s %s\n",
			row.LexiconLabel, row.NeuralLabel, row.Subreddit, row.Title)
	}
}
