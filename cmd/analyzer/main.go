package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Sachin7123/mindguard/config"
	"github.com/Sachin7123/mindguard/internal/dataset"
	"github.com/Sachin7123/mindguard/internal/db"
	"github.com/Sachin7123/mindguard/internal/logging"
	"github.com/Sachin7123/mindguard/internal/pipeline"
	"github.com/Sachin7123/mindguard/internal/sentiment"
)

func main() {
	in := flag.String("in", "", "raw dataset path (defaults to RAW_DATASET_PATH)")
	out := flag.String("out", "", "merged dataset path (defaults to MERGED_DATASET_PATH)")
	lexiconOnly := flag.Bool("lexicon-only", false, "skip the neural classifier")
	store := flag.Bool("store", false, "also write merged records to DynamoDB")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	rawPath := pathOr(*in, "RAW_DATASET_PATH", "data/reddit_posts.csv")
	mergedPath := pathOr(*out, "MERGED_DATASET_PATH", "data/reddit_sentiment.csv")

	posts, err := dataset.ReadRawPosts(rawPath)
	if err != nil {
		slog.Error("[Analyzer] Failed to load raw dataset",
			slog.String("path", rawPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	lexicon := sentiment.NewLexiconScorer()

	// Neural model load is the only fatal scoring failure, and only when
	// neural scoring was requested.
	var neural pipeline.Neural
	if !*lexiconOnly {
		modelID := os.Getenv("SENTIMENT_MODEL")
		if modelID == "" {
			modelID = sentiment.DefaultNeuralModel
		}
		modelDir := os.Getenv("MODEL_DIR")
		if modelDir == "" {
			modelDir = sentiment.DefaultModelDir
		}

		classifier, err := sentiment.LoadNeuralClassifier(modelID, modelDir)
		if err != nil {
			slog.Error("[Analyzer] Neural model unavailable",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer classifier.Close()
		neural = classifier
	}

	workers := pipeline.DefaultWorkers
	if raw := os.Getenv("SENTIMENT_WORKERS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			workers = parsed
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopChan
		slog.Warn("[Analyzer] Shutdown requested, finishing in-flight records...")
		cancel()
	}()

	runner := pipeline.NewRunner(lexicon, neural, workers)
	merged, runErr := runner.Run(ctx, posts)

	// Records scored before an abort are still valid; persist whatever
	// finished.
	if err := dataset.WriteMerged(mergedPath, merged); err != nil {
		slog.Error("[Analyzer] Failed to write merged dataset",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *store && len(merged) > 0 {
		db.InitDynamoDB()
		if err := db.BatchInsertMergedRecords(context.Background(), merged); err != nil {
			slog.Error("[Analyzer] Failed to store merged records",
				slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		slog.Warn("[Analyzer] Run aborted, partial dataset written",
			slog.Int("scored", len(merged)),
			slog.Int("total", len(posts)))
		return
	}

	slog.Info("[Analyzer] Sentiment analysis complete",
		slog.Int("records", len(merged)),
		slog.String("path", mergedPath))
}

func pathOr(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return fallback
}
