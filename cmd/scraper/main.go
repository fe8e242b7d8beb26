package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/Sachin7123/mindguard/config"
	"github.com/Sachin7123/mindguard/internal/clients"
	"github.com/Sachin7123/mindguard/internal/dataset"
	"github.com/Sachin7123/mindguard/internal/logging"
	"github.com/Sachin7123/mindguard/internal/models"
)

func main() {
	subreddits := flag.String("subreddits", "depression,anxiety", "comma-separated subreddits to collect")
	limit := flag.Int("limit", 100, "posts per subreddit")
	out := flag.String("out", "", "raw dataset path (defaults to RAW_DATASET_PATH)")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	path := *out
	if path == "" {
		path = os.Getenv("RAW_DATASET_PATH")
	}
	if path == "" {
		path = "data/reddit_posts.csv"
	}

	ctx := context.Background()
	valkey := clients.InitValkey()
	defer clients.CloseValkey()

	reddit := clients.GetRedditClient()

	var collected []models.RawPost
	for _, subreddit := range strings.Split(*subreddits, ",") {
		subreddit = strings.TrimSpace(subreddit)
		if subreddit == "" {
			continue
		}

		posts, err := reddit.FetchHotPosts(subreddit, *limit)
		if err != nil {
			slog.Error("[Scraper] Failed to fetch subreddit",
				slog.String("subreddit", subreddit),
				slog.String("error", err.Error()))
			continue
		}

		for _, post := range posts {
			if valkey.IsCollected(ctx, post.PostID) {
				continue
			}
			collected = append(collected, post)
			if err := valkey.MarkCollected(ctx, post.PostID); err != nil {
				slog.Warn("[Scraper] Failed to mark post as collected",
					slog.String("post_id", post.PostID),
					slog.String("error", err.Error()))
			}
		}
	}

	if err := dataset.WriteRawPosts(path, collected); err != nil {
		slog.Error("[Scraper] Failed to write raw dataset",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("[Scraper] Collection complete",
		slog.Int("posts", len(collected)),
		slog.String("path", path))
}
