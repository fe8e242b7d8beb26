package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Sachin7123/mindguard/internal/models"
	"github.com/Sachin7123/mindguard/internal/normalize"
)

const DefaultWorkers = 4

// Lexicon is the runner's view of the lexicon scorer.
type Lexicon interface {
	Score(text string) models.SentimentResult
}

// Neural is the runner's view of the neural classifier.
type Neural interface {
	Score(text string) (models.SentimentResult, error)
}

// Runner scores a bounded batch of posts with both models and merges the
// results. Either scorer may be nil; the merged fields for that side then
// hold the Unknown sentinel for every record.
type Runner struct {
	lexicon Lexicon
	neural  Neural
	workers int
}

func NewRunner(lexicon Lexicon, neural Neural, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{lexicon: lexicon, neural: neural, workers: workers}
}

// Run normalizes each post once, feeds the same normalized text to both
// scorers, and merges the verdicts. Scoring fans out over the worker pool;
// output order always matches input order. When ctx is canceled, no new
// records are picked up and Run returns the records that finished scoring
// (each fully merged) together with ctx.Err().
func (r *Runner) Run(ctx context.Context, posts []models.RawPost) ([]models.MergedRecord, error) {
	results := make([]*models.MergedRecord, len(posts))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					// Drain without scoring; in-flight records still finish.
					continue
				default:
				}
				record := r.scoreOne(posts[idx])
				results[idx] = &record
			}
		}()
	}

feed:
	for idx := range posts {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	merged := make([]models.MergedRecord, 0, len(posts))
	for _, record := range results {
		if record != nil {
			merged = append(merged, *record)
		}
	}

	if err := ctx.Err(); err != nil {
		slog.Warn("[Runner] Batch aborted",
			slog.Int("scored", len(merged)),
			slog.Int("total", len(posts)))
		return merged, err
	}

	slog.Info("[Runner] Batch scored", slog.Int("records", len(merged)))
	return merged, nil
}

// scoreOne produces exactly one merged record per post. A scorer error or
// panic degrades that record to the Unknown sentinel instead of failing
// the batch.
func (r *Runner) scoreOne(post models.RawPost) (record models.MergedRecord) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("[Runner] Scoring panicked, using sentinel",
				slog.String("post_id", post.PostID),
				slog.Any("panic", rec))
			record = Merge(post, nil, nil)
		}
	}()

	text := normalize.Clean(post.Title, post.Body)

	var lexResult, neuResult *models.SentimentResult
	if r.lexicon != nil {
		result := r.lexicon.Score(text)
		lexResult = &result
	}
	if r.neural != nil {
		result, err := r.neural.Score(text)
		if err != nil {
			slog.Warn("[Runner] Neural scoring failed, using sentinel",
				slog.String("post_id", post.PostID),
				slog.String("error", err.Error()))
		} else {
			neuResult = &result
		}
	}

	return Merge(post, lexResult, neuResult)
}
