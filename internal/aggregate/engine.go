package aggregate

import (
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Sachin7123/mindguard/internal/dataset"
	"github.com/Sachin7123/mindguard/internal/models"
)

// Summary is the result of one aggregation query: the filtered records
// (with the active label column normalized), the label tally, and the
// filtered set size. Counts always sum to Total.
type Summary struct {
	Filtered []models.MergedRecord
	Counts   map[string]int
	Total    int
	Model    models.SentimentModel
}

// Aggregate filters the dataset by the view's subreddit set and optional
// keyword (case-insensitive match against the title; both filters AND),
// then tallies the active model's labels. A model whose label column is
// missing from the dataset schema entirely is a *dataset.SchemaError;
// a record whose cell is merely empty counts as Unknown.
func Aggregate(ds *dataset.Dataset, view models.ViewConfig) (*Summary, error) {
	column, err := labelColumn(view.Model)
	if err != nil {
		return nil, err
	}
	if !ds.HasColumn(column) {
		return nil, &dataset.SchemaError{Column: column}
	}

	subreddits := make(map[string]bool, len(view.Subreddits))
	for _, sub := range view.Subreddits {
		subreddits[sub] = true
	}
	keyword := strings.ToLower(view.Keyword)

	summary := &Summary{
		Counts: make(map[string]int),
		Model:  view.Model,
	}
	for _, record := range ds.Records {
		if len(subreddits) > 0 && !subreddits[record.Subreddit] {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(record.Title), keyword) {
			continue
		}

		label := NormalizeLabel(activeLabel(record, view.Model))
		setActiveLabel(&record, view.Model, label)

		summary.Counts[label]++
		summary.Filtered = append(summary.Filtered, record)
	}
	summary.Total = len(summary.Filtered)

	slog.Info("[Aggregate] View computed",
		slog.String("model", string(view.Model)),
		slog.Int("total", summary.Total))
	return summary, nil
}

// Grouped splits the tally into positive, negative and everything else.
// Derivable from Counts alone; other covers Neutral and Unknown.
func (s *Summary) Grouped() (positive, negative, other int) {
	positive = s.Counts[models.LabelPositive]
	negative = s.Counts[models.LabelNegative]
	other = s.Total - positive - negative
	return positive, negative, other
}

// TopRecent returns the n most recent filtered records, newest first.
// Ties and null timestamps keep their original input order; the null
// timestamps sort last.
func (s *Summary) TopRecent(n int) []models.MergedRecord {
	recent := append([]models.MergedRecord(nil), s.Filtered...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedUTC.After(recent[j].CreatedUTC)
	})
	if n < len(recent) {
		recent = recent[:n]
	}
	return recent
}

// ComparisonRow puts both models' labels for one post side by side.
type ComparisonRow struct {
	Title        string
	LexiconLabel string
	NeuralLabel  string
	Score        int
	CreatedUTC   time.Time
	Subreddit    string
}

// Comparison projects the first n filtered records, in input order, for
// the side-by-side model view.
func (s *Summary) Comparison(n int) []ComparisonRow {
	if n > len(s.Filtered) {
		n = len(s.Filtered)
	}
	rows := make([]ComparisonRow, 0, n)
	for _, record := range s.Filtered[:n] {
		rows = append(rows, ComparisonRow{
			Title:        record.Title,
			LexiconLabel: NormalizeLabel(record.LexiconLabel),
			NeuralLabel:  NormalizeLabel(record.NeuralLabel),
			Score:        record.Score,
			CreatedUTC:   record.CreatedUTC,
			Subreddit:    record.Subreddit,
		})
	}
	return rows
}

// Export serializes the filtered set in the persisted merged schema, so an
// export can be re-ingested as a dataset unchanged.
func (s *Summary) Export(w io.Writer) error {
	return dataset.ExportMerged(w, s.Filtered)
}

// NormalizeLabel case-normalizes a stored label for display and coerces
// anything outside the known label set to Unknown. Out-of-vocabulary
// labels are coerced rather than rejected: the merged dataset is read-only
// by the time a view runs, so a stray value is a display concern, not an
// ingest failure.
func NormalizeLabel(raw string) string {
	if raw == "" {
		return models.LabelUnknown
	}
	label := strings.ToLower(raw)
	label = strings.ToUpper(label[:1]) + label[1:]

	switch label {
	case models.LabelPositive, models.LabelNegative, models.LabelNeutral:
		return label
	}
	return models.LabelUnknown
}

func labelColumn(model models.SentimentModel) (string, error) {
	switch model {
	case models.ModelLexicon:
		return dataset.ColLexiconLabel, nil
	case models.ModelNeural:
		return dataset.ColNeuralLabel, nil
	}
	return "", &dataset.SchemaError{Column: string(model) + "_label"}
}

func activeLabel(record models.MergedRecord, model models.SentimentModel) string {
	if model == models.ModelNeural {
		return record.NeuralLabel
	}
	return record.LexiconLabel
}

func setActiveLabel(record *models.MergedRecord, model models.SentimentModel, label string) {
	if model == models.ModelNeural {
		record.NeuralLabel = label
		return
	}
	record.LexiconLabel = label
}
