package dataset

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Sachin7123/mindguard/internal/models"
)

// Column names of the external dataset contracts. One row per post; the
// merged schema extends the raw schema with the four sentiment columns.
const (
	ColTitle            = "title"
	ColText             = "text"
	ColScore            = "score"
	ColURL              = "url"
	ColCreatedUTC       = "created_utc"
	ColSubreddit        = "subreddit"
	ColLexiconLabel     = "lexicon_label"
	ColLexiconPolarity  = "lexicon_polarity"
	ColNeuralLabel      = "neural_label"
	ColNeuralConfidence = "neural_confidence"
)

var rawColumns = []string{ColTitle, ColText, ColScore, ColURL, ColCreatedUTC, ColSubreddit}

var mergedColumns = []string{
	ColTitle, ColText, ColScore, ColURL, ColCreatedUTC, ColSubreddit,
	ColLexiconLabel, ColLexiconPolarity, ColNeuralLabel, ColNeuralConfidence,
}

// Dataset is a merged dataset together with the set of columns its source
// actually carried. Per-record absence (an empty cell) is distinct from a
// column that is missing from the schema entirely.
type Dataset struct {
	Records []models.MergedRecord
	Columns map[string]bool
}

func (d *Dataset) HasColumn(name string) bool {
	return d.Columns[name]
}

// ReadRawPosts loads the collector's output. A missing required column is
// a *SchemaError; malformed row values are logged as input errors and
// ingested with defaults instead of dropping the row.
func ReadRawPosts(path string) ([]models.RawPost, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[Dataset] failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("[Dataset] failed to read header: %w", err)
	}

	index, err := columnIndex(header, rawColumns)
	if err != nil {
		return nil, err
	}

	var posts []models.RawPost
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[Dataset] failed to read row %d: %w", row, err)
		}

		posts = append(posts, rawPostFromRow(row, fields, index))
	}

	slog.Info("[Dataset] Loaded raw posts",
		slog.String("path", path),
		slog.Int("count", len(posts)))
	return posts, nil
}

// ReadMerged loads a persisted merged dataset. The six raw columns are
// required; the sentiment columns may be absent (a lexicon-only run) and
// their presence is recorded on the returned Dataset.
func ReadMerged(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("[Dataset] failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("[Dataset] failed to read header: %w", err)
	}

	index, err := columnIndex(header, rawColumns)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]bool, len(header))
	for _, name := range header {
		columns[name] = true
	}

	ds := &Dataset{Columns: columns}
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("[Dataset] failed to read row %d: %w", row, err)
		}

		record := models.MergedRecord{RawPost: rawPostFromRow(row, fields, index)}
		record.LexiconLabel = cell(fields, header, ColLexiconLabel)
		record.LexiconPolarity = floatCell(row, fields, header, ColLexiconPolarity)
		record.NeuralLabel = cell(fields, header, ColNeuralLabel)
		record.NeuralConfidence = floatCell(row, fields, header, ColNeuralConfidence)
		ds.Records = append(ds.Records, record)
	}

	slog.Info("[Dataset] Loaded merged dataset",
		slog.String("path", path),
		slog.Int("count", len(ds.Records)))
	return ds, nil
}

// WriteRawPosts persists collector output in the raw schema.
func WriteRawPosts(path string, posts []models.RawPost) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Dataset] failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(rawColumns); err != nil {
		return fmt.Errorf("[Dataset] failed to write header: %w", err)
	}
	for _, post := range posts {
		if err := writer.Write(rawRow(post)); err != nil {
			return fmt.Errorf("[Dataset] failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMerged persists merged records in the full ten-column schema.
func WriteMerged(path string, records []models.MergedRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("[Dataset] failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := ExportMerged(file, records); err != nil {
		return err
	}
	slog.Info("[Dataset] Wrote merged dataset",
		slog.String("path", path),
		slog.Int("count", len(records)))
	return nil
}

// ExportMerged serializes records to w in the merged schema. Reading the
// output back with ReadMerged yields the same rows field for field.
func ExportMerged(w io.Writer, records []models.MergedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(mergedColumns); err != nil {
		return fmt.Errorf("[Dataset] failed to write header: %w", err)
	}

	for _, record := range records {
		row := rawRow(record.RawPost)
		row = append(row,
			record.LexiconLabel,
			formatFloat(record.LexiconPolarity),
			record.NeuralLabel,
			formatFloat(record.NeuralConfidence),
		)
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("[Dataset] failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func rawPostFromRow(row int, fields []string, index map[string]int) models.RawPost {
	post := models.RawPost{
		Title:     fields[index[ColTitle]],
		Body:      fields[index[ColText]],
		URL:       fields[index[ColURL]],
		Subreddit: fields[index[ColSubreddit]],
	}
	post.PostID = assignPostID(post)

	if post.Title == "" && post.Body == "" {
		inputErr := &InputError{Row: row, Field: ColTitle, Err: fmt.Errorf("title and text both empty")}
		slog.Warn("[Dataset] Row has no text, scoring as empty",
			slog.String("error", inputErr.Error()))
	}

	if raw := fields[index[ColScore]]; raw != "" {
		score, err := strconv.Atoi(raw)
		if err != nil {
			inputErr := &InputError{Row: row, Field: ColScore, Err: err}
			slog.Warn("[Dataset] Bad score value, defaulting to 0",
				slog.String("error", inputErr.Error()))
		} else {
			post.Score = score
		}
	}

	// Absent or unparseable timestamps become the null (zero) timestamp.
	if raw := fields[index[ColCreatedUTC]]; raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err == nil {
			post.CreatedUTC = time.Unix(int64(seconds), 0).UTC()
		}
	}

	return post
}

func rawRow(post models.RawPost) []string {
	createdUTC := ""
	if !post.CreatedUTC.IsZero() {
		createdUTC = strconv.FormatInt(post.CreatedUTC.Unix(), 10)
	}
	return []string{
		post.Title,
		post.Body,
		strconv.Itoa(post.Score),
		post.URL,
		createdUTC,
		post.Subreddit,
	}
}

// assignPostID derives a stable opaque id for a row, matching how the
// collector fingerprints posts it has already seen.
func assignPostID(post models.RawPost) string {
	sum := sha256.Sum256([]byte(post.Subreddit + "|" + post.URL + "|" + post.Title))
	return hex.EncodeToString(sum[:])[:16]
}

func columnIndex(header []string, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, &SchemaError{Column: name}
		}
	}
	return index, nil
}

func cell(fields, header []string, column string) string {
	for i, name := range header {
		if name == column && i < len(fields) {
			return fields[i]
		}
	}
	return ""
}

func floatCell(row int, fields, header []string, column string) *float64 {
	raw := cell(fields, header, column)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		inputErr := &InputError{Row: row, Field: column, Err: err}
		slog.Warn("[Dataset] Bad numeric value, treating as absent",
			slog.String("error", inputErr.Error()))
		return nil
	}
	return &value
}

func formatFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
