package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sachin7123/mindguard/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func floatPtr(v float64) *float64 { return &v }

func TestReadRawPosts(t *testing.T) {
	path := writeFile(t, "raw.csv",
		"title,text,score,url,created_utc,subreddit\n"+
			"I love my life,feeling great,42,https://reddit.com/r/happy/1,1681000000,happy\n"+
			"I hate everything,,7,https://reddit.com/r/depression/2,1681000500,depression\n")

	posts, err := ReadRawPosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "I love my life", posts[0].Title)
	assert.Equal(t, "feeling great", posts[0].Body)
	assert.Equal(t, 42, posts[0].Score)
	assert.Equal(t, "happy", posts[0].Subreddit)
	assert.Equal(t, time.Unix(1681000000, 0).UTC(), posts[0].CreatedUTC)
	assert.NotEmpty(t, posts[0].PostID)

	assert.Equal(t, "", posts[1].Body)
	assert.Equal(t, "depression", posts[1].Subreddit)
}

func TestReadRawPostsColumnOrderIndependent(t *testing.T) {
	path := writeFile(t, "raw.csv",
		"subreddit,created_utc,url,score,text,title\n"+
			"anxiety,1681000000,https://reddit.com/r/anxiety/1,3,some body,some title\n")

	posts, err := ReadRawPosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	assert.Equal(t, "some title", posts[0].Title)
	assert.Equal(t, "some body", posts[0].Body)
	assert.Equal(t, "anxiety", posts[0].Subreddit)
}

func TestReadRawPostsBadValuesKeepRow(t *testing.T) {
	path := writeFile(t, "raw.csv",
		"title,text,score,url,created_utc,subreddit\n"+
			"bad score row,body,not-a-number,,1681000000,happy\n"+
			"no timestamp row,body,5,,,happy\n"+
			"garbage timestamp row,body,5,,soon,happy\n"+
			",,0,,,happy\n")

	posts, err := ReadRawPosts(path)
	require.NoError(t, err)
	require.Len(t, posts, 4, "malformed rows are ingested with defaults, never dropped")

	assert.Equal(t, 0, posts[0].Score)
	assert.True(t, posts[1].CreatedUTC.IsZero())
	assert.True(t, posts[2].CreatedUTC.IsZero())
	assert.Equal(t, "", posts[3].Title)
	assert.Equal(t, "", posts[3].Body)
}

func TestReadRawPostsMissingColumnIsSchemaError(t *testing.T) {
	path := writeFile(t, "raw.csv",
		"title,text,score,url,created_utc\n"+
			"no subreddit column,body,1,,1681000000\n")

	_, err := ReadRawPosts(path)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, ColSubreddit, schemaErr.Column)
}

func TestMergedRoundTrip(t *testing.T) {
	records := []models.MergedRecord{
		{
			RawPost: models.RawPost{
				Title:      "I love my life",
				Body:       "feeling great today",
				Score:      42,
				URL:        "https://reddit.com/r/happy/1",
				CreatedUTC: time.Unix(1681000000, 0).UTC(),
				Subreddit:  "happy",
			},
			LexiconLabel:     "Positive",
			LexiconPolarity:  floatPtr(0.6369),
			NeuralLabel:      "Positive",
			NeuralConfidence: floatPtr(0.999),
		},
		{
			RawPost: models.RawPost{
				Title:     "no verdict here",
				Subreddit: "depression",
			},
			LexiconLabel: "Unknown",
			NeuralLabel:  "Unknown",
		},
	}

	path := filepath.Join(t.TempDir(), "merged.csv")
	require.NoError(t, WriteMerged(path, records))

	ds, err := ReadMerged(path)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)

	for _, column := range mergedColumns {
		assert.True(t, ds.HasColumn(column), "column %q", column)
	}

	got := ds.Records[0]
	assert.Equal(t, records[0].Title, got.Title)
	assert.Equal(t, records[0].Body, got.Body)
	assert.Equal(t, records[0].Score, got.Score)
	assert.Equal(t, records[0].URL, got.URL)
	assert.Equal(t, records[0].CreatedUTC, got.CreatedUTC)
	assert.Equal(t, records[0].Subreddit, got.Subreddit)
	assert.Equal(t, records[0].LexiconLabel, got.LexiconLabel)
	require.NotNil(t, got.LexiconPolarity)
	assert.Equal(t, *records[0].LexiconPolarity, *got.LexiconPolarity)
	require.NotNil(t, got.NeuralConfidence)
	assert.Equal(t, *records[0].NeuralConfidence, *got.NeuralConfidence)

	sentinel := ds.Records[1]
	assert.True(t, sentinel.CreatedUTC.IsZero())
	assert.Equal(t, "Unknown", sentinel.LexiconLabel)
	assert.Nil(t, sentinel.LexiconPolarity)
	assert.Nil(t, sentinel.NeuralConfidence)
}

func TestMergedRoundTripTwice(t *testing.T) {
	records := []models.MergedRecord{
		{
			RawPost:          models.RawPost{Title: "t", Subreddit: "s", CreatedUTC: time.Unix(1681000000, 0).UTC()},
			LexiconLabel:     "Neutral",
			LexiconPolarity:  floatPtr(0.1),
			NeuralLabel:      "Negative",
			NeuralConfidence: floatPtr(0.876),
		},
	}

	dir := t.TempDir()
	first := filepath.Join(dir, "first.csv")
	second := filepath.Join(dir, "second.csv")

	require.NoError(t, WriteMerged(first, records))
	ds, err := ReadMerged(first)
	require.NoError(t, err)

	require.NoError(t, WriteMerged(second, ds.Records))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b), "export and re-ingest must be byte-stable")
}

func TestReadMergedWithoutNeuralColumns(t *testing.T) {
	path := writeFile(t, "merged.csv",
		"title,text,score,url,created_utc,subreddit,lexicon_label,lexicon_polarity\n"+
			"lexicon only run,body,1,,1681000000,happy,Positive,0.5\n")

	ds, err := ReadMerged(path)
	require.NoError(t, err)

	assert.True(t, ds.HasColumn(ColLexiconLabel))
	assert.False(t, ds.HasColumn(ColNeuralLabel))
	assert.False(t, ds.HasColumn(ColNeuralConfidence))

	require.Len(t, ds.Records, 1)
	assert.Equal(t, "Positive", ds.Records[0].LexiconLabel)
	assert.Equal(t, "", ds.Records[0].NeuralLabel)
	assert.Nil(t, ds.Records[0].NeuralConfidence)
}

func TestReadMergedMissingBaseColumnIsSchemaError(t *testing.T) {
	path := writeFile(t, "merged.csv",
		"text,score,url,created_utc,subreddit,lexicon_label\n"+
			"body,1,,1681000000,happy,Positive\n")

	_, err := ReadMerged(path)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, ColTitle, schemaErr.Column)
}

func TestAssignPostIDIsStable(t *testing.T) {
	post := models.RawPost{Title: "a title", URL: "https://x", Subreddit: "happy"}

	assert.Equal(t, assignPostID(post), assignPostID(post))
	assert.Len(t, assignPostID(post), 16)

	other := models.RawPost{Title: "a title", URL: "https://x", Subreddit: "sad"}
	assert.NotEqual(t, assignPostID(post), assignPostID(other))
}

func TestWriteRawPostsRoundTrip(t *testing.T) {
	posts := []models.RawPost{
		{Title: "one", Body: "body one", Score: 1, URL: "https://a", CreatedUTC: time.Unix(1681000000, 0).UTC(), Subreddit: "happy"},
		{Title: "two", Body: "", Score: -3, URL: "https://b", Subreddit: "depression"},
	}

	path := filepath.Join(t.TempDir(), "raw.csv")
	require.NoError(t, WriteRawPosts(path, posts))

	got, err := ReadRawPosts(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, posts[0].Title, got[0].Title)
	assert.Equal(t, posts[0].CreatedUTC, got[0].CreatedUTC)
	assert.Equal(t, posts[1].Score, got[1].Score)
	assert.True(t, got[1].CreatedUTC.IsZero())
}
