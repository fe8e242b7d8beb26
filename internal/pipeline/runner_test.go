package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sachin7123/mindguard/internal/models"
)

type stubLexicon struct {
	panicOn string
}

func (s *stubLexicon) Score(text string) models.SentimentResult {
	if s.panicOn != "" && strings.Contains(text, s.panicOn) {
		panic("bad encoding")
	}
	return models.SentimentResult{Model: models.ModelLexicon, Label: models.LabelNeutral, Score: 0}
}

type stubNeural struct {
	failOn string
	onCall func()
}

func (s *stubNeural) Score(text string) (models.SentimentResult, error) {
	if s.onCall != nil {
		s.onCall()
	}
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return models.SentimentResult{}, errors.New("inference failed")
	}
	return models.SentimentResult{Model: models.ModelNeural, Label: models.LabelPositive, Score: 0.9}, nil
}

func makePosts(n int) []models.RawPost {
	posts := make([]models.RawPost, n)
	for i := range posts {
		posts[i] = models.RawPost{
			PostID: fmt.Sprintf("t3_%03d", i),
			Title:  fmt.Sprintf("post number %03d", i),
		}
	}
	return posts
}

func TestRunnerMergesEveryRecordInOrder(t *testing.T) {
	posts := makePosts(50)
	runner := NewRunner(&stubLexicon{}, &stubNeural{}, 4)

	merged, err := runner.Run(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, merged, len(posts))

	for i, record := range merged {
		assert.Equal(t, posts[i].PostID, record.PostID)
		assert.Equal(t, models.LabelNeutral, record.LexiconLabel)
		assert.Equal(t, models.LabelPositive, record.NeuralLabel)
	}
}

func TestRunnerLexiconOnly(t *testing.T) {
	posts := makePosts(5)
	runner := NewRunner(&stubLexicon{}, nil, 2)

	merged, err := runner.Run(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, merged, 5)

	for _, record := range merged {
		assert.Equal(t, models.LabelNeutral, record.LexiconLabel)
		assert.Equal(t, models.LabelUnknown, record.NeuralLabel)
		assert.Nil(t, record.NeuralConfidence)
	}
}

func TestRunnerNeuralFailureDegradesToSentinel(t *testing.T) {
	posts := makePosts(10)
	runner := NewRunner(&stubLexicon{}, &stubNeural{failOn: "004"}, 3)

	merged, err := runner.Run(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, merged, 10)

	for i, record := range merged {
		if i == 4 {
			assert.Equal(t, models.LabelUnknown, record.NeuralLabel)
			assert.Nil(t, record.NeuralConfidence)
		} else {
			assert.Equal(t, models.LabelPositive, record.NeuralLabel)
		}
		// The lexicon side is unaffected by the neural failure.
		assert.Equal(t, models.LabelNeutral, record.LexiconLabel)
	}
}

func TestRunnerScorerPanicDegradesToSentinel(t *testing.T) {
	posts := makePosts(6)
	runner := NewRunner(&stubLexicon{panicOn: "002"}, nil, 2)

	merged, err := runner.Run(context.Background(), posts)
	require.NoError(t, err)
	require.Len(t, merged, 6)

	assert.Equal(t, models.LabelUnknown, merged[2].LexiconLabel)
	assert.Nil(t, merged[2].LexiconPolarity)
	assert.Equal(t, models.LabelNeutral, merged[3].LexiconLabel)
}

func TestRunnerCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(&stubLexicon{}, nil, 2)
	merged, err := runner.Run(ctx, makePosts(10))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, merged)
}

func TestRunnerAbortKeepsFullyMergedRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	posts := makePosts(10)
	neural := &stubNeural{onCall: cancel} // abort while the first record is in flight
	runner := NewRunner(&stubLexicon{}, neural, 1)

	merged, err := runner.Run(ctx, posts)
	assert.ErrorIs(t, err, context.Canceled)

	require.Len(t, merged, 1)
	record := merged[0]
	assert.Equal(t, posts[0].PostID, record.PostID)
	assert.NotEmpty(t, record.LexiconLabel)
	assert.NotEmpty(t, record.NeuralLabel)
	assert.NotNil(t, record.NeuralConfidence)
}
