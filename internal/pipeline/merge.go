package pipeline

import (
	"github.com/Sachin7123/mindguard/internal/models"
)

// Merge joins one post with both scorer verdicts into a single record.
// Either side may be nil (scorer skipped or failed for this record); the
// corresponding merged fields then hold the Unknown label and a nil score.
// Merging never fails for a single missing side.
func Merge(post models.RawPost, lexicon, neural *models.SentimentResult) models.MergedRecord {
	merged := models.MergedRecord{
		RawPost:      post,
		LexiconLabel: models.LabelUnknown,
		NeuralLabel:  models.LabelUnknown,
	}

	if lexicon != nil {
		polarity := lexicon.Score
		merged.LexiconLabel = lexicon.Label
		merged.LexiconPolarity = &polarity
	}
	if neural != nil {
		confidence := neural.Score
		merged.NeuralLabel = neural.Label
		merged.NeuralConfidence = &confidence
	}

	return merged
}
