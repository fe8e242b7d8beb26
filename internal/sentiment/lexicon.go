package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/Sachin7123/mindguard/internal/models"
)

const (
	positiveThreshold = 0.3
	negativeThreshold = -0.3
)

// PolarityFunc maps normalized text to a polarity score in [-1, 1].
type PolarityFunc func(text string) float64

// LexiconScorer derives a three-way sentiment label from a word-level
// polarity score. Stateless across calls; same text, same verdict.
type LexiconScorer struct {
	polarity PolarityFunc
}

// NewLexiconScorer returns a scorer backed by the VADER compound score,
// which is already normalized to [-1, 1].
func NewLexiconScorer() *LexiconScorer {
	analyzer := govader.NewSentimentIntensityAnalyzer()
	return &LexiconScorer{
		polarity: func(text string) float64 {
			return analyzer.PolarityScores(text).Compound
		},
	}
}

// NewLexiconScorerWithPolarity swaps in a custom polarity function. The
// thresholding contract stays fixed regardless of the polarity source.
func NewLexiconScorerWithPolarity(fn PolarityFunc) *LexiconScorer {
	return &LexiconScorer{polarity: fn}
}

// Score computes the polarity of text and labels it Positive above 0.3,
// Negative below -0.3, Neutral otherwise. Empty text scores 0 and lands
// in the neutral band.
func (s *LexiconScorer) Score(text string) models.SentimentResult {
	polarity := s.polarity(text)

	label := models.LabelNeutral
	switch {
	case polarity > positiveThreshold:
		label = models.LabelPositive
	case polarity < negativeThreshold:
		label = models.LabelNegative
	}

	return models.SentimentResult{
		Model: models.ModelLexicon,
		Label: label,
		Score: polarity,
	}
}
