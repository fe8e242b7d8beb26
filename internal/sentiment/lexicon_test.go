package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sachin7123/mindguard/internal/models"
)

func TestLexiconThresholds(t *testing.T) {
	tests := []struct {
		name     string
		polarity float64
		want     string
	}{
		{"exactly at positive threshold", 0.3, models.LabelNeutral},
		{"exactly at negative threshold", -0.3, models.LabelNeutral},
		{"just above positive threshold", 0.30001, models.LabelPositive},
		{"just below negative threshold", -0.30001, models.LabelNegative},
		{"zero", 0, models.LabelNeutral},
		{"maximum", 1, models.LabelPositive},
		{"minimum", -1, models.LabelNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := NewLexiconScorerWithPolarity(func(string) float64 { return tt.polarity })
			result := scorer.Score("whatever")

			assert.Equal(t, tt.want, result.Label)
			assert.Equal(t, tt.polarity, result.Score)
			assert.Equal(t, models.ModelLexicon, result.Model)
		})
	}
}

func TestLexiconVaderDefaults(t *testing.T) {
	scorer := NewLexiconScorer()

	love := scorer.Score("i love my life")
	assert.Equal(t, models.LabelPositive, love.Label)
	assert.Greater(t, love.Score, 0.3)

	hate := scorer.Score("i hate everything")
	assert.Equal(t, models.LabelNegative, hate.Label)
	assert.Less(t, hate.Score, -0.3)
}

func TestLexiconIsDeterministic(t *testing.T) {
	scorer := NewLexiconScorer()

	first := scorer.Score("i love my life but some days are hard")
	second := scorer.Score("i love my life but some days are hard")

	assert.Equal(t, first, second)
}

func TestLexiconEmptyTextIsNeutral(t *testing.T) {
	scorer := NewLexiconScorer()

	result := scorer.Score("")
	assert.Equal(t, models.LabelNeutral, result.Label)
	assert.Zero(t, result.Score)
}

func TestLexiconPolarityStaysInRange(t *testing.T) {
	scorer := NewLexiconScorer()

	for _, text := range []string{
		"i love love love this wonderful amazing great day",
		"terrible horrible awful disgusting worst day ever",
		"the table has four legs",
	} {
		result := scorer.Score(text)
		assert.GreaterOrEqual(t, result.Score, -1.0)
		assert.LessOrEqual(t, result.Score, 1.0)
	}
}
