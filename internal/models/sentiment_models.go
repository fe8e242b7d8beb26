package models

// SentimentModel identifies which scorer produced a result.
type SentimentModel string

const (
	ModelLexicon SentimentModel = "lexicon"
	ModelNeural  SentimentModel = "neural"
)

// Sentiment labels. The lexicon scorer emits Positive/Negative/Neutral,
// the neural classifier emits Positive/Negative, and Unknown is the
// sentinel for an absent or unresolvable verdict.
const (
	LabelPositive = "Positive"
	LabelNegative = "Negative"
	LabelNeutral  = "Neutral"
	LabelUnknown  = "Unknown"
)

// SentimentResult is a single scorer's verdict for one record.
// Score is a polarity in [-1,1] for the lexicon model and a confidence
// in [0,1] for the neural model.
type SentimentResult struct {
	Model SentimentModel `json:"model"`
	Label string         `json:"label"`
	Score float64        `json:"score"`
}

// MergedRecord joins a RawPost with both scorers' outputs. The numeric
// fields are nil when the corresponding scorer did not run.
type MergedRecord struct {
	RawPost
	LexiconLabel     string   `json:"lexicon_label"`
	LexiconPolarity  *float64 `json:"lexicon_polarity"`
	NeuralLabel      string   `json:"neural_label"`
	NeuralConfidence *float64 `json:"neural_confidence"`
}

// ViewConfig drives one aggregation query. An empty Subreddits slice
// means every subreddit present in the dataset.
type ViewConfig struct {
	Model      SentimentModel
	Subreddits []string
	Keyword    string
}
