package sentiment

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/Sachin7123/mindguard/internal/models"
)

const (
	DefaultNeuralModel = "KnightsAnalytics/distilbert-base-uncased-finetuned-sst-2-english"
	DefaultModelDir    = "./models"

	// Confidence reported for empty or whitespace-only input, which never
	// reaches the tokenizer. 0.5 is the uninformative binary prior.
	emptyTextConfidence = 0.5
)

// ModelUnavailableError means the neural model or its runtime could not be
// initialized. Fatal for any run that requires neural scoring; lexicon-only
// runs are unaffected.
type ModelUnavailableError struct {
	Model string
	Err   error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("neural model %q unavailable: %v", e.Model, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// classProb is one entry of the classifier's output distribution.
type classProb struct {
	label string
	prob  float64
}

// classifierBackend runs the underlying model over one input and returns
// the per-class probability distribution.
type classifierBackend interface {
	run(text string) ([]classProb, error)
}

// NeuralClassifier wraps a pretrained sequence classifier behind a
// load-once lifecycle. The loaded pipeline is immutable and safe to share
// across concurrent Score calls.
type NeuralClassifier struct {
	backend classifierBackend
	close   func()
}

// LoadNeuralClassifier downloads the model when it is not already on disk,
// opens an ONNX runtime session and builds the classification pipeline.
// This is the only phase allowed to fail; every failure comes back as a
// *ModelUnavailableError.
func LoadNeuralClassifier(modelID, modelDir string) (*NeuralClassifier, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, &ModelUnavailableError{Model: modelID, Err: err}
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelID, "/", "_"))
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		slog.Info("[NeuralClassifier] Model not found, downloading...",
			slog.String("model", modelID))
		downloaded, err := hugot.DownloadModel(modelID, modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, &ModelUnavailableError{Model: modelID, Err: err}
		}
		modelPath = downloaded
		slog.Info("[NeuralClassifier] Model downloaded successfully",
			slog.String("path", modelPath))
	} else {
		slog.Info("[NeuralClassifier] Using existing model",
			slog.String("path", modelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, &ModelUnavailableError{Model: modelID, Err: err}
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "mindguardSentimentPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, &ModelUnavailableError{Model: modelID, Err: err}
	}

	return &NeuralClassifier{
		backend: &hugotBackend{pipeline: pipeline},
		close:   func() { session.Destroy() },
	}, nil
}

// Close releases the runtime session. Safe to call once after all Score
// calls have returned.
func (c *NeuralClassifier) Close() {
	if c.close != nil {
		c.close()
	}
}

// Score classifies normalized text as Positive or Negative with the
// probability mass of the predicted class, rounded to 3 decimal digits.
// The tokenizer truncates inputs to the model's 512-token window; longer
// texts are cut, never rejected. Empty or whitespace-only text short-
// circuits to the Negative/0.5 fallback without touching the model.
func (c *NeuralClassifier) Score(text string) (models.SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return models.SentimentResult{
			Model: models.ModelNeural,
			Label: models.LabelNegative,
			Score: emptyTextConfidence,
		}, nil
	}

	probs, err := c.backend.run(strings.ReplaceAll(text, "\n", " "))
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("[NeuralClassifier] inference failed: %w", err)
	}
	if len(probs) == 0 {
		return models.SentimentResult{}, fmt.Errorf("[NeuralClassifier] empty class distribution")
	}

	best := probs[0]
	for _, p := range probs[1:] {
		if p.prob > best.prob {
			best = p
		}
	}

	label, err := displayLabel(best.label)
	if err != nil {
		return models.SentimentResult{}, err
	}

	return models.SentimentResult{
		Model: models.ModelNeural,
		Label: label,
		Score: round3(best.prob),
	}, nil
}

// hugotBackend adapts a hugot text classification pipeline. The pipeline
// applies a softmax over the model logits, so the scores it returns are
// already a probability distribution.
type hugotBackend struct {
	pipeline *pipelines.TextClassificationPipeline
}

func (b *hugotBackend) run(text string) ([]classProb, error) {
	output, err := b.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, err
	}
	if len(output.ClassificationOutputs) == 0 {
		return nil, fmt.Errorf("no classification output")
	}

	probs := make([]classProb, 0, len(output.ClassificationOutputs[0]))
	for _, class := range output.ClassificationOutputs[0] {
		probs = append(probs, classProb{
			label: class.Label,
			prob:  float64(class.Score),
		})
	}
	return probs, nil
}

// displayLabel maps the model's class names (POSITIVE/NEGATIVE for SST-2
// checkpoints) onto the shared label constants. An out-of-vocabulary class
// is a per-record scoring failure, not a new label.
func displayLabel(raw string) (string, error) {
	switch strings.ToLower(raw) {
	case "positive", "label_1":
		return models.LabelPositive, nil
	case "negative", "label_0":
		return models.LabelNegative, nil
	}
	return "", fmt.Errorf("[NeuralClassifier] unexpected class label %q", raw)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
