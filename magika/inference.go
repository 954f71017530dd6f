package magika

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gomagika/magika/onnx"
)

// MaxInternalBatchSize bounds how many rows are sent to the ONNX session at
// once (spec.md §4.2).
const MaxInternalBatchSize = 1000

// InferenceEngine owns the ONNX session and turns ModelFeatures into
// ModelOutput, preserving input order (spec.md §4.2).
type InferenceEngine struct {
	session      onnx.Session
	targetLabels []ContentTypeLabel
	log          zerolog.Logger
}

// newInferenceEngine wraps an already-constructed onnx.Session.
func newInferenceEngine(session onnx.Session, targetLabels []ContentTypeLabel, log zerolog.Logger) *InferenceEngine {
	return &InferenceEngine{session: session, targetLabels: targetLabels, log: log}
}

// inferBatch runs inference over items, returning one ModelOutput per item
// in the same order. An empty input returns an empty output without
// invoking the session (spec.md §4.2).
func (ie *InferenceEngine) inferBatch(items []pendingInference) ([]ModelOutput, error) {
	if len(items) == 0 {
		return nil, nil
	}

	batchID := uuid.New()
	outputs := make([]ModelOutput, len(items))

	for start := 0; start < len(items); start += MaxInternalBatchSize {
		end := min(start+MaxInternalBatchSize, len(items))
		chunk := items[start:end]

		rows := make([][]int32, len(chunk))
		for i, it := range chunk {
			rows[i] = it.features.Flatten()
		}

		ie.log.Debug().
			Str("batch_id", batchID.String()).
			Int("offset", start).
			Int("rows", len(chunk)).
			Msg("running onnx inference chunk")

		scores, err := ie.session.Run(rows)
		if err != nil {
			return nil, fmt.Errorf("run onnx inference: %w", err)
		}
		if len(scores) != len(chunk) {
			return nil, fmt.Errorf("onnx runtime returned %d rows, want %d", len(scores), len(chunk))
		}

		for i, row := range scores {
			label, score, err := ie.top1(row)
			if err != nil {
				return nil, err
			}
			outputs[start+i] = ModelOutput{Label: label, Score: score}
		}
	}

	return outputs, nil
}

// top1 returns the highest-scoring label and its score from a single row of
// probabilities (spec.md §4.2, step 5).
func (ie *InferenceEngine) top1(row []float32) (ContentTypeLabel, float32, error) {
	if len(row) == 0 {
		return "", 0, fmt.Errorf("onnx runtime returned empty row")
	}
	if len(row) != len(ie.targetLabels) {
		return "", 0, fmt.Errorf("onnx runtime returned %d scores, want %d", len(row), len(ie.targetLabels))
	}
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return ie.targetLabels[best], row[best], nil
}
