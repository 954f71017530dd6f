package magika

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
)

const (
	configFileName         = "config.min.json"
	contentTypesKBFileName = "content_types_kb.min.json"
	modelFileName          = "model.onnx"
	modelsDirName          = "models"

	// DefaultModelName is used when the caller does not specify a model.
	DefaultModelName = "standard_v3_3"
)

// ModelConfig holds the feature-extraction and decision parameters for a
// model, as read from config.min.json (spec.md §3, §6).
type ModelConfig struct {
	BegSize                   int                                 `json:"beg_size"`
	MidSize                   int                                 `json:"mid_size"`
	EndSize                   int                                 `json:"end_size"`
	UseInputsAtOffsets        bool                                `json:"use_inputs_at_offsets"`
	MediumConfidenceThreshold float32                             `json:"medium_confidence_threshold"`
	MinFileSizeForDl          int64                               `json:"min_file_size_for_dl"`
	PaddingToken              int32                               `json:"padding_token"`
	BlockSize                 int64                               `json:"block_size"`
	TargetLabelsSpace         []ContentTypeLabel                  `json:"target_labels_space"`
	Thresholds                map[ContentTypeLabel]float32        `json:"thresholds"`
	OverwriteMap              map[ContentTypeLabel]ContentTypeLabel `json:"overwrite_map"`
}

// NumFeatures is the length of a flattened feature vector (beg || mid ||
// end), which is also the width of the tensor fed to the ONNX session.
func (c ModelConfig) NumFeatures() int {
	return c.BegSize + c.MidSize + c.EndSize
}

// rawModelConfig mirrors the on-disk JSON shape, whose map keys are plain
// strings rather than ContentTypeLabel.
type rawModelConfig struct {
	BegSize                   int                `json:"beg_size"`
	MidSize                   int                `json:"mid_size"`
	EndSize                   int                `json:"end_size"`
	UseInputsAtOffsets        bool               `json:"use_inputs_at_offsets"`
	MediumConfidenceThreshold float32            `json:"medium_confidence_threshold"`
	MinFileSizeForDl          int64              `json:"min_file_size_for_dl"`
	PaddingToken              int32              `json:"padding_token"`
	BlockSize                 int64              `json:"block_size"`
	TargetLabelsSpace         []string           `json:"target_labels_space"`
	Thresholds                map[string]float32 `json:"thresholds"`
	OverwriteMap              map[string]string  `json:"overwrite_map"`
}

// ReadConfig reads and unmarshals a ModelConfig, given a model directory and
// model name (assets/models/<name>/config.min.json).
func ReadConfig(modelDir, name string) (ModelConfig, error) {
	p := configPath(modelDir, name)
	b, err := os.ReadFile(p)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("%w: %q: %v", ErrConfigFileNotFound, p, err)
	}
	var raw rawModelConfig
	if err := json.Unmarshal(b, &raw); err != nil {
		return ModelConfig{}, fmt.Errorf("%w: %q: %v", ErrMalformedConfig, p, err)
	}

	cfg := ModelConfig{
		BegSize:                   raw.BegSize,
		MidSize:                   raw.MidSize,
		EndSize:                   raw.EndSize,
		UseInputsAtOffsets:        raw.UseInputsAtOffsets,
		MediumConfidenceThreshold: raw.MediumConfidenceThreshold,
		MinFileSizeForDl:          raw.MinFileSizeForDl,
		PaddingToken:              raw.PaddingToken,
		BlockSize:                 raw.BlockSize,
		TargetLabelsSpace:         make([]ContentTypeLabel, len(raw.TargetLabelsSpace)),
		Thresholds:                make(map[ContentTypeLabel]float32, len(raw.Thresholds)),
		OverwriteMap:              make(map[ContentTypeLabel]ContentTypeLabel, len(raw.OverwriteMap)),
	}
	for i, l := range raw.TargetLabelsSpace {
		cfg.TargetLabelsSpace[i] = ContentTypeLabel(l)
	}
	for k, v := range raw.Thresholds {
		cfg.Thresholds[ContentTypeLabel(k)] = v
	}
	for k, v := range raw.OverwriteMap {
		cfg.OverwriteMap[ContentTypeLabel(k)] = ContentTypeLabel(v)
	}
	return cfg, nil
}

func contentTypesKBPath(modelDir string) string {
	return path.Join(modelDir, contentTypesKBFileName)
}

func configPath(modelDir, name string) string {
	return path.Join(modelDir, modelsDirName, name, configFileName)
}

func modelPath(modelDir, name string) string {
	return path.Join(modelDir, modelsDirName, name, modelFileName)
}
