package magika

// PredictionMode selects how aggressively the DecisionPolicy trusts a raw
// model prediction (spec.md §3).
type PredictionMode string

const (
	PredictionModeBestGuess        PredictionMode = "best_guess"
	PredictionModeMediumConfidence PredictionMode = "medium_confidence"
	PredictionModeHighConfidence   PredictionMode = "high_confidence"
)

// OverwriteReason explains why MagikaPrediction.Output differs from the raw
// model label (spec.md §3).
type OverwriteReason string

const (
	OverwriteReasonNone         OverwriteReason = "none"
	OverwriteReasonOverwriteMap OverwriteReason = "overwrite_map"
	OverwriteReasonLowConfidence OverwriteReason = "low_confidence"
)

// ModelOutput is the top-1 label and score produced by the InferenceEngine
// for one input (spec.md §3).
type ModelOutput struct {
	Label ContentTypeLabel
	Score float32
}

// Decide implements the DecisionPolicy (spec.md §4.3): it maps a raw label,
// score, and prediction mode to a final output label and the reason it may
// have been overwritten.
//
// Invariant: the returned reason is OverwriteReasonNone if and only if
// outputLabel == rawLabel.
func Decide(rawLabel ContentTypeLabel, score float32, mode PredictionMode, cfg ModelConfig, catalog ContentTypeCatalog) (outputLabel ContentTypeLabel, reason OverwriteReason) {
	mapped := rawLabel
	if m, ok := cfg.OverwriteMap[rawLabel]; ok {
		mapped = m
	}
	reason = OverwriteReasonNone
	if mapped != rawLabel {
		reason = OverwriteReasonOverwriteMap
	}

	if accepted(rawLabel, score, mode, cfg) {
		return mapped, reason
	}

	// The model is not trusted: fall back to a generic label based on
	// whether the (possibly overwritten) label is known to be text.
	fallback := ContentTypeUnknown
	if ct, ok := catalog[mapped]; ok && ct.IsText {
		fallback = ContentTypeTxt
	}
	reason = OverwriteReasonLowConfidence
	if fallback == rawLabel {
		// The fallback happens to coincide with what the model actually
		// said, so nothing was really overwritten.
		reason = OverwriteReasonNone
	}
	return fallback, reason
}

// accepted reports whether the per-label high-confidence threshold lookup
// (keyed by rawLabel, not the overwritten label — this matches the trained
// decision surface) is met for the given mode.
func accepted(rawLabel ContentTypeLabel, score float32, mode PredictionMode, cfg ModelConfig) bool {
	switch mode {
	case PredictionModeBestGuess:
		return true
	case PredictionModeHighConfidence:
		threshold := cfg.MediumConfidenceThreshold
		if t, ok := cfg.Thresholds[rawLabel]; ok {
			threshold = t
		}
		return score >= threshold
	case PredictionModeMediumConfidence:
		return score >= cfg.MediumConfidenceThreshold
	default:
		return score >= cfg.MediumConfidenceThreshold
	}
}
