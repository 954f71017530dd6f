package magika

// Status is the per-input outcome of a dispatch. Only FILE_NOT_FOUND_ERROR,
// PERMISSION_ERROR and UNKNOWN are errors in the ordinary sense; they never
// raise, they surface in MagikaResult.Status (spec.md §7).
type Status string

const (
	StatusOK                Status = "ok"
	StatusFileNotFoundError Status = "file_not_found_error"
	StatusPermissionError   Status = "permission_error"
	StatusUnknown           Status = "unknown"
)

// MagikaPrediction is the detailed result of identifying one input: both the
// raw model prediction and the final, possibly overwritten, output.
type MagikaPrediction struct {
	Dl              ContentTypeInfo
	Output          ContentTypeInfo
	Score           float32
	OverwriteReason OverwriteReason
}

// MagikaResult is the per-input result envelope. Invariant: Prediction is
// non-nil if and only if Status == StatusOK.
type MagikaResult struct {
	Path       string
	Status     Status
	Prediction *MagikaPrediction
}

// OK reports whether the result carries a prediction.
func (r MagikaResult) OK() bool { return r.Status == StatusOK }

// okResult builds an OK MagikaResult from a content type info pair.
func okResult(path string, dl, output ContentTypeInfo, score float32, reason OverwriteReason) MagikaResult {
	return MagikaResult{
		Path:   path,
		Status: StatusOK,
		Prediction: &MagikaPrediction{
			Dl:              dl,
			Output:          output,
			Score:           score,
			OverwriteReason: reason,
		},
	}
}

// errResult builds a non-OK MagikaResult.
func errResult(path string, status Status) MagikaResult {
	return MagikaResult{Path: path, Status: status}
}
