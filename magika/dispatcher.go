package magika

import (
	"os"
	"unicode/utf8"
)

// pendingInference is a scheduled item awaiting batched model inference,
// produced when the Dispatcher could not short-circuit an input.
type pendingInference struct {
	index    int
	path     string
	features ModelFeatures
}

// dispatchOutcome is the result of dispatching a single input: either a
// finished result (the common short-circuit cases) or features to run
// through the model.
type dispatchOutcome struct {
	result   *MagikaResult
	features *ModelFeatures
}

// bypassResult builds the MagikaResult for any Dispatcher decision that
// never touches the model (spec.md §8: dl.label = UNDEFINED, score = 1.0,
// overwrite_reason = NONE for all such cases).
func (e *Engine) bypassResult(path string, output ContentTypeLabel) (MagikaResult, error) {
	dl, err := e.catalog.Info(ContentTypeUndefined)
	if err != nil {
		return MagikaResult{}, err
	}
	out, err := e.catalog.Info(output)
	if err != nil {
		return MagikaResult{}, err
	}
	return okResult(path, dl, out, 1.0, OverwriteReasonNone), nil
}

// fewBytesLabel implements the few_bytes heuristic (spec.md §4.4.d): TXT if
// the content decodes as UTF-8, UNKNOWN otherwise.
func fewBytesLabel(content []byte) ContentTypeLabel {
	if utf8.Valid(content) {
		return ContentTypeTxt
	}
	return ContentTypeUnknown
}

// dispatchPath implements the per-input decision tree for a filesystem path
// (spec.md §4.4, steps 1-5).
func (e *Engine) dispatchPath(path string) (dispatchOutcome, error) {
	if e.noDereference {
		if lst, err := os.Lstat(path); err == nil && lst.Mode()&os.ModeSymlink != 0 {
			r, err := e.bypassResult(path, ContentTypeSymlink)
			if err != nil {
				return dispatchOutcome{}, err
			}
			return dispatchOutcome{result: &r}, nil
		}
	}

	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			r := errResult(path, StatusFileNotFoundError)
			return dispatchOutcome{result: &r}, nil
		}
		if os.IsPermission(err) {
			r := errResult(path, StatusPermissionError)
			return dispatchOutcome{result: &r}, nil
		}
		r := errResult(path, StatusUnknown)
		return dispatchOutcome{result: &r}, nil
	}

	switch {
	case st.Mode().IsRegular():
		f, err := NewFileSeekable(path)
		if err != nil {
			if os.IsPermission(err) {
				r := errResult(path, StatusPermissionError)
				return dispatchOutcome{result: &r}, nil
			}
			r := errResult(path, StatusUnknown)
			return dispatchOutcome{result: &r}, nil
		}
		defer f.Close()
		return e.dispatchSeekable(path, f)

	case st.IsDir():
		r, err := e.bypassResult(path, ContentTypeDirectory)
		if err != nil {
			return dispatchOutcome{}, err
		}
		return dispatchOutcome{result: &r}, nil

	default:
		// Devices, pipes, sockets, and anything else os.FileMode doesn't
		// classify as a regular file or directory.
		r, err := e.bypassResult(path, ContentTypeUnknown)
		if err != nil {
			return dispatchOutcome{}, err
		}
		return dispatchOutcome{result: &r}, nil
	}
}

// dispatchSeekable implements spec.md §4.4 steps 3c-3f, shared by
// path-backed, buffer-backed, and stream-backed inputs.
func (e *Engine) dispatchSeekable(path string, s Seekable) (dispatchOutcome, error) {
	n := s.Size()

	if n == 0 {
		r, err := e.bypassResult(path, ContentTypeEmpty)
		if err != nil {
			return dispatchOutcome{}, err
		}
		return dispatchOutcome{result: &r}, nil
	}

	if n < e.cfg.MinFileSizeForDl {
		content, err := s.ReadAt(0, n)
		if err != nil {
			return dispatchOutcome{}, err
		}
		r, err := e.bypassResult(path, fewBytesLabel(content))
		if err != nil {
			return dispatchOutcome{}, err
		}
		return dispatchOutcome{result: &r}, nil
	}

	features, err := ExtractFeatures(s, e.cfg)
	if err != nil {
		return dispatchOutcome{}, err
	}

	idx := e.cfg.MinFileSizeForDl - 1
	if idx >= 0 && idx < int64(len(features.Beg)) && features.Beg[idx] == e.cfg.PaddingToken {
		// Post-stripping, there were not enough meaningful bytes for a
		// model prediction even though the raw file size passed the
		// threshold above.
		toRead := min(n, e.cfg.BlockSize)
		content, err := s.ReadAt(0, toRead)
		if err != nil {
			return dispatchOutcome{}, err
		}
		r, err := e.bypassResult(path, fewBytesLabel(content))
		if err != nil {
			return dispatchOutcome{}, err
		}
		return dispatchOutcome{result: &r}, nil
	}

	return dispatchOutcome{features: &features}, nil
}

