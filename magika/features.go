package magika

import "bytes"

// ModelFeatures holds the fixed-length integer feature vectors fed to the
// model: a beginning, middle, and end slice of the whitespace-stripped
// content (spec.md §3, §4.1).
type ModelFeatures struct {
	Beg []int32
	Mid []int32
	End []int32
}

// Flatten returns beg || mid || end as a single vector, the order the model
// expects its "bytes" input in.
func (f ModelFeatures) Flatten() []int32 {
	out := make([]int32, 0, len(f.Beg)+len(f.Mid)+len(f.End))
	out = append(out, f.Beg...)
	out = append(out, f.Mid...)
	out = append(out, f.End...)
	return out
}

// asciiWhitespace is the exact stripping set from spec.md §4.1. Note that
// 0x00 is deliberately absent: null bytes are not whitespace.
var asciiWhitespace = string([]byte{0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x20})

func stripLeft(b []byte) []byte  { return bytes.TrimLeft(b, asciiWhitespace) }
func stripRight(b []byte) []byte { return bytes.TrimRight(b, asciiWhitespace) }
func stripBoth(b []byte) []byte  { return bytes.Trim(b, asciiWhitespace) }

// ExtractFeatures implements the v2 feature extraction algorithm (spec.md
// §4.1) against any Seekable, reading at most cfg.BlockSize bytes from each
// end regardless of the Seekable's total size. It is required to be
// bit-exact with the reference implementation: any behavioral drift here
// causes model mispredictions.
//
// The core only supports mid_size == 0 and use_inputs_at_offsets == false;
// callers that need those must use a future extension (spec.md §9).
func ExtractFeatures(s Seekable, cfg ModelConfig) (ModelFeatures, error) {
	n := s.Size()
	r := min(int64(cfg.BlockSize), n)

	var feats ModelFeatures

	coalesce := n <= int64(cfg.BlockSize)

	var begContent, endContent []byte
	if cfg.BegSize > 0 || (coalesce && cfg.EndSize > 0) {
		b, err := s.ReadAt(0, r)
		if err != nil {
			return ModelFeatures{}, err
		}
		begContent = b
	}

	if coalesce {
		// The file fits in a single block: beg and end reads are identical,
		// so the read is coalesced and both sides are stripped.
		stripped := stripBoth(begContent)
		begContent = stripped
		endContent = stripped
	} else {
		if cfg.BegSize > 0 {
			begContent = stripLeft(begContent)
		}
		if cfg.EndSize > 0 {
			b, err := s.ReadAt(n-r, r)
			if err != nil {
				return ModelFeatures{}, err
			}
			endContent = stripRight(b)
		}
	}

	if cfg.BegSize > 0 {
		feats.Beg = padRight(safeSlice(begContent, 0, cfg.BegSize), cfg.BegSize, cfg.PaddingToken)
	}
	if cfg.EndSize > 0 {
		feats.End = padLeft(safeSlice(endContent, len(endContent)-cfg.EndSize, len(endContent)), cfg.EndSize, cfg.PaddingToken)
	}
	return feats, nil
}

// padRight converts b to int32s and appends padding tokens until the result
// is exactly size long. Used for the beg slice: short content is padded on
// the right.
func padRight(b []byte, size int, padding int32) []int32 {
	out := make([]int32, 0, size)
	for _, bb := range b {
		out = append(out, int32(bb))
	}
	for len(out) < size {
		out = append(out, padding)
	}
	return out
}

// padLeft converts b to int32s and prepends padding tokens until the result
// is exactly size long. Used for the end slice: short content is padded on
// the left.
func padLeft(b []byte, size int, padding int32) []int32 {
	prefix := size - len(b)
	out := make([]int32, 0, size)
	for i := 0; i < prefix; i++ {
		out = append(out, padding)
	}
	for _, bb := range b {
		out = append(out, int32(bb))
	}
	return out
}

// safeSlice returns b[from:to], silently clipping out-of-bound indices —
// this happens whenever the (already stripped) content is shorter than the
// requested sampling window.
func safeSlice(b []byte, from, to int) []byte {
	from = max(from, 0)
	to = min(to, len(b))
	if from > to {
		return nil
	}
	return b[from:to]
}
