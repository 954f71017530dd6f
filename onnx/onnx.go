// Package onnx wraps an ONNX Runtime session behind a minimal batched
// inference interface, so the magika package never depends directly on a
// particular ONNX binding.
package onnx

// Session represents something that can run inferences on a batch of
// flattened integer feature vectors, returning one raw probability vector
// per row (spec.md §4.2, §6).
type Session interface {
	// Run executes inference for the given batch. len(batch) rows go in,
	// len(batch) probability vectors come out, in the same order.
	Run(batch [][]int32) ([][]float32, error)
	// Close releases the session and any runtime-owned resources.
	Close() error
}
