//go:build !(cgo && onnxruntime)

package onnx

// NewSession returns a nil Session. This allows the rest of the module to
// be built and unit tested without a local ONNX Runtime install; callers
// that get back a nil Session and nil error must treat that as "runtime
// unavailable" (see magika.ErrONNXUnavailable).
func NewSession(string, int, int) (Session, error) {
	return nil, nil
}
