package magika

import "errors"

// Construction errors. NewEngine wraps the cause of a missing or malformed
// asset with one of these sentinels so callers can errors.Is against a
// stable failure class; any other failure of the ONNX runtime to create a
// session is wrapped without a sentinel. ErrUnknownContentType is returned
// after construction, when a label is absent from the catalog.
var (
	ErrModelDirNotFound    = errors.New("magika: model directory not found")
	ErrModelFileNotFound   = errors.New("magika: model.onnx not found")
	ErrConfigFileNotFound  = errors.New("magika: config.min.json not found")
	ErrCatalogFileNotFound = errors.New("magika: content types knowledge base not found")
	ErrMalformedConfig     = errors.New("magika: malformed configuration")
	ErrONNXUnavailable     = errors.New("magika: onnx runtime not available in this build")
	ErrUnknownContentType  = errors.New("magika: label not present in content types knowledge base")
)

// Contract errors, returned before any work begins.
var (
	ErrNotReadableStream = errors.New("magika: input stream must be readable, seekable, and opened in binary mode")
)
