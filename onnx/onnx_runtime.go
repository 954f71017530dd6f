//go:build cgo && onnxruntime

package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// NewSession returns a Session that runs batched inference using the real
// ONNX Runtime (https://onnxruntime.ai/), via the yalue/onnxruntime_go cgo
// binding. numFeatures and numLabels are the width of the model's "bytes"
// input and "target_label" output respectively (spec.md §6).
func NewSession(modelPath string, numFeatures, numLabels int) (Session, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime environment: %w", err)
	}
	sess, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"bytes"}, []string{"target_label"}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("create onnx session for %q: %w", modelPath, err)
	}
	return &runtimeSession{
		session:     sess,
		numFeatures: numFeatures,
		numLabels:   numLabels,
	}, nil
}

// runtimeSession implements Session over a variable-batch-size ONNX Runtime
// session: the input/output tensor shapes are built fresh for each Run call
// so that micro-batches up to MAX_INTERNAL_BATCH rows (spec.md §4.2) do not
// require a fixed-shape session per batch size.
type runtimeSession struct {
	session     *ort.DynamicAdvancedSession
	numFeatures int
	numLabels   int
}

func (s *runtimeSession) Run(batch [][]int32) ([][]float32, error) {
	n := len(batch)
	if n == 0 {
		return nil, nil
	}

	flat := make([]int32, 0, n*s.numFeatures)
	for _, row := range batch {
		flat = append(flat, row...)
	}

	input, err := ort.NewTensor(ort.NewShape(int64(n), int64(s.numFeatures)), flat)
	if err != nil {
		return nil, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(n), int64(s.numLabels)))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}
	defer output.Destroy()

	if err := s.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("run inference: %w", err)
	}

	data := output.GetData()
	rows := make([][]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, s.numLabels)
		copy(row, data[i*s.numLabels:(i+1)*s.numLabels])
		rows[i] = row
	}
	return rows, nil
}

func (s *runtimeSession) Close() error {
	if err := s.session.Destroy(); err != nil {
		return fmt.Errorf("destroy onnx session: %w", err)
	}
	return ort.DestroyEnvironment()
}
