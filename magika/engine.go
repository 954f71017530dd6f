package magika

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gomagika/magika/onnx"
)

// Engine identifies the content type of arbitrary byte sequences using a
// deep-learning classifier over a compact byte-level fingerprint. A single
// Engine is not required to be safe for concurrent use (spec.md §5);
// callers wanting parallelism should build one Engine per goroutine or
// guard a shared one with a mutex.
type Engine struct {
	cfg           ModelConfig
	catalog       ContentTypeCatalog
	inference     *InferenceEngine
	session       onnx.Session
	mode          PredictionMode
	noDereference bool
	log           zerolog.Logger
	modelDir      string
	modelName     string
}

// Option configures an Engine at construction time.
type Option func(*engineOptions)

type engineOptions struct {
	modelDir      string
	modelName     string
	mode          PredictionMode
	noDereference bool
	log           zerolog.Logger
}

// WithModelDir overrides the assets directory that holds models/<name>/ and
// content_types_kb.min.json. Defaults to "." if unset.
func WithModelDir(dir string) Option {
	return func(o *engineOptions) { o.modelDir = dir }
}

// WithModelName selects a model under modelDir/models/. Defaults to
// DefaultModelName.
func WithModelName(name string) Option {
	return func(o *engineOptions) { o.modelName = name }
}

// WithPredictionMode sets the DecisionPolicy's acceptance mode. Defaults to
// PredictionModeHighConfidence (spec.md §3, §6).
func WithPredictionMode(mode PredictionMode) Option {
	return func(o *engineOptions) { o.mode = mode }
}

// WithNoDereference makes IdentifyPath(s) classify symlinks as
// ContentTypeSymlink instead of following them (spec.md §6).
func WithNoDereference(noDereference bool) Option {
	return func(o *engineOptions) { o.noDereference = noDereference }
}

// WithLogger attaches a zerolog.Logger for construction and inference
// diagnostics. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *engineOptions) { o.log = log }
}

// NewEngine constructs an Engine: it loads the content types knowledge base
// and model config eagerly and initializes the ONNX session once. There is
// no partial initialization — any failure is returned as a single
// construction error (spec.md §7).
func NewEngine(opts ...Option) (*Engine, error) {
	o := engineOptions{
		modelDir:  ".",
		modelName: DefaultModelName,
		mode:      PredictionModeHighConfidence,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := os.Stat(o.modelDir); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrModelDirNotFound, o.modelDir, err)
	}

	cfg, err := ReadConfig(o.modelDir, o.modelName)
	if err != nil {
		return nil, err
	}

	catalog, err := LoadContentTypeCatalog(contentTypesKBPath(o.modelDir))
	if err != nil {
		return nil, err
	}

	mp := modelPath(o.modelDir, o.modelName)
	if _, err := os.Stat(mp); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrModelFileNotFound, mp, err)
	}
	session, err := onnx.NewSession(mp, cfg.NumFeatures(), len(cfg.TargetLabelsSpace))
	if err != nil {
		return nil, fmt.Errorf("new onnx session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %q", ErrONNXUnavailable, mp)
	}
	o.log.Debug().Str("model", o.modelName).Str("path", mp).Msg("onnx model loaded")

	return &Engine{
		cfg:           cfg,
		catalog:       catalog,
		inference:     newInferenceEngine(session, cfg.TargetLabelsSpace, o.log),
		session:       session,
		mode:          o.mode,
		noDereference: o.noDereference,
		log:           o.log,
		modelDir:      o.modelDir,
		modelName:     o.modelName,
	}, nil
}

// Close releases the underlying ONNX session.
func (e *Engine) Close() error {
	return e.session.Close()
}

// String reports the loaded model directory and name, useful for logging.
func (e *Engine) String() string {
	return fmt.Sprintf("Engine(model_dir=%q, model_name=%q)", e.modelDir, e.modelName)
}

// IdentifyPath identifies the content type of a single file given its path.
func (e *Engine) IdentifyPath(path string) (MagikaResult, error) {
	results, err := e.IdentifyPaths([]string{path})
	if err != nil {
		return MagikaResult{}, err
	}
	return results[0], nil
}

// IdentifyPaths identifies the content type of a list of files. The output
// order always equals the input order, regardless of the internal
// grouping used for inference batching (spec.md §4.4).
func (e *Engine) IdentifyPaths(paths []string) ([]MagikaResult, error) {
	results := make([]MagikaResult, len(paths))
	var pending []pendingInference

	for i, p := range paths {
		outcome, err := e.dispatchPath(p)
		if err != nil {
			return nil, err
		}
		if outcome.result != nil {
			results[i] = *outcome.result
			continue
		}
		pending = append(pending, pendingInference{index: i, path: p, features: *outcome.features})
	}

	if err := e.resolvePending(pending, results); err != nil {
		return nil, err
	}
	return results, nil
}

// IdentifyBytes identifies the content type of raw bytes. The result's Path
// field is set to "-".
func (e *Engine) IdentifyBytes(content []byte) (MagikaResult, error) {
	const syntheticPath = "-"
	outcome, err := e.dispatchSeekable(syntheticPath, NewBufferSeekable(content))
	if err != nil {
		return MagikaResult{}, err
	}
	return e.resolveOutcome(syntheticPath, outcome)
}

// IdentifyStream identifies the content type of a readable, seekable binary
// stream. The stream's original position is restored on return, including
// on error (spec.md §4.5, §6).
func (e *Engine) IdentifyStream(stream io.ReadSeeker) (MagikaResult, error) {
	if stream == nil {
		return MagikaResult{}, ErrNotReadableStream
	}
	originalPos, err := stream.Seek(0, io.SeekCurrent)
	if err != nil {
		return MagikaResult{}, fmt.Errorf("%w: %v", ErrNotReadableStream, err)
	}
	defer stream.Seek(originalPos, io.SeekStart)

	s, err := NewStreamSeekable(stream)
	if err != nil {
		return MagikaResult{}, fmt.Errorf("%w: %v", ErrNotReadableStream, err)
	}

	const syntheticPath = "-"
	outcome, err := e.dispatchSeekable(syntheticPath, s)
	if err != nil {
		return MagikaResult{}, err
	}
	return e.resolveOutcome(syntheticPath, outcome)
}

// resolveOutcome finishes a single dispatchOutcome, running inference
// immediately if it was scheduled rather than short-circuited.
func (e *Engine) resolveOutcome(path string, outcome dispatchOutcome) (MagikaResult, error) {
	if outcome.result != nil {
		return *outcome.result, nil
	}
	results := make([]MagikaResult, 1)
	pending := []pendingInference{{index: 0, path: path, features: *outcome.features}}
	if err := e.resolvePending(pending, results); err != nil {
		return MagikaResult{}, err
	}
	return results[0], nil
}

// resolvePending runs batched inference for every scheduled item and writes
// the assembled MagikaResult into results at each item's original index.
func (e *Engine) resolvePending(pending []pendingInference, results []MagikaResult) error {
	if len(pending) == 0 {
		return nil
	}
	outputs, err := e.inference.inferBatch(pending)
	if err != nil {
		return err
	}
	for i, item := range pending {
		out := outputs[i]
		outputLabel, reason := Decide(out.Label, out.Score, e.mode, e.cfg, e.catalog)

		dl, err := e.catalog.Info(out.Label)
		if err != nil {
			return err
		}
		output, err := e.catalog.Info(outputLabel)
		if err != nil {
			return err
		}
		results[item.index] = okResult(item.path, dl, output, out.Score, reason)
	}
	return nil
}

// GetOutputContentTypes returns the sorted set of every possible final
// output label: every label in target_labels_space mapped through
// overwrite_map, plus the reserved directory/empty/symlink/txt/unknown
// labels (spec.md §6).
func (e *Engine) GetOutputContentTypes() []ContentTypeLabel {
	set := map[ContentTypeLabel]struct{}{
		ContentTypeDirectory: {},
		ContentTypeEmpty:     {},
		ContentTypeSymlink:   {},
		ContentTypeTxt:       {},
		ContentTypeUnknown:   {},
	}
	for _, label := range e.cfg.TargetLabelsSpace {
		mapped := label
		if m, ok := e.cfg.OverwriteMap[label]; ok {
			mapped = m
		}
		set[mapped] = struct{}{}
	}
	return sortedLabels(set)
}

// GetModelContentTypes returns the sorted set of every label the model may
// produce as raw output, plus ContentTypeUndefined (spec.md §6).
func (e *Engine) GetModelContentTypes() []ContentTypeLabel {
	set := map[ContentTypeLabel]struct{}{ContentTypeUndefined: {}}
	for _, label := range e.cfg.TargetLabelsSpace {
		set[label] = struct{}{}
	}
	return sortedLabels(set)
}

func sortedLabels(set map[ContentTypeLabel]struct{}) []ContentTypeLabel {
	out := make([]ContentTypeLabel, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
