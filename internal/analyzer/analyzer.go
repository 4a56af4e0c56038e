package analyzer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/aggregate"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/classify"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/extract"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/storage"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Analyzer runs the full pipeline over a corpus.
type Analyzer struct {
	classifier *classify.Classifier
	store      storage.Storage
	log        *zap.Logger
	workers    int
	stateOpts  []aggregate.Option
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the number of concurrent file workers.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}

// WithStorage enables per-file record persistence for later querying.
func WithStorage(store storage.Storage) Option {
	return func(a *Analyzer) { a.store = store }
}

// WithClassifier replaces the default classifier, e.g. to install
// configured discipline rules.
func WithClassifier(c *classify.Classifier) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.classifier = c
		}
	}
}

// WithStateOptions forwards options to every aggregate.State the
// analyzer creates.
func WithStateOptions(opts ...aggregate.Option) Option {
	return func(a *Analyzer) { a.stateOpts = opts }
}

// New creates an Analyzer with default settings.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier: classify.New(),
		log:        zap.NewNop(),
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze discovers problem files under roots and folds every one into
// a fresh aggregate state. The returned state is complete: if any
// corpus-level step fails, or ctx is cancelled, no state is returned.
func (a *Analyzer) Analyze(ctx context.Context, roots []string) (*aggregate.State, error) {
	files, err := Discover(roots)
	if err != nil {
		return nil, err
	}
	a.log.Info("corpus discovered",
		zap.Int("files", len(files)),
		zap.Strings("roots", roots))
	return a.AnalyzeFiles(ctx, files)
}

// AnalyzeFiles folds an explicit file list. Per-file read and parse
// problems become failed classifications; only context cancellation or
// storage setup aborts the run.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, files []File) (*aggregate.State, error) {
	var runID int64
	if a.store != nil {
		run := &storage.Run{}
		if err := a.store.CreateRun(ctx, run); err != nil {
			return nil, err
		}
		runID = run.ID
	}

	state := aggregate.NewState(a.stateOpts...)
	var mu sync.Mutex
	var done int32

	semaphore := make(chan struct{}, a.workers)
	g, gctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			// The acquire select picks arbitrarily when both channels are
			// ready; never start work on a dead context.
			if err := gctx.Err(); err != nil {
				return err
			}

			cl := a.analyzeOne(file)

			mu.Lock()
			state.Add(cl)
			mu.Unlock()

			if a.store != nil {
				if err := a.store.UpsertFileRecord(gctx, storage.RecordFromClassification(runID, cl)); err != nil {
					a.log.Warn("persist file record",
						zap.String("file", file.RelPath),
						zap.Error(err))
				}
			}

			n := atomic.AddInt32(&done, 1)
			if n%500 == 0 {
				a.log.Info("progress",
					zap.Int32("done", n),
					zap.Int("total", len(files)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if a.store != nil {
		if err := a.store.FinishRun(ctx, runID, state.TotalFiles, state.FailedFiles, state.NeedsReviewTotal); err != nil {
			a.log.Warn("finish run", zap.Error(err))
		}
	}

	a.log.Info("analysis complete",
		zap.Int("files", state.TotalFiles),
		zap.Int("failed", state.FailedFiles),
		zap.Int("needs_review", state.NeedsReviewTotal))
	return state, nil
}

// analyzeOne reads and classifies a single file. Read errors are folded
// in as failed classifications rather than returned.
func (a *Analyzer) analyzeOne(file File) *types.Classification {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		a.log.Warn("read failed", zap.String("file", file.RelPath), zap.Error(err))
		return &types.Classification{
			Path:       file.Path,
			RelPath:    file.RelPath,
			Failed:     true,
			FailReason: types.FailUnreadable,
		}
	}
	return a.AnalyzeBytes(data, file.Path, file.RelPath)
}

// AnalyzeBytes classifies one file's content. Pure: identical bytes
// always produce an identical classification.
func (a *Analyzer) AnalyzeBytes(data []byte, path, relPath string) *types.Classification {
	rawHash := sha256.Sum256(data)
	wsHash := sha256.Sum256(stripWhitespace(data))

	base := types.Classification{
		Path:     path,
		RelPath:  relPath,
		SHA256:   hex.EncodeToString(rawHash[:]),
		SHA256WS: hex.EncodeToString(wsHash[:]),
	}

	// A NUL byte means binary or mangled content that the line-oriented
	// tokenizer cannot meaningfully scan.
	if bytes.IndexByte(data, 0) >= 0 {
		base.Failed = true
		base.FailReason = types.FailEncoding
		return &base
	}

	text := decodeLatin1(data)
	tok := tokenizer.Tokenize(text)
	if len(tok.Diagnostics) > 0 {
		base.Failed = true
		base.FailReason = tok.Diagnostics[0]
		base.Diagnostics = append([]string(nil), tok.Diagnostics...)
		return &base
	}

	ex := extract.Extract(tok, text)
	cl := a.classifier.Classify(ex, path, relPath)
	cl.SHA256 = base.SHA256
	cl.SHA256WS = base.SHA256WS
	return cl
}

// stripWhitespace drops space, tab, CR, and LF bytes so that files
// differing only in layout hash identically.
func stripWhitespace(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			out = append(out, b)
		}
	}
	return out
}

// decodeLatin1 maps each input byte to the Unicode code point of the
// same value. The corpus predates UTF-8 and holds stray high bytes;
// Latin-1 decoding never fails and keeps every byte addressable.
func decodeLatin1(data []byte) string {
	ascii := true
	for _, b := range data {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(data)
	}
	var sb strings.Builder
	sb.Grow(len(data) + len(data)/4)
	for _, b := range data {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}
