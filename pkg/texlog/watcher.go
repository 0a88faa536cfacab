package texlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/texlog/texlog-go/internal/parser"
	"github.com/texlog/texlog-go/internal/tailer"
)

// bannerPattern matches the first line an engine writes to a fresh log,
// e.g. "This is pdfTeX, Version 3.141592653-2.6-1.40.25 (TeX Live 2023)".
var bannerPattern = regexp.MustCompile(`^This is [\w-]*TeX\w*, Version `)

// newRun reports whether line begins a new engine run: the log was
// rewritten under the tailer, or the engine banner appears in place.
func newRun(line tailer.Line) bool {
	return line.Restarted || bannerPattern.MatchString(line.Text)
}

// errBuffer is the buffer size of the watcher error channel.
const errBuffer = 16

// Watcher follows a TeX engine log while a build writes it.
//
// Each engine run rewrites the log and starts with a banner line; when the
// log is rewritten or a banner is seen the Watcher starts a new report, so
// Report always describes the latest run.
type Watcher struct {
	path string
	cfg  *watchConfig

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
	report   *Report
}

// NewWatcher creates a watcher for the log at path.
// Does NOT start goroutines (cheap to call).
// Returns an error for an empty path, or a missing file with WithMustExist.
func NewWatcher(path string, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("texlog: path required")
	}

	cfg := applyWatchOptions(opts)
	if cfg.flushInterval < 0 {
		return nil, fmt.Errorf("invalid options: flush interval must be non-negative, got %v", cfg.flushInterval)
	}

	if cfg.mustExist {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrLogNotFound, path)
		}
	}

	return &Watcher{path: path, cfg: cfg}, nil
}

// Watch starts following the log and returns channels.
// Both channels close on ctx.Done(), Close, or a fatal error.
// Watch can only be called once per Watcher instance.
func (w *Watcher) Watch(ctx context.Context) (<-chan Diagnostic, <-chan error) {
	w.mu.Lock()
	if w.closed || w.watching {
		w.mu.Unlock()
		diagCh := make(chan Diagnostic)
		errCh := make(chan error)
		close(diagCh)
		close(errCh)
		return diagCh, errCh
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	diagCh := make(chan Diagnostic)
	errCh := make(chan error, errBuffer)

	go w.run(ctx, diagCh, errCh)

	return diagCh, errCh
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

// Report returns the report of the latest engine run once the watcher has
// stopped, or nil while it is still running.
func (w *Watcher) Report() *Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.report
}

func (w *Watcher) logger() *slog.Logger {
	if w.cfg.parse.logger != nil {
		return w.cfg.parse.logger
	}
	return slog.New(slog.DiscardHandler)
}

func (w *Watcher) run(ctx context.Context, diagCh chan<- Diagnostic, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(diagCh)
	defer close(errCh)

	logger := w.logger()
	stream := parser.NewStream(w.cfg.parse.parserOptions())
	defer func() {
		w.mu.Lock()
		w.report = stream.Report()
		w.mu.Unlock()
	}()

	cfg := tailer.DefaultConfig()
	cfg.Poll = w.cfg.poll
	cfg.FromStart = w.cfg.fromStart
	cfg.MustExist = w.cfg.mustExist

	t, err := tailer.New(ctx, w.path, cfg)
	if err != nil {
		sendError(errCh, fmt.Errorf("starting tailer: %w", err))
		return
	}
	defer func() { _ = t.Stop() }()

	logger.Debug("following log", "path", w.path, "from_start", cfg.FromStart, "poll", cfg.Poll)

	// flushC stays nil when idle flushing is disabled.
	var flushC <-chan time.Time
	if w.cfg.flushInterval > 0 {
		ticker := time.NewTicker(w.cfg.flushInterval)
		defer ticker.Stop()
		flushC = ticker.C
	}
	idle := true
	errC := t.Errors()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				w.emit(ctx, stream.Flush(), diagCh)
				return
			}
			idle = false

			if newRun(line) && stream.Lines() > 0 {
				w.emit(ctx, stream.Flush(), diagCh)
				logger.Debug("new engine run",
					"log_rewritten", line.Restarted,
					"previous", stream.Report().String())
				stream = parser.NewStream(w.cfg.parse.parserOptions())
			}

			sealed, err := stream.Push(line.Text)
			if err != nil {
				sendError(errCh, err)
				return
			}
			w.emit(ctx, sealed, diagCh)
		case err, ok := <-errC:
			if !ok {
				// Lines closes right after; flush happens there.
				errC = nil
				continue
			}
			sendError(errCh, err)
		case <-flushC:
			if idle {
				w.emit(ctx, stream.Flush(), diagCh)
			}
			idle = true
		}
	}
}

func (w *Watcher) emit(ctx context.Context, ds []Diagnostic, diagCh chan<- Diagnostic) {
	for _, d := range ds {
		if !w.cfg.parse.filter.Allows(d.Kind) {
			continue
		}
		select {
		case diagCh <- d:
		case <-ctx.Done():
			return
		}
	}
}

// sendError sends an error non-blocking.
func sendError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

// WatchFile is a convenience function that creates a watcher and starts watching.
// Returns error immediately for initialization failures.
func WatchFile(ctx context.Context, path string, opts ...WatchOption) (<-chan Diagnostic, <-chan error, error) {
	w, err := NewWatcher(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	diags, errs := w.Watch(ctx)
	return diags, errs, nil
}
