// Package tailer follows a TeX engine log across engine runs.
//
// Engines rewrite their log from scratch on every run. The tailer reopens
// a truncated or recreated log and marks the first line read afterwards,
// so consumers can start a fresh report for the new run.
package tailer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nxadm/tail"
)

// errBuffer is the buffer size for the error channel.
const errBuffer = 16

// Line is one complete log line.
type Line struct {
	// Text is the line without its terminator.
	Text string

	// Num is the 1-based line number within the current contents of the log.
	Num int

	// Restarted is set on the first line read after the log was truncated
	// or recreated.
	Restarted bool
}

// Config holds configuration for following a log.
type Config struct {
	// Follow keeps reading as the engine appends to the log.
	Follow bool

	// ReOpen reopens the log when a new engine run recreates it.
	// Truncated logs are always reopened while following.
	ReOpen bool

	// Poll uses polling instead of inotify, for network or container mounts.
	Poll bool

	// MustExist fails immediately if the log does not exist yet.
	// When false the tailer waits for the engine to create it.
	MustExist bool

	// FromStart reads the log from the beginning instead of the end.
	FromStart bool
}

// DefaultConfig returns the configuration for following a running build:
// read from the beginning, wait for a missing log, survive rewrites.
func DefaultConfig() Config {
	return Config{
		Follow:    true,
		ReOpen:    true,
		FromStart: true,
	}
}

// Tailer delivers the lines of a log as the engine writes them.
type Tailer struct {
	src    *tail.Tail
	cancel context.CancelFunc
	lines  chan Line
	errs   chan error
	done   chan struct{}

	stopOnce sync.Once
	stopErr  error
}

// New starts following path until ctx is done or Stop is called.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := io.SeekEnd
	if cfg.FromStart {
		whence = io.SeekStart
	}

	src, err := tail.TailFile(path, tail.Config{
		Follow:    cfg.Follow,
		ReOpen:    cfg.ReOpen,
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Tailer{
		src:    src,
		cancel: cancel,
		lines:  make(chan Line),
		errs:   make(chan error, errBuffer),
		done:   make(chan struct{}),
	}
	go t.follow(ctx)

	return t, nil
}

// Lines returns the channel of log lines. It is closed when the tailer
// stops or, without Follow, at end of file.
func (t *Tailer) Lines() <-chan Line {
	return t.lines
}

// Errors returns read errors. Errors are dropped while the buffer is full.
func (t *Tailer) Errors() <-chan error {
	return t.errs
}

// Stop stops following, waits for the channels to close and releases the
// file watches. Safe to call multiple times.
func (t *Tailer) Stop() error {
	t.stopOnce.Do(func() {
		t.cancel()
		<-t.done
		t.stopErr = t.src.Stop()
		t.src.Cleanup()
	})
	return t.stopErr
}

func (t *Tailer) follow(ctx context.Context) {
	defer close(t.done)
	defer close(t.lines)
	defer close(t.errs)

	// nxadm/tail numbers lines from 1 again after each reopen.
	last := 0
	for {
		var raw *tail.Line
		select {
		case <-ctx.Done():
			return
		case l, ok := <-t.src.Lines:
			if !ok {
				return
			}
			raw = l
		}

		if raw.Err != nil {
			select {
			case t.errs <- fmt.Errorf("tail: %w", raw.Err):
			default:
			}
			continue
		}

		line := Line{
			Text:      trimCR(raw.Text),
			Num:       raw.Num,
			Restarted: last > 0 && raw.Num <= last,
		}
		last = raw.Num

		select {
		case t.lines <- line:
		case <-ctx.Done():
			return
		}
	}
}

// trimCR drops the carriage return of CRLF-terminated lines.
func trimCR(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\r' {
		return s[:n-1]
	}
	return s
}
