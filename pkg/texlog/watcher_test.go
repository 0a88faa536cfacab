package texlog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/texlog/texlog-go/pkg/texlog"
)

// collect reads n diagnostics or fails after timeout.
func collect(t *testing.T, diags <-chan texlog.Diagnostic, errs <-chan error, n int) []texlog.Diagnostic {
	t.Helper()

	timeout := time.After(5 * time.Second)
	var got []texlog.Diagnostic
	for len(got) < n {
		select {
		case d, ok := <-diags:
			if !ok {
				t.Fatalf("diagnostics channel closed after %d of %d", len(got), n)
			}
			got = append(got, d)
		case err, ok := <-errs:
			if ok {
				t.Fatalf("unexpected error: %v", err)
			}
			errs = nil
		case <-timeout:
			t.Fatalf("timed out after %d of %d diagnostics", len(got), n)
		}
	}
	return got
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func TestNewWatcher_Validation(t *testing.T) {
	if _, err := texlog.NewWatcher(""); err == nil {
		t.Error("NewWatcher(\"\") should fail")
	}

	path := filepath.Join(t.TempDir(), "main.log")
	if _, err := texlog.NewWatcher(path, texlog.WithFlushInterval(-time.Second)); err == nil {
		t.Error("negative flush interval should fail")
	}

	_, err := texlog.NewWatcher(path, texlog.WithMustExist(true))
	if !errors.Is(err, texlog.ErrLogNotFound) {
		t.Errorf("NewWatcher(missing, MustExist) error = %v, want ErrLogNotFound", err)
	}

	// Without MustExist a missing log is fine; the engine creates it later.
	w, err := texlog.NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	_ = w.Close()
}

func TestWatcher_FollowsLog(t *testing.T) {
	path := writeLog(t, t.TempDir(), "main.log", buildLog)

	w, err := texlog.NewWatcher(path,
		texlog.WithPoll(true),
		texlog.WithFlushInterval(50*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	diags, errs := w.Watch(context.Background())
	got := collect(t, diags, errs, 4)

	want := []texlog.Kind{
		texlog.KindWarning, texlog.KindBadbox, texlog.KindMissingCitation, texlog.KindError,
	}
	for i := range want {
		if got[i].Kind != want[i] {
			t.Errorf("got[%d].Kind = %v, want %v", i, got[i].Kind, want[i])
		}
	}

	if w.Report() != nil {
		t.Error("Report() should be nil while the watcher runs")
	}

	appendLog(t, path, "LaTeX Font Warning: Some font shapes were not available, defaults substituted.\n")
	got = collect(t, diags, errs, 1)
	if got[0].Kind != texlog.KindWarning {
		t.Errorf("appended diagnostic kind = %v, want warning", got[0].Kind)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	report := w.Report()
	if report == nil {
		t.Fatal("Report() = nil after Close")
	}
	if report.Warnings != 2 || report.Errors != 1 {
		t.Errorf("Report() = %v, want 1 error and 2 warnings", report)
	}
}

func TestWatcher_BannerStartsNewReport(t *testing.T) {
	path := writeLog(t, t.TempDir(), "main.log", buildLog)

	w, err := texlog.NewWatcher(path,
		texlog.WithPoll(true),
		texlog.WithFlushInterval(50*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	diags, errs := w.Watch(context.Background())
	collect(t, diags, errs, 4)

	appendLog(t, path, "This is pdfTeX, Version 3.141592653-2.6-1.40.25 (TeX Live 2023)\n! Emergency stop.\n")
	got := collect(t, diags, errs, 1)
	if got[0].Message() != "Emergency stop." {
		t.Errorf("message = %q, want %q", got[0].Message(), "Emergency stop.")
	}

	_ = w.Close()
	report := w.Report()
	if report == nil {
		t.Fatal("Report() = nil after Close")
	}
	if len(report.Diagnostics) != 1 || report.Errors != 1 {
		t.Errorf("Report() = %v with %d diagnostics, want only the latest run", report, len(report.Diagnostics))
	}
}

func TestWatcher_RewrittenLogStartsNewReport(t *testing.T) {
	path := writeLog(t, t.TempDir(), "main.log", buildLog)

	w, err := texlog.NewWatcher(path,
		texlog.WithPoll(true),
		texlog.WithFlushInterval(50*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	diags, errs := w.Watch(context.Background())
	collect(t, diags, errs, 4)

	// The next run rewrites the log; the shorter content has no banner.
	time.Sleep(300 * time.Millisecond)
	if err := os.WriteFile(path, []byte("! Emergency stop.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got := collect(t, diags, errs, 1)
	if got[0].Message() != "Emergency stop." {
		t.Errorf("message = %q, want %q", got[0].Message(), "Emergency stop.")
	}

	_ = w.Close()
	report := w.Report()
	if report == nil {
		t.Fatal("Report() = nil after Close")
	}
	if len(report.Diagnostics) != 1 || report.Warnings != 0 {
		t.Errorf("Report() = %v with %d diagnostics, want only the rewritten run", report, len(report.Diagnostics))
	}
}

func TestWatcher_IncludeKinds(t *testing.T) {
	path := writeLog(t, t.TempDir(), "main.log", buildLog)

	diags, errs, err := texlog.WatchFile(context.Background(), path,
		texlog.WithPoll(true),
		texlog.WithFlushInterval(50*time.Millisecond),
		texlog.WithWatchIncludeKinds(texlog.KindError),
	)
	if err != nil {
		t.Fatalf("WatchFile() error = %v", err)
	}

	got := collect(t, diags, errs, 1)
	if got[0].Kind != texlog.KindError {
		t.Errorf("Kind = %v, want error", got[0].Kind)
	}
}

func TestWatcher_ContextCancelClosesChannels(t *testing.T) {
	path := writeLog(t, t.TempDir(), "main.log", "")

	w, err := texlog.NewWatcher(path, texlog.WithPoll(true))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	diags, errs := w.Watch(ctx)
	cancel()

	timeout := time.After(5 * time.Second)
	for diags != nil || errs != nil {
		select {
		case _, ok := <-diags:
			if !ok {
				diags = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		case <-timeout:
			t.Fatal("channels not closed after cancel")
		}
	}
}

func TestWatcher_WatchTwice(t *testing.T) {
	path := writeLog(t, t.TempDir(), "main.log", "")

	w, err := texlog.NewWatcher(path, texlog.WithPoll(true))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	w.Watch(context.Background())
	diags, errs := w.Watch(context.Background())
	if _, ok := <-diags; ok {
		t.Error("second Watch() diagnostics channel should be closed")
	}
	if _, ok := <-errs; ok {
		t.Error("second Watch() error channel should be closed")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := texlog.NewWatcher(filepath.Join(t.TempDir(), "main.log"))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if w.Report() != nil {
		t.Error("Report() should be nil when Watch never ran")
	}
}
