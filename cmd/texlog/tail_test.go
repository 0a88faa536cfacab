package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidTailFormats(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"auto", true},
		{"jsonl", true},
		{"pretty", true},
		{"json", false},
		{"summary", false},
		{"msgpack", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			if got := ValidTailFormats[tt.format]; got != tt.valid {
				t.Errorf("ValidTailFormats[%q] = %v, want %v", tt.format, got, tt.valid)
			}
		})
	}
}

func TestRunTail_InvalidFlags(t *testing.T) {
	withConfig(t, "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "batch format",
			args:    []string{"--format", "summary", "main.log"},
			wantErr: "invalid format",
		},
		{
			name:    "unknown kind",
			args:    []string{"--exclude-kinds", "fatal", "main.log"},
			wantErr: "unknown kind",
		},
		{
			name:    "negative flush interval",
			args:    []string{"--flush-interval", "-1s", filepath.Join(t.TempDir(), "main.log")},
			wantErr: "flush interval",
		},
		{
			name:    "too many args",
			args:    []string{"a.log", "b.log"},
			wantErr: "accepts at most 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTailCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(io.Discard)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveTailPath(t *testing.T) {
	t.Setenv("TEXLOG_OUTDIR", "")
	dir := t.TempDir()
	existing := filepath.Join(dir, "main.log")
	if err := os.WriteFile(existing, []byte(testLog), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{
			name:   "directory picks newest log",
			target: dir,
			want:   "main.log",
		},
		{
			name:   "source whose log does not exist yet",
			target: filepath.Join(dir, "paper.tex"),
			want:   "paper.log",
		},
		{
			name:   "log that does not exist yet",
			target: filepath.Join(dir, "later.log"),
			want:   "later.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTailPath(tt.target)
			if err != nil {
				t.Fatalf("resolveTailPath() error = %v", err)
			}
			if filepath.Base(got) != tt.want {
				t.Errorf("resolveTailPath() = %q, want base %q", got, tt.want)
			}
		})
	}
}
