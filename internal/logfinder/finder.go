// Package logfinder locates the engine log belonging to a TeX build.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Environment variables consulted during discovery.
const (
	// EnvLogFile names the log file to use when no target is given.
	EnvLogFile = "TEXLOG_LOG"

	// EnvOutDir is the build output directory (as passed to -output-directory).
	EnvOutDir = "TEXLOG_OUTDIR"
)

// Sentinel errors.
var (
	ErrLogNotFound = errors.New("log file not found")
	ErrNoLogFiles  = errors.New("no log files found")
)

// FindLogFile returns the engine log for target.
//
// Resolution:
//  1. empty target: TEXLOG_LOG, then the newest *.log in the working directory
//  2. a directory: its newest *.log
//  3. a .tex source: <stem>.log in TEXLOG_OUTDIR, then next to the source
//  4. any other existing file is returned as is
//
// The returned path has symlinks resolved.
func FindLogFile(target string) (string, error) {
	if target == "" {
		if env := os.Getenv(EnvLogFile); env != "" {
			if resolved := resolveFile(env); resolved != "" {
				return resolved, nil
			}
			return "", fmt.Errorf("%w: %s points to %q", ErrLogNotFound, EnvLogFile, env)
		}
		return FindLatestLogFile(".")
	}

	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		return FindLatestLogFile(target)
	}

	if isSource(target) {
		for _, candidate := range logCandidates(target) {
			if resolved := resolveFile(candidate); resolved != "" {
				return resolved, nil
			}
		}
		return "", fmt.Errorf("%w: no log for %s", ErrLogNotFound, target)
	}

	if resolved := resolveFile(target); resolved != "" {
		return resolved, nil
	}
	return "", fmt.Errorf("%w: %s", ErrLogNotFound, target)
}

// LogPathFor returns where the engine will write the log for target,
// without requiring it to exist. Non-source targets are returned unchanged.
func LogPathFor(target string) string {
	if !isSource(target) {
		return target
	}
	return logCandidates(target)[0]
}

// FindLatestLogFile returns the most recently modified *.log file in dir,
// with symlinks resolved.
//
// Returns ErrNoLogFiles if no log files are found.
func FindLatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.log"))
	if err != nil {
		return "", fmt.Errorf("globbing log files: %w", err)
	}

	type fileInfo struct {
		path    string
		modTime int64
	}
	files := make([]fileInfo, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, fileInfo{path: path, modTime: info.ModTime().UnixNano()})
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoLogFiles, dir)
	}

	// Newest first; ties broken by name for stable results.
	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime != files[j].modTime {
			return files[i].modTime > files[j].modTime
		}
		return files[i].path < files[j].path
	})

	if resolved, err := filepath.EvalSymlinks(files[0].path); err == nil {
		return resolved, nil
	}
	return files[0].path, nil
}

func isSource(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".tex" || ext == ".ltx" || ext == ".dtx"
}

// logCandidates lists possible log locations for a source file, most specific first.
func logCandidates(source string) []string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := stem + ".log"

	var out []string
	if outDir := os.Getenv(EnvOutDir); outDir != "" {
		out = append(out, filepath.Join(outDir, name))
	}
	return append(out, filepath.Join(filepath.Dir(source), name))
}

// resolveFile resolves symlinks and returns the path if it is a regular file,
// or "" otherwise.
func resolveFile(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		// Fall back to the original path (e.g. permission issues on a parent).
		resolved = path
	}
	return resolved
}
