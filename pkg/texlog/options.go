package texlog

import (
	"log/slog"
	"time"

	"github.com/texlog/texlog-go/internal/parser"
)

// ParseOption configures Parse, ParseFile, ParseFiles and Diagnostics.
type ParseOption func(*parseConfig)

// parseConfig holds internal configuration for parsing.
type parseConfig struct {
	separator    string
	contextLines int
	logger       *slog.Logger
	filter       *compiledFilter
	jobs         int
}

// defaultParseConfig returns a parseConfig with sensible defaults.
func defaultParseConfig() *parseConfig {
	return &parseConfig{
		separator:    parser.DefaultSeparator,
		contextLines: parser.DefaultContextLines,
	}
}

// applyParseOptions applies functional options to a parseConfig.
func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := defaultParseConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *parseConfig) parserOptions() parser.Options {
	return parser.Options{
		Separator:    c.separator,
		ContextLines: c.contextLines,
		Logger:       c.logger,
	}
}

// WithSeparator sets the text inserted between a message and each
// continuation line. Default: a single space. Use "" to concatenate directly.
func WithSeparator(sep string) ParseOption {
	return func(c *parseConfig) {
		c.separator = sep
	}
}

// WithContextLines sets the number of trailing context lines to retain.
// Reserved for future use: Record.ContextLines is currently always empty.
func WithContextLines(n int) ParseOption {
	return func(c *parseConfig) {
		c.contextLines = n
	}
}

// WithLogger sets the slog logger for debug output.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}

// WithIncludeKinds limits Diagnostics to the given kinds.
// Reports are always complete; filters apply to streamed diagnostics only.
func WithIncludeKinds(kinds ...Kind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = kindSet(kinds)
	}
}

// WithExcludeKinds drops the given kinds from Diagnostics.
// Exclude takes precedence over include.
func WithExcludeKinds(kinds ...Kind) ParseOption {
	return func(c *parseConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = kindSet(kinds)
	}
}

// WithJobs bounds how many files ParseFiles parses concurrently.
// 0 (default) uses GOMAXPROCS.
func WithJobs(n int) ParseOption {
	return func(c *parseConfig) {
		c.jobs = n
	}
}

// WatchOption configures a Watcher.
type WatchOption func(*watchConfig)

// watchConfig holds internal configuration for the watcher.
type watchConfig struct {
	parse         parseConfig
	poll          bool
	fromStart     bool
	mustExist     bool
	flushInterval time.Duration
}

// DefaultFlushInterval is how long a log must stay quiet before the last
// open diagnostic is released.
const DefaultFlushInterval = 500 * time.Millisecond

// defaultWatchConfig returns a watchConfig with sensible defaults.
func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		parse:         *defaultParseConfig(),
		fromStart:     true,
		flushInterval: DefaultFlushInterval,
	}
}

// applyWatchOptions applies functional options to a watchConfig.
func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithPoll uses polling instead of filesystem notifications.
// Default: false.
func WithPoll(poll bool) WatchOption {
	return func(c *watchConfig) {
		c.poll = poll
	}
}

// WithFromStart reads the content already in the log before following it.
// Default: true, since engines rewrite their log on every run.
func WithFromStart(fromStart bool) WatchOption {
	return func(c *watchConfig) {
		c.fromStart = fromStart
	}
}

// WithMustExist makes NewWatcher fail if the log does not exist yet.
// Default: false (wait for the engine to create it).
func WithMustExist(mustExist bool) WatchOption {
	return func(c *watchConfig) {
		c.mustExist = mustExist
	}
}

// WithFlushInterval sets how long the log must be quiet before the last
// diagnostic is released without waiting for the next one. 0 disables
// idle flushing. Default: 500ms.
func WithFlushInterval(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.flushInterval = d
	}
}

// WithWatchSeparator is WithSeparator for watchers.
func WithWatchSeparator(sep string) WatchOption {
	return func(c *watchConfig) {
		c.parse.separator = sep
	}
}

// WithWatchLogger sets the slog logger for debug output.
func WithWatchLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.parse.logger = logger
	}
}

// WithWatchIncludeKinds limits emitted diagnostics to the given kinds.
func WithWatchIncludeKinds(kinds ...Kind) WatchOption {
	return func(c *watchConfig) {
		if c.parse.filter == nil {
			c.parse.filter = &compiledFilter{}
		}
		c.parse.filter.include = kindSet(kinds)
	}
}

// WithWatchExcludeKinds drops the given kinds from emitted diagnostics.
func WithWatchExcludeKinds(kinds ...Kind) WatchOption {
	return func(c *watchConfig) {
		if c.parse.filter == nil {
			c.parse.filter = &compiledFilter{}
		}
		c.parse.filter.exclude = kindSet(kinds)
	}
}
