// Package logger holds the process-wide zerolog logger.
//
// main calls Init once with values from config; packages that are not handed
// a logger explicitly fall back to Get.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the process logger.
type Options struct {
	// Level names the lowest level written. Unknown or empty names mean info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output receives the events. Nil means stdout.
	Output io.Writer
	// Service and Env are stamped on every event when non-empty.
	Service string
	Env     string
}

var (
	mu     sync.Mutex
	once   sync.Once
	shared *zerolog.Logger
)

// Init builds the process logger from opts on the first call and returns it.
// Later calls ignore opts and return the logger built first.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		l := build(opts)
		mu.Lock()
		shared = &l
		mu.Unlock()
	})
	return Get()
}

// Get returns the logger built by Init and panics when Init has not run.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if shared == nil {
		panic("logger: Get called before Init")
	}
	return *shared
}

// Reset forgets the process logger so tests can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	shared = nil
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	c := zerolog.New(out).Level(level).With().Timestamp().Caller()
	if opts.Service != "" {
		c = c.Str("service", opts.Service)
	}
	if opts.Env != "" {
		c = c.Str("env", opts.Env)
	}
	return c.Logger()
}

// parseLevel accepts trace, debug, info, warn (or warning) and error in any
// case.
func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
