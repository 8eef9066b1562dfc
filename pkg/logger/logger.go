// Package logger holds the process-wide zerolog logger for the campaign API.
//
// cmd/api calls Init once with values from config; anything that runs later
// may call Get. Every entry carries a timestamp, the caller and, when
// configured, the service name.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options is read by the first Init call only.
type Options struct {
	Level   string    // trace, debug, info, warn or error; anything else means info
	Pretty  bool      // console output for local runs, JSON otherwise
	Output  io.Writer // os.Stdout when nil
	Service string    // "service" field on every entry, omitted when empty
}

var (
	mu    sync.Mutex
	root  *zerolog.Logger
	build sync.Once
)

// Init builds the logger from opts and returns it. Later calls ignore their
// options and return the logger built by the first one.
func Init(opts Options) zerolog.Logger {
	build.Do(func() {
		l := newLogger(opts)
		mu.Lock()
		root = &l
		mu.Unlock()
	})
	return Get()
}

// Get returns the logger built by Init and panics when Init has not run.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// Reset forgets the current logger so a test can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = nil
	build = sync.Once{}
}

func newLogger(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opts.Output != nil {
		w = opts.Output
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	fields := zerolog.New(w).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	return fields.Logger()
}

// parseLevel accepts "warning" as an alias and falls back to info. Levels
// zerolog knows but the API never uses (fatal, panic, disabled) also map to
// info so a typo in LOG_LEVEL cannot silence the process.
func parseLevel(s string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		name = "warn"
	}
	switch lvl, err := zerolog.ParseLevel(name); {
	case err != nil, name == "":
		return zerolog.InfoLevel
	case lvl >= zerolog.TraceLevel && lvl <= zerolog.ErrorLevel:
		return lvl
	default:
		return zerolog.InfoLevel
	}
}
