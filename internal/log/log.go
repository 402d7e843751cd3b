// Package log provides category-based structured logging for mlstudy.
// Entries are written through zerolog and logging is enabled via the --debug
// flag or the MLSTUDY_DEBUG env var.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fkid009/MLflow-study/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Category groups related log messages.
type Category string

const (
	CatDB       Category = "db"       // Database operations and migrations
	CatConfig   Category = "config"   // Configuration loading/saving
	CatWatcher  Category = "watcher"  // File watcher events
	CatRegistry Category = "registry" // Model registry coordinator
	CatTracking Category = "tracking" // Experiment and run tracking
	CatArtifact Category = "artifact" // Artifact store
	CatAPI      Category = "api"      // HTTP API
	CatCache    Category = "cache"    // cache operations
	CatCLI      Category = "cli"      // command execution
	CatTrace    Category = "trace"    // span export
)

// Config selects where and how entries are written.
type Config struct {
	// Path is the log file. Empty writes to stderr.
	Path string
	// Level is the minimum level: debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
}

// Entry is one written log line as seen by listeners.
type Entry struct {
	Level    Level
	Category Category
	Message  string
	Fields   map[string]any
}

// String renders the entry as a single console line.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s", e.Level, e.Category, e.Message)
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}

// Logger writes entries to zerolog and republishes them to listeners.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	zl       zerolog.Logger
	minLevel Level
	entries  *pubsub.Broker[Entry]
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger.
// Returns a cleanup function to close the log file.
func Init(cfg Config) (func(), error) {
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newLogger(cfg)
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		defaultLogger.entries.Close()
		if defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

// InitWriter installs a JSON logger writing to w, replacing any current one.
func InitWriter(w io.Writer, level Level) {
	defaultLogger = &Logger{
		zl:       zerolog.New(w).With().Timestamp().Logger(),
		minLevel: level,
		entries:  pubsub.NewBroker[Entry](),
	}
}

func newLogger(cfg Config) (*Logger, error) {
	var (
		out  io.Writer = os.Stderr
		file *os.File
	)
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is user-controlled debug log path
		if err != nil {
			return nil, err
		}
		file, out = f, f
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: file != nil}
	}

	return &Logger{
		file:     file,
		zl:       zerolog.New(out).With().Timestamp().Logger(),
		minLevel: ParseLevel(cfg.Level),
		entries:  pubsub.NewBroker[Entry](),
	}, nil
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs at error level with err under the "error" key.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.minLevel {
		return
	}

	entry := Entry{Level: level, Category: cat, Message: msg, Fields: make(map[string]any, (len(fields)+1)/2)}
	ev := l.zl.WithLevel(level.zerolog()).Str("category", string(cat))
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		ev = ev.Interface(key, fields[i+1])
		entry.Fields[key] = fields[i+1]
	}
	// A trailing key without a value is kept so the call site is findable.
	if len(fields)%2 != 0 {
		key := fmt.Sprint(fields[len(fields)-1])
		ev = ev.Str(key, "<missing>")
		entry.Fields[key] = "<missing>"
	}
	ev.Msg(msg)

	l.entries.Publish(pubsub.CreatedEvent, entry)
}

// LogListener pulls log entries one at a time.
type LogListener = pubsub.ContinuousListener[Entry]

// NewListener follows log entries until ctx is cancelled. It returns nil
// when logging is off.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewContinuousListener[Entry](ctx, defaultLogger.entries)
}
