package logging

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/arbitrary-partials/internal/config"
)

// Logger wraps slog.Logger with consistent field names for document work.
// When file logging is enabled, records are also appended to
// .partials/logs/partials.log so runs can be inspected afterwards.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New builds a Logger from the project configuration. Output goes to stderr
// and, if log.file is set, to the project log file as well.
func New(cfg *config.Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Project.Log.Level)
	if err != nil {
		return nil, err
	}
	var (
		out  io.Writer = os.Stderr
		file *os.File
	)
	if cfg.Project.Log.File {
		if err := os.MkdirAll(cfg.LogsDir(), 0o755); err != nil {
			return nil, fmt.Errorf("logging: ensure log dir: %w", err)
		}
		file, err = os.OpenFile(cfg.LogFilePath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
	}
	logger := NewWithWriter(out, level, cfg.Project.Log.Format)
	logger.file = file
	return logger, nil
}

// NewWithWriter creates a Logger writing text or JSON records to w.
func NewWithWriter(w io.Writer, level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Noop creates a Logger that discards all output.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a config level name onto slog.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", name)
	}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithSource tags records with the document they concern.
func (l *Logger) WithSource(source string) *Logger {
	return &Logger{Logger: l.Logger.With("source", filepath.Clean(source)), file: l.file}
}

// LogDocument records the outcome of parsing a whole document.
func (l *Logger) LogDocument(source string, elements int, err error) {
	if err != nil {
		l.Error("document rejected",
			"source", source,
			"error", err,
		)
		return
	}
	l.Info("document parsed",
		"source", source,
		"elements", elements,
	)
}

// LogElement records the outcome of parsing one top-level element.
func (l *Logger) LogElement(tag, id string, err error) {
	if err != nil {
		l.Warn("element failed",
			"element", tag,
			"id", id,
			"error", err,
		)
		return
	}
	l.Debug("element parsed",
		"element", tag,
		"id", id,
	)
}

// maxTailLine is the longest log line Tail will read.
const maxTailLine = 1 << 20

// Tail returns up to maxLines of the most recent lines of the log file at
// path. A missing file yields nil. When reading stops early, the lines read so
// far are returned together with the error.
func Tail(path string, maxLines int) ([]string, error) {
	if path == "" || maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tail %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTailLine)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > maxLines {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("tail %s: %w", path, err)
	}
	if len(lines) == 0 {
		return nil, nil
	}
	return lines, nil
}
