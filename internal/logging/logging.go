// Package logging provides duckindex's process-wide logger: a leveled
// writer over a size-rotated file, the way the indexer's own
// predecessor kept a debug log file rather than reaching for a
// structured logging library the rest of its dependency graph never
// needed.
package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func ParseLevel(s string) Level {
	switch s {
	case "error":
		return LevelError
	case "warn":
		return LevelWarn
	case "debug":
		return LevelDebug
	case "trace":
		return LevelTrace
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "INFO"
	}
}

const (
	maxLogBytes   = 64 * 1024 * 1024 // 64 MiB rotation threshold
	maxRotated    = 7
	logFileName   = "duckindex.log"
	envLevel      = "DUCKINDEX_LOG_LEVEL"
	envTestDir    = "DUCKINDEX_TEST_DIR"
	rotatedPrefix = "duckindex_"
)

// Logger is a single process-wide leveled writer. Its zero value is not
// usable; construct with New.
type Logger struct {
	mu      sync.Mutex
	level   Level
	out     io.Writer
	file    *os.File
	path    string
	written int64
	console bool
}

// New opens (or creates) the rotating log file under dataDir/log, or
// writes to stderr only when DUCKINDEX_TEST_DIR forces console mode.
func New(dataDir string) (*Logger, error) {
	level := ParseLevel(os.Getenv(envLevel))

	if os.Getenv(envTestDir) != "" {
		return &Logger{level: level, out: os.Stderr, console: true}, nil
	}

	logDir := filepath.Join(dataDir, "log")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}
	path := filepath.Join(logDir, logFileName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("logging: stat log file: %w", err)
	}

	return &Logger{
		level:   level,
		out:     f,
		file:    f,
		path:    path,
		written: info.Size(),
	}, nil
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s [%s] %s\n", time.Now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
	n, err := io.WriteString(l.out, line)
	if err != nil {
		return
	}
	if l.console {
		return
	}
	l.written += int64(n)
	if l.written >= maxLogBytes {
		l.rotate()
	}
}

// rotate must be called with mu held. It gzips the active file into
// duckindex_1.log.gz, shifting older rotations up and dropping anything
// past maxRotated, then truncates the active file.
func (l *Logger) rotate() {
	if l.file == nil {
		return
	}
	l.file.Close()

	dir := filepath.Dir(l.path)
	oldest := filepath.Join(dir, fmt.Sprintf("%s%d.log.gz", rotatedPrefix, maxRotated))
	os.Remove(oldest)
	for i := maxRotated - 1; i >= 1; i-- {
		from := filepath.Join(dir, fmt.Sprintf("%s%d.log.gz", rotatedPrefix, i))
		to := filepath.Join(dir, fmt.Sprintf("%s%d.log.gz", rotatedPrefix, i+1))
		os.Rename(from, to)
	}
	if err := gzipFile(l.path, filepath.Join(dir, rotatedPrefix+"1.log.gz")); err != nil {
		// Best effort: if compression fails, drop the rotation and keep
		// appending to the same file rather than lose log output.
		f, ferr := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr == nil {
			l.file = f
			l.out = f
		}
		return
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	l.file = f
	l.out = f
	l.written = 0
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.log(LevelTrace, format, args...) }
