// Package logging provides the run logger: leveled, colored console output
// with an optional plain-text file sink for long batch runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"flacfix/internal/config"
	"flacfix/internal/term"
)

// level pairs a log level name with its console color and output stream.
type level struct {
	name     string
	color    *string // Pointer: term colors are reconfigured at startup.
	toStderr bool
}

var (
	levelInfo    = level{name: "INFO", color: &term.Blue}
	levelSuccess = level{name: "SUCCESS", color: &term.Green}
	levelWarn    = level{name: "WARN", color: &term.Yellow}
	levelError   = level{name: "ERROR", color: &term.Red, toStderr: true}
	levelDebug   = level{name: "DEBUG", color: &term.Cyan}
)

// Logger writes timestamped leveled lines to the console and, when a log
// file is configured, uncolored copies to that file.
type Logger struct {
	mu      sync.Mutex
	file    *os.File
	verbose bool
}

// NewLogger configures terminal colors from cfg and opens cfg.LogFile when
// set. Call Close when done if a log file was opened.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	l := &Logger{verbose: cfg.Verbose}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
	}
	return l, nil
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) emit(lv level, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	ts := time.Now().Format("2006-01-02 15:04:05")
	plain := ts + " [" + lv.name + "] " + text + "\n"

	out := os.Stdout
	if lv.toStderr {
		out = os.Stderr
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c := *lv.color; c != "" {
		_, _ = io.WriteString(out, ts+" "+c+"["+lv.name+"]"+term.NC+" "+text+"\n")
	} else {
		_, _ = io.WriteString(out, plain)
	}
	if l.file != nil {
		_, _ = io.WriteString(l.file, plain)
	}
}

// Info logs routine run progress.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(levelInfo, format, args...)
}

// Success logs a completed, verified action.
func (l *Logger) Success(format string, args ...interface{}) {
	l.emit(levelSuccess, format, args...)
}

// Warn logs recoverable conditions (missing files, log write failures).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(levelWarn, format, args...)
}

// Error logs per-file and fatal failures; also written to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(levelError, format, args...)
}

// Debug logs only when verbose is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.emit(levelDebug, format, args...)
}
