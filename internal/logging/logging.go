package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	SUCCESS
	WARN
	ERROR
)

// Logger is a small leveled logger. In CLI mode it routes through the ui
// package so output stays colored and consistent with the rest of the
// command surface; otherwise it writes plain timestamped lines, which is
// what the unattended certificate-renewal path wants in its log file.
type Logger struct {
	writer io.Writer
	Level  LogLevel
	mutex  sync.Mutex
	isCLI  bool
}

func NewLogger(level LogLevel, isCLI bool) *Logger {
	return &Logger{writer: os.Stdout, Level: level, isCLI: isCLI}
}

// NewFileLogger appends to the given file, creating it if needed.
func NewFileLogger(level LogLevel, path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return &Logger{writer: f, Level: level, isCLI: false}, nil
}

func (l *Logger) write(level, msg string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	fmt.Fprintf(l.writer, "%s [%s] %s\n", time.Now().Format(time.RFC3339), level, msg)
}

func (l *Logger) Debug(msg string) {
	if l.Level > DEBUG {
		return
	}
	if l.isCLI {
		ui.Debug("%s\n", msg)
	} else {
		l.write("DEBUG", msg)
	}
}

func (l *Logger) Info(msg string) {
	if l.Level > INFO {
		return
	}
	if l.isCLI {
		ui.Info("%s\n", msg)
	} else {
		l.write("INFO", msg)
	}
}

func (l *Logger) Success(msg string) {
	if l.Level > SUCCESS {
		return
	}
	if l.isCLI {
		ui.Success("%s\n", msg)
	} else {
		l.write("SUCCESS", msg)
	}
}

func (l *Logger) Warn(msg string, err ...error) {
	if l.Level > WARN {
		return
	}
	if len(err) > 0 && err[0] != nil {
		msg = fmt.Sprintf("%s: %v", msg, err[0])
	}
	if l.isCLI {
		ui.Warn("%s\n", msg)
	} else {
		l.write("WARN", msg)
	}
}

func (l *Logger) Error(msg string, err ...error) {
	if len(err) > 0 && err[0] != nil {
		msg = fmt.Sprintf("%s: %v", msg, err[0])
	}
	if l.isCLI {
		ui.Error("%s\n", msg)
	} else {
		l.write("ERROR", msg)
	}
}
