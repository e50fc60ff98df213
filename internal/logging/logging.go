package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes structured entries to stdout and a rotating file.
type Logger struct {
	*logrus.Logger
	file io.Closer
}

// New creates the log directory and returns a Logger at the given level.
func New(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create logs folder failed: %w", err)
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "heat-alert.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}

	l := logrus.New()
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	// Output to both file and console
	l.SetOutput(io.MultiWriter(os.Stdout, rotator))

	return &Logger{Logger: l, file: rotator}, nil
}

// NewDiscard returns a Logger that drops everything. Used by tests.
func NewDiscard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

// WithRequest scopes an entry to a request id.
func (l *Logger) WithRequest(requestID string) *logrus.Entry {
	return l.WithField("request_id", requestID)
}

// Close flushes and closes the log file.
func (l *Logger) Close() {
	if l.file == nil {
		return
	}
	_ = l.file.Close()
}
