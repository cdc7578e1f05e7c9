package config

import (
	"io"
	"log"
	"os"

	"github.com/hashicorp/logutils"
)

// LogLevels are the level prefixes recognised in log lines, lowest first.
var LogLevels = []logutils.LogLevel{"DEBUG", "INFO", "WARN", "ERROR"}

func validLevel(level string) bool {
	for _, l := range LogLevels {
		if string(l) == level {
			return true
		}
	}
	return false
}

// NewLogFilter wraps w so that lines below level are dropped.
func NewLogFilter(level string, w io.Writer) *logutils.LevelFilter {
	return &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: logutils.LogLevel(level),
		Writer:   w,
	}
}

// SetupLogging points the standard logger at a level filter over stderr
// or the configured file. The returned closer releases the file.
func SetupLogging(c LoggingConfig) (io.Closer, error) {
	var w io.WriteCloser = nopCloser{os.Stderr}
	if c.Path != "" {
		f, err := os.OpenFile(c.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		w = f
	}

	log.SetOutput(NewLogFilter(c.Level, w))
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Print("[DEBUG] Debug is on")
	return w, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
