// Package util provides shared logging and IPv4 helpers.
package util

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// WithSample returns a logger with sample context (the execution timestamp
// that namespaces one captured sample)
func WithSample(sample string) *logrus.Entry {
	return Logger.WithField("sample", sample)
}

// WithStage returns a logger with pipeline stage context
func WithStage(stage string) *logrus.Entry {
	return Logger.WithField("stage", stage)
}

// Tracef logs a formatted trace message
func Tracef(format string, args ...interface{}) {
	Logger.Tracef(format, args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}
