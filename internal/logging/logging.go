package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup creates a configured *logrus.Logger writing to stderr, makes the
// standard logger match it, and returns it.
// The level parameter accepts: "debug", "info", "warn", "error" (case-insensitive).
// Defaults to info if the level string is unrecognized.
func Setup(level string) *logrus.Logger {
	return SetupWriter(level, os.Stderr)
}

func SetupWriter(level string, w io.Writer) *logrus.Logger {
	lvl := ParseLevel(level)
	formatter := &logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
		TimestampFormat:  "15:04:05",
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(formatter)

	std := logrus.StandardLogger()
	std.SetOutput(w)
	std.SetLevel(lvl)
	std.SetFormatter(formatter)
	return logger
}

func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
