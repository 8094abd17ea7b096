// internal/util/logger.go
package util

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// InitLogger initializes the global structured logger.
// format "json" selects the JSON formatter, anything else the text formatter.
func InitLogger(level, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger = l
	return l
}

// GetLogger returns the initialized global logger.
func GetLogger() *logrus.Logger {
	if logger == nil {
		InitLogger("info", "text")
	}
	return logger
}
