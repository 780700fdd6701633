package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields is re-exported so callers don't import logrus for one type.
type Fields = logrus.Fields

// New builds the process logger. Unknown levels fall back to info,
// unknown formats to text.
func New(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

// WithComponent tags a logger for one engine subsystem.
func WithComponent(log *logrus.Logger, name string) logrus.FieldLogger {
	return log.WithField("component", name)
}
