package observability

import (
	"github.com/sirupsen/logrus"
)

// SetupLogger creates a logrus logger with the given level. Unparseable
// levels fall back to info.
func SetupLogger(logLevel string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
