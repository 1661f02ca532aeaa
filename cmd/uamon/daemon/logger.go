package daemon

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the daemon's structured logger from the logger
// section of the configuration. Unknown levels fall back to info.
func NewLogger(cfg LoggerConfig) *logrus.Logger {
	log := logrus.New()
	log.Out = os.Stdout

	switch strings.ToUpper(cfg.Format) {
	case "JSON":
		log.Formatter = &logrus.JSONFormatter{DisableTimestamp: cfg.DisableTimestamp}
	default:
		log.Formatter = &logrus.TextFormatter{
			FullTimestamp:    true,
			DisableTimestamp: cfg.DisableTimestamp,
		}
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.Level = level
	return log
}
