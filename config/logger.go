package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger. It is logrus' standard logger so that
// packages under pkg/ logging through logrus directly share its settings.
var Logger = logrus.StandardLogger()

func init() {
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func ConfigureLogger(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	Logger.SetLevel(parsed)
	return nil
}
