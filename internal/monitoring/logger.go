package monitoring

import (
	"github.com/sirupsen/logrus"
)

// Logger is the structured logger backing the default Logf. The CLI
// configures its level and formatter at startup.
var Logger = logrus.New()

// Logf is the package-level diagnostic logger. It defaults to Logger.Infof but
// may be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = Logger.Infof

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// ConfigureLogger sets the level and output format of Logger. Unknown levels
// fall back to info.
func ConfigureLogger(level string, json bool) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)
	if json {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
