// Package logger provides a thin leveled-logging facade over go-logging
// shared by every component of the gateway.
package logger

import (
	"os"

	logging "github.com/op/go-logging"
)

// Logger is the logging surface every component receives at construction.
// No component ever reaches for a package-level global.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Notice(args ...interface{})
	Noticef(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})
}

var backendOnce = logging.NewLogBackend(os.Stderr, "", 0)

// New creates a named logger at the given level. Level is one of
// debug|info|notice|warning|error|critical; an unrecognized value
// falls back to info.
func New(name string, level string) Logger {
	lg := logging.MustGetLogger(name)

	fmtBackend := logging.NewBackendFormatter(backendOnce, logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} [%{module}] %{message}`,
	))
	leveled := logging.AddModuleLevel(fmtBackend)
	leveled.SetLevel(parseLevel(level), "")
	logging.SetBackend(leveled)

	return lg
}

func parseLevel(level string) logging.Level {
	switch level {
	case "debug":
		return logging.DEBUG
	case "notice":
		return logging.NOTICE
	case "warning":
		return logging.WARNING
	case "error":
		return logging.ERROR
	case "critical":
		return logging.CRITICAL
	default:
		return logging.INFO
	}
}
