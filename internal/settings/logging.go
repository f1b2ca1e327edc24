package settings

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging points logrus at stderr with the requested level.
// "off" and "none" discard all output. Unknown levels fall back to warn.
func ConfigureLogging(level string) {
	ConfigureLoggingTo(os.Stderr, level)
}

// ConfigureLoggingTo is ConfigureLogging with an explicit writer.
func ConfigureLoggingTo(w io.Writer, level string) {
	log.SetFormatter(&log.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	switch level {
	case "off", "none":
		log.SetOutput(io.Discard)
		return
	case "trace":
		log.SetLevel(log.TraceLevel)
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.WarnLevel)
	}
	log.SetOutput(w)
}
