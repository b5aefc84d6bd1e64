package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"

	"github.com/factionboard/missionstore/internal/config"
)

// ParseLevel maps a logLevel config string to a zerolog level,
// defaulting to info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Setup configures the global log level and builds the root logger: a
// colored console writer on stderr, a no-color console writer into the
// log file, and a GELF writer when Graylog shipping is enabled.
// Failures to open the file or reach Graylog degrade to a warning and
// drop that sink, never abort.
func Setup() zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(config.GetString("logLevel")))
	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	// stderr so table and JSON output on stdout stay clean
	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	writers := []io.Writer{console}
	boot := zerolog.New(console).With().Timestamp().Logger()

	logsDir := config.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			boot.Warn().Err(err).Str("path", logsDir).Msg("Failed to create logs directory")
		}
	}

	logPath := config.LogFilePath()
	file, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		boot.Warn().Err(err).Str("path", logPath).Msg("Failed to create/open log file!")
	} else {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		})
	}

	if gl := config.GetGraylogConfig(); gl.Enabled {
		gw, err := gelf.NewWriter(gl.Address)
		if err != nil {
			boot.Warn().Err(err).Str("address", gl.Address).Msg("Failed to connect GELF writer")
		} else {
			writers = append(writers, gw)
		}
	}

	mlw := zerolog.MultiLevelWriter(writers...)
	return zerolog.New(mlw).With().Timestamp().Logger()
}
