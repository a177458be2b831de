package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// logger is the process-wide logger. It always writes to stderr so that
// stdio-mode MCP traffic on stdout stays clean.
var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Initialize configures the global logger from a numeric level (0-9).
// 0 is warnings and errors only, 3 and above enables info, 5 and above
// enables debug.
func Initialize(level int) {
	switch {
	case level >= 5:
		logger = logger.Level(zerolog.DebugLevel)
	case level >= 3:
		logger = logger.Level(zerolog.InfoLevel)
	default:
		logger = logger.Level(zerolog.WarnLevel)
	}
}

// Debug logs at debug level (level 5-9)
func Debug(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

// Info logs at info level (level 3-9)
func Info(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

// Warn logs at warning level
func Warn(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

// Error logs at error level
func Error(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}
