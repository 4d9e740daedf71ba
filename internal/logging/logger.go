// Package logging provides structured logging for the apigee CLI.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zerolog so commands share one configured sink.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer // current output writer
	file   io.Closer // optional log file, nil when disabled
}

// Options configures a Logger.
type Options struct {
	// Out receives human-readable console lines. Defaults to os.Stderr so that
	// command output on stdout can be piped.
	Out io.Writer

	// LogFile, when set, additionally receives JSON log lines through a rotating file.
	LogFile string
}

// NewLogger creates a logger with the given options.
func NewLogger(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
	}

	l := &Logger{}
	if opts.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}
		output = zerolog.MultiLevelWriter(output, file)
		l.file = file
	}

	l.output = output
	l.zlog = zerolog.New(output).With().Timestamp().Logger()
	return l
}

// NewDefaultCLILogger creates a console-only logger on stderr.
func NewDefaultCLILogger() *Logger {
	return NewLogger(Options{})
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Trace returns a trace level event.
func (l *Logger) Trace() *zerolog.Event {
	return l.zlog.Trace()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger context with additional fields.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Debugf logs a debug message with printf-style formatting.
// This is only shown when debug/verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	})
}
