package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the logging surface used across the application. Every entry is
// tagged with the component that produced it.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component, message string, err error, fields map[string]interface{})
}

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	return NewZerolog(consoleWriter, level)
}

// New builds a logger from the LOG_LEVEL / LOG_FORMAT settings. Unknown
// levels fall back to info.
func New(level, format string) *ZerologAdapter {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "json") {
		return NewZerolog(os.Stderr, lvl)
	}
	return NewConsoleLogger(lvl)
}

// Nop returns a logger that discards everything.
func Nop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	emit(z.logger.Debug(), component, message, fields)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	emit(z.logger.Info(), component, message, fields)
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	emit(z.logger.Warn(), component, message, fields)
}

// Error records err under "error" next to a message saying what was being
// attempted.
func (z *ZerologAdapter) Error(component, message string, err error, fields map[string]interface{}) {
	emit(z.logger.Error().Err(err), component, message, fields)
}

// emit writes fields in key order so entries are stable across runs.
func emit(event *zerolog.Event, component, message string, fields map[string]interface{}) {
	if event == nil {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	event = event.Str("component", component)
	for _, k := range keys {
		event = event.Interface(k, fields[k])
	}
	event.Msg(message)
}
