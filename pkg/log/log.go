// Package log provides structured logging for carprice.
//
// Loggers take a message and alternating key/value fields:
//
//	logger := log.GetLoggerWithName("etl").With(log.RunIDKey, runID)
//	logger.Info("Deduplication completed",
//		log.RowsKey, n,
//		log.RemovedKey, removed,
//	)
//
// The default provider is backed by github.com/rs/zerolog and writes JSON to
// stderr. CLIs switch to a console writer with NewConsoleProvider.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelDisabled
)

// Standard field keys.
const (
	ComponentKey  = "component"
	ModelNameKey  = "model_name"
	OperationKey  = "operation"
	PhaseKey      = "phase"
	SamplesKey    = "samples"
	FeaturesKey   = "features"
	PredsKey      = "predictions"
	DurationMsKey = "duration_ms"
	RowsKey       = "rows"
	ColumnsKey    = "columns"
	RemovedKey    = "removed"
	SkippedKey    = "skipped"
	ReplacedKey   = "replaced"
	PathKey       = "path"
	RunIDKey      = "run_id"
	ErrorKey      = "error"
)

// Operation and phase values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationLoad      = "load"
	OperationSave      = "save"
	OperationNormalize = "normalize"
	OperationDedupe    = "dedupe"
	OperationDerive    = "derive"

	PhaseTraining   = "training"
	PhaseInference  = "inference"
	PhaseCleaning   = "cleaning"
	PhaseEvaluation = "evaluation"
)

// Logger is a leveled structured logger.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	// Error logs at error level. If the first field is an error it is
	// attached under ErrorKey.
	Error(msg string, fields ...interface{})
	With(fields ...interface{}) Logger
}

// LoggerProvider hands out named loggers sharing one sink and level.
type LoggerProvider interface {
	GetLogger() Logger
	GetLoggerWithName(name string) Logger
	SetLevel(level Level)
}

// ToLogLevel parses a level name. Unknown names map to LevelInfo.
func ToLogLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "disabled", "off", "none":
		return LevelDisabled
	default:
		return LevelInfo
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelDisabled:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// ZerologProvider is a LoggerProvider backed by zerolog.
type ZerologProvider struct {
	mu   sync.RWMutex
	base zerolog.Logger
}

// NewZerologProvider creates a provider writing JSON lines to stderr.
func NewZerologProvider(level Level) *ZerologProvider {
	return NewZerologProviderWithWriter(os.Stderr, level)
}

// NewZerologProviderWithWriter creates a provider writing JSON lines to w.
func NewZerologProviderWithWriter(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{
		base: zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// NewConsoleProvider creates a provider with human-readable output on stderr.
func NewConsoleProvider(level Level) *ZerologProvider {
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return NewZerologProviderWithWriter(cw, level)
}

// GetLogger returns the unnamed root logger.
func (p *ZerologProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{zl: p.base}
}

// GetLoggerWithName returns a logger tagged with the "logger" field.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &zerologLogger{zl: p.base.With().Str("logger", name).Logger()}
}

// SetLevel changes the level for loggers handed out afterwards.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = p.base.Level(level.zerolog())
}

type zerologLogger struct {
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...interface{}) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...interface{}) {
	emit(l.zl.Info(), msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...interface{}) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...interface{}) {
	ev := l.zl.Error()
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.AnErr(ErrorKey, err)
			fields = fields[1:]
		}
	}
	emit(ev, msg, fields)
}

func (l *zerologLogger) With(fields ...interface{}) Logger {
	return &zerologLogger{zl: l.zl.With().Fields(toMap(fields)).Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []interface{}) {
	if ev == nil {
		return
	}
	ev.Fields(toMap(fields)).Msg(msg)
}

// toMap pairs up alternating key/value fields. A trailing key without a value
// is recorded under "!BADKEY".
func toMap(fields []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(fields)/2+1)
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		if i+1 >= len(fields) {
			m["!BADKEY"] = key
			break
		}
		if err, ok := fields[i+1].(error); ok {
			m[key] = err.Error()
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}

var (
	globalMu       sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetGlobalProvider replaces the provider used by GetLogger and GetLoggerWithName.
func SetGlobalProvider(p LoggerProvider) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalProvider = p
}

// GetGlobalProvider returns the current global provider.
func GetGlobalProvider() LoggerProvider {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalProvider
}

// GetLogger returns the root logger of the global provider.
func GetLogger() Logger {
	return GetGlobalProvider().GetLogger()
}

// GetLoggerWithName returns a named logger from the global provider.
func GetLoggerWithName(name string) Logger {
	return GetGlobalProvider().GetLoggerWithName(name)
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zerologLogger{zl: zerolog.Nop()}
}
