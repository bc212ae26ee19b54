package log

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// Options controls where log output goes.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Path is a file to append to. Empty means stderr.
	Path string
	// Discard drops all output, used while the TUI owns the terminal and no
	// log file is configured.
	Discard bool
}

// Init replaces the package logger. It returns a flush function that should
// be deferred by the caller.
func Init(opts Options) (func(), error) {
	if opts.Discard {
		set(zap.NewNop())
		return func() {}, nil
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(opts.Level))
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	if opts.Path != "" {
		cfg.OutputPaths = []string{opts.Path}
		cfg.ErrorOutputPaths = []string{opts.Path}
	} else {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	l, err := cfg.Build()
	if err != nil {
		return func() {}, err
	}
	set(l)
	return func() { _ = l.Sync() }, nil
}

// ParseLevel maps a config string to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SetLogger installs l directly. Tests use zaptest/observer loggers here.
func SetLogger(l *zap.Logger) {
	set(l)
}

func set(l *zap.Logger) {
	mu.Lock()
	logger = l.Sugar()
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warnw(msg, kv...)
}

// Error logs msg with err attached under the "err" key.
func Error(msg string, err error, kv ...any) {
	current().Errorw(msg, append([]any{"err", err}, kv...)...)
}
