package logger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	NONE
)

var (
	mu    sync.RWMutex
	level = INFO
	sugar = newSugar(zapcore.Lock(os.Stderr), nil)
)

// ParseLevel maps a level name to a LogLevel. Unknown names fall back to INFO.
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	case "none":
		return NONE
	default:
		return INFO
	}
}

// Init sets the level and, when logfilePath is not empty, tees output into a
// rotated log file next to stderr.
func Init(logfilePath string, levelStr string) error {
	var file zapcore.WriteSyncer
	if logfilePath != "" {
		dir := filepath.Dir(logfilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		file = zapcore.AddSync(&lumberjack.Logger{
			Filename:   logfilePath,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
	}

	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(levelStr)
	sugar = newSugar(zapcore.Lock(os.Stderr), file)
	return nil
}

// SetOutput redirects log output to w. Used by tests and by callers that
// capture logs.
func SetOutput(w zapcore.WriteSyncer) {
	mu.Lock()
	defer mu.Unlock()
	sugar = newSugar(w, nil)
}

// Level returns the current level.
func Level() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return sugar.Sync()
}

func newSugar(out zapcore.WriteSyncer, file zapcore.WriteSyncer) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoderConfig.CallerKey = ""
	encoderConfig.NameKey = "logger"

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), out, zapcore.DebugLevel)
	if file != nil {
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), file, zapcore.DebugLevel))
	}
	return zap.New(core).Named("ghostguess").Sugar()
}

func current(at LogLevel) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	if level > at {
		return nil
	}
	return sugar
}

func Debug(msg string, args ...any) {
	if s := current(DEBUG); s != nil {
		s.Debugf(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if s := current(INFO); s != nil {
		s.Infof(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if s := current(WARN); s != nil {
		s.Warnf(msg, args...)
	}
}

func Error(msg string, args ...any) {
	if s := current(ERROR); s != nil {
		s.Errorf(msg, args...)
	}
}
