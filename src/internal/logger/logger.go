package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.RWMutex
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base     = zap.New(consoleCore(level), zap.AddCallerSkip(1))
	fileOnly = zap.NewNop()
	logFile  *os.File
)

// InitLogger sets the console level and, when dir is not empty, adds a JSON
// log file under dir that records every message down to debug level.
func InitLogger(dir, lvl string) error {
	parsed := zapcore.InfoLevel
	if lvl != "" {
		var err error
		if parsed, err = zapcore.ParseLevel(lvl); err != nil {
			return fmt.Errorf("invalid log level %q: %w", lvl, err)
		}
	}
	level.SetLevel(parsed)

	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(dir, fmt.Sprintf("clearsign_%s.log", timestamp))
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.DebugLevel)

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	base = zap.New(zapcore.NewTee(consoleCore(level), fileCore), zap.AddCaller(), zap.AddCallerSkip(1))
	fileOnly = zap.New(fileCore, zap.AddCaller(), zap.AddCallerSkip(1))

	base.Debug("log file created", zap.String("path", logPath))
	return nil
}

// Close flushes and closes the log file, returning to console-only logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = base.Sync()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = zap.New(consoleCore(level), zap.AddCallerSkip(1))
	fileOnly = zap.NewNop()
}

// Logger returns the structured logger for callers that attach fields.
func Logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithOptions(zap.AddCallerSkip(-1))
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func InfoFileOnly(format string, v ...interface{}) {
	mu.RLock()
	l := fileOnly
	mu.RUnlock()
	l.Info(fmt.Sprintf(format, v...))
}

func Info(format string, v ...interface{}) {
	current().Info(fmt.Sprintf(format, v...))
}

func Debug(format string, v ...interface{}) {
	current().Debug(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...interface{}) {
	current().Warn(fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	current().Error(fmt.Sprintf(format, v...))
}

// LogFilePath returns the path of the open log file, or "" when logging to
// console only.
func LogFilePath() string {
	mu.RLock()
	defer mu.RUnlock()
	if logFile == nil {
		return ""
	}
	return logFile.Name()
}

func consoleCore(enab zapcore.LevelEnabler) zapcore.Core {
	cfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), enab)
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}
