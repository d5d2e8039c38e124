// Package logging wraps zap as the PDP's structured logger: a global
// *zap.Logger plus package-level convenience functions, shared across
// cmd/pdpserver and the evaluation packages.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

func init() {
	// A usable default before Init is called (e.g. in package init order
	// or tests that never call Init).
	Log, _ = zap.NewDevelopment()
}

// Init configures the global logger to write JSON logs under logDirPath
// plus stdout/stderr, honoring LOG_LEVEL.
func Init(logDirPath string) error {
	config := zap.NewProductionConfig()

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			config.Level.SetLevel(parsed)
		}
	}

	logFilePath := logDirPath + "/pdp.log"
	if _, err := os.Stat(logFilePath); os.IsNotExist(err) {
		if err := os.MkdirAll(logDirPath, 0o755); err != nil {
			return err
		}
		file, err := os.Create(logFilePath)
		if err != nil {
			return err
		}
		file.Close()
	}

	errorLogFilePath := logDirPath + "/pdp_error.log"
	config.OutputPaths = []string{"stdout", logFilePath}
	config.ErrorOutputPaths = []string{"stderr", errorLogFilePath}
	config.EncoderConfig.CallerKey = "caller"
	config.EncoderConfig.StacktraceKey = "stacktrace"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Log = built
	zap.ReplaceGlobals(Log)
	return nil
}

func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }
