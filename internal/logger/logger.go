package logger

import (
	"log/slog"
	"os"
)

var Logger *slog.Logger = slog.Default()

// Init installs a text logger on stdout as the process default. Debug output
// is enabled by the flag or by DEBUG=true in the environment.
func Init(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	Logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(Logger)
	return Logger
}

// For returns a child logger tagged with the component name.
func For(component string) *slog.Logger {
	return Logger.With("component", component)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
