package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

// Init configures the global logger. Development gets text output at debug
// level, everything else JSON at info level.
func Init(environment string) {
	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	log = slog.New(handler)
}

func get() *slog.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

func Debug(msg string, args ...any) {
	get().Debug(msg, normalize(args)...)
}

func Info(msg string, args ...any) {
	get().Info(msg, normalize(args)...)
}

func Warn(msg string, args ...any) {
	get().Warn(msg, normalize(args)...)
}

func Error(msg string, args ...any) {
	get().Error(msg, normalize(args)...)
}

func Fatal(msg string, args ...any) {
	get().Error(msg, normalize(args)...)
	os.Exit(1)
}

// normalize lets callers pass bare values (commonly an error) as well as
// key/value pairs; bare values are wrapped so slog does not drop them.
func normalize(args []any) []any {
	if len(args)%2 == 0 {
		for i := 0; i < len(args); i += 2 {
			if _, ok := args[i].(string); !ok {
				return wrap(args)
			}
		}
		return args
	}
	return wrap(args)
}

func wrap(args []any) []any {
	out := make([]any, 0, len(args)*2)
	for _, a := range args {
		switch v := a.(type) {
		case error:
			out = append(out, "error", v.Error())
		default:
			out = append(out, "detail", v)
		}
	}
	return out
}
