package findex

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// defaultLogger is used by a Findex constructed without WithLogger. It
// mirrors the teacher's colorized, source-annotated tint handler.
func defaultLogger() *slog.Logger {
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: time.RFC3339,
		AddSource:  true,
	})
	return slog.New(handler)
}
