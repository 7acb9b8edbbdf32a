package providers

import (
	"context"
	"log/slog"
)

// logWithSource emits a log entry if logger is non-nil and always includes
// the source name.
func logWithSource(ctx context.Context, logger *slog.Logger, level slog.Level, source string, msg string, args ...any) {
	if logger == nil {
		return
	}
	args = append(args, slog.String("source", source))
	logger.Log(ctx, level, msg, args...)
}
