package api

import (
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// requestLogger logs each request at a level chosen from its status code.
func requestLogger(logger *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		status := ctx.Status()
		attrs := []slog.Attr{
			slog.String("method", ctx.Method()),
			slog.String("path", ctx.URL().Path),
			slog.String("remote_addr", ctx.RemoteAddr()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}

		level := slog.LevelDebug
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		case ctx.Method() != "GET":
			level = slog.LevelInfo
		}
		logger.LogAttrs(ctx.Context(), level, "HTTP request completed", attrs...)
	}
}
