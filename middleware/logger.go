package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"shopcart/pkg/ctxmanage"
	"shopcart/pkg/logkey"
)

const traceHeader = "X-Trace-Id"

// Logger attaches a trace id to the request context and logs the request once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Request.Context().Value(ctxmanage.TraceIdKey).(string); ok {
			c.Next()
			return
		}

		ctx := ctxmanage.WithTraceID(c.Request.Context(), c.GetHeader(traceHeader))
		c.Request = c.Request.WithContext(ctx)
		traceId := ctxmanage.TraceIDFromContext(ctx)
		c.Header(traceHeader, traceId)

		start := time.Now()
		slog.Info("started", slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method), slog.String("URL Path", c.Request.URL.Path))

		c.Next()

		slog.Info("completed", slog.String(logkey.TraceID, traceId),
			slog.String("Method", c.Request.Method), slog.String("URL Path", c.Request.URL.Path),
			slog.Int("Status Code", c.Writer.Status()), slog.Duration("Duration", time.Since(start)))
	}
}
