package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey int

// TraceIdKey is the request context key under which middleware.Logger stores the trace id.
const TraceIdKey ctxKey = 1

// GetTraceIdOfRequest returns the trace id of the request, or "Unknown" when
// the logger middleware did not run.
func GetTraceIdOfRequest(c *gin.Context) string {
	return TraceIDFromContext(c.Request.Context())
}

func TraceIDFromContext(ctx context.Context) string {
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		return "Unknown"
	}
	return traceId
}

// WithTraceID returns ctx carrying traceId; a fresh uuid is generated when traceId is empty.
func WithTraceID(ctx context.Context, traceId string) context.Context {
	if traceId == "" {
		traceId = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIdKey, traceId)
}
