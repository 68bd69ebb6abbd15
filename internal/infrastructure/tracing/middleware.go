package tracing

import (
	"context"
	"strconv"

	"github.com/GriffinCanCode/navguard/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// HTTPMiddleware creates Gin middleware that opens one span per request.
// A well-formed inbound X-Trace-ID is continued, anything else starts a new trace.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if inbound := c.GetHeader(HeaderTraceID); inbound != "" && utils.ValidateID(inbound, "trace_id", true) == nil {
			ctx = context.WithValue(ctx, traceIDKey, TraceID(inbound))
		}
		if parent := c.GetHeader(HeaderSpanID); parent != "" && utils.ValidateID(parent, "span_id", true) == nil {
			ctx = context.WithValue(ctx, spanIDKey, SpanID(parent))
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderSpanID, string(span.SpanID))

		c.Next()

		span.StatusCode = c.Writer.Status()
		span.SetTag("http.status", strconv.Itoa(span.StatusCode))
		if len(c.Errors) > 0 {
			span.Err = c.Errors.Last()
		}
		span.Finish()
		tracer.Submit(span)
	}
}
